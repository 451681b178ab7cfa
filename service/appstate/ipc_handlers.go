// SPDX-License-Identifier: BSD-3-Clause

package appstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/gofancontrol/fancore/pkg/graph"
	"github.com/gofancontrol/fancore/pkg/ipc"
	"github.com/gofancontrol/fancore/pkg/log"
)

// ipcHandlers registers AppState's front-end surface as NATS micro
// endpoints on the in-process bus and keeps them registered until ctx
// is canceled. It holds no state of its own beyond the connection -
// every handler simply calls through to the AppState method of the
// same name.
type ipcHandlers struct {
	state  *AppState
	nc     *nats.Conn
	logger *slog.Logger
}

func (h *ipcHandlers) Name() string {
	return h.state.config.name + "-ipc"
}

func (h *ipcHandlers) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	h.logger = log.Get("appstate.ipc")

	var err error
	h.nc, err = nats.Connect("", nats.InProcessServer(ipcConn))
	if err != nil {
		return fmt.Errorf("connect to ipc bus: %w", err)
	}
	defer h.nc.Drain()

	svc, err := micro.AddService(h.nc, micro.Config{
		Name:        ipc.QueueGroupEngine,
		Description: "fan control engine front-end",
		Version:     "1.0.0",
	})
	if err != nil {
		return fmt.Errorf("create micro service: %w", err)
	}

	if err := h.registerEndpoints(ctx, svc); err != nil {
		return fmt.Errorf("register endpoints: %w", err)
	}

	<-ctx.Done()
	return ctx.Err()
}

func (h *ipcHandlers) registerEndpoints(ctx context.Context, svc micro.Service) error {
	groups := make(map[string]micro.Group)

	register := func(subject string, handler func(context.Context, micro.Request)) error {
		return ipc.RegisterEndpointWithGroupCache(svc, subject, micro.HandlerFunc(h.wrap(ctx, handler)), groups)
	}

	for _, reg := range []struct {
		subject string
		handler func(context.Context, micro.Request)
	}{
		{ipc.SubjectTick, h.handleTick},
		{ipc.SubjectHardware, h.handleHardware},
		{ipc.SubjectConfigNames, h.handleConfigNames},
		{ipc.SubjectConfigCurrent, h.handleConfigCurrent},
		{ipc.SubjectConfigChange, h.handleConfigChange},
		{ipc.SubjectConfigCreate, h.handleConfigCreate},
		{ipc.SubjectConfigRename, h.handleConfigRename},
		{ipc.SubjectConfigRemove, h.handleConfigRemove},
		{ipc.SubjectConfigSave, h.handleConfigSave},
		{ipc.SubjectSettingsGet, h.handleSettingsGet},
		{ipc.SubjectSettingsUpdate, h.handleSettingsUpdate},
		{ipc.SubjectStateGet, h.handleStateGet},
		{ipc.SubjectStateUpdate, h.handleStateUpdate},
		{ipc.SubjectGraphSetActive, h.handleSetActive},
		{ipc.SubjectShutdown, h.handleShutdown},
	} {
		if err := register(reg.subject, reg.handler); err != nil {
			return fmt.Errorf("register %s: %w", reg.subject, err)
		}
	}
	return nil
}

func (h *ipcHandlers) wrap(parentCtx context.Context, handler func(context.Context, micro.Request)) micro.HandlerFunc {
	return func(req micro.Request) {
		id := uuid.NewString()
		ctx := ipc.WithRequestID(context.WithoutCancel(parentCtx), id)
		h.logger.DebugContext(ctx, "request received", "subject", req.Subject(), "request_id", id)
		handler(ctx, req)
	}
}

func respondJSON(req micro.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ipc.RespondWithError(context.Background(), req, ipc.ErrMarshalingFailed, err.Error())
		return
	}
	_ = req.Respond(data)
}

func (h *ipcHandlers) handleTick(ctx context.Context, req micro.Request) {
	h.state.Tick(ctx)
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleHardware(ctx context.Context, req micro.Request) {
	respondJSON(req, HardwareResponse{Hardware: h.state.Hardware()})
}

func (h *ipcHandlers) handleConfigNames(ctx context.Context, req micro.Request) {
	respondJSON(req, ConfigNamesResponse{Names: h.state.ConfigNames()})
}

func (h *ipcHandlers) handleConfigCurrent(ctx context.Context, req micro.Request) {
	respondJSON(req, CurrentConfigResponse{Name: h.state.CurrentConfig()})
}

func (h *ipcHandlers) handleConfigChange(ctx context.Context, req micro.Request) {
	var r ChangeConfigRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	cfg, err := h.state.ChangeConfig(ctx, r.Name)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "change_config failed")
		return
	}
	respondJSON(req, ConfigResponse{Config: cfg})
}

func (h *ipcHandlers) handleConfigCreate(ctx context.Context, req micro.Request) {
	var r NamedConfigRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if r.Config == nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMissingRequiredField, "config")
		return
	}
	if err := h.state.CreateConfig(r.Name, r.Config); err != nil {
		ipc.RespondWithError(ctx, req, err, "create_config failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleConfigRename(ctx context.Context, req micro.Request) {
	var r NamedConfigRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := h.state.RenameConfig(r.Name, r.Next); err != nil {
		ipc.RespondWithError(ctx, req, err, "rename_config failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleConfigRemove(ctx context.Context, req micro.Request) {
	var r NamedConfigRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if _, err := h.state.RemoveConfig(r.Name); err != nil {
		ipc.RespondWithError(ctx, req, err, "remove_config failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleConfigSave(ctx context.Context, req micro.Request) {
	var r NamedConfigRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if r.Config == nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMissingRequiredField, "config")
		return
	}
	if err := h.state.SaveConfig(r.Name, r.Config); err != nil {
		ipc.RespondWithError(ctx, req, err, "save_config failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleSettingsGet(ctx context.Context, req micro.Request) {
	respondJSON(req, SettingsResponse{Settings: h.state.GetSettings()})
}

func (h *ipcHandlers) handleSettingsUpdate(ctx context.Context, req micro.Request) {
	var r UpdateSettingsRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := h.state.UpdateSettings(r.Settings); err != nil {
		ipc.RespondWithError(ctx, req, err, "update_settings failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleStateGet(ctx context.Context, req micro.Request) {
	respondJSON(req, StateResponse{State: h.state.GetState()})
}

func (h *ipcHandlers) handleStateUpdate(ctx context.Context, req micro.Request) {
	var r UpdateStateRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := h.state.UpdateState(r.State); err != nil {
		ipc.RespondWithError(ctx, req, err, "update_state failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}

func (h *ipcHandlers) handleShutdown(ctx context.Context, req micro.Request) {
	respondJSON(req, OKResponse{OK: true})
	h.state.Shutdown()
}

func (h *ipcHandlers) handleSetActive(ctx context.Context, req micro.Request) {
	var r SetActiveRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := h.state.SetActive(ctx, graph.Identifier(r.NodeID), r.Active); err != nil {
		ipc.RespondWithError(ctx, req, err, "set_active failed")
		return
	}
	respondJSON(req, OKResponse{OK: true})
}
