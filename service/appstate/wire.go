// SPDX-License-Identifier: BSD-3-Clause

package appstate

import (
	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/store"
)

// Wire request/response payloads exchanged over the IPC bus. JSON is
// used rather than a generated schema since the front-end surface
// never crosses a process or machine boundary - it is an in-process
// decoupling point, not a remote protocol.

// ChangeConfigRequest selects the active configuration by name, or
// clears it (no active configuration) when Name is nil.
type ChangeConfigRequest struct {
	Name *string `json:"name"`
}

// NamedConfigRequest carries a config name for create/rename/remove/save.
type NamedConfigRequest struct {
	Name   string        `json:"name"`
	Next   string        `json:"next,omitempty"`
	Config *store.Config `json:"config,omitempty"`
}

// SetActiveRequest toggles a Control node's active flag.
type SetActiveRequest struct {
	NodeID uint32 `json:"node_id"`
	Active bool   `json:"active"`
}

// OKResponse is the generic empty-success envelope.
type OKResponse struct {
	OK bool `json:"ok"`
}

// HardwareResponse carries the bridge's hardware description.
type HardwareResponse struct {
	Hardware *bridge.Hardware `json:"hardware"`
}

// ConfigNamesResponse lists every stored configuration name, naturally
// sorted.
type ConfigNamesResponse struct {
	Names []string `json:"names"`
}

// CurrentConfigResponse reports the active configuration's name, or
// nil if none is active.
type CurrentConfigResponse struct {
	Name *string `json:"name"`
}

// ConfigResponse carries a full configuration document.
type ConfigResponse struct {
	Config *store.Config `json:"config"`
}

// SettingsResponse carries the persisted application settings.
type SettingsResponse struct {
	Settings store.Settings `json:"settings"`
}

// StateResponse carries the persisted application state.
type StateResponse struct {
	State store.State `json:"state"`
}

// UpdateSettingsRequest carries the full settings document to persist;
// AppState normalizes it before saving.
type UpdateSettingsRequest struct {
	Settings store.Settings `json:"settings"`
}

// UpdateStateRequest carries the full state document to persist.
type UpdateStateRequest struct {
	State store.State `json:"state"`
}
