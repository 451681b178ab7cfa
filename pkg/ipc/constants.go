// SPDX-License-Identifier: BSD-3-Clause

package ipc

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/micro"
)

// Subject constants for the AppState front-end surface exposed over the
// embedded NATS bus. Every operation appstate.AppState exposes gets a
// subject here; front-ends (CLI, future UIs) must use these constants
// rather than constructing subjects by hand.

// Tick and hardware introspection.
const (
	SubjectTick     = "engine.tick"
	SubjectHardware = "engine.hardware"
)

// Configuration store subjects.
const (
	SubjectConfigNames    = "config.names"
	SubjectConfigCurrent  = "config.current"
	SubjectConfigChange   = "config.change"
	SubjectConfigCreate   = "config.create"
	SubjectConfigRename   = "config.rename"
	SubjectConfigRemove   = "config.remove"
	SubjectConfigSave     = "config.save"
	SubjectSettingsGet    = "settings.get"
	SubjectSettingsUpdate = "settings.update"
	SubjectStateGet       = "state.get"
	SubjectStateUpdate    = "state.update"
)

// Graph mutation subjects.
const (
	SubjectGraphSetActive = "graph.set_active"
)

// Lifecycle subjects.
const (
	SubjectShutdown = "lifecycle.shutdown"
)

// QueueGroupEngine is the name service/appstate gives the micro.Service
// that every fancored endpoint is registered on.
const QueueGroupEngine = "fancored"

// DefaultRequestTimeoutMs bounds how long a front-end request waits for
// a reply from AppState before giving up.
const DefaultRequestTimeoutMs = 5000

// IPC error constants returned in reply payloads.
var (
	ErrMissingRequiredField = NewIPCError("MISSING_REQUIRED_FIELD", "missing required field")
	ErrMarshalingFailed     = NewIPCError("MARSHALING_FAILED", "marshaling failed")
	ErrUnmarshalingFailed   = NewIPCError("UNMARSHALING_FAILED", "unmarshaling failed")
	ErrResponseTimeout      = NewIPCError("RESPONSE_TIMEOUT", "response timeout")
	ErrInternalError        = NewIPCError("INTERNAL_ERROR", "internal error")
)

// IPCError represents a structured IPC error.
type IPCError struct {
	Code    string
	Message string
}

func (e *IPCError) Error() string {
	return e.Message
}

// NewIPCError creates a new IPC error.
func NewIPCError(code, message string) *IPCError {
	return &IPCError{
		Code:    code,
		Message: message,
	}
}

// ParseSubject splits a subject into group and endpoint components for NATS micro registration.
// For subjects like "config.names", it returns group="config" and endpoint="names".
// Returns an error if the subject doesn't contain exactly one dot or if components are empty.
func ParseSubject(subject string) (group, endpoint string, err error) {
	if subject == "" {
		return "", "", NewIPCError("INVALID_SUBJECT", "subject cannot be empty")
	}

	parts := strings.Split(subject, ".")
	if len(parts) != 2 {
		return "", "", NewIPCError("INVALID_SUBJECT", fmt.Sprintf("subject %s must contain exactly one dot", subject))
	}

	group = strings.TrimSpace(parts[0])
	endpoint = strings.TrimSpace(parts[1])

	if group == "" {
		return "", "", NewIPCError("INVALID_SUBJECT", "group component cannot be empty")
	}
	if endpoint == "" {
		return "", "", NewIPCError("INVALID_SUBJECT", "endpoint component cannot be empty")
	}

	return group, endpoint, nil
}

// RegisterEndpointWithGroupCache registers an endpoint by parsing the subject and managing group creation.
// This helper reduces boilerplate by automatically creating and caching groups as needed.
func RegisterEndpointWithGroupCache(service micro.Service, subject string, handler micro.Handler, groups map[string]micro.Group) error {
	groupName, endpointName, err := ParseSubject(subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject %s: %w", subject, err)
	}

	group, exists := groups[groupName]
	if !exists {
		group = service.AddGroup(groupName)
		groups[groupName] = group
	}

	if err := group.AddEndpoint(endpointName, handler); err != nil {
		return fmt.Errorf("failed to register endpoint %s in group %s: %w", endpointName, groupName, err)
	}

	return nil
}
