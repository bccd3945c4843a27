// Package coreerrors defines the closed error taxonomy shared across the
// command-dispatch boundary: workspace, agent, plugin, permission, and
// transport operations all fail with one of these kinds.
package coreerrors

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the closed error taxonomy.
type Kind string

const (
	KindInvalidInput             Kind = "InvalidInput"
	KindPathNotFound             Kind = "PathNotFound"
	KindPathNotDirectory         Kind = "PathNotDirectory"
	KindIoError                  Kind = "IoError"
	KindWorkspaceNotFound        Kind = "WorkspaceNotFound"
	KindAgentNotFound            Kind = "AgentNotFound"
	KindOperationNotFound        Kind = "OperationNotFound"
	KindPermissionDenied         Kind = "PermissionDenied"
	KindPluginInstallInProgress  Kind = "PluginInstallInProgress"
	KindPluginNotInstalled       Kind = "PluginNotInstalled"
	KindPluginMissingBinPath     Kind = "PluginMissingBinPath"
	KindProtocolError            Kind = "ProtocolError"
)

// sentinels let callers test membership with errors.Is(err, coreerrors.InvalidInput).
var (
	InvalidInput            = &Error{Kind: KindInvalidInput}
	PathNotFound            = &Error{Kind: KindPathNotFound}
	PathNotDirectory        = &Error{Kind: KindPathNotDirectory}
	IoError                 = &Error{Kind: KindIoError}
	WorkspaceNotFound       = &Error{Kind: KindWorkspaceNotFound}
	AgentNotFound           = &Error{Kind: KindAgentNotFound}
	OperationNotFound       = &Error{Kind: KindOperationNotFound}
	PermissionDenied        = &Error{Kind: KindPermissionDenied}
	PluginInstallInProgress = &Error{Kind: KindPluginInstallInProgress}
	PluginNotInstalled      = &Error{Kind: KindPluginNotInstalled}
	PluginMissingBinPath    = &Error{Kind: KindPluginMissingBinPath}
	ProtocolError           = &Error{Kind: KindProtocolError}
)

// Error is a taxonomy member carrying a kind, a human message, and
// optional structured fields (plugin_id, operation_id, ...) used by
// callers that need to echo them back to the UI.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is makes errors.Is match on Kind alone, ignoring Message/Fields, so
// sentinel comparisons like errors.Is(err, coreerrors.PathNotFound) work
// regardless of the message attached to a concrete instance.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a new *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithField returns a copy of e with an additional structured field.
func (e *Error) WithField(key, value string) *Error {
	fields := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Kind: e.Kind, Message: e.Message, Fields: fields}
}

// Field returns a structured field, or "" if absent.
func (e *Error) Field(key string) string {
	return e.Fields[key]
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and
// reports ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
