package transport

import (
	"context"

	"github.com/kevinelliott/agentcore/pkg/permission"
)

// PermissionRequest is a reverse-RPC request_permission call translated out
// of its JSON-RPC params.
type PermissionRequest struct {
	SessionID   string
	ToolCallID  string
	OperationID string
	Command     string
}

// TerminalRunRequest is a reverse-RPC terminal/run call.
type TerminalRunRequest struct {
	Command     string
	OperationID string
}

// TerminalRunResult is the aggregated (capped) result of a terminal run,
// already truncated by the Host implementation before it reaches the wire.
type TerminalRunResult struct {
	TerminalID string
	ExitCode   *int
	Stdout     string
	Stderr     string
}

// FsReadTextFileRequest is a reverse-RPC fs.read_text_file call.
type FsReadTextFileRequest struct {
	Path        string
	SessionID   string
	ToolCallID  string
	OperationID string
}

// FsWriteTextFileRequest is a reverse-RPC fs.write_text_file call.
type FsWriteTextFileRequest struct {
	Path        string
	Content     string
	SessionID   string
	ToolCallID  string
	OperationID string
}

// StatusKind is one member of an AgentRuntime's closed status set.
type StatusKind string

const (
	StatusStopped  StatusKind = "Stopped"
	StatusStarting StatusKind = "Starting"
	StatusRunning  StatusKind = "Running"
	StatusErrored  StatusKind = "Errored"
)

// Status mirrors AgentRuntime's status invariant: SessionID is set iff
// Kind is Running, Message iff Kind is Errored.
type Status struct {
	Kind      StatusKind `json:"kind"`
	SessionID string     `json:"session_id,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Host is the callback boundary a Transport uses to reach back into the
// owning AgentRuntime without knowing about workspaces or agents itself.
// The protocol layer never holds workspace_id/agent_id; an implementation
// captures that context and enriches whatever it emits to the UI.
type Host interface {
	// SetStatus is not called by Transport itself (AgentRuntime drives its
	// own Starting/Running/Errored transitions) but lives on this
	// interface because a single Host implementation backs both the
	// runtime's own status transitions and Transport's callbacks.
	SetStatus(status Status)

	// OnSessionUpdate delivers one parsed (or Raw-fallback) adapter update.
	OnSessionUpdate(sessionID string, update SessionUpdate)

	// OnConnectionLost fires once, when the adapter's stdout closes.
	OnConnectionLost()

	RequestPermission(ctx context.Context, req PermissionRequest) (permission.Decision, error)
	TerminalRun(ctx context.Context, req TerminalRunRequest) (TerminalRunResult, error)
	FsReadTextFile(ctx context.Context, req FsReadTextFileRequest) (string, error)
	FsWriteTextFile(ctx context.Context, req FsWriteTextFileRequest) error
}
