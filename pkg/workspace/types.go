// Package workspace implements WorkspaceRegistry: it owns workspaces,
// their per-workspace agent records and runtimes, and the terminal and
// filesystem managers scoped to each workspace root. It drives lazy agent
// startup and turn cancellation, and is the concrete Host implementation
// backing pkg/transport's callbacks.
package workspace

import (
	"github.com/kevinelliott/agentcore/pkg/transport"
)

// WorkspaceSummary is the UI-facing view of a Workspace.
type WorkspaceSummary struct {
	WorkspaceID string `json:"workspace_id"`
	RootDir     string `json:"root_dir"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// AgentSummary is the UI-facing view of an agent record.
type AgentSummary struct {
	AgentID     string `json:"agent_id"`
	WorkspaceID string `json:"workspace_id"`
	PluginID    string `json:"plugin_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// AgentStatusChangedEvent is the payload of agent/status_changed.
type AgentStatusChangedEvent struct {
	WorkspaceID string           `json:"workspace_id"`
	AgentID     string           `json:"agent_id"`
	Status      transport.Status `json:"status"`
}

// AcpSessionUpdateEvent is the payload of acp/session_update.
type AcpSessionUpdateEvent struct {
	WorkspaceID string                  `json:"workspace_id"`
	AgentID     string                  `json:"agent_id"`
	SessionID   string                  `json:"session_id"`
	Update      transport.SessionUpdate `json:"update"`
}

// TerminalStream names which stream a terminal/output chunk came from.
type TerminalStream string

const (
	TerminalStdout TerminalStream = "Stdout"
	TerminalStderr TerminalStream = "Stderr"
)

// TerminalOutputEvent is the payload of terminal/output.
type TerminalOutputEvent struct {
	WorkspaceID string         `json:"workspace_id"`
	AgentID     string         `json:"agent_id"`
	OperationID string         `json:"operation_id,omitempty"`
	TerminalID  string         `json:"terminal_id"`
	Stream      TerminalStream `json:"stream"`
	Chunk       string         `json:"chunk"`
}

// TerminalExitedEvent is the payload of terminal/exited.
type TerminalExitedEvent struct {
	WorkspaceID string `json:"workspace_id"`
	AgentID     string `json:"agent_id"`
	OperationID string `json:"operation_id,omitempty"`
	TerminalID  string `json:"terminal_id"`
	ExitCode    *int   `json:"exit_code,omitempty"`
	UserStopped bool   `json:"user_stopped"`
}
