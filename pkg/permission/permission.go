// Package permission implements the PermissionHub: it bridges a
// synchronous-looking "ask the user" call from a worker goroutine to an
// asynchronous decision delivered later from the UI, correlating the two
// through a single-shot channel keyed by operation ID.
package permission

import (
	"sync"
	"time"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
	"github.com/kevinelliott/agentcore/pkg/events"
)

// Decision is the user's answer to a permission request.
type Decision string

const (
	AllowOnce Decision = "AllowOnce"
	Deny      Decision = "Deny"
)

// Timeout bounds how long Request awaits a decision before failing.
const Timeout = 5 * time.Minute

// Source is the closed union of things a permission request can be for.
type Source struct {
	Kind string // "InstallPlugin" | "TerminalRun" | "FsReadTextFile" | "FsWriteTextFile"

	// InstallPlugin
	PluginID string
	Version  string

	// TerminalRun
	Command string

	// FsReadTextFile / FsWriteTextFile
	Path             string
	ContentPreview   string
	ContentTruncated bool
}

func InstallPluginSource(pluginID, version string) Source {
	return Source{Kind: "InstallPlugin", PluginID: pluginID, Version: version}
}

func TerminalRunSource(command string) Source {
	return Source{Kind: "TerminalRun", Command: command}
}

func FsReadTextFileSource(path string) Source {
	return Source{Kind: "FsReadTextFile", Path: path}
}

func FsWriteTextFileSource(path, preview string, truncated bool) Source {
	return Source{Kind: "FsWriteTextFile", Path: path, ContentPreview: preview, ContentTruncated: truncated}
}

// Origin carries optional context about where a permission request
// originated, populated by the workspace host when the request comes
// from a reverse-RPC call rather than a user-initiated install.
type Origin struct {
	WorkspaceID string
	AgentID     string
	SessionID   string
	ToolCallID  string
}

// RequestedEvent is the payload of an acp/permission_requested event.
type RequestedEvent struct {
	OperationID   string  `json:"operation_id"`
	Source        Source  `json:"source"`
	RequestedAtMs float64 `json:"requested_at_ms"`
	Origin        *Origin `json:"origin,omitempty"`
}

type pendingPermission struct {
	ch chan Decision
}

// Hub correlates asynchronous user decisions with pending operations.
type Hub struct {
	emitter events.Emitter

	mu      sync.Mutex
	pending map[coreid.ID]*pendingPermission
}

// NewHub constructs a Hub that emits acp/permission_requested events
// through emitter.
func NewHub(emitter events.Emitter) *Hub {
	return &Hub{
		emitter: emitter,
		pending: make(map[coreid.ID]*pendingPermission),
	}
}

// Request registers a pending permission slot under opID, emits
// acp/permission_requested, and blocks (up to Timeout) for the user's
// decision.
func (h *Hub) Request(opID coreid.ID, source Source, origin *Origin) (Decision, error) {
	slot := &pendingPermission{ch: make(chan Decision, 1)}

	h.mu.Lock()
	h.pending[opID] = slot
	h.mu.Unlock()

	ev := RequestedEvent{
		OperationID:   opID.String(),
		Source:        source,
		RequestedAtMs: float64(time.Now().UnixMilli()),
		Origin:        origin,
	}
	if err := h.emitter.Emit(events.AcpPermissionRequested, ev); err != nil {
		h.remove(opID)
		return "", coreerrors.New(coreerrors.KindIoError, "failed to emit permission request event: %v", err)
	}

	select {
	case decision := <-slot.ch:
		return decision, nil
	case <-time.After(Timeout):
		h.remove(opID)
		return "", coreerrors.New(coreerrors.KindIoError, "timed out")
	}
}

// Respond delivers a decision to a pending operation. It fails
// OperationNotFound if the operation is unknown (never registered,
// already responded to, or already timed out).
func (h *Hub) Respond(opID coreid.ID, decision Decision) error {
	h.mu.Lock()
	slot, ok := h.pending[opID]
	if ok {
		delete(h.pending, opID)
	}
	h.mu.Unlock()

	if !ok {
		return coreerrors.New(coreerrors.KindOperationNotFound, "%s", opID.String()).WithField("operation_id", opID.String())
	}

	// The slot's channel has capacity 1 and is only ever sent to once
	// (Respond removes it from the map first), so this never blocks.
	slot.ch <- decision
	return nil
}

func (h *Hub) remove(opID coreid.ID) {
	h.mu.Lock()
	delete(h.pending, opID)
	h.mu.Unlock()
}

// Pending reports how many operations are currently awaiting a decision
// (used by diagnostics/the TUI dashboard).
func (h *Hub) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}
