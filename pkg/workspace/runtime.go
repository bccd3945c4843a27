package workspace

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
	"github.com/kevinelliott/agentcore/pkg/events"
	"github.com/kevinelliott/agentcore/pkg/permission"
	"github.com/kevinelliott/agentcore/pkg/plugincache"
	"github.com/kevinelliott/agentcore/pkg/transport"
)

// AgentRuntime holds one agent's mutable execution state. At every
// quiescent point, status == Running{s} iff sessionID == s iff conn !=
// nil; Stopped, Starting, and Errored all carry neither.
type AgentRuntime struct {
	workspaceID coreid.ID
	agentID     coreid.ID
	pluginID    string
	root        string

	cache    *plugincache.Cache
	permHub  *permission.Hub
	terminal *TerminalManager
	fs       *FsManager
	emitter  events.Emitter

	host *hostImpl

	startMu sync.Mutex // serializes ensure_started

	mu        sync.Mutex
	status    transport.StatusKind
	message   string
	sessionID string
	conn      *transport.Transport

	connLost atomic.Bool
}

func newAgentRuntime(
	workspaceID, agentID coreid.ID,
	pluginID, root string,
	cache *plugincache.Cache,
	permHub *permission.Hub,
	terminal *TerminalManager,
	fs *FsManager,
	emitter events.Emitter,
) *AgentRuntime {
	r := &AgentRuntime{
		workspaceID: workspaceID,
		agentID:     agentID,
		pluginID:    pluginID,
		root:        root,
		cache:       cache,
		permHub:     permHub,
		terminal:    terminal,
		fs:          fs,
		emitter:     emitter,
		status:      transport.StatusStopped,
	}
	r.host = &hostImpl{
		workspaceID:  workspaceID.String(),
		agentID:      agentID.String(),
		emitter:      emitter,
		permHub:      permHub,
		terminal:     terminal,
		fs:           fs,
		markConnLost: func() { r.connLost.Store(true) },
	}
	return r
}

// Status returns the runtime's current status snapshot.
func (r *AgentRuntime) Status() transport.Status {
	r.checkLiveness()
	r.mu.Lock()
	defer r.mu.Unlock()
	return transport.Status{Kind: r.status, SessionID: r.sessionID, Message: r.message}
}

// checkLiveness clears stale Running state the first time something
// notices the transport's stdout closed. The host never mutates runtime
// state itself, to avoid holding a reference across an async boundary;
// the runtime only self-heals when the next operation touches it.
func (r *AgentRuntime) checkLiveness() {
	if !r.connLost.CompareAndSwap(true, false) {
		return
	}
	r.mu.Lock()
	r.status = transport.StatusStopped
	r.sessionID = ""
	r.conn = nil
	r.mu.Unlock()
}

// EnsureStarted returns the runtime's session ID, starting the adapter
// first if necessary. Concurrent calls are serialized through startMu
// and a double-checked fast path so exactly one startup attempt runs and
// every caller observes the same session ID.
func (r *AgentRuntime) EnsureStarted(ctx context.Context) (string, error) {
	r.checkLiveness()
	if sid, ok := r.runningSessionID(); ok {
		return sid, nil
	}

	r.startMu.Lock()
	defer r.startMu.Unlock()

	if sid, ok := r.runningSessionID(); ok {
		return sid, nil
	}

	r.setStarting()

	cmd, err := r.cache.ResolveBin(r.pluginID)
	if err != nil {
		r.setErrored(err.Error())
		return "", err
	}

	conn, sessionID, err := transport.Connect(ctx, cmd, r.root, r.host)
	if err != nil {
		r.setErrored(err.Error())
		return "", err
	}

	r.mu.Lock()
	r.status = transport.StatusRunning
	r.sessionID = sessionID
	r.conn = conn
	r.message = ""
	r.mu.Unlock()
	r.host.SetStatus(transport.Status{Kind: transport.StatusRunning, SessionID: sessionID})

	return sessionID, nil
}

func (r *AgentRuntime) runningSessionID() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == transport.StatusRunning {
		return r.sessionID, true
	}
	return "", false
}

func (r *AgentRuntime) setStarting() {
	r.mu.Lock()
	r.status = transport.StatusStarting
	r.sessionID = ""
	r.conn = nil
	r.message = ""
	r.mu.Unlock()
	r.host.SetStatus(transport.Status{Kind: transport.StatusStarting})
}

func (r *AgentRuntime) setErrored(message string) {
	r.mu.Lock()
	r.status = transport.StatusErrored
	r.sessionID = ""
	r.conn = nil
	r.message = message
	r.mu.Unlock()
	r.host.SetStatus(transport.Status{Kind: transport.StatusErrored, Message: message})
}

// SendPrompt requires a Running runtime and delegates to the transport.
func (r *AgentRuntime) SendPrompt(text string) error {
	r.checkLiveness()
	r.mu.Lock()
	conn := r.conn
	running := r.status == transport.StatusRunning
	sessionID := r.sessionID
	r.mu.Unlock()
	if !running || conn == nil {
		return coreerrors.New(coreerrors.KindProtocolError, "Agent not running")
	}
	if err := conn.SendPrompt(sessionID, text); err != nil {
		r.setErrored(err.Error())
		return err
	}
	return nil
}

// StopTurn requires a Running runtime with a matching session ID.
func (r *AgentRuntime) StopTurn(sessionID string) error {
	r.checkLiveness()
	r.mu.Lock()
	conn := r.conn
	running := r.status == transport.StatusRunning
	current := r.sessionID
	r.mu.Unlock()
	if !running || conn == nil {
		return coreerrors.New(coreerrors.KindProtocolError, "Agent not running")
	}
	if sessionID != current {
		return coreerrors.New(coreerrors.KindInvalidInput, "session_id %q does not match running session %q", sessionID, current)
	}
	return conn.CancelTurn(sessionID)
}

// Shutdown tears down a Running runtime's transport, if any.
func (r *AgentRuntime) Shutdown() {
	r.mu.Lock()
	conn := r.conn
	r.status = transport.StatusStopped
	r.sessionID = ""
	r.conn = nil
	r.mu.Unlock()
	if conn != nil {
		_ = conn.Shutdown()
	}
}

// hostImpl is the concrete transport.Host backing one AgentRuntime. It
// captures (workspaceID, agentID) plus sibling capabilities (event
// emitter, PermissionHub, TerminalManager, FsManager), but holds no
// back-reference to the runtime itself beyond the narrow markConnLost
// closure.
type hostImpl struct {
	workspaceID string
	agentID     string

	emitter  events.Emitter
	permHub  *permission.Hub
	terminal *TerminalManager
	fs       *FsManager

	markConnLost func()
}

func (h *hostImpl) SetStatus(status transport.Status) {
	_ = h.emitter.Emit(events.AgentStatusChanged, AgentStatusChangedEvent{
		WorkspaceID: h.workspaceID,
		AgentID:     h.agentID,
		Status:      status,
	})
}

func (h *hostImpl) OnSessionUpdate(sessionID string, update transport.SessionUpdate) {
	_ = h.emitter.Emit(events.AcpSessionUpdate, AcpSessionUpdateEvent{
		WorkspaceID: h.workspaceID,
		AgentID:     h.agentID,
		SessionID:   sessionID,
		Update:      update,
	})
}

func (h *hostImpl) OnConnectionLost() {
	h.markConnLost()
	h.SetStatus(transport.Status{Kind: transport.StatusStopped})
}

func (h *hostImpl) RequestPermission(ctx context.Context, req transport.PermissionRequest) (permission.Decision, error) {
	opID := coreid.New()
	if req.OperationID != "" {
		if parsed, err := coreid.Parse(req.OperationID); err == nil {
			opID = parsed
		}
	}
	origin := &permission.Origin{
		WorkspaceID: h.workspaceID,
		AgentID:     h.agentID,
		SessionID:   req.SessionID,
		ToolCallID:  req.ToolCallID,
	}
	return h.permHub.Request(opID, permission.TerminalRunSource(req.Command), origin)
}

func (h *hostImpl) TerminalRun(ctx context.Context, req transport.TerminalRunRequest) (transport.TerminalRunResult, error) {
	handle, err := h.terminal.SpawnRun(ctx, req.Command)
	if err != nil {
		return transport.TerminalRunResult{}, err
	}

	var stdout, stderr strings.Builder
	stdoutCh, stderrCh := handle.StdoutCh, handle.StderrCh
	for stdoutCh != nil || stderrCh != nil {
		select {
		case chunk, ok := <-stdoutCh:
			if !ok {
				stdoutCh = nil
				continue
			}
			appendCapped(&stdout, chunk)
			h.emitTerminalOutput(req.OperationID, handle.TerminalID, TerminalStdout, chunk)
		case chunk, ok := <-stderrCh:
			if !ok {
				stderrCh = nil
				continue
			}
			appendCapped(&stderr, chunk)
			h.emitTerminalOutput(req.OperationID, handle.TerminalID, TerminalStderr, chunk)
		}
	}

	exit := <-handle.ExitCh
	_ = h.emitter.Emit(events.TerminalExited, TerminalExitedEvent{
		WorkspaceID: h.workspaceID,
		AgentID:     h.agentID,
		OperationID: req.OperationID,
		TerminalID:  handle.TerminalID,
		ExitCode:    exit.ExitCode,
		UserStopped: exit.UserStopped,
	})

	return transport.TerminalRunResult{
		TerminalID: handle.TerminalID,
		ExitCode:   exit.ExitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}, nil
}

func (h *hostImpl) emitTerminalOutput(operationID, terminalID string, stream TerminalStream, chunk string) {
	_ = h.emitter.Emit(events.TerminalOutput, TerminalOutputEvent{
		WorkspaceID: h.workspaceID,
		AgentID:     h.agentID,
		OperationID: operationID,
		TerminalID:  terminalID,
		Stream:      stream,
		Chunk:       chunk,
	})
}

// appendCapped appends chunk to b up to terminalCaptureCap total bytes,
// appending truncationMarker exactly once when the cap is first crossed.
// The stream-out events, separately, are never capped.
func appendCapped(b *strings.Builder, chunk string) {
	if b.Len() >= terminalCaptureCap+len(truncationMarker) {
		return
	}
	remaining := terminalCaptureCap - b.Len()
	if remaining <= 0 {
		b.WriteString(truncationMarker)
		return
	}
	if len(chunk) > remaining {
		b.WriteString(chunk[:remaining])
		b.WriteString(truncationMarker)
		return
	}
	b.WriteString(chunk)
}

func (h *hostImpl) FsReadTextFile(ctx context.Context, req transport.FsReadTextFileRequest) (string, error) {
	return h.fs.ReadTextFile(req.Path)
}

func (h *hostImpl) FsWriteTextFile(ctx context.Context, req transport.FsWriteTextFileRequest) error {
	return h.fs.WriteTextFile(req.Path, req.Content)
}
