package workspace

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
	"github.com/kevinelliott/agentcore/pkg/events"
	"github.com/kevinelliott/agentcore/pkg/pathguard"
	"github.com/kevinelliott/agentcore/pkg/permission"
	"github.com/kevinelliott/agentcore/pkg/plugincache"
	"github.com/kevinelliott/agentcore/pkg/storage"
)

// terminalCaptureCap bounds the aggregated (non-streaming) stdout/stderr
// handed back to the adapter in a terminal/run reply.
const terminalCaptureCap = 64 * 1024

const truncationMarker = "\n...[truncated]"

// AgentRecord is agent metadata: identity, parent workspace, plugin
// choice, and optional display name. Created disjoint from startup:
// agent_create never touches PluginCache or AgentTransport. The runtime
// is created lazily, on the agent record's first send_prompt.
type AgentRecord struct {
	ID          coreid.ID
	WorkspaceID coreid.ID
	PluginID    string
	DisplayName string

	runtimeOnce sync.Once
	runtime     *AgentRuntime
}

// Workspace owns one AgentRegistry (here: a map of AgentRecords) plus a
// TerminalManager and FsManager, all scoped to its canonical root.
type Workspace struct {
	ID          coreid.ID
	RootDir     string
	CreatedAtMs int64

	Terminal *TerminalManager
	Fs       *FsManager

	mu     sync.Mutex
	agents map[coreid.ID]*AgentRecord
}

// Registry implements WorkspaceRegistry: it owns every live Workspace,
// the focused-workspace pointer, and the shared PluginCache/PermissionHub
// handles every agent runtime resolves startup through.
type Registry struct {
	cache   *plugincache.Cache
	permHub *permission.Hub
	emitter events.Emitter
	store   storage.Store

	mu         sync.Mutex
	workspaces map[coreid.ID]*Workspace
	focused    *coreid.ID
}

// NewRegistry constructs an empty Registry. cache, permHub, and emitter
// are process-wide handles created once at application start and
// threaded explicitly rather than held as package globals. store is
// optional: a nil store disables persistence and LoadFromStore becomes
// a no-op, which test and CLI-only callers rely on.
func NewRegistry(cache *plugincache.Cache, permHub *permission.Hub, emitter events.Emitter, store storage.Store) *Registry {
	return &Registry{
		cache:      cache,
		permHub:    permHub,
		emitter:    emitter,
		store:      store,
		workspaces: make(map[coreid.ID]*Workspace),
	}
}

// LoadFromStore repopulates the registry's in-memory workspaces and
// agent records from store, without starting any agent runtimes (every
// loaded agent starts Stopped; its runtime is built lazily on first
// send_prompt, same as a freshly created one). A nil store makes this a
// no-op.
func (r *Registry) LoadFromStore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	rows, err := r.store.ListWorkspaces(ctx)
	if err != nil {
		return coreerrors.New(coreerrors.KindIoError, "load workspaces: %v", err)
	}

	for _, row := range rows {
		id, err := coreid.Parse(row.ID)
		if err != nil {
			continue
		}
		ws := &Workspace{
			ID:          id,
			RootDir:     row.RootPath,
			CreatedAtMs: row.CreatedAt.UnixMilli(),
			Terminal:    NewTerminalManager(row.RootPath),
			Fs:          NewFsManager(row.RootPath),
			agents:      make(map[coreid.ID]*AgentRecord),
		}

		agentRows, err := r.store.ListAgentRecords(ctx, row.ID)
		if err != nil {
			return coreerrors.New(coreerrors.KindIoError, "load agents for workspace %s: %v", row.ID, err)
		}
		for _, arow := range agentRows {
			aid, err := coreid.Parse(arow.AgentID)
			if err != nil {
				continue
			}
			ws.agents[aid] = &AgentRecord{
				ID:          aid,
				WorkspaceID: id,
				PluginID:    arow.PluginID,
				DisplayName: arow.DisplayName,
			}
		}

		r.mu.Lock()
		r.workspaces[id] = ws
		r.mu.Unlock()
	}
	return nil
}

// persistWorkspace saves ws's durable metadata. Best-effort: a store
// failure here does not roll back the in-memory Create, since the
// in-memory registry remains the source of truth for the running
// process and the next successful save reconciles the store.
func (r *Registry) persistWorkspace(ctx context.Context, ws *Workspace) {
	if r.store == nil {
		return
	}
	now := time.UnixMilli(ws.CreatedAtMs)
	_ = r.store.SaveWorkspace(ctx, &storage.WorkspaceRecord{
		ID:        ws.ID.String(),
		Name:      filepath.Base(ws.RootDir),
		RootPath:  ws.RootDir,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (r *Registry) persistAgent(ctx context.Context, rec *AgentRecord) {
	if r.store == nil {
		return
	}
	_ = r.store.SaveAgentRecord(ctx, &storage.AgentRecordRow{
		WorkspaceID: rec.WorkspaceID.String(),
		AgentID:     rec.ID.String(),
		PluginID:    rec.PluginID,
		DisplayName: rec.DisplayName,
		CreatedAt:   time.Now(),
	})
}

// Create canonicalizes rootDir and registers a new Workspace under it.
func (r *Registry) Create(rootDir string) (WorkspaceSummary, error) {
	canonical, err := pathguard.CanonicalizeRoot(rootDir)
	if err != nil {
		return WorkspaceSummary{}, err
	}

	ws := &Workspace{
		ID:          coreid.New(),
		RootDir:     canonical,
		CreatedAtMs: time.Now().UnixMilli(),
		Terminal:    NewTerminalManager(canonical),
		Fs:          NewFsManager(canonical),
		agents:      make(map[coreid.ID]*AgentRecord),
	}

	r.mu.Lock()
	r.workspaces[ws.ID] = ws
	r.mu.Unlock()

	r.persistWorkspace(context.Background(), ws)

	return summarizeWorkspace(ws), nil
}

// List returns a summary of every live workspace.
func (r *Registry) List() []WorkspaceSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]WorkspaceSummary, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		out = append(out, summarizeWorkspace(ws))
	}
	return out
}

// Delete removes a workspace and clears focus if it was the focused one.
func (r *Registry) Delete(workspaceID string) error {
	id, err := parseWorkspaceID(workspaceID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workspaces[id]; !ok {
		return coreerrors.New(coreerrors.KindWorkspaceNotFound, "%s", workspaceID).WithField("workspace_id", workspaceID)
	}
	delete(r.workspaces, id)
	if r.focused != nil && *r.focused == id {
		r.focused = nil
	}
	if r.store != nil {
		_ = r.store.DeleteWorkspace(context.Background(), id.String())
	}
	return nil
}

// SetFocus marks workspaceID as the focused workspace.
func (r *Registry) SetFocus(workspaceID string) error {
	id, err := parseWorkspaceID(workspaceID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workspaces[id]; !ok {
		return coreerrors.New(coreerrors.KindWorkspaceNotFound, "%s", workspaceID).WithField("workspace_id", workspaceID)
	}
	focused := id
	r.focused = &focused
	return nil
}

// GetFocus returns the focused workspace ID, or ok=false if none is set.
func (r *Registry) GetFocus() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.focused == nil {
		return "", false
	}
	return r.focused.String(), true
}

// CreateAgent registers agent metadata under workspaceID. This is
// metadata-only: no plugin is resolved and no subprocess is spawned
// until the agent's first send_prompt.
func (r *Registry) CreateAgent(workspaceID, pluginID, displayName string) (AgentSummary, error) {
	ws, err := r.lookupWorkspace(workspaceID)
	if err != nil {
		return AgentSummary{}, err
	}
	if err := plugincache.ValidatePluginID(pluginID); err != nil {
		return AgentSummary{}, err
	}

	rec := &AgentRecord{
		ID:          coreid.New(),
		WorkspaceID: ws.ID,
		PluginID:    pluginID,
		DisplayName: displayName,
	}

	ws.mu.Lock()
	ws.agents[rec.ID] = rec
	ws.mu.Unlock()

	r.persistAgent(context.Background(), rec)

	return summarizeAgent(rec), nil
}

// ListAgents returns every agent record registered under workspaceID.
func (r *Registry) ListAgents(workspaceID string) ([]AgentSummary, error) {
	ws, err := r.lookupWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := make([]AgentSummary, 0, len(ws.agents))
	for _, rec := range ws.agents {
		out = append(out, summarizeAgent(rec))
	}
	return out, nil
}

// SendPrompt ensures agentID's runtime is started (lazily spawning its
// adapter on first use) and forwards text as a session/prompt.
func (r *Registry) SendPrompt(ctx context.Context, workspaceID, agentID, text string) (string, error) {
	ws, rec, err := r.lookupAgent(workspaceID, agentID)
	if err != nil {
		return "", err
	}

	runtime := r.runtimeFor(ws, rec)
	sessionID, err := runtime.EnsureStarted(ctx)
	if err != nil {
		return "", err
	}
	if err := runtime.SendPrompt(text); err != nil {
		return "", err
	}
	return sessionID, nil
}

// StopTurn cancels the in-flight turn on agentID's session, failing
// InvalidInput if sessionID does not match the runtime's current one.
func (r *Registry) StopTurn(workspaceID, agentID, sessionID string) error {
	ws, rec, err := r.lookupAgent(workspaceID, agentID)
	if err != nil {
		return err
	}
	runtime := r.runtimeFor(ws, rec)
	return runtime.StopTurn(sessionID)
}

// TerminalKill relays a terminal_kill command to workspaceID's
// TerminalManager.
func (r *Registry) TerminalKill(workspaceID, terminalID string) error {
	ws, err := r.lookupWorkspace(workspaceID)
	if err != nil {
		return err
	}
	if terminalID == "" {
		return coreerrors.New(coreerrors.KindInvalidInput, "terminal_id cannot be empty")
	}
	return ws.Terminal.Kill(terminalID)
}

// runtimeFor lazily constructs rec's AgentRuntime the first time it is
// needed, wiring it to ws's TerminalManager/FsManager and the registry's
// shared PluginCache/PermissionHub/event emitter.
func (r *Registry) runtimeFor(ws *Workspace, rec *AgentRecord) *AgentRuntime {
	rec.runtimeOnce.Do(func() {
		root := ws.RootDir
		rec.runtime = newAgentRuntime(rec.WorkspaceID, rec.ID, rec.PluginID, root, r.cache, r.permHub, ws.Terminal, ws.Fs, r.emitter)
	})
	return rec.runtime
}

func (r *Registry) lookupWorkspace(workspaceID string) (*Workspace, error) {
	id, err := parseWorkspaceID(workspaceID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	r.mu.Unlock()
	if !ok {
		return nil, coreerrors.New(coreerrors.KindWorkspaceNotFound, "%s", workspaceID).WithField("workspace_id", workspaceID)
	}
	return ws, nil
}

func (r *Registry) lookupAgent(workspaceID, agentID string) (*Workspace, *AgentRecord, error) {
	ws, err := r.lookupWorkspace(workspaceID)
	if err != nil {
		return nil, nil, err
	}
	aid, err := coreid.Parse(agentID)
	if err != nil {
		return nil, nil, coreerrors.New(coreerrors.KindAgentNotFound, "%s", agentID).WithField("agent_id", agentID)
	}

	ws.mu.Lock()
	rec, ok := ws.agents[aid]
	ws.mu.Unlock()
	if !ok {
		return nil, nil, coreerrors.New(coreerrors.KindAgentNotFound, "%s", agentID).WithField("agent_id", agentID)
	}
	return ws, rec, nil
}

func parseWorkspaceID(workspaceID string) (coreid.ID, error) {
	id, err := coreid.Parse(workspaceID)
	if err != nil {
		return coreid.Nil, coreerrors.New(coreerrors.KindWorkspaceNotFound, "%s", workspaceID).WithField("workspace_id", workspaceID)
	}
	return id, nil
}

func summarizeWorkspace(ws *Workspace) WorkspaceSummary {
	return WorkspaceSummary{
		WorkspaceID: ws.ID.String(),
		RootDir:     ws.RootDir,
		CreatedAtMs: ws.CreatedAtMs,
	}
}

func summarizeAgent(rec *AgentRecord) AgentSummary {
	return AgentSummary{
		AgentID:     rec.ID.String(),
		WorkspaceID: rec.WorkspaceID.String(),
		PluginID:    rec.PluginID,
		DisplayName: rec.DisplayName,
	}
}
