// Package core is the thin command dispatcher the UI layer talks to: it
// wires together the process-wide PluginCache, PermissionHub, and
// WorkspaceRegistry handles into the exact operation set the UI issues
// (workspace_create, agent_create, chat_send_prompt, plugin_install,
// permission_respond, terminal_kill, ...) and nothing more. Translating
// these calls into a concrete wire format is left to the callers; the
// REST server in pkg/api/rest is the transport that depends on Core
// rather than reimplementing any of this.
package core

import (
	"context"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/events"
	"github.com/kevinelliott/agentcore/pkg/permission"
	"github.com/kevinelliott/agentcore/pkg/plugincache"
	"github.com/kevinelliott/agentcore/pkg/platform"
	"github.com/kevinelliott/agentcore/pkg/storage"
	"github.com/kevinelliott/agentcore/pkg/workspace"
)

// Core is the application composition root: one PluginCache, one
// PermissionHub, one WorkspaceRegistry, one plugin Installer, and the
// event bus they all publish through, created once at application start
// and retired at shutdown.
type Core struct {
	Cache     *plugincache.Cache
	PermHub   *permission.Hub
	Registry  *workspace.Registry
	Installer *plugincache.Installer
	Events    *events.Bus
}

// New wires a Core from a cache directory and a plugin registry. plat
// may be nil; it is only consulted by PluginCache's optional update
// checks. store may be nil, disabling workspace/agent persistence
// across restarts.
func New(cacheDir string, registry plugincache.Registry, plat platform.Platform, store storage.Store) *Core {
	bus := events.NewBus()
	hub := permission.NewHub(bus)
	cache := plugincache.NewCache(cacheDir, registry, plat)
	reg := workspace.NewRegistry(cache, hub, bus, store)
	inst := plugincache.NewInstaller(cache, hub, bus)
	return &Core{Cache: cache, PermHub: hub, Registry: reg, Installer: inst, Events: bus}
}

// LoadFromStore hydrates the registry's workspaces and agent records
// from the store New was constructed with. A no-op if store was nil.
func (c *Core) LoadFromStore(ctx context.Context) error {
	return c.Registry.LoadFromStore(ctx)
}

// InstallOperationResult is plugin_install's result shape: an opaque
// identifier the caller correlates against later
// acp/plugin_status_changed events.
type InstallOperationResult struct {
	OperationID string `json:"operation_id"`
}

// PromptResult is chat_send_prompt's result.
type PromptResult struct {
	SessionID string `json:"session_id"`
}

// WorkspaceCreate implements the workspace_create command.
func (c *Core) WorkspaceCreate(rootDir string) (workspace.WorkspaceSummary, error) {
	return c.Registry.Create(rootDir)
}

// WorkspaceList implements workspace_list.
func (c *Core) WorkspaceList() []workspace.WorkspaceSummary {
	return c.Registry.List()
}

// WorkspaceDelete implements workspace_delete.
func (c *Core) WorkspaceDelete(workspaceID string) error {
	return c.Registry.Delete(workspaceID)
}

// WorkspaceSetFocus implements workspace_set_focus.
func (c *Core) WorkspaceSetFocus(workspaceID string) error {
	return c.Registry.SetFocus(workspaceID)
}

// WorkspaceGetFocus implements workspace_get_focus.
func (c *Core) WorkspaceGetFocus() (string, bool) {
	return c.Registry.GetFocus()
}

// AgentCreate implements agent_create.
func (c *Core) AgentCreate(workspaceID, pluginID, displayName string) (workspace.AgentSummary, error) {
	return c.Registry.CreateAgent(workspaceID, pluginID, displayName)
}

// AgentList implements agent_list.
func (c *Core) AgentList(workspaceID string) ([]workspace.AgentSummary, error) {
	return c.Registry.ListAgents(workspaceID)
}

// ChatSendPrompt implements chat_send_prompt.
func (c *Core) ChatSendPrompt(ctx context.Context, workspaceID, agentID, prompt string) (PromptResult, error) {
	sessionID, err := c.Registry.SendPrompt(ctx, workspaceID, agentID, prompt)
	if err != nil {
		return PromptResult{}, err
	}
	return PromptResult{SessionID: sessionID}, nil
}

// StopTurn implements stop_turn.
func (c *Core) StopTurn(workspaceID, agentID, sessionID string) error {
	return c.Registry.StopTurn(workspaceID, agentID, sessionID)
}

// PluginGetStatus implements plugin_get_status.
func (c *Core) PluginGetStatus(ctx context.Context, pluginID string, checkUpdates bool) (plugincache.StatusRecord, error) {
	return c.Cache.GetStatus(ctx, pluginID, checkUpdates)
}

// PluginInstall implements plugin_install: it requests permission, then
// runs the install in the background, reporting progress through
// acp/plugin_status_changed events correlated by the returned operation
// ID. origin is nil for a user-initiated install (as opposed to one an
// agent requested through reverse-RPC).
func (c *Core) PluginInstall(ctx context.Context, pluginID, version string, origin *permission.Origin) (InstallOperationResult, error) {
	opID, err := c.Installer.StartInstall(ctx, pluginID, version, origin)
	if err != nil {
		return InstallOperationResult{}, err
	}
	return InstallOperationResult{OperationID: opID}, nil
}

// PermissionRespond implements permission_respond.
func (c *Core) PermissionRespond(operationID string, decision permission.Decision) error {
	opID, err := parseOperationID(operationID)
	if err != nil {
		return coreerrors.New(coreerrors.KindOperationNotFound, "%s", operationID).WithField("operation_id", operationID)
	}
	return c.PermHub.Respond(opID, decision)
}

// TerminalKill implements terminal_kill.
func (c *Core) TerminalKill(workspaceID, terminalID string) error {
	return c.Registry.TerminalKill(workspaceID, terminalID)
}
