package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/events"
	"github.com/kevinelliott/agentcore/pkg/permission"
	"github.com/kevinelliott/agentcore/pkg/plugincache"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	cacheDir := t.TempDir()
	cache := plugincache.NewCache(cacheDir, plugincache.DefaultRegistry, nil)
	bus := events.NewBus()
	hub := permission.NewHub(bus)
	return NewRegistry(cache, hub, bus, nil), t.TempDir()
}

func TestCreateWorkspaceEmptyRoot(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.Create("")
	if !errors.Is(err, coreerrors.InvalidInput) {
		t.Fatalf("want InvalidInput, got %v", err)
	}
}

func TestCreateWorkspaceMissingDir(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.Create("/no/such/dir-1234567")
	if !errors.Is(err, coreerrors.PathNotFound) {
		t.Fatalf("want PathNotFound, got %v", err)
	}
}

func TestCreateAgentRejectsUppercasePluginID(t *testing.T) {
	reg, root := newTestRegistry(t)
	ws, err := reg.Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = reg.CreateAgent(ws.WorkspaceID, "Plugin", "")
	if !errors.Is(err, coreerrors.InvalidInput) {
		t.Fatalf("want InvalidInput, got %v", err)
	}
}

func TestCreateAgentThenList(t *testing.T) {
	reg, root := newTestRegistry(t)
	ws, err := reg.Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	summary, err := reg.CreateAgent(ws.WorkspaceID, "claude-code", "Name")
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	if summary.PluginID != "claude-code" {
		t.Fatalf("plugin_id = %q, want claude-code", summary.PluginID)
	}

	agents, err := reg.ListAgents(ws.WorkspaceID)
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("len(agents) = %d, want 1", len(agents))
	}
}

func TestDeleteWorkspaceClearsFocus(t *testing.T) {
	reg, root := newTestRegistry(t)
	ws, err := reg.Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reg.SetFocus(ws.WorkspaceID); err != nil {
		t.Fatalf("SetFocus: %v", err)
	}
	if err := reg.Delete(ws.WorkspaceID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := reg.GetFocus(); ok {
		t.Fatal("GetFocus still reports a focused workspace after delete")
	}
}

func TestDeleteUnknownWorkspace(t *testing.T) {
	reg, _ := newTestRegistry(t)
	err := reg.Delete("00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, coreerrors.WorkspaceNotFound) {
		t.Fatalf("want WorkspaceNotFound, got %v", err)
	}
}

func TestSendPromptUnknownAgent(t *testing.T) {
	reg, root := newTestRegistry(t)
	ws, err := reg.Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = reg.SendPrompt(context.Background(), ws.WorkspaceID, "00000000-0000-0000-0000-000000000000", "hi")
	if !errors.Is(err, coreerrors.AgentNotFound) {
		t.Fatalf("want AgentNotFound, got %v", err)
	}
}

func TestStopTurnBeforeStart(t *testing.T) {
	reg, root := newTestRegistry(t)
	ws, err := reg.Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	agent, err := reg.CreateAgent(ws.WorkspaceID, "claude-code", "")
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	err = reg.StopTurn(ws.WorkspaceID, agent.AgentID, "some-session")
	if !errors.Is(err, coreerrors.ProtocolError) {
		t.Fatalf("want ProtocolError, got %v", err)
	}
}

func TestTerminalKillUnknownIsNoop(t *testing.T) {
	reg, root := newTestRegistry(t)
	ws, err := reg.Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reg.TerminalKill(ws.WorkspaceID, "nonexistent"); err != nil {
		t.Fatalf("TerminalKill: %v", err)
	}
}
