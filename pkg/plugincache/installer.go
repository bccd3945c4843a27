package plugincache

import (
	"context"
	"sync"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
	"github.com/kevinelliott/agentcore/pkg/events"
	"github.com/kevinelliott/agentcore/pkg/permission"
)

// PermissionRequester is the subset of *permission.Hub the Installer
// depends on, so tests can substitute a fake.
type PermissionRequester interface {
	Request(opID coreid.ID, source permission.Source, origin *permission.Origin) (permission.Decision, error)
}

// PluginStatusChangedEvent is the payload of acp/plugin_status_changed.
type PluginStatusChangedEvent struct {
	OperationID string `json:"operation_id"`
	PluginID    string `json:"plugin_id"`
	Status      string `json:"status"` // "installing" | "installed" | "denied" | "failed"
	Error       string `json:"error,omitempty"`
}

// Installer layers permission-gated orchestration on top of Cache's
// purely mechanical Install: a caller must be granted permission before
// the package manager ever runs, answering the otherwise-unanswered
// question of who asks the user, and when.
type Installer struct {
	cache   *Cache
	hub     PermissionRequester
	emitter events.Emitter

	mu         sync.Mutex
	inProgress map[string]bool
}

// NewInstaller constructs an Installer over cache, asking permission
// through hub and reporting progress through emitter.
func NewInstaller(cache *Cache, hub PermissionRequester, emitter events.Emitter) *Installer {
	return &Installer{
		cache:      cache,
		hub:        hub,
		emitter:    emitter,
		inProgress: make(map[string]bool),
	}
}

// StartInstall validates pluginID, rejects a second concurrent install
// of the same plugin, and returns an operation ID immediately while the
// permission request and mechanical install continue in the
// background.
func (in *Installer) StartInstall(ctx context.Context, pluginID, version string, origin *permission.Origin) (string, error) {
	if err := ValidatePluginID(pluginID); err != nil {
		return "", err
	}

	in.mu.Lock()
	if in.inProgress[pluginID] {
		in.mu.Unlock()
		return "", coreerrors.New(coreerrors.KindPluginInstallInProgress, "install already in progress for %s", pluginID).WithField("plugin_id", pluginID)
	}
	in.inProgress[pluginID] = true
	in.mu.Unlock()

	opID := coreid.New()
	go in.runInstall(ctx, opID, pluginID, version, origin)
	return opID.String(), nil
}

func (in *Installer) runInstall(ctx context.Context, opID coreid.ID, pluginID, version string, origin *permission.Origin) {
	defer func() {
		in.mu.Lock()
		delete(in.inProgress, pluginID)
		in.mu.Unlock()
	}()

	in.emit(opID, pluginID, "installing", "")

	decision, err := in.hub.Request(opID, permission.InstallPluginSource(pluginID, version), origin)
	if err != nil {
		in.emit(opID, pluginID, "failed", err.Error())
		return
	}
	if decision != permission.AllowOnce {
		in.emit(opID, pluginID, "denied", "")
		return
	}

	if _, err := in.cache.Install(ctx, pluginID, version); err != nil {
		in.emit(opID, pluginID, "failed", err.Error())
		return
	}
	in.emit(opID, pluginID, "installed", "")
}

func (in *Installer) emit(opID coreid.ID, pluginID, status, errMsg string) {
	_ = in.emitter.Emit(events.AcpPluginStatusChanged, PluginStatusChangedEvent{
		OperationID: opID.String(),
		PluginID:    pluginID,
		Status:      status,
		Error:       errMsg,
	})
}
