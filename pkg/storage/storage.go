// Package storage provides persistent storage for agent data.
package storage

import (
	"context"
	"time"

	"github.com/kevinelliott/agentcore/pkg/agent"
)

// Store defines the storage interface for agent data.
type Store interface {
	// Initialize sets up the database and runs migrations.
	Initialize(ctx context.Context) error

	// Close closes the storage connection.
	Close() error

	// Installation operations
	SaveInstallation(ctx context.Context, inst *agent.Installation) error
	GetInstallation(ctx context.Context, key string) (*agent.Installation, error)
	ListInstallations(ctx context.Context, filter *agent.Filter) ([]*agent.Installation, error)
	DeleteInstallation(ctx context.Context, key string) error

	// Update history operations
	SaveUpdateEvent(ctx context.Context, event *UpdateEvent) error
	GetUpdateHistory(ctx context.Context, agentID string, limit int) ([]*UpdateEvent, error)

	// Catalog cache operations
	SaveCatalogCache(ctx context.Context, data []byte, etag string) error
	GetCatalogCache(ctx context.Context) ([]byte, string, time.Time, error)

	// Detection cache operations
	SaveDetectionCache(ctx context.Context, installations []*agent.Installation) error
	GetDetectionCache(ctx context.Context) ([]*agent.Installation, time.Time, error)
	ClearDetectionCache(ctx context.Context) error
	GetDetectionCacheTime(ctx context.Context) (time.Time, error)
	SetLastUpdateCheckTime(ctx context.Context, t time.Time) error
	GetLastUpdateCheckTime(ctx context.Context) (time.Time, error)

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// Workspace operations. Workspaces and agent records are also held
	// live in memory by pkg/workspace.Registry; these persist them
	// across restarts so a workspace's agent roster survives an app
	// relaunch (the live runtime state, transport and session ID, is
	// never persisted and always starts Stopped on reload).
	SaveWorkspace(ctx context.Context, ws *WorkspaceRecord) error
	GetWorkspace(ctx context.Context, id string) (*WorkspaceRecord, error)
	ListWorkspaces(ctx context.Context) ([]*WorkspaceRecord, error)
	DeleteWorkspace(ctx context.Context, id string) error

	SaveAgentRecord(ctx context.Context, rec *AgentRecordRow) error
	ListAgentRecords(ctx context.Context, workspaceID string) ([]*AgentRecordRow, error)
	DeleteAgentRecord(ctx context.Context, workspaceID, agentID string) error

	// Permission audit log: every decision the hub ever correlated,
	// kept for diagnostics independent of the in-memory pending set.
	AppendPermissionEvent(ctx context.Context, ev *PermissionEventRow) error
	ListPermissionEvents(ctx context.Context, workspaceID string, limit int) ([]*PermissionEventRow, error)
}

// UpdateEvent represents a recorded update event.
type UpdateEvent struct {
	ID            int64
	AgentID       string
	AgentName     string
	InstallMethod string
	FromVersion   string
	ToVersion     string
	Status        UpdateStatus
	ErrorMessage  string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// UpdateStatus represents the status of an update.
type UpdateStatus string

const (
	UpdateStatusPending   UpdateStatus = "pending"
	UpdateStatusRunning   UpdateStatus = "running"
	UpdateStatusCompleted UpdateStatus = "completed"
	UpdateStatusFailed    UpdateStatus = "failed"
	UpdateStatusCancelled UpdateStatus = "cancelled"
)

// InstallationRecord represents a stored installation record.
type InstallationRecord struct {
	Key              string
	AgentID          string
	AgentName        string
	InstallMethod    string
	InstalledVersion string
	LatestVersion    string
	ExecutablePath   string
	InstallPath      string
	FirstDetectedAt  time.Time
	LastCheckedAt    time.Time
	LastUpdatedAt    *time.Time
	Metadata         map[string]string
}

// ToInstallation converts an InstallationRecord to an agent.Installation.
func (r *InstallationRecord) ToInstallation() *agent.Installation {
	var latestVer *agent.Version
	if r.LatestVersion != "" {
		v, err := agent.ParseVersion(r.LatestVersion)
		if err == nil {
			latestVer = &v
		}
	}

	var installedVer agent.Version
	if r.InstalledVersion != "" {
		if v, err := agent.ParseVersion(r.InstalledVersion); err == nil {
			installedVer = v
		}
	}

	return &agent.Installation{
		AgentID:          r.AgentID,
		AgentName:        r.AgentName,
		Method:           agent.InstallMethod(r.InstallMethod),
		InstalledVersion: installedVer,
		LatestVersion:    latestVer,
		ExecutablePath:   r.ExecutablePath,
		InstallPath:      r.InstallPath,
		DetectedAt:       r.FirstDetectedAt,
		LastChecked:      r.LastCheckedAt,
		Metadata:         r.Metadata,
	}
}

// WorkspaceRecord is the persisted form of a pkg/workspace.Workspace: its
// identity and root path, not its live agent runtimes.
type WorkspaceRecord struct {
	ID        string
	Name      string
	RootPath  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgentRecordRow is the persisted form of a pkg/workspace.AgentRecord: the
// durable configuration of one agent slot within a workspace. Runtime
// status is never persisted; a reloaded agent record always starts
// Stopped until ensure_started is called again.
type AgentRecordRow struct {
	WorkspaceID string
	AgentID     string
	PluginID    string
	DisplayName string
	CreatedAt   time.Time
}

// PermissionEventRow is one row of the permission audit log: a request
// and, once known, its resolution.
type PermissionEventRow struct {
	ID          int64
	OperationID string
	WorkspaceID string
	AgentID     string
	SourceKind  string
	SourceJSON  string
	Decision    string // "" while pending
	RequestedAt time.Time
	ResolvedAt  *time.Time
}

// FromInstallation creates an InstallationRecord from an agent.Installation.
func FromInstallation(inst *agent.Installation) *InstallationRecord {
	var latestVer string
	if inst.LatestVersion != nil {
		latestVer = inst.LatestVersion.String()
	}

	return &InstallationRecord{
		Key:              inst.Key(),
		AgentID:          inst.AgentID,
		AgentName:        inst.AgentName,
		InstallMethod:    string(inst.Method),
		InstalledVersion: inst.InstalledVersion.String(),
		LatestVersion:    latestVer,
		ExecutablePath:   inst.ExecutablePath,
		InstallPath:      inst.InstallPath,
		FirstDetectedAt:  inst.DetectedAt,
		LastCheckedAt:    inst.LastChecked,
		Metadata:         inst.Metadata,
	}
}
