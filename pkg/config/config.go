// Package config defines agentcore's configuration shape and defaults.
// Values are loaded by Loader (backed by viper) from a YAML file with
// environment variable overrides; Default provides a fully populated
// Config that Validate can then sanity-check and auto-correct.
package config

import "time"

// Config is the root configuration object for agentcore.
type Config struct {
	Core    CoreConfig               `mapstructure:"core"`
	Catalog CatalogConfig            `mapstructure:"catalog"`
	Updates UpdateConfig             `mapstructure:"updates"`
	UI      UIConfig                 `mapstructure:"ui"`
	API     APIConfig                `mapstructure:"api"`
	Logging LoggingConfig            `mapstructure:"logging"`
	Agents  map[string]AgentConfig   `mapstructure:"agents"`
}

// CoreConfig controls the workspace/agent/transport core: reverse-RPC
// concurrency, permission timeouts, and plugin cache location.
type CoreConfig struct {
	MaxConcurrentReverseRPC int           `mapstructure:"max_concurrent_reverse_rpc"`
	PermissionTimeout       time.Duration `mapstructure:"permission_timeout"`
	PluginCacheDir          string        `mapstructure:"plugin_cache_dir"`
	AgentStartTimeout       time.Duration `mapstructure:"agent_start_timeout"`
}

// CatalogConfig controls the remote plugin catalog.
type CatalogConfig struct {
	SourceURL       string        `mapstructure:"source_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RefreshOnStart  bool          `mapstructure:"refresh_on_start"`
	GitHubToken     string        `mapstructure:"github_token"`
}

// UpdateConfig controls background update checking for installed plugins.
type UpdateConfig struct {
	AutoCheck     bool          `mapstructure:"auto_check"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	Notify        bool          `mapstructure:"notify"`
	AutoUpdate    bool          `mapstructure:"auto_update"`
	ExcludeAgents []string      `mapstructure:"exclude_agents"`
}

// UIConfig controls the TUI/systray presentation layer.
type UIConfig struct {
	Theme       string `mapstructure:"theme"`
	ShowHidden  bool   `mapstructure:"show_hidden"`
	PageSize    int    `mapstructure:"page_size"`
	UseColors   bool   `mapstructure:"use_colors"`
	CompactMode bool   `mapstructure:"compact_mode"`
}

// APIConfig controls the gRPC and REST API servers.
type APIConfig struct {
	EnableGRPC  bool   `mapstructure:"enable_grpc"`
	GRPCPort    int    `mapstructure:"grpc_port"`
	EnableREST  bool   `mapstructure:"enable_rest"`
	RESTPort    int    `mapstructure:"rest_port"`
	RequireAuth bool   `mapstructure:"require_auth"`
	AuthToken   string `mapstructure:"auth_token"`
}

// LoggingConfig holds the log settings kept in the config file (level,
// format, file, size and age limits).
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	File    string `mapstructure:"file"`
	MaxSize int    `mapstructure:"max_size"`
	MaxAge  int    `mapstructure:"max_age"`
}

// AgentConfig holds per-plugin overrides, keyed by plugin ID in Config.Agents.
type AgentConfig struct {
	PreferredMethod string   `mapstructure:"preferred_method"`
	Hidden          bool     `mapstructure:"hidden"`
	Disabled        bool     `mapstructure:"disabled"`
	PinnedVersion   string   `mapstructure:"pinned_version"`
	CustomPaths     []string `mapstructure:"custom_paths"`
}

// Default returns a Config populated with agentcore's defaults.
func Default() *Config {
	return &Config{
		Core: CoreConfig{
			MaxConcurrentReverseRPC: 8,
			PermissionTimeout:       5 * time.Minute,
			AgentStartTimeout:       30 * time.Second,
		},
		Catalog: CatalogConfig{
			SourceURL:       "https://raw.githubusercontent.com/kevinelliott/agentcore/main/catalog.json",
			RefreshInterval: time.Hour,
			RefreshOnStart:  true,
		},
		Updates: UpdateConfig{
			AutoCheck:     true,
			CheckInterval: 6 * time.Hour,
			Notify:        true,
			AutoUpdate:    false,
		},
		UI: UIConfig{
			Theme:     "default",
			PageSize:  20,
			UseColors: true,
		},
		API: APIConfig{
			EnableGRPC: false,
			GRPCPort:   50051,
			EnableREST: false,
			RESTPort:   8080,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			MaxSize: 10,
			MaxAge:  7,
		},
		Agents: make(map[string]AgentConfig),
	}
}

// Validate checks the config for out-of-range values and corrects them
// to their defaults in place, rather than rejecting an otherwise-usable
// config file outright.
func (c *Config) Validate() error {
	if c.Catalog.RefreshInterval < time.Minute {
		c.Catalog.RefreshInterval = time.Hour
	}
	if c.Updates.CheckInterval < time.Minute {
		c.Updates.CheckInterval = 6 * time.Hour
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = 20
	}
	if c.API.GRPCPort <= 0 || c.API.GRPCPort > 65535 {
		c.API.GRPCPort = 50051
	}
	if c.API.RESTPort <= 0 || c.API.RESTPort > 65535 {
		c.API.RESTPort = 8080
	}
	if c.Core.MaxConcurrentReverseRPC <= 0 {
		c.Core.MaxConcurrentReverseRPC = 8
	}
	if c.Core.PermissionTimeout <= 0 {
		c.Core.PermissionTimeout = 5 * time.Minute
	}
	if c.Agents == nil {
		c.Agents = make(map[string]AgentConfig)
	}
	return nil
}

// GetAgentConfig returns the per-agent override for agentID, or a zero
// value AgentConfig if none is configured.
func (c *Config) GetAgentConfig(agentID string) AgentConfig {
	return c.Agents[agentID]
}

// IsAgentHidden reports whether agentID is configured to be hidden from
// listings.
func (c *Config) IsAgentHidden(agentID string) bool {
	return c.Agents[agentID].Hidden
}

// IsAgentDisabled reports whether agentID is configured to be skipped
// entirely (detection, updates, install).
func (c *Config) IsAgentDisabled(agentID string) bool {
	return c.Agents[agentID].Disabled
}

// GetPinnedVersion returns the version agentID is pinned to, or "" if
// unpinned.
func (c *Config) GetPinnedVersion(agentID string) string {
	return c.Agents[agentID].PinnedVersion
}
