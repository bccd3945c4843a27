package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kevinelliott/agentcore/pkg/platform"
)

// ConfigFileName is the base name (without extension) viper looks for.
const ConfigFileName = "config"

// EnvPrefix is the prefix for environment variable overrides, e.g.
// AGENTCORE_API_REST_PORT overrides api.rest_port.
const EnvPrefix = "AGENTCORE"

// Loader wraps a viper instance bound to agentcore's config file, env
// vars, and defaults.
type Loader struct {
	v        *viper.Viper
	platform platform.Platform
	filePath string
}

// NewLoader constructs a Loader bound to the current platform's config
// directory.
func NewLoader() *Loader {
	return &Loader{
		v:        viper.New(),
		platform: platform.Current(),
	}
}

// Load reads configuration from path (or the platform default config
// path if empty), applying environment overrides and filling in
// defaults for anything unset, then validates (and auto-corrects) the
// result.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}
	l.filePath = path

	l.v.SetConfigFile(path)
	l.v.SetConfigType("yaml")
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	def := Default()
	l.setDefaults(def)

	if _, err := os.Stat(path); err == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Default()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setDefaults(def *Config) {
	l.v.SetDefault("core.max_concurrent_reverse_rpc", def.Core.MaxConcurrentReverseRPC)
	l.v.SetDefault("core.permission_timeout", def.Core.PermissionTimeout)
	l.v.SetDefault("core.agent_start_timeout", def.Core.AgentStartTimeout)
	l.v.SetDefault("catalog.source_url", def.Catalog.SourceURL)
	l.v.SetDefault("catalog.refresh_interval", def.Catalog.RefreshInterval)
	l.v.SetDefault("catalog.refresh_on_start", def.Catalog.RefreshOnStart)
	l.v.SetDefault("updates.auto_check", def.Updates.AutoCheck)
	l.v.SetDefault("updates.check_interval", def.Updates.CheckInterval)
	l.v.SetDefault("updates.notify", def.Updates.Notify)
	l.v.SetDefault("updates.auto_update", def.Updates.AutoUpdate)
	l.v.SetDefault("ui.theme", def.UI.Theme)
	l.v.SetDefault("ui.page_size", def.UI.PageSize)
	l.v.SetDefault("ui.use_colors", def.UI.UseColors)
	l.v.SetDefault("api.enable_grpc", def.API.EnableGRPC)
	l.v.SetDefault("api.grpc_port", def.API.GRPCPort)
	l.v.SetDefault("api.enable_rest", def.API.EnableREST)
	l.v.SetDefault("api.rest_port", def.API.RESTPort)
	l.v.SetDefault("logging.level", def.Logging.Level)
	l.v.SetDefault("logging.format", def.Logging.Format)
	l.v.SetDefault("logging.max_size", def.Logging.MaxSize)
	l.v.SetDefault("logging.max_age", def.Logging.MaxAge)
}

// Save writes cfg back to the loader's bound file path as YAML.
func (l *Loader) Save(cfg *Config) error {
	if l.filePath == "" {
		l.filePath = GetConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(l.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	for _, kv := range []struct {
		key string
		val any
	}{
		{"core.max_concurrent_reverse_rpc", cfg.Core.MaxConcurrentReverseRPC},
		{"core.permission_timeout", cfg.Core.PermissionTimeout},
		{"core.agent_start_timeout", cfg.Core.AgentStartTimeout},
		{"catalog.source_url", cfg.Catalog.SourceURL},
		{"catalog.refresh_interval", cfg.Catalog.RefreshInterval},
		{"catalog.refresh_on_start", cfg.Catalog.RefreshOnStart},
		{"catalog.github_token", cfg.Catalog.GitHubToken},
		{"updates.auto_check", cfg.Updates.AutoCheck},
		{"updates.check_interval", cfg.Updates.CheckInterval},
		{"updates.notify", cfg.Updates.Notify},
		{"updates.auto_update", cfg.Updates.AutoUpdate},
		{"updates.exclude_agents", cfg.Updates.ExcludeAgents},
		{"ui.theme", cfg.UI.Theme},
		{"ui.show_hidden", cfg.UI.ShowHidden},
		{"ui.page_size", cfg.UI.PageSize},
		{"ui.use_colors", cfg.UI.UseColors},
		{"ui.compact_mode", cfg.UI.CompactMode},
		{"api.enable_grpc", cfg.API.EnableGRPC},
		{"api.grpc_port", cfg.API.GRPCPort},
		{"api.enable_rest", cfg.API.EnableREST},
		{"api.rest_port", cfg.API.RESTPort},
		{"api.require_auth", cfg.API.RequireAuth},
		{"api.auth_token", cfg.API.AuthToken},
		{"logging.level", cfg.Logging.Level},
		{"logging.format", cfg.Logging.Format},
		{"logging.file", cfg.Logging.File},
		{"logging.max_size", cfg.Logging.MaxSize},
		{"logging.max_age", cfg.Logging.MaxAge},
		{"agents", cfg.Agents},
	} {
		l.v.Set(kv.key, kv.val)
	}

	if err := l.v.WriteConfigAs(l.filePath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetFilePath returns the path Load/Save operate on.
func (l *Loader) GetFilePath() string {
	return l.filePath
}

// Set overrides a single config key in memory (not persisted until Save).
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Get returns the raw value of key.
func (l *Loader) Get(key string) any {
	return l.v.Get(key)
}

// GetString returns key as a string.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt returns key as an int.
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool returns key as a bool.
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// GetConfigPath returns the default path to agentcore's config file.
func GetConfigPath() string {
	return filepath.Join(platform.Current().GetConfigDir(), ConfigFileName+".yaml")
}

// GetDataPath returns the default path to agentcore's data directory.
func GetDataPath() string {
	return platform.Current().GetDataDir()
}

// GetCachePath returns the default path to agentcore's cache directory.
func GetCachePath() string {
	return platform.Current().GetCacheDir()
}

// GetLogPath returns the default path to agentcore's log directory.
func GetLogPath() string {
	return platform.Current().GetLogDir()
}
