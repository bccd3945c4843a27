package plugincache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/pathguard"
	"github.com/kevinelliott/agentcore/pkg/platform"
)

// installManifestFile is the minimal package manifest written into a
// plugin's directory before the package-manager invocation, naming
// exactly one dependency at the requested version.
const installManifestFile = "package.json"

// metadataFile is the name of the atomically-written install record.
const metadataFile = "install.json"

// stderrExcerptLimit bounds how much of a failed installer's stderr is
// retained in the returned error.
const stderrExcerptLimit = 4096

// InstallMetadata is the persisted record written for each installed
// plugin.
type InstallMetadata struct {
	InstalledVersion string `json:"installed_version"`
	BinPath          string `json:"bin_path"` // relative to the plugin's directory
	NPMPackage       string `json:"npm_package"`
	BinName          string `json:"bin_name"`
	InstalledAtMs    int64  `json:"installed_at_ms"`
}

// StatusRecord is GetStatus's return shape. LatestVersion/UpdateAvailable
// are populated only when checkUpdates is true and a VersionChecker is
// configured; otherwise they stay zero.
type StatusRecord struct {
	Installed        bool
	InstalledVersion string
	BinPath          string
	LatestVersion    string
	UpdateAvailable  bool
}

// PluginCommand is a fully resolved, ready-to-exec plugin invocation.
type PluginCommand struct {
	Path string
	Args []string
	Env  []string
}

// VersionChecker resolves the latest known version of a plugin, used
// by GetStatus when checkUpdates is requested. Satisfied by
// pkg/catalog.Manager.GetLatestVersion with its arguments adapted.
type VersionChecker interface {
	LatestVersion(ctx context.Context, pluginID string) (string, error)
}

// Cache implements PluginCache: one directory per installed plugin
// under <cacheDir>/plugins/<id>/, each holding install.json and the
// package manager's installed tree.
type Cache struct {
	cacheDir string
	registry Registry
	platform platform.Platform
	checker  VersionChecker // optional

	installMu sync.Mutex
	installing map[string]bool

	statusGroup singleflight.Group
}

// NewCache constructs a Cache rooted at cacheDir (typically
// config.GetCachePath()), using registry to resolve plugin IDs to npm
// packages.
func NewCache(cacheDir string, registry Registry, plat platform.Platform) *Cache {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Cache{
		cacheDir:   cacheDir,
		registry:   registry,
		platform:   plat,
		installing: make(map[string]bool),
	}
}

// SetVersionChecker wires an optional update source for GetStatus.
func (c *Cache) SetVersionChecker(checker VersionChecker) {
	c.checker = checker
}

func (c *Cache) pluginDir(pluginID string) string {
	return filepath.Join(c.cacheDir, "plugins", pluginID)
}

// GetStatus reports whether pluginID is installed and, if so, its
// recorded version and bin path. A corrupt install.json is treated as
// "not installed" rather than returned as an error: the cache is a
// disposable artifact, never authoritative state that must be repaired.
func (c *Cache) GetStatus(ctx context.Context, pluginID string, checkUpdates bool) (StatusRecord, error) {
	if err := ValidatePluginID(pluginID); err != nil {
		return StatusRecord{}, err
	}

	v, err, _ := c.statusGroup.Do(pluginID, func() (any, error) {
		return c.readMetadata(pluginID)
	})
	if err != nil {
		return StatusRecord{}, err
	}
	meta, ok := v.(*InstallMetadata)
	if !ok || meta == nil {
		return StatusRecord{Installed: false}, nil
	}

	status := StatusRecord{
		Installed:        true,
		InstalledVersion: meta.InstalledVersion,
		BinPath:          meta.BinPath,
	}

	if checkUpdates && c.checker != nil {
		latest, err := c.checker.LatestVersion(ctx, pluginID)
		if err == nil && latest != "" {
			status.LatestVersion = latest
			status.UpdateAvailable = latest != meta.InstalledVersion
		}
	}
	return status, nil
}

// readMetadata reads and parses install.json, returning (nil, nil) if
// the file is absent or unparsable.
func (c *Cache) readMetadata(pluginID string) (*InstallMetadata, error) {
	path := filepath.Join(c.pluginDir(pluginID), metadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	var meta InstallMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil
	}
	return &meta, nil
}

// Install installs pluginID at version (or "latest" if empty). At most
// one install per plugin ID may run at a time; a concurrent second call
// fails PluginInstallInProgress immediately rather than waiting.
func (c *Cache) Install(ctx context.Context, pluginID, version string) (*InstallMetadata, error) {
	if err := ValidatePluginID(pluginID); err != nil {
		return nil, err
	}
	descriptor, ok := c.registry[pluginID]
	if !ok {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "unknown plugin: %s", pluginID).WithField("plugin_id", pluginID)
	}
	if version == "" {
		version = "latest"
	}

	if !c.beginInstall(pluginID) {
		return nil, coreerrors.New(coreerrors.KindPluginInstallInProgress, "install already in progress for %s", pluginID).WithField("plugin_id", pluginID)
	}
	defer c.endInstall(pluginID)

	dir := c.pluginDir(pluginID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, coreerrors.New(coreerrors.KindIoError, "failed to create plugin directory: %v", err)
	}

	if err := writeInstallManifest(dir, descriptor.NPMPackage, version); err != nil {
		return nil, err
	}

	if err := c.runPackageInstaller(ctx, dir); err != nil {
		return nil, err
	}

	installedVersion, err := readInstalledVersion(dir, descriptor.NPMPackage)
	if err != nil {
		return nil, err
	}

	binPath, err := c.locateBinShim(dir, descriptor.BinName)
	if err != nil {
		return nil, err
	}

	meta := &InstallMetadata{
		InstalledVersion: installedVersion,
		BinPath:          binPath,
		NPMPackage:       descriptor.NPMPackage,
		BinName:          descriptor.BinName,
		InstalledAtMs:    time.Now().UnixMilli(),
	}
	if err := writeMetadataAtomic(dir, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *Cache) beginInstall(pluginID string) bool {
	c.installMu.Lock()
	defer c.installMu.Unlock()
	if c.installing[pluginID] {
		return false
	}
	c.installing[pluginID] = true
	return true
}

func (c *Cache) endInstall(pluginID string) {
	c.installMu.Lock()
	delete(c.installing, pluginID)
	c.installMu.Unlock()
}

// writeInstallManifest writes a minimal package.json naming exactly one
// dependency at the requested version.
func writeInstallManifest(dir, npmPackage, version string) error {
	manifest := map[string]any{
		"name":         "agentcore-plugin-shim",
		"private":      true,
		"version":      "0.0.0",
		"dependencies": map[string]string{npmPackage: version},
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return coreerrors.New(coreerrors.KindIoError, "failed to build install manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, installManifestFile), data, 0644); err != nil {
		return coreerrors.New(coreerrors.KindIoError, "failed to write install manifest: %v", err)
	}
	return nil
}

// runPackageInstaller invokes npm install in dir as a child process.
func (c *Cache) runPackageInstaller(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "npm", "install", "--no-audit", "--no-fund")
	cmd.Dir = dir
	cmd.Cancel = func() error { return cmd.Process.Kill() }
	cmd.WaitDelay = 5 * time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		excerpt := stderr.String()
		if len(excerpt) > stderrExcerptLimit {
			excerpt = excerpt[:stderrExcerptLimit]
		}
		return coreerrors.New(coreerrors.KindIoError, "package install failed: %v: %s", err, excerpt)
	}
	return nil
}

// readInstalledVersion reads the installed dependency's own
// package.json to learn the actually-resolved version ("latest" never
// is the real answer).
func readInstalledVersion(dir, npmPackage string) (string, error) {
	manifestPath := filepath.Join(dir, "node_modules", filepath.FromSlash(npmPackage), "package.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "failed to read installed package manifest: %v", err)
	}
	var manifest struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "failed to parse installed package manifest: %v", err)
	}
	return manifest.Version, nil
}

// locateBinShim finds the installed executable shim among the
// platform-specific candidates (.cmd, .exe, plain), then applies
// PathGuard semantics against the plugin's own directory.
func (c *Cache) locateBinShim(dir, binName string) (string, error) {
	candidates := []string{
		filepath.Join("node_modules", ".bin", binName+".cmd"),
		filepath.Join("node_modules", ".bin", binName+".exe"),
		filepath.Join("node_modules", ".bin", binName),
	}
	for _, rel := range candidates {
		full := filepath.Join(dir, rel)
		if info, err := os.Lstat(full); err == nil && info.Mode().IsRegular() {
			if _, err := pathguard.ResolveRead(dir, rel); err != nil {
				continue
			}
			return rel, nil
		}
	}
	return "", coreerrors.New(coreerrors.KindPluginMissingBinPath, "no executable shim found for %s", binName).WithField("bin_name", binName)
}

// ResolveBin reads install.json and returns a ready-to-exec
// PluginCommand, re-validating the stored bin path through PathGuard
// against the plugin's own directory so a tampered or stale
// install.json can never point outside it.
func (c *Cache) ResolveBin(pluginID string) (PluginCommand, error) {
	if err := ValidatePluginID(pluginID); err != nil {
		return PluginCommand{}, err
	}
	dir := c.pluginDir(pluginID)
	meta, err := c.readMetadata(pluginID)
	if err != nil {
		return PluginCommand{}, err
	}
	if meta == nil {
		return PluginCommand{}, coreerrors.New(coreerrors.KindPluginNotInstalled, "plugin not installed: %s", pluginID).WithField("plugin_id", pluginID)
	}
	if meta.BinPath == "" {
		return PluginCommand{}, coreerrors.New(coreerrors.KindPluginMissingBinPath, "no bin path recorded for %s", pluginID).WithField("plugin_id", pluginID)
	}

	resolved, err := pathguard.ResolveRead(dir, meta.BinPath)
	if err != nil {
		return PluginCommand{}, coreerrors.New(coreerrors.KindPluginMissingBinPath, "recorded bin path is invalid: %v", err).WithField("plugin_id", pluginID)
	}
	info, err := os.Lstat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return PluginCommand{}, coreerrors.New(coreerrors.KindPluginMissingBinPath, "bin path is not a regular file: %s", meta.BinPath).WithField("plugin_id", pluginID)
	}

	return PluginCommand{Path: resolved}, nil
}

// writeMetadataAtomic writes install.json via write-temp-then-rename so
// a crash mid-write never leaves a half-written metadata file visible.
func writeMetadataAtomic(dir string, meta *InstallMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return coreerrors.New(coreerrors.KindIoError, "failed to marshal install metadata: %v", err)
	}
	final := filepath.Join(dir, metadataFile)
	tmp := final + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return coreerrors.New(coreerrors.KindIoError, "failed to write install metadata: %v", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return coreerrors.New(coreerrors.KindIoError, "failed to finalize install metadata: %v", err)
	}
	return nil
}
