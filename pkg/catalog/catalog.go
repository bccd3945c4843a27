package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Catalog is the full set of known plugin definitions, as fetched from a
// remote source or loaded from the embedded/cached copy. "Agents" here
// names catalog entries describing installable adapter plugins (the
// PluginDescriptor family), not live workspace agents.
type Catalog struct {
	Version       string              `json:"version"`
	SchemaVersion int                 `json:"schema_version"`
	LastUpdated   time.Time           `json:"last_updated"`
	Agents        map[string]AgentDef `json:"agents"`
}

// AgentDef describes one installable plugin: its identity, supported
// install methods, detection rules, and changelog source.
type AgentDef struct {
	ID             string                      `json:"id"`
	Name           string                      `json:"name"`
	Description    string                      `json:"description,omitempty"`
	Homepage       string                      `json:"homepage,omitempty"`
	Repository     string                      `json:"repository,omitempty"`
	InstallMethods map[string]InstallMethodDef `json:"install_methods"`
	Detection      DetectionDef                `json:"detection"`
	Changelog      ChangelogDef                `json:"changelog,omitempty"`
}

// InstallMethodDef describes one way to install an AgentDef.
type InstallMethodDef struct {
	Method       string            `json:"method"`
	Package      string            `json:"package,omitempty"`
	Command      string            `json:"command,omitempty"`
	UpdateCmd    string            `json:"update_cmd,omitempty"`
	UninstallCmd string            `json:"uninstall_cmd,omitempty"`
	Platforms    []string          `json:"platforms"`
	GlobalFlag   string            `json:"global_flag,omitempty"`
	PreReqs      []string          `json:"pre_reqs,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DetectionDef describes how to detect an already-installed copy of the
// plugin outside the private cache (pkg/detector).
type DetectionDef struct {
	Executables  []string                `json:"executables"`
	VersionCmd   string                  `json:"version_cmd,omitempty"`
	VersionRegex string                  `json:"version_regex,omitempty"`
	Signatures   map[string]SignatureDef `json:"signatures,omitempty"`
}

// SignatureDef describes an additional filesystem/command signature used
// to confirm a detected installation.
type SignatureDef struct {
	CheckCmd    string   `json:"check_cmd,omitempty"`
	PathPattern string   `json:"path_pattern,omitempty"`
	Paths       []string `json:"paths,omitempty"`
}

// ChangelogDef names where release notes can be fetched from.
type ChangelogDef struct {
	Type       string `json:"type,omitempty"` // "github_releases" | "file"
	URL        string `json:"url,omitempty"`
	FileFormat string `json:"file_format,omitempty"`
}

// IsSupported reports whether any install method targets platformID.
func (a AgentDef) IsSupported(platformID string) bool {
	for _, m := range a.InstallMethods {
		if containsString(m.Platforms, platformID) {
			return true
		}
	}
	return false
}

// GetInstallMethod looks up an install method by name.
func (a AgentDef) GetInstallMethod(name string) (InstallMethodDef, bool) {
	m, ok := a.InstallMethods[name]
	return m, ok
}

// GetSupportedMethods returns every install method supporting platformID.
func (a AgentDef) GetSupportedMethods(platformID string) []InstallMethodDef {
	var out []InstallMethodDef
	for _, m := range a.InstallMethods {
		if containsString(m.Platforms, platformID) {
			out = append(out, m)
		}
	}
	return out
}

// GetExecutable returns the first known executable name, or "".
func (a AgentDef) GetExecutable() string {
	if len(a.Detection.Executables) == 0 {
		return ""
	}
	return a.Detection.Executables[0]
}

// GetAgents returns every agent definition in the catalog.
func (c *Catalog) GetAgents() []AgentDef {
	out := make([]AgentDef, 0, len(c.Agents))
	for _, a := range c.Agents {
		out = append(out, a)
	}
	return out
}

// GetAgent looks up a single agent definition by ID.
func (c *Catalog) GetAgent(id string) (AgentDef, bool) {
	a, ok := c.Agents[id]
	return a, ok
}

// GetAgentsByPlatform returns every agent definition supported on platformID.
func (c *Catalog) GetAgentsByPlatform(platformID string) []AgentDef {
	var out []AgentDef
	for _, a := range c.Agents {
		if a.IsSupported(platformID) {
			out = append(out, a)
		}
	}
	return out
}

// Search matches query against ID, name, and description, case-insensitively.
// An empty query matches everything.
func (c *Catalog) Search(query string) []AgentDef {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.GetAgents()
	}
	var out []AgentDef
	for _, a := range c.Agents {
		if strings.Contains(strings.ToLower(a.ID), query) ||
			strings.Contains(strings.ToLower(a.Name), query) ||
			strings.Contains(strings.ToLower(a.Description), query) {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the catalog is well-formed: a version is set, at least
// one agent is present, and every agent has a matching ID, a name, at
// least one install method, and at least one detection executable.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("catalog: version is required")
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("catalog: at least one agent is required")
	}
	for key, a := range c.Agents {
		if a.ID != key {
			return fmt.Errorf("catalog: agent key %q does not match ID %q", key, a.ID)
		}
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("catalog: agent %q is missing a name", key)
		}
		if len(a.InstallMethods) == 0 {
			return fmt.Errorf("catalog: agent %q has no install methods", key)
		}
		if len(a.Detection.Executables) == 0 {
			return fmt.Errorf("catalog: agent %q has no detection executables", key)
		}
	}
	return nil
}

func containsString(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
