// Package plugincache implements PluginCache: the per-plugin install
// directory under the agentcore cache dir, its install.json metadata,
// and the platform package-manager invocation that populates it.
package plugincache

import (
	"regexp"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
)

// PluginDescriptor is a compiled-in, static record of one installable
// adapter plugin: which npm package provides it and the name of its
// executable shim. Only plugin IDs present in a Registry may be
// installed; PluginCache never installs arbitrary npm packages a
// caller names.
type PluginDescriptor struct {
	ID         string
	NPMPackage string
	BinName    string
}

// Registry is the compiled-in plugin_id → PluginDescriptor table.
type Registry map[string]PluginDescriptor

// DefaultRegistry is the built-in set of adapter plugins agentcore
// knows how to install. A Cache uses the Registry passed to NewCache,
// falling back to this one when that argument is nil.
var DefaultRegistry = Registry{
	"claude-code": {ID: "claude-code", NPMPackage: "@anthropic-ai/claude-code", BinName: "claude"},
	"gemini-cli":  {ID: "gemini-cli", NPMPackage: "@google/gemini-cli", BinName: "gemini"},
	"codex-cli":   {ID: "codex-cli", NPMPackage: "@openai/codex", BinName: "codex"},
}

// pluginIDPattern is the closed plugin ID grammar: lowercase
// alphanumerics and internal hyphens, never leading/trailing hyphen,
// 2-64 characters, no path separators or "..".
var pluginIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}[a-z0-9]$`)

// ValidatePluginID rejects anything but the closed plugin ID grammar.
// Every public Cache entry point calls this before touching the
// filesystem.
func ValidatePluginID(id string) error {
	if !pluginIDPattern.MatchString(id) {
		return coreerrors.New(coreerrors.KindInvalidInput, "invalid plugin id: %q", id).WithField("plugin_id", id)
	}
	return nil
}
