// Package pathguard confines every file path a workspace touches to that
// workspace's canonical root, defeating traversal, symlink, and
// case-folding escapes by canonicalizing before any prefix check.
package pathguard

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
)

// CanonicalizeRoot validates and canonicalizes a workspace root directory.
// It fails if the input is empty, does not exist, is not a directory, or
// cannot be canonicalized (symlink cycles, permission errors, ...).
func CanonicalizeRoot(root string) (string, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return "", coreerrors.New(coreerrors.KindInvalidInput, "root directory cannot be empty")
	}

	info, err := os.Stat(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return "", coreerrors.New(coreerrors.KindPathNotFound, "%s", trimmed).WithField("path", trimmed)
		}
		return "", coreerrors.New(coreerrors.KindIoError, "stat %q: %v", trimmed, err)
	}
	if !info.IsDir() {
		return "", coreerrors.New(coreerrors.KindPathNotDirectory, "%s", trimmed).WithField("path", trimmed)
	}

	canonical, err := canonicalize(trimmed)
	if err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "failed to canonicalize path %q: %v", trimmed, err)
	}
	return canonical, nil
}

// ResolveRead resolves input (relative to root, or absolute) to an
// absolute path that must lie inside root's canonical form and must
// already exist.
func ResolveRead(root, input string) (string, error) {
	canonicalRoot, resolved, err := resolveWithin(root, input)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(resolved); err != nil {
		if os.IsNotExist(err) {
			if !isWithin(canonicalRoot, resolved) {
				if absRoot, absErr := filepath.Abs(root); absErr != nil || !isWithin(absRoot, resolved) {
					return "", coreerrors.New(coreerrors.KindInvalidInput, "Path escapes workspace root")
				}
			}
			return "", coreerrors.New(coreerrors.KindPathNotFound, "%s", input).WithField("path", input)
		}
		return "", coreerrors.New(coreerrors.KindIoError, "stat %q: %v", resolved, err)
	}
	canonical, err := canonicalize(resolved)
	if err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "failed to canonicalize path %q: %v", resolved, err)
	}
	if !isWithin(canonicalRoot, canonical) {
		return "", coreerrors.New(coreerrors.KindInvalidInput, "Path escapes workspace root")
	}
	return canonical, nil
}

// ResolveWrite resolves input the same way ResolveRead does, but the
// target need not yet exist: the parent directory must exist and be a
// directory, and if the target already exists it must not be a symlink
// or a directory (writes never follow symlinks).
func ResolveWrite(root, input string) (string, error) {
	canonicalRoot, resolved, err := resolveWithin(root, input)
	if err != nil {
		return "", err
	}

	parent := filepath.Dir(resolved)
	parentInfo, err := os.Stat(parent)
	if err != nil {
		if os.IsNotExist(err) {
			if !isWithin(canonicalRoot, parent) {
				if absRoot, absErr := filepath.Abs(root); absErr != nil || !isWithin(absRoot, parent) {
					return "", coreerrors.New(coreerrors.KindInvalidInput, "Path escapes workspace root")
				}
			}
			return "", coreerrors.New(coreerrors.KindPathNotFound, "%s", parent).WithField("path", parent)
		}
		return "", coreerrors.New(coreerrors.KindIoError, "stat %q: %v", parent, err)
	}
	if !parentInfo.IsDir() {
		return "", coreerrors.New(coreerrors.KindPathNotDirectory, "%s", parent).WithField("path", parent)
	}

	targetInfo, err := os.Lstat(resolved)
	switch {
	case err == nil:
		if targetInfo.Mode()&os.ModeSymlink != 0 {
			return "", coreerrors.New(coreerrors.KindInvalidInput, "refusing to write through a symlink: %s", input)
		}
		if targetInfo.IsDir() {
			return "", coreerrors.New(coreerrors.KindInvalidInput, "refusing to overwrite a directory: %s", input)
		}
	case os.IsNotExist(err):
		// Target not yet existing is fine for a write.
	default:
		return "", coreerrors.New(coreerrors.KindIoError, "stat %q: %v", resolved, err)
	}

	canonicalParent, err := canonicalize(parent)
	if err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "failed to canonicalize path %q: %v", parent, err)
	}
	if !isWithin(canonicalRoot, canonicalParent) {
		return "", coreerrors.New(coreerrors.KindInvalidInput, "Path escapes workspace root")
	}
	return filepath.Join(canonicalParent, filepath.Base(resolved)), nil
}

// resolveWithin canonicalizes root and joins input under it (or uses
// input directly if absolute), without yet touching the filesystem for
// the resolved path.
func resolveWithin(root, input string) (canonicalRoot string, resolved string, err error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", "", coreerrors.New(coreerrors.KindInvalidInput, "path cannot be empty")
	}

	canonicalRoot, err = canonicalize(root)
	if err != nil {
		return "", "", coreerrors.New(coreerrors.KindIoError, "failed to canonicalize root %q: %v", root, err)
	}

	if filepath.IsAbs(trimmedInput) {
		resolved = filepath.Clean(trimmedInput)
	} else {
		resolved = filepath.Join(canonicalRoot, trimmedInput)
	}
	return canonicalRoot, resolved, nil
}

// canonicalize resolves symlinks and makes the path absolute.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// isWithin reports whether candidate is root itself or lies strictly
// beneath it, comparing canonical forms via filepath.Rel so that a
// sibling directory sharing a prefix (e.g. /work vs /workbench) is never
// mistaken for being "inside".
func isWithin(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
