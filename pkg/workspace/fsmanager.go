package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/pathguard"
)

// maxReadBytes bounds fs.read_text_file.
const maxReadBytes = 1 << 20

// FsManager serves the adapter-facing fs.read_text_file/fs.write_text_file
// reverse-RPC calls, scoped to one workspace root through PathGuard.
type FsManager struct {
	workspaceRoot string
}

// NewFsManager constructs an FsManager rooted at workspaceRoot.
func NewFsManager(workspaceRoot string) *FsManager {
	return &FsManager{workspaceRoot: workspaceRoot}
}

// ReadTextFile resolves path against the workspace root and returns its
// contents, rejecting anything but a regular file and anything larger
// than maxReadBytes.
func (fm *FsManager) ReadTextFile(path string) (string, error) {
	resolved, err := pathguard.ResolveRead(fm.workspaceRoot, path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "stat %q: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", coreerrors.New(coreerrors.KindInvalidInput, "not a regular file: %s", path)
	}
	if info.Size() > maxReadBytes {
		return "", coreerrors.New(coreerrors.KindInvalidInput, "file exceeds %d bytes: %s", maxReadBytes, path)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", coreerrors.New(coreerrors.KindIoError, "read %q: %v", path, err)
	}
	return string(data), nil
}

// WriteTextFile resolves path against the workspace root (allowing a
// not-yet-existing target) and writes content atomically: a temp file in
// the same directory, then a rename, so a crash mid-write never leaves a
// partial file visible under the real name.
func (fm *FsManager) WriteTextFile(path, content string) error {
	resolved, err := pathguard.ResolveWrite(fm.workspaceRoot, path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(resolved)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", filepath.Base(resolved), time.Now().UnixNano()))
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return coreerrors.New(coreerrors.KindIoError, "write %q: %v", path, err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		os.Remove(tmp)
		return coreerrors.New(coreerrors.KindIoError, "finalize write %q: %v", path, err)
	}
	return nil
}
