package workspace

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
)

const (
	outputChannelCapacity = 128
	outputChunkBytes      = 4096
)

// TerminalExit is the single-shot result delivered once a terminal run's
// child process has exited, however it exited.
type TerminalExit struct {
	ExitCode    *int
	UserStopped bool
}

// TerminalRunHandle is what SpawnRun hands back: the two output streams
// and the exit signal for one running command.
type TerminalRunHandle struct {
	TerminalID string
	StdoutCh   <-chan string
	StderrCh   <-chan string
	ExitCh     <-chan TerminalExit
}

// terminalRun is the registry-held state for one live command.
type terminalRun struct {
	cmd      *exec.Cmd
	killCh   chan struct{}
	killOnce sync.Once
}

// TerminalManager executes terminal commands scoped to one workspace
// root, streaming their output and supporting mid-flight cancellation.
type TerminalManager struct {
	workspaceRoot string

	mu   sync.Mutex
	runs map[string]*terminalRun
}

// NewTerminalManager constructs a TerminalManager rooted at workspaceRoot.
func NewTerminalManager(workspaceRoot string) *TerminalManager {
	return &TerminalManager{
		workspaceRoot: workspaceRoot,
		runs:          make(map[string]*terminalRun),
	}
}

// SpawnRun starts command in the workspace root and streams its output.
// The run is tracked under its terminal ID until the child exits.
func (tm *TerminalManager) SpawnRun(ctx context.Context, command string) (*TerminalRunHandle, error) {
	if trimmed := strings.TrimSpace(command); trimmed == "" {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "command cannot be empty")
	}

	terminalID := coreid.New().String()
	cmd := buildShellCommand(ctx, command)
	cmd.Dir = tm.workspaceRoot

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, coreerrors.New(coreerrors.KindIoError, "failed to capture stdout: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, coreerrors.New(coreerrors.KindIoError, "failed to capture stderr: %v", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, coreerrors.New(coreerrors.KindIoError, "failed to spawn terminal command: %v", err)
	}

	run := &terminalRun{cmd: cmd, killCh: make(chan struct{})}
	tm.mu.Lock()
	tm.runs[terminalID] = run
	tm.mu.Unlock()

	stdoutCh := make(chan string, outputChannelCapacity)
	stderrCh := make(chan string, outputChannelCapacity)
	exitCh := make(chan TerminalExit, 1)

	var streamsDone sync.WaitGroup
	streamsDone.Add(2)
	go streamToChannel(stdout, stdoutCh, &streamsDone)
	go streamToChannel(stderr, stderrCh, &streamsDone)

	go func() {
		streamsDone.Wait()
		err := cmd.Wait()

		var exitCode *int
		if err == nil {
			code := cmd.ProcessState.ExitCode()
			exitCode = &code
		} else if exitErr, ok := err.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			exitCode = &code
		}

		userStopped := false
		select {
		case <-run.killCh:
			userStopped = true
		default:
		}

		tm.mu.Lock()
		delete(tm.runs, terminalID)
		tm.mu.Unlock()

		exitCh <- TerminalExit{ExitCode: exitCode, UserStopped: userStopped}
	}()

	return &TerminalRunHandle{
		TerminalID: terminalID,
		StdoutCh:   stdoutCh,
		StderrCh:   stderrCh,
		ExitCh:     exitCh,
	}, nil
}

// Kill sends a kill signal to terminalID's process via its dedicated
// single-shot cancel channel. Unknown or already-exited IDs, and a
// second kill of the same ID, are no-ops.
func (tm *TerminalManager) Kill(terminalID string) error {
	tm.mu.Lock()
	run, ok := tm.runs[terminalID]
	tm.mu.Unlock()
	if !ok {
		return nil
	}

	run.killOnce.Do(func() {
		close(run.killCh)
		if run.cmd.Process != nil {
			_ = run.cmd.Process.Kill()
		}
	})
	return nil
}

func buildShellCommand(ctx context.Context, command string) *exec.Cmd {
	if goruntime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// streamToChannel reads reader in fixed-size chunks and forwards each as
// a string until EOF, then closes ch.
func streamToChannel(reader io.Reader, ch chan<- string, done *sync.WaitGroup) {
	defer done.Done()
	defer close(ch)

	buffered := bufio.NewReaderSize(reader, outputChunkBytes)
	buf := make([]byte, outputChunkBytes)
	for {
		n, err := buffered.Read(buf)
		if n > 0 {
			ch <- string(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

