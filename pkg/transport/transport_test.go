package transport

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kevinelliott/agentcore/pkg/permission"
	"github.com/kevinelliott/agentcore/pkg/plugincache"
)

// fakeHost records every callback a Transport makes, guarded by a mutex
// since they arrive from the reader task's goroutines.
type fakeHost struct {
	mu sync.Mutex

	updates         []SessionUpdate
	updateSessionID []string
	connectionLost  bool
	terminalRuns    []TerminalRunRequest
}

func (f *fakeHost) SetStatus(status Status) {}

func (f *fakeHost) OnSessionUpdate(sessionID string, update SessionUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	f.updateSessionID = append(f.updateSessionID, sessionID)
}

func (f *fakeHost) OnConnectionLost() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectionLost = true
}

func (f *fakeHost) RequestPermission(ctx context.Context, req PermissionRequest) (permission.Decision, error) {
	return permission.AllowOnce, nil
}

func (f *fakeHost) TerminalRun(ctx context.Context, req TerminalRunRequest) (TerminalRunResult, error) {
	f.mu.Lock()
	f.terminalRuns = append(f.terminalRuns, req)
	f.mu.Unlock()
	code := 0
	return TerminalRunResult{TerminalID: "term-1", ExitCode: &code, Stdout: "hi\n"}, nil
}

func (f *fakeHost) FsReadTextFile(ctx context.Context, req FsReadTextFileRequest) (string, error) {
	return "", nil
}

func (f *fakeHost) FsWriteTextFile(ctx context.Context, req FsWriteTextFileRequest) error {
	return nil
}

func (f *fakeHost) hasUpdate(kind string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.updates {
		if u.Kind == kind {
			return true
		}
	}
	return false
}

func (f *fakeHost) terminalRunCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.terminalRuns)
}

func (f *fakeHost) gotConnectionLost() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectionLost
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

// fakeAdapterScript is a POSIX-shell stand-in for an ACP adapter: it
// performs the initialize/session/new handshake, emits one session
// notification, issues one reverse-RPC terminal/run call, then answers
// session/prompt with a stopReason once the test sends one.
const fakeAdapterScript = `
extract_id() {
  printf '%s' "$1" | sed -n 's/.*"id":"\([^"]*\)".*/\1/p'
}

read line1
id1=$(extract_id "$line1")
printf '{"jsonrpc":"2.0","id":"%s","result":{}}\n' "$id1"

read line2
id2=$(extract_id "$line2")
printf '{"jsonrpc":"2.0","id":"%s","result":{"sessionId":"sess-1"}}\n' "$id2"

printf '{"jsonrpc":"2.0","method":"session/notification","params":{"sessionId":"sess-1","update":{"type":"agentMessageChunk","content":{"type":"text","text":"hi"}}}}\n'

printf '{"jsonrpc":"2.0","id":"rpc-1","method":"terminal/run","params":{"command":"echo hi"}}\n'
read rpc_response

read line3
id3=$(extract_id "$line3")
printf '{"jsonrpc":"2.0","id":"%s","result":{"stopReason":"end_turn"}}\n' "$id3"

while read _extra; do :; done
`

func connectFakeAdapter(t *testing.T) (*Transport, string, *fakeHost) {
	t.Helper()
	host := &fakeHost{}
	cmd := plugincache.PluginCommand{Path: "sh", Args: []string{"-c", fakeAdapterScript}}
	tr, sessionID, err := Connect(context.Background(), cmd, t.TempDir(), host)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return tr, sessionID, host
}

func TestConnectHandshake(t *testing.T) {
	tr, sessionID, host := connectFakeAdapter(t)
	defer tr.Shutdown()

	if sessionID != "sess-1" {
		t.Fatalf("sessionID = %q, want sess-1", sessionID)
	}

	waitUntil(t, 2*time.Second, func() bool { return host.hasUpdate(KindAgentMessageChunk) })
}

func TestReverseRPCTerminalRun(t *testing.T) {
	tr, _, host := connectFakeAdapter(t)
	defer tr.Shutdown()

	waitUntil(t, 2*time.Second, func() bool { return host.terminalRunCount() == 1 })
	if got := host.terminalRuns[0].Command; got != "echo hi" {
		t.Fatalf("terminal run command = %q, want %q", got, "echo hi")
	}
}

func TestSendPromptReceivesTurnComplete(t *testing.T) {
	tr, sessionID, host := connectFakeAdapter(t)
	defer tr.Shutdown()

	waitUntil(t, 2*time.Second, func() bool { return host.terminalRunCount() == 1 })

	if err := tr.SendPrompt(sessionID, "hello"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool { return host.hasUpdate(KindTurnComplete) })
}

func TestConnectExitsImmediately(t *testing.T) {
	host := &fakeHost{}
	cmd := plugincache.PluginCommand{Path: "sh", Args: []string{"-c", "exit 1"}}
	_, _, err := Connect(context.Background(), cmd, t.TempDir(), host)
	if err == nil {
		t.Fatal("expected error for adapter that exits immediately")
	}
	if !strings.Contains(err.Error(), "exited immediately") {
		t.Fatalf("error = %v, want mention of immediate exit", err)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	tr, _, _ := connectFakeAdapter(t)
	if err := tr.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := tr.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestParseSessionNotificationParams_AgentMessageChunk(t *testing.T) {
	raw := []byte(`{"sessionId":"S","update":{"type":"agentMessageChunk","content":{"type":"text","text":"Hello"}}}`)
	sessionID, update := parseSessionNotificationParams(raw, "")

	if sessionID != "S" {
		t.Fatalf("sessionID = %q, want %q", sessionID, "S")
	}
	if update.Kind != KindAgentMessageChunk {
		t.Fatalf("Kind = %q, want %q", update.Kind, KindAgentMessageChunk)
	}
	if !strings.Contains(string(update.Content), `"text":"Hello"`) {
		t.Fatalf("Content = %s, want it to contain the Hello chunk", update.Content)
	}
}

func TestConnectionLostOnStdoutClose(t *testing.T) {
	host := &fakeHost{}
	// A handshake that completes, then the adapter exits on its own: the
	// reader task observes stdout close and reports connection loss.
	script := `
extract_id() {
  printf '%s' "$1" | sed -n 's/.*"id":"\([^"]*\)".*/\1/p'
}
read line1
id1=$(extract_id "$line1")
printf '{"jsonrpc":"2.0","id":"%s","result":{}}\n' "$id1"
read line2
id2=$(extract_id "$line2")
printf '{"jsonrpc":"2.0","id":"%s","result":{"sessionId":"sess-2"}}\n' "$id2"
`
	cmd := plugincache.PluginCommand{Path: "sh", Args: []string{"-c", script}}
	tr, sessionID, err := Connect(context.Background(), cmd, t.TempDir(), host)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Shutdown()
	if sessionID != "sess-2" {
		t.Fatalf("sessionID = %q, want sess-2", sessionID)
	}

	waitUntil(t, 2*time.Second, host.gotConnectionLost)
}
