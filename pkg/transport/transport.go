// Package transport implements AgentTransport: it mediates every byte to
// and from an adapter subprocess over newline-delimited JSON-RPC 2.0,
// performing the ACP handshake, streaming notifications back through a
// Host, and serving the adapter's reverse-RPC calls (permission requests,
// terminal runs, file reads/writes) under a bounded-concurrency semaphore.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
	"github.com/kevinelliott/agentcore/pkg/plugincache"
)

const (
	protocolVersion  = 1
	clientName       = "agentcore"
	maxInflight      = 8
	handshakeTimeout = 30 * time.Second
	exitProbeWait    = 50 * time.Millisecond
	maxLineBytes     = 16 * 1024 * 1024
)

const (
	methodInitialize        = "initialize"
	methodSessionNew        = "session/new"
	methodSessionPrompt     = "session/prompt"
	methodSessionCancel     = "session/cancel"
	methodSessionNotify     = "session/notification"
	methodSessionUpdate     = "session/update"
	methodRequestPermission = "request_permission"
	methodTerminalRun       = "terminal/run"
	methodFsReadTextFile    = "fs.read_text_file"
	methodFsReadTextFileAlt = "read_text_file"
	methodFsWriteTextFile   = "fs.write_text_file"
	methodFsWriteTextFileAlt = "write_text_file"
)

// Transport is one live connection to an adapter subprocess.
type Transport struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdinMu   sync.Mutex
	sem       *semaphore.Weighted
	host      Host
	sessionID string

	waitDone chan struct{}
	waitErr  error

	shutdownOnce sync.Once
}

// Connect spawns the adapter named by cmd, performs the ACP handshake, and
// starts the long-running reader task. It returns once the adapter has
// acknowledged session/new and handed back a session ID.
func Connect(ctx context.Context, cmd plugincache.PluginCommand, cwd string, host Host) (*Transport, string, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cwd
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, "", coreerrors.New(coreerrors.KindIoError, "failed to open adapter stdin: %v", err)
	}
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, "", coreerrors.New(coreerrors.KindIoError, "failed to open adapter stdout: %v", err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, "", coreerrors.New(coreerrors.KindIoError, "failed to open adapter stderr: %v", err)
	}

	if err := c.Start(); err != nil {
		return nil, "", coreerrors.New(coreerrors.KindIoError, "failed to spawn adapter process: %v", err)
	}

	waitDone := make(chan struct{})
	t := &Transport{
		cmd:      c,
		stdin:    stdin,
		sem:      semaphore.NewWeighted(maxInflight),
		host:     host,
		waitDone: waitDone,
	}
	go func() {
		t.waitErr = c.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		return nil, "", coreerrors.New(coreerrors.KindProtocolError, "adapter exited immediately")
	case <-time.After(exitProbeWait):
	}

	go drainStderr(stderr)

	reader := bufio.NewReaderSize(stdout, 64*1024)
	sessionID, err := t.handshake(ctx, reader, cwd)
	if err != nil {
		t.killAndReap()
		return nil, "", err
	}
	t.sessionID = sessionID

	go t.readLoop(reader)

	return t, sessionID, nil
}

// drainStderr logs the adapter's stderr line by line until it closes.
func drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 4096), maxLineBytes)
	for scanner.Scan() {
		slog.Debug("adapter stderr", "line", scanner.Text())
	}
}

type jsonrpcFrame struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handshake performs initialize then session/new directly against reader,
// ahead of the general reader loop.
func (t *Transport) handshake(ctx context.Context, reader *bufio.Reader, cwd string) (string, error) {
	initID := coreid.New().String()
	initReq := map[string]any{
		"jsonrpc": "2.0",
		"id":      initID,
		"method":  methodInitialize,
		"params": map[string]any{
			"protocolVersion": protocolVersion,
			"clientCapabilities": map[string]any{
				"sampling": map[string]any{},
				"roots":    map[string]any{"listChanged": false},
				"prompts":  map[string]any{},
				"tools":    map[string]any{},
				"logging":  map[string]any{},
			},
			"clientInfo": map[string]any{
				"name":    clientName,
				"version": "1",
			},
		},
	}
	if err := t.writeFrame(initReq); err != nil {
		return "", err
	}
	initResp, err := readMatchingResponse(reader, initID)
	if err != nil {
		return "", err
	}
	if initResp.Error != nil {
		return "", coreerrors.New(coreerrors.KindProtocolError, "initialize failed: code=%d message=%s", initResp.Error.Code, initResp.Error.Message)
	}

	newID := coreid.New().String()
	newReq := map[string]any{
		"jsonrpc": "2.0",
		"id":      newID,
		"method":  methodSessionNew,
		"params": map[string]any{
			"cwd":        cwd,
			"mcpServers": []any{},
		},
	}
	if err := t.writeFrame(newReq); err != nil {
		return "", err
	}
	newResp, err := readMatchingResponse(reader, newID)
	if err != nil {
		return "", err
	}
	if newResp.Error != nil {
		return "", coreerrors.New(coreerrors.KindProtocolError, "session/new failed: code=%d message=%s", newResp.Error.Code, newResp.Error.Message)
	}

	var result struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(newResp.Result, &result); err != nil || result.SessionID == "" {
		return "", coreerrors.New(coreerrors.KindProtocolError, "session/new response missing sessionId")
	}
	return result.SessionID, nil
}

// readMatchingResponse reads frames until one with a matching id arrives,
// skipping lines that aren't JSON and frames whose id doesn't match, the
// handshake's tolerance for chatty or out-of-order adapters.
func readMatchingResponse(reader *bufio.Reader, wantID string) (*jsonrpcFrame, error) {
	deadline := time.Now().Add(handshakeTimeout)
	for {
		if time.Now().After(deadline) {
			return nil, coreerrors.New(coreerrors.KindProtocolError, "handshake timed out waiting for response to id=%s", wantID)
		}
		line, err := readLine(reader)
		if err != nil {
			if err == io.EOF {
				return nil, coreerrors.New(coreerrors.KindProtocolError, "adapter stdout closed unexpectedly during handshake")
			}
			return nil, coreerrors.New(coreerrors.KindIoError, "failed to read from adapter stdout: %v", err)
		}
		var frame jsonrpcFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			continue
		}
		if len(frame.ID) == 0 {
			continue
		}
		if idString(frame.ID) != wantID {
			continue
		}
		return &frame, nil
	}
}

func idString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func readLine(reader *bufio.Reader) ([]byte, error) {
	line, isPrefix, err := reader.ReadLine()
	if err != nil {
		return nil, err
	}
	if !isPrefix {
		return line, nil
	}
	full := append([]byte(nil), line...)
	for isPrefix {
		var more []byte
		more, isPrefix, err = reader.ReadLine()
		if err != nil {
			return nil, err
		}
		full = append(full, more...)
		if len(full) > maxLineBytes {
			return nil, fmt.Errorf("transport: line exceeds %d bytes", maxLineBytes)
		}
	}
	return full, nil
}

// readLoop is the long-running reader task. It owns
// reader exclusively from here on; the handshake never touches it again.
func (t *Transport) readLoop(reader *bufio.Reader) {
	ctx := context.Background()
	for {
		line, err := readLine(reader)
		if err != nil {
			break
		}
		if len(line) == 0 {
			continue
		}
		var frame jsonrpcFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			slog.Debug("adapter stdout (non-JSON)", "line", string(line))
			continue
		}
		t.dispatch(ctx, &frame)
	}
	t.host.OnConnectionLost()
	<-t.waitDone
}

func (t *Transport) dispatch(ctx context.Context, frame *jsonrpcFrame) {
	switch {
	case frame.Method != "" && len(frame.ID) == 0:
		t.handleNotification(frame)
	case frame.Method != "" && len(frame.ID) != 0:
		if err := t.sem.Acquire(ctx, 1); err != nil {
			return
		}
		go func() {
			defer t.sem.Release(1)
			t.handleRequest(ctx, frame)
		}()
	case len(frame.ID) != 0 && (frame.Result != nil || frame.Error != nil):
		t.handleResponse(frame)
	}
}

func (t *Transport) handleNotification(frame *jsonrpcFrame) {
	if frame.Method != methodSessionNotify && frame.Method != methodSessionUpdate {
		slog.Debug("dropping unknown adapter notification", "method", frame.Method)
		return
	}
	sessionID, update := parseSessionNotificationParams(frame.Params, t.sessionID)
	t.host.OnSessionUpdate(sessionID, update)
}

func (t *Transport) handleResponse(frame *jsonrpcFrame) {
	if frame.Result == nil {
		return
	}
	var result struct {
		StopReason json.RawMessage `json:"stopReason"`
	}
	if err := json.Unmarshal(frame.Result, &result); err == nil && len(result.StopReason) > 0 {
		t.host.OnSessionUpdate(t.sessionID, turnComplete(result.StopReason))
		return
	}
	slog.Debug("adapter response", "id", idString(frame.ID))
}

// SendPrompt sends the user's prompt text as a session/prompt request.
// Streaming updates arrive through the reader task; no response
// correlation happens here.
func (t *Transport) SendPrompt(sessionID, text string) error {
	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      coreid.New().String(),
		"method":  methodSessionPrompt,
		"params": map[string]any{
			"sessionId": sessionID,
			"prompt": []map[string]any{
				{"type": "text", "text": text},
			},
		},
	}
	return t.writeFrame(req)
}

// CancelTurn emits an out-of-band session/cancel notification: no id,
// no acknowledgement awaited.
func (t *Transport) CancelTurn(sessionID string) error {
	notif := map[string]any{
		"jsonrpc": "2.0",
		"method":  methodSessionCancel,
		"params": map[string]any{
			"sessionId": sessionID,
		},
	}
	return t.writeFrame(notif)
}

// Shutdown kills the adapter process and reaps it. Safe to call more than
// once and safe to call concurrently with everything else.
func (t *Transport) Shutdown() error {
	t.shutdownOnce.Do(func() {
		t.killAndReap()
	})
	return nil
}

func (t *Transport) killAndReap() {
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
	select {
	case <-t.waitDone:
	case <-time.After(5 * time.Second):
	}
}

// writeFrame serializes v, appends a newline, and writes it under stdin's
// mutex so concurrent writers (prompt, cancel, reverse-RPC replies)
// serialize framing rather than interleave partial lines.
func (t *Transport) writeFrame(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return coreerrors.New(coreerrors.KindProtocolError, "failed to serialize JSON-RPC frame: %v", err)
	}
	data = append(data, '\n')

	t.stdinMu.Lock()
	defer t.stdinMu.Unlock()
	if _, err := t.stdin.Write(data); err != nil {
		return coreerrors.New(coreerrors.KindIoError, "failed to write to adapter stdin: %v", err)
	}
	return nil
}
