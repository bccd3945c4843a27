package transport

import (
	"context"
	"encoding/json"
	"log/slog"
)

// handleRequest serves one reverse-RPC call under an already-acquired
// semaphore permit. Every branch always replies, with a result or a
// JSON-RPC error, so the adapter never hangs waiting.
func (t *Transport) handleRequest(ctx context.Context, frame *jsonrpcFrame) {
	var params map[string]json.RawMessage
	_ = json.Unmarshal(frame.Params, &params)

	var resp jsonrpcFrame
	switch frame.Method {
	case methodRequestPermission:
		resp = t.handleRequestPermission(ctx, frame.ID, params)
	case methodTerminalRun:
		resp = t.handleTerminalRun(ctx, frame.ID, params)
	case methodFsReadTextFile, methodFsReadTextFileAlt:
		resp = t.handleFsReadTextFile(ctx, frame.ID, params)
	case methodFsWriteTextFile, methodFsWriteTextFileAlt:
		resp = t.handleFsWriteTextFile(ctx, frame.ID, params)
	default:
		resp = errorResponse(frame.ID, -32601, "Method not found")
	}

	if err := t.writeFrame(resp); err != nil {
		slog.Warn("failed to send reverse-RPC response", "method", frame.Method, "error", err)
	}
}

func (t *Transport) handleRequestPermission(ctx context.Context, id json.RawMessage, params map[string]json.RawMessage) jsonrpcFrame {
	sessionID := extractString(params, "sessionId", "session_id")
	if sessionID == "" {
		sessionID = t.sessionID
	}
	toolCallID := extractString(params, "toolCallId", "tool_call_id")
	operationID := extractString(params, "operationId", "operation_id")
	command := extractCommand(params)
	if command == "" {
		command = extractString(params, "summary")
	}
	if command == "" {
		command = "terminal command"
	}

	decision, err := t.host.RequestPermission(ctx, PermissionRequest{
		SessionID:   sessionID,
		ToolCallID:  toolCallID,
		OperationID: operationID,
		Command:     command,
	})
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}
	return resultResponse(id, string(decision))
}

func (t *Transport) handleTerminalRun(ctx context.Context, id json.RawMessage, params map[string]json.RawMessage) jsonrpcFrame {
	command := extractCommand(params)
	if command == "" {
		return errorResponse(id, -32602, "Missing command")
	}
	operationID := extractString(params, "operationId", "operation_id")

	result, err := t.host.TerminalRun(ctx, TerminalRunRequest{Command: command, OperationID: operationID})
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}
	return resultResponse(id, map[string]any{
		"terminalId": result.TerminalID,
		"exitCode":   result.ExitCode,
		"stdout":     result.Stdout,
		"stderr":     result.Stderr,
	})
}

func (t *Transport) handleFsReadTextFile(ctx context.Context, id json.RawMessage, params map[string]json.RawMessage) jsonrpcFrame {
	path := extractPath(params)
	if path == "" {
		return errorResponse(id, -32602, "Missing path")
	}
	sessionID := extractString(params, "sessionId", "session_id")
	if sessionID == "" {
		sessionID = t.sessionID
	}

	content, err := t.host.FsReadTextFile(ctx, FsReadTextFileRequest{
		Path:        path,
		SessionID:   sessionID,
		ToolCallID:  extractString(params, "toolCallId", "tool_call_id"),
		OperationID: extractString(params, "operationId", "operation_id"),
	})
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}
	return resultResponse(id, map[string]any{"content": content})
}

func (t *Transport) handleFsWriteTextFile(ctx context.Context, id json.RawMessage, params map[string]json.RawMessage) jsonrpcFrame {
	path := extractPath(params)
	content := extractContent(params)
	if path == "" {
		return errorResponse(id, -32602, "Missing path")
	}
	if content == "" && params["content"] == nil && params["text"] == nil {
		return errorResponse(id, -32602, "Missing content")
	}
	sessionID := extractString(params, "sessionId", "session_id")
	if sessionID == "" {
		sessionID = t.sessionID
	}

	err := t.host.FsWriteTextFile(ctx, FsWriteTextFileRequest{
		Path:        path,
		Content:     content,
		SessionID:   sessionID,
		ToolCallID:  extractString(params, "toolCallId", "tool_call_id"),
		OperationID: extractString(params, "operationId", "operation_id"),
	})
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}
	return resultResponse(id, map[string]any{})
}

func resultResponse(id json.RawMessage, result any) jsonrpcFrame {
	data, _ := json.Marshal(result)
	return jsonrpcFrame{JSONRPC: "2.0", ID: id, Result: data}
}

func errorResponse(id json.RawMessage, code int, message string) jsonrpcFrame {
	return jsonrpcFrame{JSONRPC: "2.0", ID: id, Error: &jsonrpcError{Code: code, Message: message}}
}

// extractString returns the first present key's string value, also
// checking nested "details" the way several adapters wrap tool-call
// params.
func extractString(params map[string]json.RawMessage, keys ...string) string {
	if s, ok := extractStringFrom(params, keys); ok {
		return s
	}
	if details, ok := params["details"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(details, &nested) == nil {
			if s, ok := extractStringFrom(nested, keys); ok {
				return s
			}
		}
	}
	return ""
}

func extractStringFrom(params map[string]json.RawMessage, keys []string) (string, bool) {
	for _, key := range keys {
		raw, ok := params[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s, true
		}
	}
	return "", false
}

func extractCommand(params map[string]json.RawMessage) string {
	return extractString(params, "command", "commandString", "cmd")
}

func extractPath(params map[string]json.RawMessage) string {
	return extractString(params, "path", "filePath", "file_path")
}

func extractContent(params map[string]json.RawMessage) string {
	return extractString(params, "content", "text")
}
