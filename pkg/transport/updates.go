package transport

import "encoding/json"

// Kind values of the closed SessionUpdate union. The wire tag adapters
// use is the "type" field, camelCase (e.g.
// `{"type":"agentMessageChunk", ...}`); Kind mirrors that literally so a
// Raw-wrapped update and a typed one can be told apart by eye.
const (
	KindUserMessageChunk        = "userMessageChunk"
	KindAgentMessageChunk       = "agentMessageChunk"
	KindAgentThoughtChunk       = "agentThoughtChunk"
	KindToolCall                = "toolCall"
	KindToolCallUpdate          = "toolCallUpdate"
	KindPlan                    = "plan"
	KindAvailableCommandsUpdate = "availableCommandsUpdate"
	KindCurrentModeUpdate       = "currentModeUpdate"
	KindConfigOptionUpdate      = "configOptionUpdate"
	KindTurnComplete            = "turnComplete"
	KindRaw                     = "raw"
)

// SessionUpdate is the closed union of everything an adapter can stream
// back through session/notification or session/update. Exactly one field
// besides Kind is populated, mirroring which variant Kind names. Anything
// the adapter emits that this union doesn't have a typed slot for is
// preserved verbatim under Raw rather than dropped, so the mapping never
// loses information.
type SessionUpdate struct {
	Kind string `json:"kind"`

	Content           json.RawMessage `json:"content,omitempty"`
	ToolCall          json.RawMessage `json:"tool_call,omitempty"`
	ToolCallUpdate    json.RawMessage `json:"tool_call_update,omitempty"`
	Plan              json.RawMessage `json:"plan,omitempty"`
	AvailableCommands json.RawMessage `json:"available_commands,omitempty"`
	CurrentModeID     json.RawMessage `json:"current_mode_id,omitempty"`
	ConfigOptions     json.RawMessage `json:"config_options,omitempty"`
	StopReason        json.RawMessage `json:"stop_reason,omitempty"`
	Raw               json.RawMessage `json:"raw,omitempty"`
}

// turnComplete builds the synthetic update emitted when a session/prompt
// response carries a stopReason.
func turnComplete(stopReason json.RawMessage) SessionUpdate {
	return SessionUpdate{Kind: KindTurnComplete, StopReason: stopReason}
}

func rawUpdate(raw json.RawMessage) SessionUpdate {
	return SessionUpdate{Kind: KindRaw, Raw: raw}
}

// parseSessionNotificationParams extracts (sessionId, SessionUpdate) from a
// session/notification (or session/update) notification's params: the
// wrapped shape is {sessionId, update: {type: "<tag>", ...}}. Some
// adapters instead send the tagged update directly as params, in which
// case fallbackSessionID is used. Anything that doesn't parse as either
// shape falls back to Raw rather than an error, so a malformed update is
// still delivered, just untyped.
func parseSessionNotificationParams(params json.RawMessage, fallbackSessionID string) (string, SessionUpdate) {
	var wrapped struct {
		SessionID string          `json:"sessionId"`
		Update    json.RawMessage `json:"update"`
	}
	if err := json.Unmarshal(params, &wrapped); err == nil && wrapped.SessionID != "" && len(wrapped.Update) > 0 {
		return wrapped.SessionID, parseTaggedUpdate(wrapped.Update)
	}
	if update, ok := tryParseTaggedUpdate(params); ok {
		return fallbackSessionID, update
	}
	return fallbackSessionID, rawUpdate(params)
}

func tryParseTaggedUpdate(raw json.RawMessage) (SessionUpdate, bool) {
	tag := updateTag(raw)
	if tag == "" {
		return SessionUpdate{}, false
	}
	return parseTaggedUpdate(raw), true
}

func updateTag(raw json.RawMessage) string {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return ""
	}
	return tag.Type
}

func parseTaggedUpdate(raw json.RawMessage) SessionUpdate {
	tag := updateTag(raw)
	if tag == "" {
		return rawUpdate(raw)
	}

	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	switch tag {
	case KindUserMessageChunk:
		return SessionUpdate{Kind: KindUserMessageChunk, Content: fields["content"]}
	case KindAgentMessageChunk:
		return SessionUpdate{Kind: KindAgentMessageChunk, Content: fields["content"]}
	case KindAgentThoughtChunk:
		return SessionUpdate{Kind: KindAgentThoughtChunk, Content: fields["content"]}
	case KindToolCall:
		return SessionUpdate{Kind: KindToolCall, ToolCall: raw}
	case KindToolCallUpdate:
		return SessionUpdate{Kind: KindToolCallUpdate, ToolCallUpdate: raw}
	case KindPlan:
		return SessionUpdate{Kind: KindPlan, Plan: raw}
	case KindAvailableCommandsUpdate:
		return SessionUpdate{Kind: KindAvailableCommandsUpdate, AvailableCommands: fields["availableCommands"]}
	case KindCurrentModeUpdate:
		return SessionUpdate{Kind: KindCurrentModeUpdate, CurrentModeID: fields["currentModeId"]}
	case KindConfigOptionUpdate:
		return SessionUpdate{Kind: KindConfigOptionUpdate, ConfigOptions: fields["configOptions"]}
	default:
		return rawUpdate(raw)
	}
}
