package chat

import (
	"bytes"
	"encoding/json"
)

const (
	// SlotsFallbackText is used when an object reply has no usable text.
	SlotsFallbackText = "Here are the available slots:"
	// GreetingFallbackText is used when a greeting reply has no usable text.
	GreetingFallbackText = "Hi! How can I help you today?"
)

type ReplyKind string

const (
	ReplyText  ReplyKind = "text"
	ReplySlots ReplyKind = "slots"
)

// Reply is the backend's answer after classification. Slots is non-empty
// only when Kind is ReplySlots.
type Reply struct {
	Kind  ReplyKind
	Text  string
	Slots []string
}

// HasSlots reports whether the reply should switch the widget into slot selection.
func (r Reply) HasSlots() bool { return r.Kind == ReplySlots && len(r.Slots) > 0 }

type objectReply struct {
	Text  json.RawMessage `json:"text"`
	Slots json.RawMessage `json:"slots"`
}

// Interpret classifies the raw "response" field of a backend payload.
//
// A JSON string is a text reply. An object yields its "text" (or
// SlotsFallbackText) and its "slots" when that is an array of strings; a
// non-empty slot list makes it a slots reply. Any other shape, including an
// absent field, falls through to SlotsFallbackText with no slots.
func Interpret(raw json.RawMessage) Reply {
	if s, ok := asString(raw); ok {
		return Reply{Kind: ReplyText, Text: s}
	}

	obj, ok := asObject(raw)
	if !ok {
		return Reply{Kind: ReplyText, Text: SlotsFallbackText}
	}

	text, ok := asString(obj.Text)
	if !ok || text == "" {
		text = SlotsFallbackText
	}

	slots := asStrings(obj.Slots)
	if len(slots) == 0 {
		return Reply{Kind: ReplyText, Text: text}
	}
	return Reply{Kind: ReplySlots, Text: text, Slots: slots}
}

// InterpretGreeting classifies the reply to the empty greeting probe.
// Greetings never carry slots.
func InterpretGreeting(raw json.RawMessage) Reply {
	if s, ok := asString(raw); ok {
		return Reply{Kind: ReplyText, Text: s}
	}

	if obj, ok := asObject(raw); ok {
		if text, ok := asString(obj.Text); ok && text != "" {
			return Reply{Kind: ReplyText, Text: text}
		}
	}
	return Reply{Kind: ReplyText, Text: GreetingFallbackText}
}

func asString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func asObject(raw json.RawMessage) (objectReply, bool) {
	raw = bytes.TrimSpace(raw)
	var obj objectReply
	if len(raw) == 0 || raw[0] != '{' {
		return obj, false
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return obj, false
	}
	return obj, true
}

// asStrings returns nil unless raw is an array whose every element is a string.
func asStrings(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := asString(item)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}
