package chat

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Kind distinguishes a normal message from a failed exchange shown to the user.
type Kind string

const (
	KindText   Kind = "text"
	KindFailed Kind = "failed"
)

// Message is one entry of a conversation. Messages are never edited after
// they are appended.
type Message struct {
	Role    Role        `json:"role"`
	Text    string      `json:"text"`
	Kind    Kind        `json:"kind"`
	Failure FailureKind `json:"failure,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, Kind: KindText}
}

func AgentMessage(text string) Message {
	return Message{Role: RoleAgent, Text: text, Kind: KindText}
}

// FailedMessage renders a classified failure as an agent-side message.
func FailedMessage(f Failure) Message {
	return Message{Role: RoleAgent, Text: f.Message, Kind: KindFailed, Failure: f.Kind}
}

func (m Message) Failed() bool { return m.Kind == KindFailed }
