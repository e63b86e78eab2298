package chat

// Origin identifies who authored a transcript turn.
type Origin int

const (
	User Origin = iota
	Bot
)

func (o Origin) String() string {
	if o == User {
		return "user"
	}
	return "bot"
}

// Turn is a rendered transcript entry. Turns are immutable once appended.
type Turn struct {
	Text    string `json:"text"`
	Origin  Origin `json:"-"`
	IsError bool   `json:"isError,omitempty"`
}

// Request is the body posted to the remote chat endpoint for every send.
type Request struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
	UserAgent      string `json:"userAgent"`
	Page           string `json:"page"`
	SessionID      string `json:"sessionId"`
}

// Reply is the body returned by the remote chat endpoint.
type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
