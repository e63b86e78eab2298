package chat

// Identity pairs the identifiers generated once per page load.
type Identity struct {
	SessionID      string `json:"sessionId"`
	ConversationID string `json:"conversationId"`
}
