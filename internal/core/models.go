package core

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of the caller-held conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is a normalized chat turn, independent of how it was encoded
// on the wire.
type ChatRequest struct {
	Message  string
	History  []ChatMessage
	FileData string // pretty-printed JSON logs, empty when none were sent
}

type ChatResponse struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"chat_history"`
	Error   *string       `json:"error"`
}

// Message is a single prompt entry sent to a completion provider.
type Message struct {
	Role    string
	Content string
}
