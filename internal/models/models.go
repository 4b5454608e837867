package models

// Role identifies who authored a message in a conversation
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of the conversation history
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatListItem struct {
	ID             int64
	UpdatedAtUnix  int64
	LastUserPrompt string
	ModelID        string
}

// Usage accumulates token counts reported by the completion endpoint
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}
