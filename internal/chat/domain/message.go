package domain

import "time"

// MaxMessageLength bound on trimmed message content
const MaxMessageLength = 4000

// Message definition a persisted chat message, immutable after append
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Edited         bool      `json:"edited"`
	Deleted        bool      `json:"deleted"`
}

// Sender definition pre-resolved sender display info for serialization
type Sender struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar,omitempty"`
}

// MessageView definition the serialized message shape pushed to clients
type MessageView struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Edited         bool      `json:"edited"`
	Deleted        bool      `json:"deleted"`
}
