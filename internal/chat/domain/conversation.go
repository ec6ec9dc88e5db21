package domain

import "time"

// Conversation definition chat conversation (1:1 or group)
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	IsGroup   bool      `json:"is_group"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant definition membership of a member in a conversation
// LastRead is the read watermark, nil until the member reads anything
type Participant struct {
	ConversationID int64      `json:"conversation_id"`
	UserID         int64      `json:"user_id"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastRead       *time.Time `json:"last_read,omitempty"`
}

// ConversationSummary definition conversation list entry with activity info
type ConversationSummary struct {
	Conversation
	Participants []Sender     `json:"participants"`
	LastMessage  *MessageView `json:"last_message,omitempty"`
	UnreadCount  int          `json:"unread_count"`
}

// Member definition member directory row, resolved at the serialization boundary
type Member struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:150;uniqueIndex" json:"username"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	AvatarURL string `gorm:"size:500" json:"avatar_url"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

// TableName gorm table name
func (Member) TableName() string {
	return "members"
}

// FullName display name, falls back to username
func (m Member) FullName() string {
	name := m.FirstName
	if m.LastName != "" {
		if name != "" {
			name += " "
		}
		name += m.LastName
	}
	if name == "" {
		return m.Username
	}
	return name
}
