package domain

import "errors"

var (
	// ErrNotParticipant member is not a participant of the conversation
	ErrNotParticipant = errors.New("not a participant of this conversation")
	// ErrEmptyMessage content is empty after trimming
	ErrEmptyMessage = errors.New("message content cannot be empty")
	// ErrMessageTooLong content exceeds MaxMessageLength after trimming
	ErrMessageTooLong = errors.New("message content too long")
	// ErrInvalidParticipants conversation creation with an unusable member set
	ErrInvalidParticipants = errors.New("invalid participants")
	// ErrConversationNotFound unknown conversation id
	ErrConversationNotFound = errors.New("conversation not found")
)
