package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"social_chat_service/internal/chat/domain"
)

// MessageRepository definition append-only per-conversation message log
type MessageRepository interface {
	// Append persists a new message, the database assigns id and timestamp
	Append(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error)
	// FindMessagesBefore returns the most recent limit messages older than
	// before (all-time when before is nil), ordered oldest to newest
	FindMessagesBefore(ctx context.Context, conversationID int64, limit int, before *time.Time) ([]domain.Message, error)
	FindLast(ctx context.Context, conversationID int64) (*domain.Message, error)
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages(conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, sender_id, content, created_at, edited, deleted`,
		conversationID, senderID, content)

	var msg domain.Message
	if err := row.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.Edited, &msg.Deleted); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindMessagesBefore(ctx context.Context, conversationID int64, limit int, before *time.Time) ([]domain.Message, error) {
	// Newest page first, ties broken by id so the total order is stable,
	// then reversed so the caller sees oldest to newest.
	query := `
		SELECT id, conversation_id, sender_id, content, created_at, edited, deleted
		FROM messages
		WHERE conversation_id = $1`
	args := []interface{}{conversationID}

	if before != nil {
		query += " AND created_at < $2 ORDER BY created_at DESC, id DESC LIMIT $3"
		args = append(args, *before, limit)
	} else {
		query += " ORDER BY created_at DESC, id DESC LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.Edited, &msg.Deleted); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) FindLast(ctx context.Context, conversationID int64) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, conversation_id, sender_id, content, created_at, edited, deleted
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, conversationID)

	var msg domain.Message
	err := row.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.Edited, &msg.Deleted)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}
