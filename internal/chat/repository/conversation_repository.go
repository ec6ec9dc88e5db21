package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"social_chat_service/internal/chat/domain"
)

// ConversationRepository definition conversation + participant bootstrap store
type ConversationRepository interface {
	FindByID(ctx context.Context, conversationID int64) (*domain.Conversation, error)
	// FindOrCreateDirect locates the non-group conversation whose participant
	// set is exactly {userA, userB}, creating it when absent. Safe under
	// concurrent calls for the same pair.
	FindOrCreateDirect(ctx context.Context, userA, userB int64) (*domain.Conversation, bool, error)
	CreateGroup(ctx context.Context, title string, memberIDs []int64) (*domain.Conversation, error)
	AddParticipants(ctx context.Context, conversationID int64, userIDs []int64) error
	ListForUser(ctx context.Context, userID int64) ([]domain.Conversation, error)
}

type conversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository create a ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID int64) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, title, is_group, created_at FROM conversations WHERE id = $1", conversationID)

	var conv domain.Conversation
	if err := row.Scan(&conv.ID, &conv.Title, &conv.IsGroup, &conv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindOrCreateDirect(ctx context.Context, userA, userB int64) (*domain.Conversation, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	// Transaction-scoped advisory lock on the unordered pair serializes the
	// find-then-create sequence so concurrent first contacts cannot both
	// insert. Released automatically at commit/rollback.
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	pairKey := fmt.Sprintf("direct:%d:%d", lo, hi)
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", pairKey); err != nil {
		return nil, false, err
	}

	row := tx.QueryRow(ctx, `
		SELECT c.id, c.title, c.is_group, c.created_at
		FROM conversations c
		WHERE c.is_group = FALSE
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.conversation_id = c.id AND p.user_id = $1)
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.conversation_id = c.id AND p.user_id = $2)
		  AND (SELECT COUNT(*) FROM participants p WHERE p.conversation_id = c.id) = 2
		LIMIT 1`, lo, hi)

	var conv domain.Conversation
	err = row.Scan(&conv.ID, &conv.Title, &conv.IsGroup, &conv.CreatedAt)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		return &conv, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	row = tx.QueryRow(ctx,
		"INSERT INTO conversations(title, is_group) VALUES ('', FALSE) RETURNING id, title, is_group, created_at")
	if err := row.Scan(&conv.ID, &conv.Title, &conv.IsGroup, &conv.CreatedAt); err != nil {
		return nil, false, err
	}

	if err := addParticipantsTx(ctx, tx, conv.ID, []int64{lo, hi}); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

func (r *conversationRepository) CreateGroup(ctx context.Context, title string, memberIDs []int64) (*domain.Conversation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		"INSERT INTO conversations(title, is_group) VALUES ($1, TRUE) RETURNING id, title, is_group, created_at", title)

	var conv domain.Conversation
	if err := row.Scan(&conv.ID, &conv.Title, &conv.IsGroup, &conv.CreatedAt); err != nil {
		return nil, err
	}

	if err := addParticipantsTx(ctx, tx, conv.ID, memberIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) AddParticipants(ctx context.Context, conversationID int64, userIDs []int64) error {
	for _, userID := range userIDs {
		_, err := r.db.Exec(ctx, `
			INSERT INTO participants(conversation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (conversation_id, user_id) DO NOTHING`, conversationID, userID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.title, c.is_group, c.created_at
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id AND p.user_id = $1
		LEFT JOIN LATERAL (
			SELECT MAX(m.created_at) AS last_message_at
			FROM messages m WHERE m.conversation_id = c.id
		) lm ON TRUE
		ORDER BY lm.last_message_at DESC NULLS LAST, c.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.IsGroup, &conv.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func addParticipantsTx(ctx context.Context, tx pgx.Tx, conversationID int64, userIDs []int64) error {
	for _, userID := range userIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO participants(conversation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (conversation_id, user_id) DO NOTHING`, conversationID, userID)
		if err != nil {
			return err
		}
	}
	return nil
}
