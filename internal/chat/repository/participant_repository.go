package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ParticipantRepository definition membership queries and the read watermark
type ParticipantRepository interface {
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ListParticipants(ctx context.Context, conversationID int64) ([]int64, error)
	// SetLastRead advances the member's watermark. Idempotent set, concurrent
	// writers converge on the latest value.
	SetLastRead(ctx context.Context, conversationID, userID int64, ts time.Time) error
	CountUnreadSince(ctx context.Context, conversationID, userID int64) (int, error)
}

type participantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository create a ParticipantRepository
func NewParticipantRepository(db *pgxpool.Pool) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	row := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM participants WHERE conversation_id = $1 AND user_id = $2)",
		conversationID, userID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *participantRepository) ListParticipants(ctx context.Context, conversationID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		"SELECT user_id FROM participants WHERE conversation_id = $1 ORDER BY joined_at, user_id", conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

func (r *participantRepository) SetLastRead(ctx context.Context, conversationID, userID int64, ts time.Time) error {
	_, err := r.db.Exec(ctx,
		"UPDATE participants SET last_read = $1 WHERE conversation_id = $2 AND user_id = $3",
		ts, conversationID, userID)
	return err
}

func (r *participantRepository) CountUnreadSince(ctx context.Context, conversationID, userID int64) (int, error) {
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages m
		WHERE m.conversation_id = $1
		  AND m.created_at > COALESCE(
			(SELECT p.last_read FROM participants p
			 WHERE p.conversation_id = $1 AND p.user_id = $2), 'epoch'::timestamptz)`,
		conversationID, userID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
