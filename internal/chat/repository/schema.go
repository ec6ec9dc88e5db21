package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migrate create the chat tables when absent. The members table is managed
// separately by the member directory's AutoMigrate.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id         BIGSERIAL PRIMARY KEY,
			title      TEXT NOT NULL DEFAULT '',
			is_group   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         BIGINT NOT NULL,
			joined_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_read       TIMESTAMPTZ,
			UNIQUE (conversation_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id       BIGINT NOT NULL,
			content         TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			edited          BOOLEAN NOT NULL DEFAULT FALSE,
			deleted         BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
			ON messages (conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_user
			ON participants (user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
