package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ChatRepository durably records chat events, one row per event.
type ChatRepository interface {
	Record(ctx context.Context, connID, body string) error
}

type chatRepository struct {
	db         *sql.DB
	stmtInsert *sql.Stmt
}

func NewChatRepository(db *sql.DB) (ChatRepository, error) {
	// chat_events.member_id stays NULL for now. Once accounts land it can
	// reference members(id), or a stream id for per-stream rooms.
	stmt, err := db.Prepare(`
		INSERT INTO chat_events (connection_id, body)
		VALUES ($1, $2)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &chatRepository{db: db, stmtInsert: stmt}, nil
}

// Record inserts a single event row. Transient failures (pool contention,
// dropped connections) are retried with fibonacci backoff before the error
// is returned to the caller.
func (r *chatRepository) Record(ctx context.Context, connID, body string) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := r.stmtInsert.ExecContext(ctx, connID, body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
