package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/sqlc-dev/pqtype"
)

const (
	fetchUnsentOutbox = `
SELECT id, draft_id, event_type, payload, metadata, created_at
FROM draft_outbox
WHERE sent_at IS NULL
ORDER BY created_at
LIMIT $1`

	fetchOutboxByID = `
SELECT id, draft_id, event_type, payload, metadata, created_at
FROM draft_outbox
WHERE id = $1 AND sent_at IS NULL`

	markOutboxSent = `UPDATE draft_outbox SET sent_at = NOW() WHERE id = $1`

	countPendingOutbox = `SELECT COUNT(*) FROM draft_outbox WHERE sent_at IS NULL`
)

// ErrEventNotFound means the row is gone or another relay already sent it.
var ErrEventNotFound = errors.New("outbox event not found or already sent")

// Repository is the relay's view of draft_outbox.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutboxEvent(row rowScanner) (*OutboxEvent, error) {
	var (
		ev        OutboxEvent
		eventType string
		payload   []byte
		metadata  pqtype.NullRawMessage
	)
	if err := row.Scan(&ev.ID, &ev.DraftID, &eventType, &payload, &metadata, &ev.CreatedAt); err != nil {
		return nil, err
	}
	ev.EventType = events.EventType(eventType)
	ev.Payload = payload
	if metadata.Valid {
		ev.Metadata = metadata.RawMessage
	}
	return &ev, nil
}

func (r *Repository) FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, fetchUnsentOutbox, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		ev, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}
	return out, nil
}

func (r *Repository) FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	ev, err := scanOutboxEvent(r.db.QueryRowContext(ctx, fetchOutboxByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	return ev, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, markOutboxSent, id); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countPendingOutbox).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending outbox events: %w", err)
	}
	return count, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
