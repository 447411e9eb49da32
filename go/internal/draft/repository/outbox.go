package repository

import (
	"context"

	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
)

// Keyed events may be emitted twice; the second insert is a no-op.
const insertOutboxEvent = `
INSERT INTO draft_outbox (id, draft_id, event_type, payload, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

func (q *Queries) InsertOutboxEvent(ctx context.Context, ev *outbox.OutboxEvent) error {
	var metadata any
	if len(ev.Metadata) > 0 {
		metadata = []byte(ev.Metadata)
	}
	_, err := q.db.Exec(ctx, insertOutboxEvent,
		ev.ID, ev.DraftID, string(ev.EventType), []byte(ev.Payload), metadata, ev.CreatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "failed to insert outbox event")
	}
	return nil
}
