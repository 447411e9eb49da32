package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/order"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// emit writes an outbox row in the caller's transaction. The relay publishes it after commit.
func emit(ctx context.Context, tx store.Tx, draftID uuid.UUID, eventType events.EventType, payload any, meta *outbox.Metadata, now time.Time) error {
	ev, err := outbox.NewEvent(draftID, eventType, payload, meta, now)
	if err != nil {
		return err
	}
	if err := tx.InsertOutboxEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}
	return nil
}

func actorMeta(actor *models.LeagueMember, audience ...uuid.UUID) *outbox.Metadata {
	md := &outbox.Metadata{}
	if actor != nil {
		md.ActorMemberID = actor.ID.String()
	}
	for _, id := range audience {
		md.Audience = append(md.Audience, id.String())
	}
	return md
}

func pickStartedPayload(d models.Draft, teamCount int) events.PickStartedPayload {
	p := events.PickStartedPayload{
		Round:          d.CurrentRound,
		Pick:           order.PickInRound(d.CurrentPick, teamCount),
		OverallPick:    d.CurrentPick,
		StartedAt:      d.UpdatedAt,
		TimePerPickSec: d.Settings.TimePerPickSec,
	}
	if d.CurrentMemberID != nil {
		p.MemberID = d.CurrentMemberID.String()
	}
	if d.PickDeadline != nil {
		p.TimeoutAt = *d.PickDeadline
	}
	return p
}

func draftCompletedPayload(d models.Draft, forced bool) events.DraftCompletedPayload {
	p := events.DraftCompletedPayload{
		DraftID:    d.ID.String(),
		TotalPicks: d.CurrentPick - 1,
		Forced:     forced,
	}
	if d.CompletedAt != nil {
		p.CompletedAt = *d.CompletedAt
		if d.StartedAt != nil {
			p.Duration = d.CompletedAt.Sub(*d.StartedAt).String()
		}
	}
	return p
}

func memberIDs(members []models.LeagueMember) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID.String()
	}
	return ids
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
