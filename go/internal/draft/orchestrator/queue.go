package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/queue"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// Queue edits take the draft lock too, so a concurrent pick's purge can never
// interleave with an add of the same player.

// queueEdit runs fn for the caller's seat in a locked transaction and emits
// QueueUpdated to that member on success. Queues are frozen once the draft
// completes.
func (o *Orchestrator) queueEdit(ctx context.Context, op string, draftID, userID uuid.UUID, fn func(tx store.Tx, d *models.Draft, member *models.LeagueMember) error) error {
	if userID == uuid.Nil {
		return drafterr.ErrUnauthenticated
	}
	unlock := o.lockDraft(draftID)
	defer unlock()

	err := o.store.InTx(ctx, func(tx store.Tx) error {
		d, err := tx.LockDraft(ctx, draftID)
		if err != nil {
			return err
		}
		member, err := resolveMember(ctx, tx, d.LeagueID, userID)
		if err != nil {
			return err
		}
		if d.Status == models.DraftStatusCompleted {
			return drafterr.ErrDraftCompleted
		}
		if err := fn(tx, d, member); err != nil {
			return err
		}
		payload := events.QueueUpdatedPayload{
			MemberIDs: []string{member.ID.String()},
			Reason:    "edit",
		}
		return emit(ctx, tx, draftID, events.EventTypeQueueUpdated, payload, actorMeta(member, member.ID), o.clock.Now())
	})
	if err != nil {
		logRejected(err, draftID, op)
	}
	return err
}

// AddToQueue appends playerID to the caller's queue.
func (o *Orchestrator) AddToQueue(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.QueueEntry, error) {
	var entry *models.QueueEntry
	err := o.queueEdit(ctx, "add_to_queue", draftID, userID, func(tx store.Tx, d *models.Draft, member *models.LeagueMember) error {
		p, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		e, err := queue.NewApp(tx, o.clock).Add(ctx, d, member.ID, playerID)
		if err != nil {
			return err
		}
		e.Player = p
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveFromQueue deletes one of the caller's entries.
func (o *Orchestrator) RemoveFromQueue(ctx context.Context, draftID, userID, entryID uuid.UUID) error {
	return o.queueEdit(ctx, "remove_from_queue", draftID, userID, func(tx store.Tx, d *models.Draft, member *models.LeagueMember) error {
		return queue.NewApp(tx, o.clock).Remove(ctx, draftID, member.ID, entryID)
	})
}

// ReorderQueue moves one of the caller's entries to newRank and returns the whole queue.
func (o *Orchestrator) ReorderQueue(ctx context.Context, draftID, userID, entryID uuid.UUID, newRank int) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := o.queueEdit(ctx, "reorder_queue", draftID, userID, func(tx store.Tx, d *models.Draft, member *models.LeagueMember) error {
		out, err := queue.NewApp(tx, o.clock).Reorder(ctx, draftID, member.ID, entryID, newRank)
		if err != nil {
			return err
		}
		entries = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetUserQueue returns the caller's queue by rank.
func (o *Orchestrator) GetUserQueue(ctx context.Context, draftID, userID uuid.UUID) ([]models.QueueEntry, error) {
	_, member, err := o.readerFor(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}
	return o.store.ListQueue(ctx, draftID, member.ID)
}

// NextAvailableFromQueue returns the caller's best-ranked undrafted queued
// player, or nil. Nothing calls it on deadline expiry.
func (o *Orchestrator) NextAvailableFromQueue(ctx context.Context, draftID, userID uuid.UUID) (*models.QueueEntry, error) {
	_, member, err := o.readerFor(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	var next *models.QueueEntry
	err = o.store.InTx(ctx, func(tx store.Tx) error {
		e, err := queue.NewApp(tx, o.clock).NextAvailable(ctx, draftID, member.ID)
		if err != nil {
			return err
		}
		next = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}
