// Package queue manages each member's ranked want-list for a draft.
//
// Ranks are kept dense (1..n) and unique per member: every mutation renumbers
// the member's queue, and reordering shifts the entries between the old and new
// positions by one.
package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Repository defines what the queue app layer needs from the store. Calls are
// expected to run inside the caller's transaction.
type Repository interface {
	ListQueue(ctx context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error)
	InsertQueueEntry(ctx context.Context, entry *models.QueueEntry) error
	DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) error
	UpdateQueueRanks(ctx context.Context, entries []models.QueueEntry) error
	DeletePlayerFromQueues(ctx context.Context, draftID, playerID uuid.UUID) ([]uuid.UUID, error)
	IsPlayerDrafted(ctx context.Context, draftID, playerID uuid.UUID) (bool, error)
}

// App handles queue business logic
type App struct {
	repo  Repository
	clock clockwork.Clock
}

// NewApp creates a new queue App
func NewApp(repo Repository, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{repo: repo, clock: clock}
}

// Add appends playerID to the end of the member's queue.
func (a *App) Add(ctx context.Context, d *models.Draft, memberID, playerID uuid.UUID) (*models.QueueEntry, error) {
	drafted, err := a.repo.IsPlayerDrafted(ctx, d.ID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check drafted player: %w", err)
	}
	if drafted {
		return nil, drafterr.ErrAlreadyDrafted
	}

	entries, err := a.repo.ListQueue(ctx, d.ID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	for _, e := range entries {
		if e.PlayerID == playerID {
			return nil, drafterr.ErrAlreadyQueued
		}
	}

	entry := &models.QueueEntry{
		ID:        uuid.New(),
		DraftID:   d.ID,
		LeagueID:  d.LeagueID,
		MemberID:  memberID,
		PlayerID:  playerID,
		Rank:      len(entries) + 1,
		CreatedAt: a.clock.Now(),
	}
	if err := a.repo.InsertQueueEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert queue entry: %w", err)
	}

	log.Debug().
		Str("draft_id", d.ID.String()).
		Str("member_id", memberID.String()).
		Str("player_id", playerID.String()).
		Int("rank", entry.Rank).
		Msg("player queued")
	return entry, nil
}

// Remove deletes one of the member's entries and closes the gap it leaves.
func (a *App) Remove(ctx context.Context, draftID, memberID, entryID uuid.UUID) error {
	entries, err := a.repo.ListQueue(ctx, draftID, memberID)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	rest := make([]models.QueueEntry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.ID == entryID {
			found = true
			continue
		}
		rest = append(rest, e)
	}
	if !found {
		return drafterr.ErrQueueEntryMissing
	}

	if err := a.repo.DeleteQueueEntry(ctx, entryID); err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	if changed := Densify(rest); len(changed) > 0 {
		if err := a.repo.UpdateQueueRanks(ctx, changed); err != nil {
			return fmt.Errorf("failed to update queue ranks: %w", err)
		}
	}
	return nil
}

// Reorder moves an entry to newRank. Ranks past the end clamp to the last slot.
func (a *App) Reorder(ctx context.Context, draftID, memberID, entryID uuid.UUID, newRank int) ([]models.QueueEntry, error) {
	entries, err := a.repo.ListQueue(ctx, draftID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	reordered, changed, err := Move(entries, entryID, newRank)
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		if err := a.repo.UpdateQueueRanks(ctx, changed); err != nil {
			return nil, fmt.Errorf("failed to update queue ranks: %w", err)
		}
	}
	return reordered, nil
}

// List returns the member's queue by rank ascending.
func (a *App) List(ctx context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error) {
	entries, err := a.repo.ListQueue(ctx, draftID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return entries, nil
}

// NextAvailable returns the highest ranked entry whose player is still undrafted,
// or nil if there is none.
func (a *App) NextAvailable(ctx context.Context, draftID, memberID uuid.UUID) (*models.QueueEntry, error) {
	entries, err := a.repo.ListQueue(ctx, draftID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	for i := range entries {
		drafted, err := a.repo.IsPlayerDrafted(ctx, draftID, entries[i].PlayerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check drafted player: %w", err)
		}
		if !drafted {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// PurgePlayer removes a drafted player from every queue in the draft and
// renumbers the affected queues. It returns the members whose queues changed.
func (a *App) PurgePlayer(ctx context.Context, draftID, playerID uuid.UUID) ([]uuid.UUID, error) {
	members, err := a.repo.DeletePlayerFromQueues(ctx, draftID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove player from queues: %w", err)
	}
	for _, memberID := range members {
		entries, err := a.repo.ListQueue(ctx, draftID, memberID)
		if err != nil {
			return nil, fmt.Errorf("failed to list queue: %w", err)
		}
		if changed := Densify(entries); len(changed) > 0 {
			if err := a.repo.UpdateQueueRanks(ctx, changed); err != nil {
				return nil, fmt.Errorf("failed to update queue ranks: %w", err)
			}
		}
	}
	return members, nil
}
