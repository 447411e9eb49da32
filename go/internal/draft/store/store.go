// Package store declares the persistence contract of the draft engine.
//
// Every mutation happens inside InTx. Implementations must give these guarantees:
//   - LockDraft serialises transactions on the same draft until commit.
//   - UpdateDraft writes only if current_pick still equals expectedPick, and
//     returns drafterr.ErrStalePick otherwise.
//   - InsertPick rejects a second pick of the same player in a draft with
//     drafterr.ErrAlreadyDrafted.
//   - InsertDraft rejects a second draft for a league with drafterr.ErrDraftExists.
//   - Missing rows come back as the matching drafterr NotFound sentinel; any
//     other failure is wrapped as drafterr.KindUnavailable.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// Reader is the read side, usable inside or outside a transaction.
type Reader interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	GetDraftByLeague(ctx context.Context, leagueID uuid.UUID) (*models.Draft, error)
	ListActiveDrafts(ctx context.Context) ([]models.Draft, error)

	// ListMembers returns members sorted by draft_pick_order, unassigned last.
	ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error)
	GetMemberByUser(ctx context.Context, leagueID, userID uuid.UUID) (*models.LeagueMember, error)

	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	IsPlayerDrafted(ctx context.Context, draftID, playerID uuid.UUID) (bool, error)

	// ListQueue returns entries by rank ascending with Player populated.
	ListQueue(ctx context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error)

	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListDraftablePlayers(ctx context.Context, draftID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error)
}

// Tx is a unit of work. Nothing written through it is visible to others until commit.
type Tx interface {
	Reader

	LockDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	InsertDraft(ctx context.Context, d *models.Draft) error
	UpdateDraft(ctx context.Context, d *models.Draft, expectedPick int) error

	AssignPickOrder(ctx context.Context, leagueID uuid.UUID, order map[uuid.UUID]int) error

	InsertPick(ctx context.Context, p *models.DraftPick) error

	InsertQueueEntry(ctx context.Context, entry *models.QueueEntry) error
	DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) error
	UpdateQueueRanks(ctx context.Context, entries []models.QueueEntry) error
	DeletePlayerFromQueues(ctx context.Context, draftID, playerID uuid.UUID) ([]uuid.UUID, error)

	InsertOutboxEvent(ctx context.Context, ev *outbox.OutboxEvent) error
}

// Store runs transactions and serves reads.
type Store interface {
	Reader
	// InTx commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
