// Package repository is the Postgres implementation of store.Store.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/leagues"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/player"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/sqlutil"
)

// Constraint names from db/schema.sql, used to classify unique violations.
const (
	constraintDraftPerLeague  = "drafts_league_id_key"
	constraintPickPlayer      = "draft_picks_draft_player_key"
	constraintPickOverall     = "draft_picks_draft_overall_key"
	constraintQueueMemberPlay = "draft_queues_member_player_key"
	constraintQueueMemberRank = "draft_queues_member_rank_key"
)

// Repository serves reads from the pool and runs writes in transactions.
type Repository struct {
	pool *pgxpool.Pool
	*Queries
}

var _ store.Store = (*Repository)(nil)

// NewRepository creates a new draft repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:    pool,
		Queries: newQueries(pool),
	}
}

// InTx runs fn in a READ COMMITTED transaction. Row locks taken by LockDraft
// are what serialise concurrent writers on one draft.
func (r *Repository) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	err := sqlutil.Run(ctx, r.pool,
		func(tx pgx.Tx) *Queries { return newQueries(tx) },
		func(q *Queries) error { return fn(q) },
	)
	if err == nil {
		return nil
	}
	var de *drafterr.Error
	if errors.As(err, &de) {
		return err
	}
	// Deferred constraints surface at COMMIT.
	return mapWriteErr(err, "failed to commit draft transaction")
}

// Queries binds every query to one DBTX: the pool, or a pgx.Tx inside InTx.
type Queries struct {
	db      sqlutil.DBTX
	members *leagues.Repository
	players *player.Repository
}

var _ store.Tx = (*Queries)(nil)

func newQueries(db sqlutil.DBTX) *Queries {
	return &Queries{
		db:      db,
		members: leagues.NewRepository(db),
		players: player.NewRepository(db),
	}
}

func mapReadErr(err error, notFound *drafterr.Error, msg string) error {
	if sqlutil.IsNoRows(err) {
		return notFound
	}
	return drafterr.Wrap(drafterr.KindUnavailable, err, msg)
}

func mapWriteErr(err error, msg string) error {
	if constraint, ok := sqlutil.UniqueViolation(err); ok {
		switch constraint {
		case constraintDraftPerLeague:
			return drafterr.ErrDraftExists
		case constraintPickPlayer:
			return drafterr.ErrAlreadyDrafted
		case constraintPickOverall:
			return drafterr.ErrStalePick
		case constraintQueueMemberPlay:
			return drafterr.ErrAlreadyQueued
		case constraintQueueMemberRank:
			return drafterr.Wrap(drafterr.KindConflict, err, "queue ranks changed concurrently")
		}
	}
	return drafterr.Wrap(drafterr.KindUnavailable, err, msg)
}
