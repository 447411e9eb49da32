package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/leagues"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/player"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/sqlutil"
)

const draftColumns = `id, league_id, draft_type, status, settings, current_pick, current_round,
current_member_id, pick_deadline, scheduled_at, started_at, completed_at, created_at, updated_at`

const (
	getDraft         = `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1`
	lockDraft        = `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1 FOR UPDATE`
	getDraftByLeague = `SELECT ` + draftColumns + ` FROM drafts WHERE league_id = $1`
	listActiveDrafts = `SELECT ` + draftColumns + ` FROM drafts WHERE status = 'IN_PROGRESS' ORDER BY started_at`

	insertDraft = `
INSERT INTO drafts (` + draftColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	// The current_pick predicate is the compare-and-swap.
	updateDraft = `
UPDATE drafts
SET status = $3,
    current_pick = $4,
    current_round = $5,
    current_member_id = $6,
    pick_deadline = $7,
    started_at = $8,
    completed_at = $9,
    updated_at = $10
WHERE id = $1 AND current_pick = $2`
)

func (q *Queries) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	d, err := scanDraft(q.db.QueryRow(ctx, getDraft, id))
	if err != nil {
		return nil, mapReadErr(err, drafterr.ErrDraftNotFound, "failed to get draft")
	}
	return d, nil
}

// LockDraft reads the draft with SELECT ... FOR UPDATE; only valid inside InTx.
func (q *Queries) LockDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	d, err := scanDraft(q.db.QueryRow(ctx, lockDraft, id))
	if err != nil {
		return nil, mapReadErr(err, drafterr.ErrDraftNotFound, "failed to lock draft")
	}
	return d, nil
}

func (q *Queries) GetDraftByLeague(ctx context.Context, leagueID uuid.UUID) (*models.Draft, error) {
	d, err := scanDraft(q.db.QueryRow(ctx, getDraftByLeague, leagueID))
	if err != nil {
		return nil, mapReadErr(err, drafterr.ErrDraftNotFound, "failed to get draft by league")
	}
	return d, nil
}

func (q *Queries) ListActiveDrafts(ctx context.Context) ([]models.Draft, error) {
	rows, err := q.db.Query(ctx, listActiveDrafts)
	if err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list active drafts")
	}
	defer rows.Close()

	var drafts []models.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to scan draft")
		}
		drafts = append(drafts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list active drafts")
	}
	return drafts, nil
}

func (q *Queries) InsertDraft(ctx context.Context, d *models.Draft) error {
	settings, err := json.Marshal(d.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal draft settings: %w", err)
	}
	_, err = q.db.Exec(ctx, insertDraft,
		d.ID, d.LeagueID, string(d.DraftType), string(d.Status), settings,
		d.CurrentPick, d.CurrentRound,
		sqlutil.ToPgUUID(d.CurrentMemberID),
		sqlutil.ToPgTimestamptz(d.PickDeadline),
		sqlutil.ToPgTimestamptz(d.ScheduledAt),
		sqlutil.ToPgTimestamptz(d.StartedAt),
		sqlutil.ToPgTimestamptz(d.CompletedAt),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "failed to insert draft")
	}
	return nil
}

func (q *Queries) UpdateDraft(ctx context.Context, d *models.Draft, expectedPick int) error {
	tag, err := q.db.Exec(ctx, updateDraft,
		d.ID, expectedPick,
		string(d.Status), d.CurrentPick, d.CurrentRound,
		sqlutil.ToPgUUID(d.CurrentMemberID),
		sqlutil.ToPgTimestamptz(d.PickDeadline),
		sqlutil.ToPgTimestamptz(d.StartedAt),
		sqlutil.ToPgTimestamptz(d.CompletedAt),
		d.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "failed to update draft")
	}
	if tag.RowsAffected() == 0 {
		if _, err := q.GetDraft(ctx, d.ID); err != nil {
			return err
		}
		return drafterr.ErrStalePick
	}
	return nil
}

func (q *Queries) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	members, err := q.members.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list members")
	}
	return members, nil
}

func (q *Queries) GetMemberByUser(ctx context.Context, leagueID, userID uuid.UUID) (*models.LeagueMember, error) {
	m, err := q.members.GetMemberByUser(ctx, leagueID, userID)
	if err != nil {
		if errors.Is(err, leagues.ErrMemberNotFound) {
			return nil, drafterr.ErrMemberNotFound
		}
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to get member")
	}
	return m, nil
}

func (q *Queries) AssignPickOrder(ctx context.Context, leagueID uuid.UUID, order map[uuid.UUID]int) error {
	if err := q.members.AssignPickOrder(ctx, leagueID, order); err != nil {
		if errors.Is(err, leagues.ErrMemberNotFound) {
			return drafterr.Wrap(drafterr.KindNotFound, err, drafterr.ErrMemberNotFound.Msg)
		}
		return drafterr.Wrap(drafterr.KindUnavailable, err, "failed to assign pick order")
	}
	return nil
}

func (q *Queries) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	p, err := q.players.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			return nil, drafterr.ErrPlayerNotFound
		}
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to get player")
	}
	return p, nil
}

func (q *Queries) ListDraftablePlayers(ctx context.Context, draftID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error) {
	players, err := q.players.ListDraftablePlayers(ctx, draftID, filter)
	if err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list draftable players")
	}
	return players, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*models.Draft, error) {
	var (
		d           models.Draft
		draftType   string
		status      string
		settings    []byte
		memberID    pgtype.UUID
		deadline    pgtype.Timestamptz
		scheduledAt pgtype.Timestamptz
		startedAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&d.ID, &d.LeagueID, &draftType, &status, &settings,
		&d.CurrentPick, &d.CurrentRound,
		&memberID, &deadline, &scheduledAt, &startedAt, &completedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &d.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal draft settings: %w", err)
		}
	}
	d.DraftType = models.DraftType(draftType)
	d.Status = models.DraftStatus(status)
	d.CurrentMemberID = sqlutil.FromPgUUID(memberID)
	d.PickDeadline = sqlutil.FromPgTimestamptz(deadline)
	d.ScheduledAt = sqlutil.FromPgTimestamptz(scheduledAt)
	d.StartedAt = sqlutil.FromPgTimestamptz(startedAt)
	d.CompletedAt = sqlutil.FromPgTimestamptz(completedAt)
	return &d, nil
}
