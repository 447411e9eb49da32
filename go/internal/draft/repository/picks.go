package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

const (
	listPicks = `
SELECT id, draft_id, league_id, member_id, player_id, round, pick, overall_pick, picked_at
FROM draft_picks
WHERE draft_id = $1
ORDER BY overall_pick`

	isPlayerDrafted = `SELECT EXISTS (SELECT 1 FROM draft_picks WHERE draft_id = $1 AND player_id = $2)`

	insertPick = `
INSERT INTO draft_picks (id, draft_id, league_id, member_id, player_id, round, pick, overall_pick, picked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

func (q *Queries) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := q.db.Query(ctx, listPicks, draftID)
	if err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list draft picks")
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.LeagueID, &p.MemberID, &p.PlayerID,
			&p.Round, &p.Pick, &p.OverallPick, &p.PickedAt); err != nil {
			return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to scan draft pick")
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list draft picks")
	}
	return picks, nil
}

func (q *Queries) IsPlayerDrafted(ctx context.Context, draftID, playerID uuid.UUID) (bool, error) {
	var drafted bool
	if err := q.db.QueryRow(ctx, isPlayerDrafted, draftID, playerID).Scan(&drafted); err != nil {
		return false, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to check drafted player")
	}
	return drafted, nil
}

// InsertPick relies on the (draft_id, player_id) and (draft_id, overall_pick)
// unique constraints to reject double drafting.
func (q *Queries) InsertPick(ctx context.Context, p *models.DraftPick) error {
	_, err := q.db.Exec(ctx, insertPick,
		p.ID, p.DraftID, p.LeagueID, p.MemberID, p.PlayerID,
		p.Round, p.Pick, p.OverallPick, p.PickedAt,
	)
	if err != nil {
		return mapWriteErr(err, "failed to insert draft pick")
	}
	return nil
}
