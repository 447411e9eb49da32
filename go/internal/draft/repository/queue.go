package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

const (
	listQueue = `
SELECT q.id, q.draft_id, q.league_id, q.member_id, q.player_id, q.rank, q.created_at,
       p.id, p.full_name, p.position, p.team_abbr, p.created_at
FROM draft_queues q
JOIN players p ON p.id = q.player_id
WHERE q.draft_id = $1 AND q.member_id = $2
ORDER BY q.rank`

	insertQueueEntry = `
INSERT INTO draft_queues (id, draft_id, league_id, member_id, player_id, rank, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	deleteQueueEntry = `DELETE FROM draft_queues WHERE id = $1`

	// draft_queues_member_rank_key is deferred, so ranks may collide until commit.
	updateQueueRank = `UPDATE draft_queues SET rank = $2 WHERE id = $1`

	deletePlayerFromQueues = `
DELETE FROM draft_queues
WHERE draft_id = $1 AND player_id = $2
RETURNING member_id`
)

func (q *Queries) ListQueue(ctx context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error) {
	rows, err := q.db.Query(ctx, listQueue, draftID, memberID)
	if err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list queue")
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		var (
			e models.QueueEntry
			p models.Player
		)
		if err := rows.Scan(
			&e.ID, &e.DraftID, &e.LeagueID, &e.MemberID, &e.PlayerID, &e.Rank, &e.CreatedAt,
			&p.ID, &p.FullName, &p.Position, &p.TeamAbbr, &p.CreatedAt,
		); err != nil {
			return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to scan queue entry")
		}
		e.Player = &p
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to list queue")
	}
	return entries, nil
}

func (q *Queries) InsertQueueEntry(ctx context.Context, e *models.QueueEntry) error {
	_, err := q.db.Exec(ctx, insertQueueEntry,
		e.ID, e.DraftID, e.LeagueID, e.MemberID, e.PlayerID, e.Rank, e.CreatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "failed to insert queue entry")
	}
	return nil
}

func (q *Queries) DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, deleteQueueEntry, entryID)
	if err != nil {
		return drafterr.Wrap(drafterr.KindUnavailable, err, "failed to delete queue entry")
	}
	if tag.RowsAffected() == 0 {
		return drafterr.ErrQueueEntryMissing
	}
	return nil
}

func (q *Queries) UpdateQueueRanks(ctx context.Context, entries []models.QueueEntry) error {
	for _, e := range entries {
		if _, err := q.db.Exec(ctx, updateQueueRank, e.ID, e.Rank); err != nil {
			return mapWriteErr(err, "failed to update queue rank")
		}
	}
	return nil
}

func (q *Queries) DeletePlayerFromQueues(ctx context.Context, draftID, playerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, deletePlayerFromQueues, draftID, playerID)
	if err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to purge player from queues")
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to scan purged member")
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, drafterr.Wrap(drafterr.KindUnavailable, err, "failed to purge player from queues")
	}
	return members, nil
}
