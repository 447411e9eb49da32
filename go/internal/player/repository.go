package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/sqlutil"
)

const (
	defaultPoolLimit = 200
	maxPoolLimit     = 1000
)

const (
	getPlayer = `
SELECT id, full_name, position, team_abbr, created_at
FROM players
WHERE id = $1`

	// Players not yet picked in the given draft. Empty filters match everything.
	listDraftablePlayers = `
SELECT p.id, p.full_name, p.position, p.team_abbr, p.created_at
FROM players p
WHERE NOT EXISTS (
    SELECT 1 FROM draft_picks dp WHERE dp.draft_id = $1 AND dp.player_id = p.id
)
  AND ($2 = '' OR upper(p.position) = upper($2))
  AND ($3 = '' OR p.full_name ILIKE '%' || $3 || '%')
ORDER BY p.full_name
LIMIT $4`
)

// Repository handles all player pool database operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new player repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

// GetPlayer retrieves a player by ID
func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var p models.Player
	err := r.db.QueryRow(ctx, getPlayer, id).Scan(&p.ID, &p.FullName, &p.Position, &p.TeamAbbr, &p.CreatedAt)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// ListDraftablePlayers returns the pool minus players already picked in draftID.
func (r *Repository) ListDraftablePlayers(ctx context.Context, draftID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error) {
	rows, err := r.db.Query(ctx, listDraftablePlayers,
		draftID,
		strings.TrimSpace(filter.Position),
		escapeLike(strings.TrimSpace(filter.Search)),
		PoolLimit(filter.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list draftable players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.FullName, &p.Position, &p.TeamAbbr, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list draftable players: %w", err)
	}
	return players, nil
}

// PoolLimit clamps a requested page size.
func PoolLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPoolLimit
	case limit > maxPoolLimit:
		return maxPoolLimit
	default:
		return limit
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
