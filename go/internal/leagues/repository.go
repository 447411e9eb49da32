// Package leagues reads and updates the league_members rows the draft depends on.
package leagues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/sqlutil"
)

// ErrMemberNotFound is returned when no member matches the lookup.
var ErrMemberNotFound = fmt.Errorf("league member not found")

const memberColumns = `id, league_id, user_id, role, draft_pick_order, team_name, team_logo_url, joined_at`

const (
	listMembers = `
SELECT ` + memberColumns + `
FROM league_members
WHERE league_id = $1
ORDER BY draft_pick_order ASC NULLS LAST, joined_at ASC`

	getMemberByUser = `
SELECT ` + memberColumns + `
FROM league_members
WHERE league_id = $1 AND user_id = $2`

	setDraftPickOrder = `
UPDATE league_members
SET draft_pick_order = $3
WHERE id = $1 AND league_id = $2 AND draft_pick_order IS NULL`
)

// Repository implements league member data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new leagues repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

// ListMembers returns a league's members sorted by draft pick order, unassigned last.
func (r *Repository) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	rows, err := r.db.Query(ctx, listMembers, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league members: %w", err)
	}
	defer rows.Close()

	var members []models.LeagueMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list league members: %w", err)
	}
	return members, nil
}

// GetMemberByUser resolves a user's seat in a league.
func (r *Repository) GetMemberByUser(ctx context.Context, leagueID, userID uuid.UUID) (*models.LeagueMember, error) {
	m, err := scanMember(r.db.QueryRow(ctx, getMemberByUser, leagueID, userID))
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get league member: %w", err)
	}
	return m, nil
}

// AssignPickOrder writes draft_pick_order for each member. Members that
// already have an order are left alone, so the assignment happens once.
func (r *Repository) AssignPickOrder(ctx context.Context, leagueID uuid.UUID, order map[uuid.UUID]int) error {
	for memberID, pos := range order {
		tag, err := r.db.Exec(ctx, setDraftPickOrder, memberID, leagueID, pos)
		if err != nil {
			return fmt.Errorf("failed to assign draft pick order: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("failed to assign draft pick order for member %s: %w", memberID, ErrMemberNotFound)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*models.LeagueMember, error) {
	var (
		m         models.LeagueMember
		role      string
		pickOrder pgtype.Int4
		logoURL   pgtype.Text
	)
	if err := row.Scan(&m.ID, &m.LeagueID, &m.UserID, &role, &pickOrder, &m.TeamName, &logoURL, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = models.MemberRole(role)
	m.DraftPickOrder = sqlutil.FromPgInt4(pickOrder)
	m.TeamLogoURL = sqlutil.FromPgText(logoURL)
	return &m, nil
}
