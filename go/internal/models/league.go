package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole is a league member's authority level.
type MemberRole string

const (
	MemberRoleMember       MemberRole = "member"
	MemberRoleCommissioner MemberRole = "commissioner"
)

// LeagueMember is a user's seat in a league, with the fields the draft needs.
type LeagueMember struct {
	ID             uuid.UUID  `json:"id"`
	LeagueID       uuid.UUID  `json:"league_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Role           MemberRole `json:"role"`
	DraftPickOrder *int       `json:"draft_pick_order,omitempty"` // assigned once at draft start
	TeamName       string     `json:"team_name"`
	TeamLogoURL    *string    `json:"team_logo_url,omitempty"`
	JoinedAt       time.Time  `json:"joined_at"`
}

// IsCommissioner reports whether the member may start or end the draft.
func (m *LeagueMember) IsCommissioner() bool {
	return m.Role == MemberRoleCommissioner
}
