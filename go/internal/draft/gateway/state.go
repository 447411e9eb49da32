package gateway

import (
	"time"

	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// DraftState is the reconnect payload: the draft's position plus everything a
// client needs to rebuild its board.
type DraftState struct {
	DraftID        string                `json:"draft_id"`
	LeagueID       string                `json:"league_id"`
	Status         string                `json:"status"`
	DraftType      string                `json:"draft_type"`
	CurrentPick    *PickState            `json:"current_pick,omitempty"`
	TotalPicks     int                   `json:"total_picks"`
	CompletedPicks int                   `json:"completed_picks"`
	StartedAt      *time.Time            `json:"started_at,omitempty"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	ServerTime     time.Time             `json:"server_time"`
	Members        []models.LeagueMember `json:"members"`
	RecentPicks    []models.DraftPick    `json:"recent_picks"`
	Picks          []models.DraftPick    `json:"picks"`
	Queue          []models.QueueEntry   `json:"queue"`
	ViewerMemberID string                `json:"viewer_member_id"`
}

// PickState represents the pick currently on the clock
type PickState struct {
	MemberID         string    `json:"member_id"`
	TeamName         string    `json:"team_name"`
	Round            int       `json:"round"`
	Pick             int       `json:"pick"`
	OverallPick      int       `json:"overall_pick"`
	StartedAt        time.Time `json:"started_at"`
	TimeoutAt        time.Time `json:"timeout_at"`
	TimePerPickSec   int       `json:"time_per_pick_sec"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
}

// CalculateTimeRemaining returns whole seconds left on the clock as of serverTime.
func (p *PickState) CalculateTimeRemaining(serverTime time.Time) int {
	if p.TimeoutAt.IsZero() {
		return 0
	}

	remaining := int(p.TimeoutAt.Sub(serverTime).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PresenceState lists who is in a league's waiting room
type PresenceState struct {
	LeagueID string          `json:"league_id"`
	Active   []PresenceEntry `json:"active"`
	Inactive []PresenceEntry `json:"inactive"`
}

// PresenceEntry is one member in a PresenceState
type PresenceEntry struct {
	MemberID string     `json:"member_id"`
	TeamName string     `json:"team_name"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}
