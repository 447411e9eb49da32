package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftType defines the pick order used by a draft.
type DraftType string

const (
	DraftTypeSnake   DraftType = "SNAKE"
	DraftTypeAuction DraftType = "AUCTION" // accepted on create, rejected on start
)

// DraftStatus defines the lifecycle status of a draft.
type DraftStatus string

const (
	DraftStatusNotStarted DraftStatus = "NOT_STARTED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// DraftSettings holds JSONB configuration for drafts.
type DraftSettings struct {
	Rounds         int `json:"rounds"`
	TimePerPickSec int `json:"time_per_pick_sec"`
}

// Draft represents the live draft for a league. There is at most one per league.
type Draft struct {
	ID              uuid.UUID     `json:"id"`
	LeagueID        uuid.UUID     `json:"league_id"`
	DraftType       DraftType     `json:"draft_type"`
	Status          DraftStatus   `json:"status"`
	Settings        DraftSettings `json:"settings"`
	CurrentPick     int           `json:"current_pick"`  // 1-based, only ever increases
	CurrentRound    int           `json:"current_round"` // ceil(current_pick / team count)
	CurrentMemberID *uuid.UUID    `json:"current_member_id,omitempty"`
	PickDeadline    *time.Time    `json:"pick_deadline,omitempty"`
	ScheduledAt     *time.Time    `json:"scheduled_at,omitempty"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsActive reports whether picks may currently be recorded.
func (d *Draft) IsActive() bool {
	return d.Status == DraftStatusInProgress
}

// TimePerPick returns the per-pick allowance as a duration.
func (d *Draft) TimePerPick() time.Duration {
	return time.Duration(d.Settings.TimePerPickSec) * time.Second
}
