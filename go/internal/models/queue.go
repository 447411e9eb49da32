package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry is one row of a member's ranked want-list for a draft.
type QueueEntry struct {
	ID        uuid.UUID `json:"id"`
	DraftID   uuid.UUID `json:"draft_id"`
	LeagueID  uuid.UUID `json:"league_id"`
	MemberID  uuid.UUID `json:"member_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Rank      int       `json:"rank"` // dense, 1..n per member
	CreatedAt time.Time `json:"created_at"`

	Player *Player `json:"player,omitempty"`
}
