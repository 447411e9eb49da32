package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick is an immutable record of one player allocated to one member.
type DraftPick struct {
	ID          uuid.UUID `json:"id"`
	DraftID     uuid.UUID `json:"draft_id"`
	LeagueID    uuid.UUID `json:"league_id"`
	MemberID    uuid.UUID `json:"member_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`         // pick number in the round
	OverallPick int       `json:"overall_pick"` // pick number overall
	PickedAt    time.Time `json:"picked_at"`
}
