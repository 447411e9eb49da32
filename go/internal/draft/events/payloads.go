package events

import (
	"time"
)

// Event payload types that are shared between the draft engine, the outbox relay
// and the gateway. Payloads carry identifiers and counters only; clients re-fetch
// the draft snapshot on receipt.

// EventType names a draft notification.
type EventType string

const (
	EventTypeDraftCreated    EventType = "DraftCreated"
	EventTypeDraftStarted    EventType = "DraftStarted"
	EventTypePickMade        EventType = "PickMade"
	EventTypePickStarted     EventType = "PickStarted"
	EventTypePickExpired     EventType = "PickExpired"
	EventTypeQueueUpdated    EventType = "QueueUpdated"
	EventTypeDraftCompleted  EventType = "DraftCompleted"
	EventTypePresenceChanged EventType = "PresenceChanged"
)

// DraftCreatedPayload is the payload for a DraftCreated event
type DraftCreatedPayload struct {
	DraftID     string     `json:"draft_id"`
	LeagueID    string     `json:"league_id"`
	DraftType   string     `json:"draft_type"`
	TotalRounds int        `json:"total_rounds"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	DraftType   string    `json:"draft_type"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
	PickOrder   []string  `json:"pick_order"` // member ids by draft_pick_order
}

// PickStartedPayload announces the member now on the clock
type PickStartedPayload struct {
	MemberID       string    `json:"member_id"`
	Round          int       `json:"round"`
	Pick           int       `json:"pick"`
	OverallPick    int       `json:"overall_pick"`
	StartedAt      time.Time `json:"started_at"`
	TimeoutAt      time.Time `json:"timeout_at"`
	TimePerPickSec int       `json:"time_per_pick_sec"`
}

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	PickID      string    `json:"pick_id"`
	MemberID    string    `json:"member_id"`
	PlayerID    string    `json:"player_id"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`
	OverallPick int       `json:"overall_pick"`
	MadeAt      time.Time `json:"made_at"`
}

// PickExpiredPayload is advisory: the deadline passed and nobody picked.
type PickExpiredPayload struct {
	MemberID    string    `json:"member_id"`
	OverallPick int       `json:"overall_pick"`
	Deadline    time.Time `json:"deadline"`
}

// QueueUpdatedPayload tells members their queues changed.
type QueueUpdatedPayload struct {
	MemberIDs []string `json:"member_ids"`
	Reason    string   `json:"reason"` // "edit" or "player_drafted"
	PlayerID  string   `json:"player_id,omitempty"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
	Forced      bool      `json:"forced"` // ended by the commissioner
}

// PresenceMember is the typed presence payload: who is in the waiting room and since when.
type PresenceMember struct {
	MemberID string    `json:"member_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// PresenceChangedPayload lists the members currently in a league's waiting room
type PresenceChangedPayload struct {
	LeagueID string           `json:"league_id"`
	Active   []PresenceMember `json:"active"`
}
