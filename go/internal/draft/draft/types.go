package draft

import (
	"time"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// CreateDraftRequest represents a request to create a new draft
type CreateDraftRequest struct {
	LeagueID    uuid.UUID            `json:"league_id"`
	DraftType   models.DraftType     `json:"draft_type"`
	Settings    models.DraftSettings `json:"settings"`
	ScheduledAt *time.Time           `json:"scheduled_at"`
}

// Transition is a committed-or-nothing change to a draft row. The store applies
// Draft only if the row's current_pick still equals ExpectedPick.
type Transition struct {
	From         models.DraftStatus
	To           models.DraftStatus
	ExpectedPick int
	Draft        models.Draft

	// PickOrder is set when the transition assigned draft_pick_order to members.
	PickOrder map[uuid.UUID]int
}

// Completed reports whether the transition ends the draft.
func (t *Transition) Completed() bool {
	return t.To == models.DraftStatusCompleted
}

// Started reports whether the transition activates the draft.
func (t *Transition) Started() bool {
	return t.From == models.DraftStatusNotStarted && t.To == models.DraftStatusInProgress
}
