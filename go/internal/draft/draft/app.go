// Package draft is the draft lifecycle state machine. It computes transitions;
// persisting them is the caller's job.
package draft

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/order"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// Machine computes draft state transitions
type Machine struct {
	clock   clockwork.Clock
	shuffle order.Shuffler
}

// NewMachine creates a new draft Machine
func NewMachine(clock clockwork.Clock, shuffle order.Shuffler) *Machine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if shuffle == nil {
		shuffle = order.RandomShuffler
	}
	return &Machine{
		clock:   clock,
		shuffle: shuffle,
	}
}

// Create builds a scheduled draft positioned at the first pick.
func (m *Machine) Create(req CreateDraftRequest) (*models.Draft, error) {
	if err := validateCreateDraftRequest(req); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	return &models.Draft{
		ID:           uuid.New(),
		LeagueID:     req.LeagueID,
		DraftType:    req.DraftType,
		Status:       models.DraftStatusNotStarted,
		Settings:     req.Settings,
		CurrentPick:  1,
		CurrentRound: 1,
		ScheduledAt:  req.ScheduledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Start activates a scheduled draft. members is every member of the league;
// if none has a pick order yet one is assigned by shuffle. On return members
// is sorted by pick order.
func (m *Machine) Start(d models.Draft, members []models.LeagueMember) (*Transition, error) {
	switch d.Status {
	case models.DraftStatusInProgress:
		return nil, drafterr.ErrDraftStarted
	case models.DraftStatusCompleted:
		return nil, drafterr.ErrDraftCompleted
	}
	if d.DraftType == models.DraftTypeAuction {
		return nil, drafterr.ErrAuctionNotSupport
	}
	if len(members) == 0 {
		return nil, drafterr.ErrNoMembers
	}
	if err := validateStatusTransition(d.Status, models.DraftStatusInProgress); err != nil {
		return nil, err
	}

	t := &Transition{From: d.Status, To: models.DraftStatusInProgress, ExpectedPick: d.CurrentPick}
	if order.HasPickOrder(members) {
		if !order.FullyAssigned(members) {
			return nil, drafterr.ErrPartialPickOrder
		}
		order.SortByPickOrder(members)
	} else {
		t.PickOrder = order.AssignPickOrder(members, m.shuffle)
	}

	first, ok := order.PickingMember(1, d.DraftType, members)
	if !ok {
		return nil, drafterr.ErrUnresolvedPicker
	}

	now := m.clock.Now()
	deadline := now.Add(d.TimePerPick())
	d.Status = models.DraftStatusInProgress
	d.CurrentPick = 1
	d.CurrentRound = 1
	d.CurrentMemberID = &first
	d.PickDeadline = &deadline
	d.StartedAt = &now
	d.UpdatedAt = now
	t.Draft = d
	return t, nil
}

// CheckPick verifies actingMemberID may pick now. It does not look at the player.
func (m *Machine) CheckPick(d *models.Draft, actingMemberID uuid.UUID) error {
	if !d.IsActive() {
		return drafterr.ErrDraftNotActive
	}
	if d.CurrentMemberID == nil || *d.CurrentMemberID != actingMemberID {
		return drafterr.ErrNotYourTurn
	}
	return nil
}

// MakePick records playerID for the member on the clock and advances the draft.
// Only members seated at start (those with a pick order) take part in the
// rotation.
func (m *Machine) MakePick(d models.Draft, members []models.LeagueMember, actingMemberID, playerID uuid.UUID) (*models.DraftPick, *Transition, error) {
	if err := m.CheckPick(&d, actingMemberID); err != nil {
		return nil, nil, err
	}
	orderedMembers := order.Seated(members)
	teamCount := len(orderedMembers)
	if teamCount == 0 {
		return nil, nil, drafterr.ErrNoMembers
	}

	now := m.clock.Now()
	pick := &models.DraftPick{
		ID:          uuid.New(),
		DraftID:     d.ID,
		LeagueID:    d.LeagueID,
		MemberID:    actingMemberID,
		PlayerID:    playerID,
		Round:       d.CurrentRound,
		Pick:        order.PickInRound(d.CurrentPick, teamCount),
		OverallPick: d.CurrentPick,
		PickedAt:    now,
	}

	t, err := m.advance(d, orderedMembers)
	if err != nil {
		return nil, nil, err
	}
	return pick, t, nil
}

// advance moves the draft to the next pick, or completes it once every pick is made.
func (m *Machine) advance(d models.Draft, orderedMembers []models.LeagueMember) (*Transition, error) {
	teamCount := len(orderedMembers)
	now := m.clock.Now()
	t := &Transition{From: d.Status, ExpectedPick: d.CurrentPick}

	next := d.CurrentPick + 1
	d.CurrentPick = next
	d.CurrentRound = order.Round(next, teamCount)
	d.UpdatedAt = now

	if next > order.TotalPicks(d.Settings.Rounds, teamCount) {
		d.Status = models.DraftStatusCompleted
		d.CurrentMemberID = nil
		d.PickDeadline = nil
		d.CompletedAt = &now
		t.To = d.Status
		t.Draft = d
		return t, nil
	}

	member, ok := order.PickingMember(next, d.DraftType, orderedMembers)
	if !ok {
		return nil, drafterr.ErrUnresolvedPicker
	}
	deadline := now.Add(d.TimePerPick())
	d.CurrentMemberID = &member
	d.PickDeadline = &deadline
	t.To = d.Status
	t.Draft = d
	return t, nil
}

// End forces a draft to completion.
func (m *Machine) End(d models.Draft) (*Transition, error) {
	if d.Status == models.DraftStatusCompleted {
		return nil, drafterr.ErrDraftCompleted
	}
	if err := validateStatusTransition(d.Status, models.DraftStatusCompleted); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	t := &Transition{From: d.Status, To: models.DraftStatusCompleted, ExpectedPick: d.CurrentPick}
	d.Status = models.DraftStatusCompleted
	d.CurrentMemberID = nil
	d.PickDeadline = nil
	d.CompletedAt = &now
	d.UpdatedAt = now
	t.Draft = d
	return t, nil
}

// Validation methods

// validateCreateDraftRequest validates create draft request
func validateCreateDraftRequest(req CreateDraftRequest) error {
	if req.LeagueID == uuid.Nil {
		return drafterr.New(drafterr.KindInvalidArgument, "league_id is required")
	}
	if err := validateDraftType(req.DraftType); err != nil {
		return err
	}
	if req.Settings.Rounds <= 0 {
		return drafterr.New(drafterr.KindInvalidArgument, "rounds must be greater than 0")
	}
	if req.Settings.TimePerPickSec <= 0 {
		return drafterr.New(drafterr.KindInvalidArgument, "time_per_pick_sec must be greater than 0")
	}
	return nil
}

// validateDraftType validates draft type
func validateDraftType(draftType models.DraftType) error {
	switch draftType {
	case models.DraftTypeSnake, models.DraftTypeAuction:
		return nil
	default:
		return drafterr.New(drafterr.KindInvalidArgument, "invalid draft type: %s", draftType)
	}
}

// validateStatusTransition validates if a status transition is allowed
func validateStatusTransition(currentStatus, newStatus models.DraftStatus) error {
	allowedTransitions := map[models.DraftStatus][]models.DraftStatus{
		models.DraftStatusNotStarted: {models.DraftStatusInProgress, models.DraftStatusCompleted},
		models.DraftStatusInProgress: {models.DraftStatusCompleted},
		models.DraftStatusCompleted:  {}, // terminal
	}

	allowedNext, exists := allowedTransitions[currentStatus]
	if !exists {
		return fmt.Errorf("unknown current status: %s", currentStatus)
	}

	for _, allowed := range allowedNext {
		if newStatus == allowed {
			return nil
		}
	}

	return drafterr.New(drafterr.KindConflict, "transition from %s to %s is not allowed", currentStatus, newStatus)
}
