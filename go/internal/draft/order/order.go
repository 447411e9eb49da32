// Package order maps overall pick numbers to the league member on the clock.
package order

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// Round returns the 1-based round of an overall pick.
func Round(pickNumber, teamCount int) int {
	return (pickNumber + teamCount - 1) / teamCount
}

// PickInRound returns the 1-based position of an overall pick within its round.
func PickInRound(pickNumber, teamCount int) int {
	return ((pickNumber - 1) % teamCount) + 1
}

// TotalPicks is the number of picks after which a draft completes.
func TotalPicks(rounds, teamCount int) int {
	return rounds * teamCount
}

// Index returns the position in the ordered member list that owns pickNumber.
// Snake drafts run forward on odd rounds and backward on even rounds.
func Index(pickNumber, teamCount int, draftType models.DraftType) int {
	pickInRound := PickInRound(pickNumber, teamCount)
	if draftType == models.DraftTypeSnake && Round(pickNumber, teamCount)%2 == 0 {
		return teamCount - pickInRound
	}
	return pickInRound - 1
}

// PickingMember returns the member on the clock for pickNumber. orderedMembers
// must already be sorted by draft_pick_order. ok is false when there is nobody
// to pick, which callers treat as a configuration error.
func PickingMember(pickNumber int, draftType models.DraftType, orderedMembers []models.LeagueMember) (uuid.UUID, bool) {
	teamCount := len(orderedMembers)
	if teamCount == 0 || pickNumber < 1 {
		return uuid.Nil, false
	}
	return orderedMembers[Index(pickNumber, teamCount, draftType)].ID, true
}

// SortByPickOrder sorts members ascending by draft_pick_order. Members without
// an order sort last, by join time.
func SortByPickOrder(members []models.LeagueMember) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i].DraftPickOrder, members[j].DraftPickOrder
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
	})
}

// HasPickOrder reports whether any member already has a draft_pick_order.
func HasPickOrder(members []models.LeagueMember) bool {
	for _, m := range members {
		if m.DraftPickOrder != nil {
			return true
		}
	}
	return false
}

// FullyAssigned reports whether every member has a draft_pick_order.
func FullyAssigned(members []models.LeagueMember) bool {
	for _, m := range members {
		if m.DraftPickOrder == nil {
			return false
		}
	}
	return true
}

// Seated returns the members holding a draft_pick_order, sorted by it. Once a
// draft has started these are its seats; anyone who joined the league later
// is not part of the rotation.
func Seated(members []models.LeagueMember) []models.LeagueMember {
	seats := make([]models.LeagueMember, 0, len(members))
	for _, m := range members {
		if m.DraftPickOrder != nil {
			seats = append(seats, m)
		}
	}
	SortByPickOrder(seats)
	return seats
}

// Shuffler produces a permutation of n elements.
type Shuffler func(n int) []int

// RandomShuffler is the default Shuffler.
func RandomShuffler(n int) []int {
	return rand.Perm(n)
}

// AssignPickOrder gives every member a unique 1-based draft_pick_order drawn
// from a single permutation. It returns the assignment keyed by member id and
// leaves members sorted in the new order.
func AssignPickOrder(members []models.LeagueMember, shuffle Shuffler) map[uuid.UUID]int {
	if shuffle == nil {
		shuffle = RandomShuffler
	}
	perm := shuffle(len(members))
	assigned := make(map[uuid.UUID]int, len(members))
	for i := range members {
		pos := perm[i] + 1
		members[i].DraftPickOrder = &pos
		assigned[members[i].ID] = pos
	}
	SortByPickOrder(members)
	return assigned
}
