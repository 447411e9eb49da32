package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/orchestrator"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/order"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

const recentPickLimit = 10

// StateProvider defines what the gateway needs from the draft engine.
// *orchestrator.Orchestrator satisfies it.
type StateProvider interface {
	GetDraftSnapshot(ctx context.Context, draftID, userID uuid.UUID) (*orchestrator.Snapshot, error)
	GetLeagueMembers(ctx context.Context, leagueID, userID uuid.UUID) ([]models.LeagueMember, *models.LeagueMember, error)
}

// buildDraftState flattens an engine snapshot into the reconnect payload.
func buildDraftState(snap *orchestrator.Snapshot) DraftState {
	d := snap.Draft
	// once started, only seated members count; before that every member will get a seat
	teamCount := len(order.Seated(snap.Members))
	if teamCount == 0 {
		teamCount = len(snap.Members)
	}

	state := DraftState{
		DraftID:        d.ID.String(),
		LeagueID:       d.LeagueID.String(),
		Status:         string(d.Status),
		DraftType:      string(d.DraftType),
		TotalPicks:     order.TotalPicks(d.Settings.Rounds, teamCount),
		CompletedPicks: len(snap.Picks),
		StartedAt:      d.StartedAt,
		CompletedAt:    d.CompletedAt,
		ServerTime:     snap.ServerTime,
		Members:        snap.Members,
		Picks:          snap.Picks,
		Queue:          snap.Queue,
		ViewerMemberID: snap.ViewerMemberID.String(),
	}

	recent := snap.Picks
	if len(recent) > recentPickLimit {
		recent = recent[len(recent)-recentPickLimit:]
	}
	state.RecentPicks = make([]models.DraftPick, len(recent))
	for i := range recent {
		state.RecentPicks[i] = recent[len(recent)-1-i]
	}

	if d.IsActive() && d.CurrentMemberID != nil && d.PickDeadline != nil && teamCount > 0 {
		pick := &PickState{
			MemberID:       d.CurrentMemberID.String(),
			TeamName:       teamName(snap.Members, *d.CurrentMemberID),
			Round:          d.CurrentRound,
			Pick:           order.PickInRound(d.CurrentPick, teamCount),
			OverallPick:    d.CurrentPick,
			StartedAt:      d.PickDeadline.Add(-d.TimePerPick()),
			TimeoutAt:      *d.PickDeadline,
			TimePerPickSec: d.Settings.TimePerPickSec,
		}
		pick.TimeRemainingSec = pick.CalculateTimeRemaining(snap.ServerTime)
		state.CurrentPick = pick
	}

	return state
}

// buildPresenceState splits the roster into active and inactive members.
func buildPresenceState(leagueID uuid.UUID, members []models.LeagueMember, active []events.PresenceMember) PresenceState {
	joined := make(map[string]events.PresenceMember, len(active))
	for _, p := range active {
		joined[p.MemberID] = p
	}

	state := PresenceState{
		LeagueID: leagueID.String(),
		Active:   []PresenceEntry{},
		Inactive: []PresenceEntry{},
	}
	for _, p := range active {
		entry := PresenceEntry{MemberID: p.MemberID}
		joinedAt := p.JoinedAt
		entry.JoinedAt = &joinedAt
		if id, err := uuid.Parse(p.MemberID); err == nil {
			entry.TeamName = teamName(members, id)
		}
		state.Active = append(state.Active, entry)
	}
	for _, m := range members {
		if _, ok := joined[m.ID.String()]; ok {
			continue
		}
		state.Inactive = append(state.Inactive, PresenceEntry{MemberID: m.ID.String(), TeamName: m.TeamName})
	}
	return state
}

func teamName(members []models.LeagueMember, memberID uuid.UUID) string {
	for _, m := range members {
		if m.ID == memberID {
			return m.TeamName
		}
	}
	return ""
}
