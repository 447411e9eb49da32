package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/draft"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/memstore"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/orchestrator"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identity keeps pick order equal to join order.
func identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

type fixture struct {
	store    *memstore.Store
	clock    *clockwork.FakeClock
	orch     *orchestrator.Orchestrator
	leagueID uuid.UUID
	members  []models.LeagueMember // members[0] is the commissioner
	players  []models.Player
}

func newFixture(t *testing.T, teams, players int) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		clock:    clockwork.NewFakeClockAt(time.Date(2026, 9, 6, 18, 0, 0, 0, time.UTC)),
		leagueID: uuid.New(),
	}
	for i := 0; i < teams; i++ {
		role := models.MemberRoleMember
		if i == 0 {
			role = models.MemberRoleCommissioner
		}
		m := models.LeagueMember{
			ID:       uuid.New(),
			LeagueID: f.leagueID,
			UserID:   uuid.New(),
			Role:     role,
			TeamName: fmt.Sprintf("Team %d", i+1),
			JoinedAt: f.clock.Now().Add(time.Duration(i) * time.Minute),
		}
		f.store.AddMember(m)
		f.members = append(f.members, m)
	}
	for i := 0; i < players; i++ {
		p := models.Player{
			ID:       uuid.New(),
			FullName: fmt.Sprintf("Player %02d", i+1),
			Position: "WR",
			TeamAbbr: "KC",
		}
		f.store.AddPlayer(p)
		f.players = append(f.players, p)
	}
	f.orch = orchestrator.NewOrchestrator(f.store, orchestrator.Config{DefaultTimePerPickSec: 90},
		orchestrator.WithClock(f.clock),
		orchestrator.WithShuffler(identity),
	)
	t.Cleanup(f.orch.Stop)
	return f
}

func (f *fixture) commissioner() models.LeagueMember { return f.members[0] }

func (f *fixture) createAndStart(t *testing.T, rounds int) *models.Draft {
	t.Helper()
	ctx := context.Background()
	d, err := f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
		LeagueID: f.leagueID,
		Settings: models.DraftSettings{Rounds: rounds},
	})
	require.NoError(t, err)
	started, err := f.orch.StartDraft(ctx, d.ID, f.commissioner().UserID)
	require.NoError(t, err)
	return started
}

func (f *fixture) memberByID(t *testing.T, id uuid.UUID) models.LeagueMember {
	t.Helper()
	for _, m := range f.members {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("unknown member %s", id)
	return models.LeagueMember{}
}

func (f *fixture) eventsOf(eventType events.EventType) []outbox.OutboxEvent {
	var out []outbox.OutboxEvent
	for _, ev := range f.store.Outbox() {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func TestCreateDraft(t *testing.T) {
	f := newFixture(t, 4, 0)
	ctx := context.Background()

	d, err := f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
		LeagueID: f.leagueID,
		Settings: models.DraftSettings{Rounds: 15},
	})
	require.NoError(t, err)
	assert.Equal(t, models.DraftTypeSnake, d.DraftType)
	assert.Equal(t, models.DraftStatusNotStarted, d.Status)
	assert.Equal(t, 90, d.Settings.TimePerPickSec)
	assert.Len(t, f.eventsOf(events.EventTypeDraftCreated), 1)

	_, err = f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
		LeagueID: f.leagueID,
		Settings: models.DraftSettings{Rounds: 15},
	})
	assert.ErrorIs(t, err, drafterr.ErrDraftExists)

	_, err = f.orch.CreateDraft(ctx, f.members[1].UserID, draft.CreateDraftRequest{
		LeagueID: f.leagueID,
		Settings: models.DraftSettings{Rounds: 15},
	})
	assert.ErrorIs(t, err, drafterr.ErrNotCommissioner)

	_, err = f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
		LeagueID: uuid.New(),
		Settings: models.DraftSettings{Rounds: 500},
	})
	assert.Equal(t, drafterr.KindInvalidArgument, drafterr.KindOf(err))
}

func TestStartDraft(t *testing.T) {
	f := newFixture(t, 4, 0)
	d := f.createAndStart(t, 2)

	assert.Equal(t, models.DraftStatusInProgress, d.Status)
	require.NotNil(t, d.CurrentMemberID)
	assert.Equal(t, f.members[0].ID, *d.CurrentMemberID)
	require.NotNil(t, d.PickDeadline)
	assert.Equal(t, f.clock.Now().Add(90*time.Second), *d.PickDeadline)

	members, err := f.store.ListMembers(context.Background(), f.leagueID)
	require.NoError(t, err)
	for i, m := range members {
		require.NotNil(t, m.DraftPickOrder)
		assert.Equal(t, i+1, *m.DraftPickOrder)
	}

	started := f.eventsOf(events.EventTypeDraftStarted)
	require.Len(t, started, 1)
	var payload events.DraftStartedPayload
	require.NoError(t, json.Unmarshal(started[0].Payload, &payload))
	assert.Equal(t, 8, payload.TotalPicks)
	assert.Len(t, payload.PickOrder, 4)
	assert.Len(t, f.eventsOf(events.EventTypePickStarted), 1)

	_, err = f.orch.StartDraft(context.Background(), d.ID, f.commissioner().UserID)
	assert.ErrorIs(t, err, drafterr.ErrDraftStarted)
}

func TestStartDraftFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("not commissioner", func(t *testing.T) {
		f := newFixture(t, 3, 0)
		d, err := f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
			LeagueID: f.leagueID,
			Settings: models.DraftSettings{Rounds: 1},
		})
		require.NoError(t, err)
		_, err = f.orch.StartDraft(ctx, d.ID, f.members[2].UserID)
		assert.ErrorIs(t, err, drafterr.ErrNotCommissioner)
	})

	t.Run("unknown draft", func(t *testing.T) {
		f := newFixture(t, 3, 0)
		_, err := f.orch.StartDraft(ctx, uuid.New(), f.commissioner().UserID)
		assert.ErrorIs(t, err, drafterr.ErrDraftNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t, 3, 0)
		_, err := f.orch.StartDraft(ctx, uuid.New(), uuid.Nil)
		assert.ErrorIs(t, err, drafterr.ErrUnauthenticated)
	})

	t.Run("auction", func(t *testing.T) {
		f := newFixture(t, 3, 0)
		d, err := f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
			LeagueID:  f.leagueID,
			DraftType: models.DraftTypeAuction,
			Settings:  models.DraftSettings{Rounds: 1},
		})
		require.NoError(t, err)
		_, err = f.orch.StartDraft(ctx, d.ID, f.commissioner().UserID)
		assert.ErrorIs(t, err, drafterr.ErrAuctionNotSupport)
		assert.Equal(t, drafterr.KindConfiguration, drafterr.KindOf(err))
	})
}

func TestSnakeDraftRunsToCompletion(t *testing.T) {
	f := newFixture(t, 4, 10)
	ctx := context.Background()
	d := f.createAndStart(t, 2)

	want := []int{1, 2, 3, 4, 4, 3, 2, 1}
	for i, seat := range want {
		current, err := f.store.GetDraft(ctx, d.ID)
		require.NoError(t, err)
		require.NotNil(t, current.CurrentMemberID, "pick %d", i+1)
		picker := f.memberByID(t, *current.CurrentMemberID)
		assert.Equal(t, f.members[seat-1].ID, picker.ID, "pick %d", i+1)

		pick, next, err := f.orch.MakePick(ctx, d.ID, picker.UserID, f.players[i].ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, pick.OverallPick)
		assert.Equal(t, i/4+1, pick.Round)
		assert.Equal(t, i%4+1, pick.Pick)
		if i < len(want)-1 {
			assert.Equal(t, models.DraftStatusInProgress, next.Status)
			assert.Equal(t, (i+1)/4+1, next.CurrentRound)
		}
	}

	final, err := f.store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, final.Status)
	assert.Nil(t, final.CurrentMemberID)
	assert.NotNil(t, final.CompletedAt)

	picks, err := f.orch.GetDraftPicks(ctx, d.ID, f.members[2].UserID)
	require.NoError(t, err)
	assert.Len(t, picks, 8)

	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[0].UserID, f.players[9].ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftNotActive)

	assert.Len(t, f.eventsOf(events.EventTypePickMade), 8)
	assert.Len(t, f.eventsOf(events.EventTypePickStarted), 8) // start plus seven advances
	completed := f.eventsOf(events.EventTypeDraftCompleted)
	require.Len(t, completed, 1)
	var payload events.DraftCompletedPayload
	require.NoError(t, json.Unmarshal(completed[0].Payload, &payload))
	assert.Equal(t, 8, payload.TotalPicks)
	assert.False(t, payload.Forced)
}

func TestLateJoinerIsNotSeated(t *testing.T) {
	f := newFixture(t, 4, 10)
	ctx := context.Background()
	d := f.createAndStart(t, 2)

	late := models.LeagueMember{
		ID:       uuid.New(),
		LeagueID: f.leagueID,
		UserID:   uuid.New(),
		Role:     models.MemberRoleMember,
		TeamName: "Team 5",
		JoinedAt: f.clock.Now(),
	}
	f.store.AddMember(late)

	want := []int{1, 2, 3, 4, 4, 3, 2, 1}
	for i, seat := range want {
		current, err := f.store.GetDraft(ctx, d.ID)
		require.NoError(t, err)
		require.NotNil(t, current.CurrentMemberID, "pick %d", i+1)
		require.NotEqual(t, late.ID, *current.CurrentMemberID, "pick %d", i+1)
		picker := f.memberByID(t, *current.CurrentMemberID)
		assert.Equal(t, f.members[seat-1].ID, picker.ID, "pick %d", i+1)

		pick, _, err := f.orch.MakePick(ctx, d.ID, picker.UserID, f.players[i].ID)
		require.NoError(t, err)
		assert.Equal(t, i%4+1, pick.Pick)
	}

	final, err := f.store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, final.Status)

	picks, err := f.orch.GetDraftPicks(ctx, d.ID, late.UserID)
	require.NoError(t, err)
	assert.Len(t, picks, 8)

	_, _, err = f.orch.MakePick(ctx, d.ID, late.UserID, f.players[9].ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftNotActive)

	for _, ev := range f.eventsOf(events.EventTypePickStarted) {
		var payload events.PickStartedPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.NotEqual(t, late.ID.String(), payload.MemberID)
	}
}

func TestMakePickRejectsDuplicatePlayer(t *testing.T) {
	f := newFixture(t, 4, 4)
	ctx := context.Background()
	d := f.createAndStart(t, 2)

	_, _, err := f.orch.MakePick(ctx, d.ID, f.members[0].UserID, f.players[0].ID)
	require.NoError(t, err)

	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[1].UserID, f.players[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrAlreadyDrafted)
	assert.Equal(t, drafterr.KindConflict, drafterr.KindOf(err))

	picks, err := f.store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, picks, 1)

	current, err := f.store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.CurrentPick)
	assert.Equal(t, f.members[1].ID, *current.CurrentMemberID)
}

func TestMakePickOutOfTurn(t *testing.T) {
	f := newFixture(t, 4, 4)
	ctx := context.Background()
	d := f.createAndStart(t, 2)
	before := len(f.store.Outbox())

	_, _, err := f.orch.MakePick(ctx, d.ID, f.members[2].UserID, f.players[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrNotYourTurn)
	assert.Equal(t, drafterr.KindTurnViolation, drafterr.KindOf(err))

	after, err := f.store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, *d, *after)
	assert.Len(t, f.store.Outbox(), before)

	_, _, err = f.orch.MakePick(ctx, d.ID, uuid.New(), f.players[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrNotMember)

	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[0].UserID, uuid.New())
	assert.ErrorIs(t, err, drafterr.ErrPlayerNotFound)
}

func TestMakePickBeforeStart(t *testing.T) {
	f := newFixture(t, 2, 2)
	ctx := context.Background()
	d, err := f.orch.CreateDraft(ctx, f.commissioner().UserID, draft.CreateDraftRequest{
		LeagueID: f.leagueID,
		Settings: models.DraftSettings{Rounds: 1},
	})
	require.NoError(t, err)

	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[0].UserID, f.players[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftNotActive)
}

func TestMakePickStoreFailureCommitsNothing(t *testing.T) {
	f := newFixture(t, 4, 4)
	ctx := context.Background()
	d := f.createAndStart(t, 2)
	before := len(f.store.Outbox())

	f.store.FailOn("UpdateDraft", drafterr.Wrap(drafterr.KindUnavailable, errors.New("connection reset"), "failed to update draft"))
	_, _, err := f.orch.MakePick(ctx, d.ID, f.members[0].UserID, f.players[0].ID)
	require.Error(t, err)
	assert.Equal(t, drafterr.KindUnavailable, drafterr.KindOf(err))

	picks, err := f.store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, picks)
	after, err := f.store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, *d, *after)
	assert.Len(t, f.store.Outbox(), before)

	// the same pick succeeds once the store recovers
	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[0].UserID, f.players[0].ID)
	require.NoError(t, err)
}

func TestConcurrentPicksOnlyOneWins(t *testing.T) {
	f := newFixture(t, 4, 16)
	ctx := context.Background()
	d := f.createAndStart(t, 2)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(player models.Player) {
			defer wg.Done()
			_, _, err := f.orch.MakePick(ctx, d.ID, f.members[0].UserID, player.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, drafterr.ErrNotYourTurn)
		}(f.players[i])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	picks, err := f.store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, picks, 1)

	current, err := f.store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.CurrentPick)
}

func TestConcurrentPicksOfSamePlayer(t *testing.T) {
	f := newFixture(t, 2, 2)
	ctx := context.Background()
	d := f.createAndStart(t, 2)

	errs := make(chan error, 2)
	for _, m := range f.members {
		go func(m models.LeagueMember) {
			_, _, err := f.orch.MakePick(ctx, d.ID, m.UserID, f.players[0].ID)
			errs <- err
		}(m)
	}
	var failures int
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures++
			assert.True(t, drafterr.KindOf(err) == drafterr.KindConflict || drafterr.KindOf(err) == drafterr.KindTurnViolation)
		}
	}
	assert.Equal(t, 1, failures)

	picks, err := f.store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, f.players[0].ID, picks[0].PlayerID)
}

func TestPickRemovesPlayerFromEveryQueue(t *testing.T) {
	f := newFixture(t, 4, 4)
	ctx := context.Background()
	d := f.createAndStart(t, 2)
	a, b := f.members[0], f.members[1]

	for _, p := range f.players[:3] {
		_, err := f.orch.AddToQueue(ctx, d.ID, b.UserID, p.ID)
		require.NoError(t, err)
	}

	_, _, err := f.orch.MakePick(ctx, d.ID, a.UserID, f.players[1].ID)
	require.NoError(t, err)

	queue, err := f.orch.GetUserQueue(ctx, d.ID, b.UserID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, f.players[0].ID, queue[0].PlayerID)
	assert.Equal(t, 1, queue[0].Rank)
	assert.Equal(t, f.players[2].ID, queue[1].PlayerID)
	assert.Equal(t, 2, queue[1].Rank)

	var purged *outbox.OutboxEvent
	for _, ev := range f.eventsOf(events.EventTypeQueueUpdated) {
		var p events.QueueUpdatedPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &p))
		if p.Reason == "player_drafted" {
			ev := ev
			purged = &ev
		}
	}
	require.NotNil(t, purged)
	md, err := purged.DecodeMetadata()
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID.String()}, md.Audience)
	assert.Equal(t, a.ID.String(), md.ActorMemberID)

	_, err = f.orch.AddToQueue(ctx, d.ID, b.UserID, f.players[1].ID)
	assert.ErrorIs(t, err, drafterr.ErrAlreadyDrafted)
}

func TestNextAvailableFromQueueSkipsDrafted(t *testing.T) {
	f := newFixture(t, 4, 4)
	ctx := context.Background()
	d := f.createAndStart(t, 2)
	c := f.members[2]
	p1, p2, p3 := f.players[0], f.players[1], f.players[2]

	for _, p := range []models.Player{p1, p2, p3} {
		_, err := f.orch.AddToQueue(ctx, d.ID, c.UserID, p.ID)
		require.NoError(t, err)
	}

	_, _, err := f.orch.MakePick(ctx, d.ID, f.members[0].UserID, p2.ID)
	require.NoError(t, err)
	next, err := f.orch.NextAvailableFromQueue(ctx, d.ID, c.UserID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, p1.ID, next.PlayerID)

	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[1].UserID, p1.ID)
	require.NoError(t, err)
	next, err = f.orch.NextAvailableFromQueue(ctx, d.ID, c.UserID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, p3.ID, next.PlayerID)

	_, _, err = f.orch.MakePick(ctx, d.ID, c.UserID, p3.ID)
	require.NoError(t, err)
	next, err = f.orch.NextAvailableFromQueue(ctx, d.ID, c.UserID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestQueueEdits(t *testing.T) {
	f := newFixture(t, 2, 4)
	ctx := context.Background()
	d := f.createAndStart(t, 2)
	m := f.members[1]

	var entries []*models.QueueEntry
	for _, p := range f.players {
		e, err := f.orch.AddToQueue(ctx, d.ID, m.UserID, p.ID)
		require.NoError(t, err)
		require.NotNil(t, e.Player)
		entries = append(entries, e)
	}
	assert.Equal(t, 4, entries[3].Rank)

	_, err := f.orch.AddToQueue(ctx, d.ID, m.UserID, f.players[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrAlreadyQueued)

	reordered, err := f.orch.ReorderQueue(ctx, d.ID, m.UserID, entries[3].ID, 1)
	require.NoError(t, err)
	got := make([]uuid.UUID, len(reordered))
	for i, e := range reordered {
		got[i] = e.PlayerID
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []uuid.UUID{f.players[3].ID, f.players[0].ID, f.players[1].ID, f.players[2].ID}, got)

	_, err = f.orch.ReorderQueue(ctx, d.ID, m.UserID, entries[0].ID, 0)
	assert.Equal(t, drafterr.KindInvalidArgument, drafterr.KindOf(err))

	require.NoError(t, f.orch.RemoveFromQueue(ctx, d.ID, m.UserID, entries[1].ID))
	queue, err := f.orch.GetUserQueue(ctx, d.ID, m.UserID)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	for i, e := range queue {
		assert.Equal(t, i+1, e.Rank)
	}

	// another member cannot touch this queue
	err = f.orch.RemoveFromQueue(ctx, d.ID, f.members[0].UserID, entries[2].ID)
	assert.ErrorIs(t, err, drafterr.ErrQueueEntryMissing)

	edits := 0
	for _, ev := range f.eventsOf(events.EventTypeQueueUpdated) {
		md, err := ev.DecodeMetadata()
		require.NoError(t, err)
		assert.Equal(t, []string{m.ID.String()}, md.Audience)
		edits++
	}
	assert.Equal(t, 6, edits) // four adds, one reorder, one remove
}

func TestEndDraft(t *testing.T) {
	f := newFixture(t, 3, 3)
	ctx := context.Background()
	d := f.createAndStart(t, 2)

	_, _, err := f.orch.MakePick(ctx, d.ID, f.members[0].UserID, f.players[0].ID)
	require.NoError(t, err)
	_, err = f.orch.AddToQueue(ctx, d.ID, f.members[1].UserID, f.players[2].ID)
	require.NoError(t, err)

	_, err = f.orch.EndDraft(ctx, d.ID, f.members[1].UserID)
	assert.ErrorIs(t, err, drafterr.ErrNotCommissioner)

	ended, err := f.orch.EndDraft(ctx, d.ID, f.commissioner().UserID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, ended.Status)
	assert.Nil(t, ended.CurrentMemberID)

	completed := f.eventsOf(events.EventTypeDraftCompleted)
	require.Len(t, completed, 1)
	var payload events.DraftCompletedPayload
	require.NoError(t, json.Unmarshal(completed[0].Payload, &payload))
	assert.True(t, payload.Forced)
	assert.Equal(t, 1, payload.TotalPicks)

	_, err = f.orch.EndDraft(ctx, d.ID, f.commissioner().UserID)
	assert.ErrorIs(t, err, drafterr.ErrDraftCompleted)
	_, err = f.orch.StartDraft(ctx, d.ID, f.commissioner().UserID)
	assert.ErrorIs(t, err, drafterr.ErrDraftCompleted)
	_, _, err = f.orch.MakePick(ctx, d.ID, f.members[1].UserID, f.players[1].ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftNotActive)
	_, err = f.orch.AddToQueue(ctx, d.ID, f.members[1].UserID, f.players[1].ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftCompleted)
}

func TestQueueFrozenAfterCompletion(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()
	d := f.createAndStart(t, 2)
	m := f.members[1]

	first, err := f.orch.AddToQueue(ctx, d.ID, m.UserID, f.players[0].ID)
	require.NoError(t, err)
	_, err = f.orch.AddToQueue(ctx, d.ID, m.UserID, f.players[1].ID)
	require.NoError(t, err)

	_, err = f.orch.EndDraft(ctx, d.ID, f.commissioner().UserID)
	require.NoError(t, err)
	edits := len(f.eventsOf(events.EventTypeQueueUpdated))

	err = f.orch.RemoveFromQueue(ctx, d.ID, m.UserID, first.ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftCompleted)
	_, err = f.orch.ReorderQueue(ctx, d.ID, m.UserID, first.ID, 2)
	assert.ErrorIs(t, err, drafterr.ErrDraftCompleted)
	_, err = f.orch.AddToQueue(ctx, d.ID, m.UserID, f.players[2].ID)
	assert.ErrorIs(t, err, drafterr.ErrDraftCompleted)

	queue, err := f.orch.GetUserQueue(ctx, d.ID, m.UserID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Len(t, f.eventsOf(events.EventTypeQueueUpdated), edits)
}

func TestReads(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()
	d := f.createAndStart(t, 1)
	a, b := f.members[0], f.members[1]

	_, err := f.orch.AddToQueue(ctx, d.ID, b.UserID, f.players[2].ID)
	require.NoError(t, err)
	_, _, err = f.orch.MakePick(ctx, d.ID, a.UserID, f.players[0].ID)
	require.NoError(t, err)

	active, err := f.orch.GetActiveDraft(ctx, f.leagueID, b.UserID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, active.ID)

	_, err = f.orch.GetActiveDraft(ctx, f.leagueID, uuid.New())
	assert.ErrorIs(t, err, drafterr.ErrNotMember)

	pool, err := f.orch.GetDraftablePlayers(ctx, d.ID, b.UserID, models.PlayerFilter{})
	require.NoError(t, err)
	assert.Len(t, pool, 2)
	for _, p := range pool {
		assert.NotEqual(t, f.players[0].ID, p.ID)
	}

	snap, err := f.orch.GetDraftSnapshot(ctx, d.ID, b.UserID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, snap.ViewerMemberID)
	assert.Equal(t, 2, snap.Draft.CurrentPick)
	assert.Len(t, snap.Members, 2)
	assert.Len(t, snap.Picks, 1)
	require.Len(t, snap.Queue, 1)
	assert.Equal(t, f.players[2].ID, snap.Queue[0].PlayerID)
	assert.Equal(t, 90, snap.SecondsRemaining)

	f.clock.Advance(30 * time.Second)
	snap, err = f.orch.GetDraftSnapshot(ctx, d.ID, b.UserID)
	require.NoError(t, err)
	assert.Equal(t, 60, snap.SecondsRemaining)

	_, err = f.orch.GetDraftSnapshot(ctx, d.ID, uuid.Nil)
	assert.ErrorIs(t, err, drafterr.ErrUnauthenticated)
}
