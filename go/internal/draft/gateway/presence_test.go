package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var presenceEpoch = time.Date(2026, 9, 6, 17, 30, 0, 0, time.UTC)

func memberIDsOf(members []events.PresenceMember) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.MemberID
	}
	return out
}

func TestTrackerJoinLeaveCountsConnections(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 0)
	league, alice := uuid.New(), uuid.New()

	assert.True(t, tr.Join(league, alice), "first tab adds the member")
	assert.False(t, tr.Join(league, alice), "second tab does not")

	assert.False(t, tr.Leave(league, alice), "one tab still open")
	assert.Equal(t, []string{alice.String()}, memberIDsOf(tr.Local(league)))

	assert.True(t, tr.Leave(league, alice), "last tab removes the member")
	assert.Empty(t, tr.Local(league))
	assert.Empty(t, tr.LocalLeagues())

	assert.False(t, tr.Leave(league, alice), "leaving twice is a no-op")
}

func TestTrackerSnapshotOrdersByJoinTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 0)
	league := uuid.New()
	first, second := uuid.New(), uuid.New()

	tr.Join(league, first)
	clock.Advance(time.Minute)
	tr.Join(league, second)

	snap := tr.Snapshot(league, uuid.Nil)
	require.Len(t, snap, 2)
	assert.Equal(t, first.String(), snap[0].MemberID)
	assert.Equal(t, presenceEpoch, snap[0].JoinedAt)
	assert.Equal(t, second.String(), snap[1].MemberID)
	assert.Equal(t, presenceEpoch.Add(time.Minute), snap[1].JoinedAt)
}

func TestTrackerSnapshotAlwaysIncludesActor(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 0)
	league, present, actor := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, []string{actor.String()}, memberIDsOf(tr.Snapshot(league, actor)))

	tr.Join(league, present)
	clock.Advance(time.Second)
	snap := tr.Snapshot(league, actor)
	assert.Equal(t, []string{present.String(), actor.String()}, memberIDsOf(snap))
	assert.Equal(t, clock.Now(), snap[1].JoinedAt)

	// an actor already present keeps their real join time
	snap = tr.Snapshot(league, present)
	require.Len(t, snap, 1)
	assert.Equal(t, presenceEpoch, snap[0].JoinedAt)
}

func TestTrackerMergesRemoteReports(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 30*time.Second)
	league, local, remote := uuid.New(), uuid.New(), uuid.New()

	clock.Advance(time.Minute)
	tr.Join(league, local)
	tr.ReplaceRemote("gw-2", league, []events.PresenceMember{
		{MemberID: remote.String(), JoinedAt: presenceEpoch},
		// also connected here; the earlier join time wins
		{MemberID: local.String(), JoinedAt: presenceEpoch.Add(10 * time.Second)},
	})

	snap := tr.Snapshot(league, uuid.Nil)
	assert.Equal(t, []string{remote.String(), local.String()}, memberIDsOf(snap))
	assert.Equal(t, presenceEpoch.Add(10*time.Second), snap[1].JoinedAt)
	assert.Equal(t, []string{local.String()}, memberIDsOf(tr.Local(league)), "remote members are never reported as local")

	clock.Advance(31 * time.Second)
	assert.Equal(t, []string{local.String()}, memberIDsOf(tr.Snapshot(league, uuid.Nil)), "stale report expired")
}

func TestTrackerEmptyRemoteReportRemovesInstance(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 0)
	league, remote := uuid.New(), uuid.New()

	tr.ReplaceRemote("gw-2", league, []events.PresenceMember{{MemberID: remote.String(), JoinedAt: presenceEpoch}})
	require.Len(t, tr.Snapshot(league, uuid.Nil), 1)

	tr.ReplaceRemote("gw-2", league, nil)
	assert.Empty(t, tr.Snapshot(league, uuid.Nil))
}

func TestPresenceBridgeHandleMessage(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 0)
	league, remote := uuid.New(), uuid.New()

	var notified []uuid.UUID
	b := NewPresenceBridge(nil, tr, clock, "gw-1", 0, func(id uuid.UUID) { notified = append(notified, id) })

	report := func(instance string, leagueID uuid.UUID, members ...events.PresenceMember) *nats.Msg {
		data, err := json.Marshal(presenceReport{Instance: instance, LeagueID: leagueID.String(), Members: members})
		require.NoError(t, err)
		return &nats.Msg{Subject: presenceSubject(leagueID), Data: data}
	}
	member := events.PresenceMember{MemberID: remote.String(), JoinedAt: presenceEpoch}

	t.Run("own reports are ignored", func(t *testing.T) {
		b.handleMessage(report("gw-1", league, member))
		assert.Empty(t, tr.Snapshot(league, uuid.Nil))
		assert.Empty(t, notified)
	})

	t.Run("malformed reports are ignored", func(t *testing.T) {
		b.handleMessage(&nats.Msg{Subject: presenceSubject(league), Data: []byte("{")})
		assert.Empty(t, notified)
	})

	t.Run("subject and body must agree", func(t *testing.T) {
		msg := report("gw-2", league, member)
		msg.Subject = presenceSubject(uuid.New())
		b.handleMessage(msg)
		assert.Empty(t, notified)
	})

	t.Run("peer reports are merged", func(t *testing.T) {
		b.handleMessage(report("gw-2", league, member))
		assert.Equal(t, []string{remote.String()}, memberIDsOf(tr.Snapshot(league, uuid.Nil)))
		assert.Equal(t, []uuid.UUID{league}, notified)
	})
}

func TestPresenceBridgeHeartbeatRepublishesLocalLeagues(t *testing.T) {
	clock := clockwork.NewFakeClockAt(presenceEpoch)
	tr := NewTracker(clock, 0)
	league, member := uuid.New(), uuid.New()
	tr.Join(league, member)

	b := NewPresenceBridge(nil, tr, clock, "gw-1", 10*time.Second, nil)
	published := make(chan presenceReport, 4)
	b.publish = func(subject string, data []byte) error {
		assert.Equal(t, presenceSubject(league), subject)
		var r presenceReport
		require.NoError(t, json.Unmarshal(data, &r))
		published <- r
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.runHeartbeat(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	for i := 0; i < 2; i++ {
		clock.Advance(10 * time.Second)
		select {
		case r := <-published:
			assert.Equal(t, "gw-1", r.Instance)
			assert.Equal(t, []string{member.String()}, memberIDsOf(r.Members))
		case <-time.After(2 * time.Second):
			t.Fatalf("no heartbeat after tick %d", i+1)
		}
	}
}

func TestPresenceBridgePublishWithoutConnection(t *testing.T) {
	b := NewPresenceBridge(nil, NewTracker(clockwork.NewFakeClock(), 0), nil, "gw-1", 0, nil)
	assert.Error(t, b.Publish(uuid.New()))
}
