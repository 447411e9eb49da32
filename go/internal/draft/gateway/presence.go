package gateway

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
)

// DefaultRemoteTTL is how long another instance's presence report stays valid
// without a refresh.
const DefaultRemoteTTL = 45 * time.Second

// Tracker is the waiting-room presence set for each league. It is advisory:
// nothing in the draft engine consults it.
//
// Local members are reference counted per connection, so a member with two
// tabs open stays present until both close. Other gateway instances report
// their local sets, which are merged in until they expire.
type Tracker struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	remoteTTL time.Duration
	leagues   map[uuid.UUID]*leaguePresence
}

type leaguePresence struct {
	local  map[uuid.UUID]*localSeat
	remote map[string]remoteReport
}

type localSeat struct {
	refs     int
	joinedAt time.Time
}

type remoteReport struct {
	members    []events.PresenceMember
	receivedAt time.Time
}

// NewTracker creates an empty presence tracker
func NewTracker(clock clockwork.Clock, remoteTTL time.Duration) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if remoteTTL <= 0 {
		remoteTTL = DefaultRemoteTTL
	}
	return &Tracker{
		clock:     clock,
		remoteTTL: remoteTTL,
		leagues:   make(map[uuid.UUID]*leaguePresence),
	}
}

func (t *Tracker) league(leagueID uuid.UUID) *leaguePresence {
	lp, ok := t.leagues[leagueID]
	if !ok {
		lp = &leaguePresence{
			local:  make(map[uuid.UUID]*localSeat),
			remote: make(map[string]remoteReport),
		}
		t.leagues[leagueID] = lp
	}
	return lp
}

func (t *Tracker) prune(leagueID uuid.UUID, lp *leaguePresence) {
	if len(lp.local) == 0 && len(lp.remote) == 0 {
		delete(t.leagues, leagueID)
	}
}

// Join records one more connection for memberID. It reports whether the
// member was newly added to this instance's set.
func (t *Tracker) Join(leagueID, memberID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp := t.league(leagueID)
	if seat, ok := lp.local[memberID]; ok {
		seat.refs++
		return false
	}
	lp.local[memberID] = &localSeat{refs: 1, joinedAt: t.clock.Now()}
	return true
}

// Leave drops one connection for memberID. It reports whether the member's
// last connection on this instance closed.
func (t *Tracker) Leave(leagueID, memberID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp, ok := t.leagues[leagueID]
	if !ok {
		return false
	}
	seat, ok := lp.local[memberID]
	if !ok {
		return false
	}
	seat.refs--
	if seat.refs > 0 {
		return false
	}
	delete(lp.local, memberID)
	t.prune(leagueID, lp)
	return true
}

// Local returns the members connected to this instance.
func (t *Tracker) Local(leagueID uuid.UUID) []events.PresenceMember {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp, ok := t.leagues[leagueID]
	if !ok {
		return []events.PresenceMember{}
	}
	out := make([]events.PresenceMember, 0, len(lp.local))
	for id, seat := range lp.local {
		out = append(out, events.PresenceMember{MemberID: id.String(), JoinedAt: seat.joinedAt})
	}
	sortPresence(out)
	return out
}

// LocalLeagues returns every league with at least one local member.
func (t *Tracker) LocalLeagues() []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []uuid.UUID
	for id, lp := range t.leagues {
		if len(lp.local) > 0 {
			out = append(out, id)
		}
	}
	return out
}

// ReplaceRemote stores the latest presence report from another instance. An
// empty report removes the instance from the league.
func (t *Tracker) ReplaceRemote(source string, leagueID uuid.UUID, members []events.PresenceMember) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp := t.league(leagueID)
	if len(members) == 0 {
		delete(lp.remote, source)
		t.prune(leagueID, lp)
		return
	}
	lp.remote[source] = remoteReport{members: members, receivedAt: t.clock.Now()}
}

// Snapshot returns everyone present in the league, ordered by join time. A
// non-nil actor is always included: whoever is acting is present.
func (t *Tracker) Snapshot(leagueID, actor uuid.UUID) []events.PresenceMember {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	merged := make(map[string]time.Time)
	add := func(memberID string, joinedAt time.Time) {
		if prev, ok := merged[memberID]; !ok || joinedAt.Before(prev) {
			merged[memberID] = joinedAt
		}
	}

	if lp, ok := t.leagues[leagueID]; ok {
		for id, seat := range lp.local {
			add(id.String(), seat.joinedAt)
		}
		for source, report := range lp.remote {
			if now.Sub(report.receivedAt) > t.remoteTTL {
				delete(lp.remote, source)
				continue
			}
			for _, m := range report.members {
				add(m.MemberID, m.JoinedAt)
			}
		}
		t.prune(leagueID, lp)
	}
	if actor != uuid.Nil {
		if _, ok := merged[actor.String()]; !ok {
			merged[actor.String()] = now
		}
	}

	out := make([]events.PresenceMember, 0, len(merged))
	for id, joinedAt := range merged {
		out = append(out, events.PresenceMember{MemberID: id, JoinedAt: joinedAt})
	}
	sortPresence(out)
	return out
}

func sortPresence(members []events.PresenceMember) {
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].MemberID < members[j].MemberID
	})
}
