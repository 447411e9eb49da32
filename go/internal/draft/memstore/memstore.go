// Package memstore is an in-process store.Store. Transactions run one at a
// time against a private copy that replaces the shared state on commit.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

type data struct {
	drafts  map[uuid.UUID]models.Draft
	members map[uuid.UUID]models.LeagueMember
	players map[uuid.UUID]models.Player
	picks   []models.DraftPick
	queue   map[uuid.UUID]models.QueueEntry
	outbox  []outbox.OutboxEvent
}

func newData() *data {
	return &data{
		drafts:  map[uuid.UUID]models.Draft{},
		members: map[uuid.UUID]models.LeagueMember{},
		players: map[uuid.UUID]models.Player{},
		queue:   map[uuid.UUID]models.QueueEntry{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.drafts {
		c.drafts[k] = v
	}
	for k, v := range d.members {
		c.members[k] = v
	}
	for k, v := range d.players {
		c.players[k] = v
	}
	for k, v := range d.queue {
		c.queue[k] = v
	}
	c.picks = append([]models.DraftPick(nil), d.picks...)
	c.outbox = append([]outbox.OutboxEvent(nil), d.outbox...)
	return c
}

// Store is a store.Store backed by maps.
type Store struct {
	mu    sync.Mutex
	d     *data
	fails map[string]error
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{d: newData(), fails: map[string]error{}}
}

// FailOn makes the next call to the named Tx method return err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[method] = err
}

// AddMember seeds a league member.
func (s *Store) AddMember(m models.LeagueMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.members[m.ID] = m
}

// AddPlayer seeds a player.
func (s *Store) AddPlayer(p models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.players[p.ID] = p
}

// Outbox returns the committed outbox events in insert order.
func (s *Store) Outbox() []outbox.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbox.OutboxEvent(nil), s.d.outbox...)
}

func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	if err := fn(&tx{reader: reader{d: work}, s: s}); err != nil {
		return err
	}
	s.d = work
	return nil
}

func (s *Store) read() reader {
	return reader{d: s.d}
}

func (s *Store) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetDraft(ctx, id)
}

func (s *Store) GetDraftByLeague(ctx context.Context, leagueID uuid.UUID) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetDraftByLeague(ctx, leagueID)
}

func (s *Store) ListActiveDrafts(ctx context.Context) ([]models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ListActiveDrafts(ctx)
}

func (s *Store) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ListMembers(ctx, leagueID)
}

func (s *Store) GetMemberByUser(ctx context.Context, leagueID, userID uuid.UUID) (*models.LeagueMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetMemberByUser(ctx, leagueID, userID)
}

func (s *Store) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ListPicks(ctx, draftID)
}

func (s *Store) IsPlayerDrafted(ctx context.Context, draftID, playerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().IsPlayerDrafted(ctx, draftID, playerID)
}

func (s *Store) ListQueue(ctx context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ListQueue(ctx, draftID, memberID)
}

func (s *Store) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetPlayer(ctx, id)
}

func (s *Store) ListDraftablePlayers(ctx context.Context, draftID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ListDraftablePlayers(ctx, draftID, filter)
}

// reader implements store.Reader over one snapshot. Callers hold Store.mu.
type reader struct {
	d *data
}

func (r reader) GetDraft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	d, ok := r.d.drafts[id]
	if !ok {
		return nil, drafterr.ErrDraftNotFound
	}
	return &d, nil
}

func (r reader) GetDraftByLeague(_ context.Context, leagueID uuid.UUID) (*models.Draft, error) {
	for _, d := range r.d.drafts {
		if d.LeagueID == leagueID {
			return &d, nil
		}
	}
	return nil, drafterr.ErrDraftNotFound
}

func (r reader) ListActiveDrafts(_ context.Context) ([]models.Draft, error) {
	var out []models.Draft
	for _, d := range r.d.drafts {
		if d.IsActive() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r reader) ListMembers(_ context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	var out []models.LeagueMember
	for _, m := range r.d.members {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DraftPickOrder, out[j].DraftPickOrder
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		case b != nil:
			return false
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r reader) GetMemberByUser(_ context.Context, leagueID, userID uuid.UUID) (*models.LeagueMember, error) {
	for _, m := range r.d.members {
		if m.LeagueID == leagueID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, drafterr.ErrMemberNotFound
}

func (r reader) ListPicks(_ context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	var out []models.DraftPick
	for _, p := range r.d.picks {
		if p.DraftID == draftID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallPick < out[j].OverallPick })
	return out, nil
}

func (r reader) IsPlayerDrafted(_ context.Context, draftID, playerID uuid.UUID) (bool, error) {
	for _, p := range r.d.picks {
		if p.DraftID == draftID && p.PlayerID == playerID {
			return true, nil
		}
	}
	return false, nil
}

func (r reader) ListQueue(_ context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	for _, e := range r.d.queue {
		if e.DraftID == draftID && e.MemberID == memberID {
			if p, ok := r.d.players[e.PlayerID]; ok {
				e.Player = &p
			}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r reader) GetPlayer(_ context.Context, id uuid.UUID) (*models.Player, error) {
	p, ok := r.d.players[id]
	if !ok {
		return nil, drafterr.ErrPlayerNotFound
	}
	return &p, nil
}

func (r reader) ListDraftablePlayers(ctx context.Context, draftID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error) {
	search := strings.ToLower(filter.Search)
	var out []models.Player
	for _, p := range r.d.players {
		if drafted, _ := r.IsPlayerDrafted(ctx, draftID, p.ID); drafted {
			continue
		}
		if filter.Position != "" && !strings.EqualFold(p.Position, filter.Position) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.FullName), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type tx struct {
	reader
	s *Store
}

func (t *tx) fail(method string) error {
	if err, ok := t.s.fails[method]; ok {
		delete(t.s.fails, method)
		return err
	}
	return nil
}

func (t *tx) LockDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	if err := t.fail("LockDraft"); err != nil {
		return nil, err
	}
	return t.GetDraft(ctx, id)
}

func (t *tx) InsertDraft(_ context.Context, d *models.Draft) error {
	if err := t.fail("InsertDraft"); err != nil {
		return err
	}
	for _, existing := range t.d.drafts {
		if existing.LeagueID == d.LeagueID {
			return drafterr.ErrDraftExists
		}
	}
	t.d.drafts[d.ID] = *d
	return nil
}

func (t *tx) UpdateDraft(_ context.Context, d *models.Draft, expectedPick int) error {
	if err := t.fail("UpdateDraft"); err != nil {
		return err
	}
	cur, ok := t.d.drafts[d.ID]
	if !ok {
		return drafterr.ErrDraftNotFound
	}
	if cur.CurrentPick != expectedPick {
		return drafterr.ErrStalePick
	}
	t.d.drafts[d.ID] = *d
	return nil
}

func (t *tx) AssignPickOrder(_ context.Context, leagueID uuid.UUID, order map[uuid.UUID]int) error {
	if err := t.fail("AssignPickOrder"); err != nil {
		return err
	}
	for id, pos := range order {
		m, ok := t.d.members[id]
		if !ok || m.LeagueID != leagueID {
			return drafterr.ErrMemberNotFound
		}
		p := pos
		m.DraftPickOrder = &p
		t.d.members[id] = m
	}
	return nil
}

func (t *tx) InsertPick(ctx context.Context, p *models.DraftPick) error {
	if err := t.fail("InsertPick"); err != nil {
		return err
	}
	if drafted, _ := t.IsPlayerDrafted(ctx, p.DraftID, p.PlayerID); drafted {
		return drafterr.ErrAlreadyDrafted
	}
	for _, existing := range t.d.picks {
		if existing.DraftID == p.DraftID && existing.OverallPick == p.OverallPick {
			return drafterr.ErrStalePick
		}
	}
	t.d.picks = append(t.d.picks, *p)
	return nil
}

func (t *tx) InsertQueueEntry(_ context.Context, e *models.QueueEntry) error {
	if err := t.fail("InsertQueueEntry"); err != nil {
		return err
	}
	for _, existing := range t.d.queue {
		if existing.DraftID == e.DraftID && existing.MemberID == e.MemberID && existing.PlayerID == e.PlayerID {
			return drafterr.ErrAlreadyQueued
		}
	}
	stored := *e
	stored.Player = nil
	t.d.queue[e.ID] = stored
	return nil
}

func (t *tx) DeleteQueueEntry(_ context.Context, entryID uuid.UUID) error {
	if err := t.fail("DeleteQueueEntry"); err != nil {
		return err
	}
	if _, ok := t.d.queue[entryID]; !ok {
		return drafterr.ErrQueueEntryMissing
	}
	delete(t.d.queue, entryID)
	return nil
}

func (t *tx) UpdateQueueRanks(_ context.Context, entries []models.QueueEntry) error {
	if err := t.fail("UpdateQueueRanks"); err != nil {
		return err
	}
	for _, e := range entries {
		cur, ok := t.d.queue[e.ID]
		if !ok {
			continue
		}
		cur.Rank = e.Rank
		t.d.queue[e.ID] = cur
	}
	return nil
}

func (t *tx) DeletePlayerFromQueues(_ context.Context, draftID, playerID uuid.UUID) ([]uuid.UUID, error) {
	if err := t.fail("DeletePlayerFromQueues"); err != nil {
		return nil, err
	}
	var members []uuid.UUID
	for id, e := range t.d.queue {
		if e.DraftID == draftID && e.PlayerID == playerID {
			delete(t.d.queue, id)
			members = append(members, e.MemberID)
		}
	}
	return members, nil
}

func (t *tx) InsertOutboxEvent(_ context.Context, ev *outbox.OutboxEvent) error {
	if err := t.fail("InsertOutboxEvent"); err != nil {
		return err
	}
	for _, existing := range t.d.outbox {
		if existing.ID == ev.ID {
			return nil
		}
	}
	t.d.outbox = append(t.d.outbox, *ev)
	return nil
}
