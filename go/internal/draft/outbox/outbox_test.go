package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelayStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]OutboxEvent
	sent   map[uuid.UUID]bool
}

func newFakeRelayStore(evs ...*OutboxEvent) *fakeRelayStore {
	s := &fakeRelayStore{events: map[uuid.UUID]OutboxEvent{}, sent: map[uuid.UUID]bool{}}
	for _, ev := range evs {
		s.events[ev.ID] = *ev
	}
	return s
}

func (s *fakeRelayStore) FetchUnsentOutbox(_ context.Context, limit int) ([]OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OutboxEvent
	for id, ev := range s.events {
		if !s.sent[id] && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *fakeRelayStore) FetchOutboxByID(_ context.Context, id uuid.UUID) (*OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok || s.sent[id] {
		return nil, ErrEventNotFound
	}
	return &ev, nil
}

func (s *fakeRelayStore) MarkOutboxSent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[id] = true
	return nil
}

type flakyPublisher struct {
	failures  int
	published []OutboxEvent
}

func (p *flakyPublisher) Publish(_ context.Context, ev OutboxEvent) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("nats: timeout")
	}
	p.published = append(p.published, ev)
	return nil
}

func testConfig() ListenerConfig {
	cfg := DefaultListenerConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.MaxRetries = 2
	return cfg
}

func mustEvent(t *testing.T, eventType events.EventType) *OutboxEvent {
	t.Helper()
	ev, err := NewEvent(uuid.New(), eventType, events.PickMadePayload{OverallPick: 3}, &Metadata{ActorMemberID: "m1"}, time.Now())
	require.NoError(t, err)
	return ev
}

func TestRelayRetriesThenMarksSent(t *testing.T) {
	ev := mustEvent(t, events.EventTypePickMade)
	store := newFakeRelayStore(ev)
	pub := &flakyPublisher{failures: 2}
	metrics := NewCounterMetrics()
	relay := NewRelay(store, pub, metrics, testConfig())

	require.NoError(t, relay.HandleNotification(context.Background(), ev.ID.String()))

	assert.Len(t, pub.published, 1)
	assert.True(t, store.sent[ev.ID])
	processed, last := relay.Stats()
	assert.Equal(t, uint64(1), processed)
	assert.False(t, last.IsZero())
	assert.Equal(t, uint64(2), metrics.RetryAttempts)
	assert.Equal(t, uint64(1), metrics.Published[string(events.EventTypePickMade)])
}

func TestRelayGivesUpAfterMaxRetries(t *testing.T) {
	ev := mustEvent(t, events.EventTypeDraftStarted)
	store := newFakeRelayStore(ev)
	relay := NewRelay(store, &flakyPublisher{failures: 10}, nil, testConfig())

	err := relay.HandleNotification(context.Background(), ev.ID.String())
	require.Error(t, err)
	assert.False(t, store.sent[ev.ID])
}

func TestRelayIgnoresAlreadySent(t *testing.T) {
	ev := mustEvent(t, events.EventTypePickMade)
	store := newFakeRelayStore(ev)
	store.sent[ev.ID] = true
	pub := &flakyPublisher{}

	require.NoError(t, NewRelay(store, pub, nil, testConfig()).HandleNotification(context.Background(), ev.ID.String()))
	assert.Empty(t, pub.published)

	err := NewRelay(store, pub, nil, testConfig()).HandleNotification(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}

func TestProcessUnsentSweepsEverything(t *testing.T) {
	a, b := mustEvent(t, events.EventTypePickMade), mustEvent(t, events.EventTypeQueueUpdated)
	store := newFakeRelayStore(a, b)
	pub := &flakyPublisher{}

	require.NoError(t, NewRelay(store, pub, nil, testConfig()).ProcessUnsent(context.Background()))
	assert.Len(t, pub.published, 2)
	assert.True(t, store.sent[a.ID])
	assert.True(t, store.sent[b.ID])
}

func TestKeyedEventIsDeterministic(t *testing.T) {
	draftID := uuid.New()
	a, err := NewKeyedEvent("pick-4", draftID, events.EventTypePickExpired, events.PickExpiredPayload{OverallPick: 4}, nil, time.Now())
	require.NoError(t, err)
	b, err := NewKeyedEvent("pick-4", draftID, events.EventTypePickExpired, events.PickExpiredPayload{OverallPick: 4}, nil, time.Now())
	require.NoError(t, err)
	c, err := NewKeyedEvent("pick-5", draftID, events.EventTypePickExpired, events.PickExpiredPayload{OverallPick: 5}, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Empty(t, a.Metadata)
}

func TestBuildMessage(t *testing.T) {
	ev, err := NewEvent(uuid.New(), events.EventTypeQueueUpdated,
		events.QueueUpdatedPayload{MemberIDs: []string{"m2"}, Reason: "edit"},
		&Metadata{ActorMemberID: "m2", Audience: []string{"m2"}}, time.Now())
	require.NoError(t, err)

	msg, err := BuildMessage("draft.events", *ev, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "draft.events."+ev.DraftID.String()+".QueueUpdated", msg.Subject)
	assert.Equal(t, "QueueUpdated", msg.Header.Get("Event-Type"))
	assert.Equal(t, "m2", msg.Header.Get("Actor-Member-ID"))
	assert.Equal(t, "m2", msg.Header.Get("Audience"))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, ev.ID.String(), env.EventID)
	assert.Equal(t, []string{"m2"}, env.Audience)
	assert.JSONEq(t, string(ev.Payload), string(env.Payload))
}
