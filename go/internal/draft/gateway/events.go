package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
)

// DraftEvent is the frame pushed to websocket clients
type DraftEvent struct {
	ID        string          `json:"id"`
	DraftID   string          `json:"draft_id,omitempty"`
	LeagueID  string          `json:"league_id,omitempty"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of a pushed frame
type EventType string

const (
	EventTypeDraftCreated    EventType = EventType(events.EventTypeDraftCreated)
	EventTypeDraftStarted    EventType = EventType(events.EventTypeDraftStarted)
	EventTypePickMade        EventType = EventType(events.EventTypePickMade)
	EventTypePickStarted     EventType = EventType(events.EventTypePickStarted)
	EventTypePickExpired     EventType = EventType(events.EventTypePickExpired)
	EventTypeQueueUpdated    EventType = EventType(events.EventTypeQueueUpdated)
	EventTypeDraftCompleted  EventType = EventType(events.EventTypeDraftCompleted)
	EventTypePresenceChanged EventType = EventType(events.EventTypePresenceChanged)

	// EventTypeSnapshot is sent once when a draft socket opens.
	EventTypeSnapshot EventType = "Snapshot"
)

var relayedEventTypes = map[EventType]bool{
	EventTypeDraftCreated:   true,
	EventTypeDraftStarted:   true,
	EventTypePickMade:       true,
	EventTypePickStarted:    true,
	EventTypePickExpired:    true,
	EventTypeQueueUpdated:   true,
	EventTypeDraftCompleted: true,
}

// relayedEvent is a decoded outbox envelope ready for delivery
type relayedEvent struct {
	DraftID  uuid.UUID
	Event    *DraftEvent
	Audience []uuid.UUID // empty means everyone in the room
}

// decodeEnvelope converts a relayed outbox envelope into a websocket frame.
func decodeEnvelope(env outbox.Envelope) (*relayedEvent, error) {
	eventType := EventType(env.EventType)
	if !relayedEventTypes[eventType] {
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}

	draftID, err := uuid.Parse(env.DraftID)
	if err != nil {
		return nil, fmt.Errorf("parse draft ID: %w", err)
	}

	audience := make([]uuid.UUID, 0, len(env.Audience))
	for _, raw := range env.Audience {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse audience member %q: %w", raw, err)
		}
		audience = append(audience, id)
	}

	return &relayedEvent{
		DraftID: draftID,
		Event: &DraftEvent{
			ID:        env.EventID,
			DraftID:   env.DraftID,
			Type:      eventType,
			Timestamp: env.Timestamp,
			Data:      env.Payload,
		},
		Audience: audience,
	}, nil
}

// newFrame builds a gateway-originated frame
func newFrame(eventType EventType, payload any, now time.Time) (*DraftEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &DraftEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now.UTC(),
		Data:      data,
	}, nil
}
