package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
)

// OutboxEvent is a notification written in the same transaction as the state
// change it describes, and relayed to NATS after commit.
type OutboxEvent struct {
	ID        uuid.UUID        `json:"id"`
	DraftID   uuid.UUID        `json:"draft_id"`
	EventType events.EventType `json:"event_type"`
	Payload   json.RawMessage  `json:"payload"`
	Metadata  json.RawMessage  `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	SentAt    *time.Time       `json:"sent_at,omitempty"`
}

// Metadata is routing information that is not part of the client payload.
type Metadata struct {
	ActorMemberID string   `json:"actor_member_id,omitempty"`
	Audience      []string `json:"audience,omitempty"` // member ids; empty means the whole draft
}

// eventNamespace seeds deterministic ids for events that several processes may emit.
var eventNamespace = uuid.MustParse("6f1c1b5e-54a4-4f0e-9c51-0a3c1d2b7e90")

// NewEvent marshals payload into an outbox event with a fresh id.
func NewEvent(draftID uuid.UUID, eventType events.EventType, payload any, meta *Metadata, now time.Time) (*OutboxEvent, error) {
	return newEvent(uuid.New(), draftID, eventType, payload, meta, now)
}

// NewKeyedEvent is NewEvent with an id derived from key, so duplicate emitters
// collapse to one row and one JetStream message.
func NewKeyedEvent(key string, draftID uuid.UUID, eventType events.EventType, payload any, meta *Metadata, now time.Time) (*OutboxEvent, error) {
	id := uuid.NewSHA1(eventNamespace, []byte(fmt.Sprintf("%s/%s/%s", draftID, eventType, key)))
	return newEvent(id, draftID, eventType, payload, meta, now)
}

func newEvent(id, draftID uuid.UUID, eventType events.EventType, payload any, meta *Metadata, now time.Time) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	ev := &OutboxEvent{
		ID:        id,
		DraftID:   draftID,
		EventType: eventType,
		Payload:   data,
		CreatedAt: now,
	}
	if meta != nil {
		md, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s metadata: %w", eventType, err)
		}
		ev.Metadata = md
	}
	return ev, nil
}

// DecodeMetadata returns the event's metadata, or the zero value if it has none.
func (e *OutboxEvent) DecodeMetadata() (Metadata, error) {
	var md Metadata
	if len(e.Metadata) == 0 {
		return md, nil
	}
	if err := json.Unmarshal(e.Metadata, &md); err != nil {
		return md, fmt.Errorf("failed to unmarshal outbox metadata: %w", err)
	}
	return md, nil
}
