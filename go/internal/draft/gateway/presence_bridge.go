package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const presenceSubjectPrefix = "presence.league"

// presenceReport is what one gateway instance tells the others about its
// local waiting-room members.
type presenceReport struct {
	Instance string                  `json:"instance"`
	LeagueID string                  `json:"league_id"`
	Members  []events.PresenceMember `json:"members"`
}

func presenceSubject(leagueID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", presenceSubjectPrefix, leagueID)
}

// PresenceBridge shares presence between gateway instances over core NATS.
// Reports are fire-and-forget; a periodic heartbeat re-sends every local set
// so peers recover from dropped messages and expire dead instances.
type PresenceBridge struct {
	nc         *nats.Conn
	publish    func(subject string, data []byte) error
	tracker    *Tracker
	clock      clockwork.Clock
	instanceID string
	heartbeat  time.Duration
	onRemote   func(leagueID uuid.UUID)
	sub        *nats.Subscription
}

// NewPresenceBridge creates a bridge. onRemote runs after a peer's report for
// a league has been merged into the tracker.
func NewPresenceBridge(nc *nats.Conn, tracker *Tracker, clock clockwork.Clock, instanceID string, heartbeat time.Duration, onRemote func(leagueID uuid.UUID)) *PresenceBridge {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	b := &PresenceBridge{
		nc:         nc,
		tracker:    tracker,
		clock:      clock,
		instanceID: instanceID,
		heartbeat:  heartbeat,
		onRemote:   onRemote,
	}
	if nc != nil {
		b.publish = nc.Publish
	}
	return b
}

// Start subscribes to peer reports and heartbeats until ctx is cancelled.
func (b *PresenceBridge) Start(ctx context.Context) error {
	sub, err := b.nc.Subscribe(presenceSubjectPrefix+".*", b.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe to presence: %w", err)
	}
	b.sub = sub
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Debug().Err(err).Msg("failed to unsubscribe presence bridge")
		}
	}()

	log.Info().Str("instance", b.instanceID).Msg("presence bridge started")
	b.runHeartbeat(ctx)
	log.Info().Str("instance", b.instanceID).Msg("presence bridge shutting down")
	return nil
}

// runHeartbeat re-publishes every league with local members on each tick.
func (b *PresenceBridge) runHeartbeat(ctx context.Context) {
	ticker := b.clock.NewTicker(b.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			for _, leagueID := range b.tracker.LocalLeagues() {
				if err := b.Publish(leagueID); err != nil {
					log.Warn().Err(err).Str("league_id", leagueID.String()).Msg("presence heartbeat failed")
				}
			}
		}
	}
}

// Publish sends this instance's local set for leagueID to its peers.
func (b *PresenceBridge) Publish(leagueID uuid.UUID) error {
	data, err := json.Marshal(presenceReport{
		Instance: b.instanceID,
		LeagueID: leagueID.String(),
		Members:  b.tracker.Local(leagueID),
	})
	if err != nil {
		return fmt.Errorf("marshal presence report: %w", err)
	}
	if b.publish == nil {
		return errors.New("presence bridge has no connection")
	}
	if err := b.publish(presenceSubject(leagueID), data); err != nil {
		return fmt.Errorf("publish presence report: %w", err)
	}
	return nil
}

func (b *PresenceBridge) handleMessage(msg *nats.Msg) {
	var report presenceReport
	if err := json.Unmarshal(msg.Data, &report); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("malformed presence report")
		return
	}
	if report.Instance == b.instanceID {
		return
	}
	leagueID, err := uuid.Parse(report.LeagueID)
	if err != nil || !strings.HasSuffix(msg.Subject, report.LeagueID) {
		log.Warn().Str("subject", msg.Subject).Str("league_id", report.LeagueID).Msg("presence report for unexpected league")
		return
	}

	b.tracker.ReplaceRemote(report.Instance, leagueID, report.Members)
	log.Debug().
		Str("instance", report.Instance).
		Str("league_id", report.LeagueID).
		Int("members", len(report.Members)).
		Msg("merged remote presence")

	if b.onRemote != nil {
		b.onRemote(leagueID)
	}
}
