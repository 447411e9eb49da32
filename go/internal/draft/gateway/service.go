// Package gateway pushes relayed draft events to websocket clients and tracks
// who is waiting in each league's lobby.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service is the draft gateway: websocket rooms, the JetStream fan-out and
// waiting-room presence.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	eventConsumer     *EventConsumer
	presence          *presenceHub
	cors              *cors.Cors
}

// Config holds configuration for the draft gateway service
type Config struct {
	ConnectionConfig  ConnectionConfig
	JetStreamConfig   JetStreamConsumerConfig
	InstanceID        string
	AllowedOrigins    []string
	PresenceHeartbeat time.Duration
	PresenceTTL       time.Duration
}

// DefaultConfig returns default configuration for the draft gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig:  DefaultConnectionConfig(),
		JetStreamConfig:   DefaultJetStreamConsumerConfig(),
		InstanceID:        uuid.NewString(),
		PresenceHeartbeat: 15 * time.Second,
		PresenceTTL:       DefaultRemoteTTL,
	}
}

// NewService connects to NATS and creates the gateway
func NewService(config Config, stateProvider StateProvider) (*Service, error) {
	s := newService(config, stateProvider, clockwork.NewRealClock())

	eventConsumer, err := NewEventConsumer(s.connectionManager, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}
	s.eventConsumer = eventConsumer
	s.presence.bridge = NewPresenceBridge(eventConsumer.Conn(), s.presence.tracker, s.presence.clock, config.InstanceID, config.PresenceHeartbeat, s.presence.broadcast)

	return s, nil
}

// newService builds a gateway without NATS; events arrive through Deliver.
func newService(config Config, stateProvider StateProvider, clock clockwork.Clock) *Service {
	if len(config.AllowedOrigins) > 0 {
		config.ConnectionConfig.CheckOrigin = originChecker(config.AllowedOrigins)
	}
	connectionManager := NewConnectionManager(config.ConnectionConfig)

	presence := &presenceHub{
		tracker: NewTracker(clock, config.PresenceTTL),
		cm:      connectionManager,
		clock:   clock,
	}
	connectionManager.OnUnregister(presence.onUnregister)

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager, stateProvider, presence, clock),
		stateHandler:      NewStateHandler(stateProvider, presence),
		presence:          presence,
		cors:              NewCORS(config.AllowedOrigins),
	}
}

// Start runs the connection manager, the event consumer and the presence
// bridge until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting draft gateway service")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.connectionManager.Start(ctx)
		return nil
	})
	if s.eventConsumer != nil {
		g.Go(func() error { return s.eventConsumer.Start(ctx) })
	}
	if s.presence.bridge != nil {
		g.Go(func() error { return s.presence.bridge.Start(ctx) })
	}

	err := g.Wait()
	log.Info().Msg("draft gateway service shutting down")
	if stopErr := s.Stop(); err == nil {
		err = stopErr
	}
	return err
}

// Stop gracefully shuts down the gateway service
func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}
	log.Info().Msg("draft gateway service stopped")
	return nil
}

// Routes returns the gateway's HTTP surface
func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.cors.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})

	r.Get("/ws/stats", s.wsHandler.HandleConnectionStats)
	r.Get("/ws/draft/{draftID}", s.wsHandler.HandleDraftConnection)
	r.Get("/ws/lobby/{leagueID}", s.wsHandler.HandleLobbyConnection)

	r.Route("/api", func(r chi.Router) {
		r.Get("/drafts/{draftID}/state", s.stateHandler.HandleGetDraftState)
		r.Get("/leagues/{leagueID}/presence", s.stateHandler.HandleGetPresence)
	})

	log.Info().Msg("draft gateway routes registered")
	return r
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}

// Deliver fans a relayed outbox envelope out to the draft's room.
func (s *Service) Deliver(envelope outbox.Envelope) error {
	return deliverEnvelope(s.connectionManager, envelope)
}

// presenceHub ties the tracker to lobby rooms and, across instances, to the
// NATS bridge.
type presenceHub struct {
	tracker *Tracker
	cm      *ConnectionManager
	bridge  *PresenceBridge // nil when running a single instance
	clock   clockwork.Clock
}

// changed announces the league's presence to its lobby, and to peer
// instances when this instance's own set changed.
func (p *presenceHub) changed(leagueID uuid.UUID, localChanged bool) {
	if localChanged && p.bridge != nil {
		if err := p.bridge.Publish(leagueID); err != nil {
			log.Warn().Err(err).Str("league_id", leagueID.String()).Msg("failed to publish presence")
		}
	}
	p.broadcast(leagueID)
}

func (p *presenceHub) broadcast(leagueID uuid.UUID) {
	payload := events.PresenceChangedPayload{
		LeagueID: leagueID.String(),
		Active:   p.tracker.Snapshot(leagueID, uuid.Nil),
	}
	frame, err := newFrame(EventTypePresenceChanged, payload, p.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to build presence frame")
		return
	}
	frame.LeagueID = leagueID.String()
	p.cm.Broadcast(LobbyRoom(leagueID), frame)
}

func (p *presenceHub) onUnregister(conn *Connection) {
	if conn.Room.Kind != RoomLobby {
		return
	}
	if p.tracker.Leave(conn.Room.ID, conn.MemberID) {
		p.changed(conn.Room.ID, true)
	}
}
