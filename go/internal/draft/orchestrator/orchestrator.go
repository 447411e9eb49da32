// Package orchestrator is the draft engine's service boundary. It resolves the
// caller to a league member, serialises every mutation of a draft, commits
// state transitions with their outbox notifications in one transaction, and
// watches pick deadlines.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/draft"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/order"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimePerPickSec = 90
	defaultMaxRounds      = 30
	defaultNumWorkers     = 4
)

// Config holds draft creation defaults and watcher sizing.
type Config struct {
	DefaultTimePerPickSec int `yaml:"default_time_per_pick_sec"`
	MaxRounds             int `yaml:"max_rounds"`
	Workers               int `yaml:"watcher_workers"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimePerPickSec: defaultTimePerPickSec,
		MaxRounds:             defaultMaxRounds,
		Workers:               defaultNumWorkers,
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the real clock, typically with a clockwork.FakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithShuffler fixes the pick order shuffle.
func WithShuffler(shuffle order.Shuffler) Option {
	return func(o *Orchestrator) { o.shuffle = shuffle }
}

// Orchestrator owns every draft mutation.
type Orchestrator struct {
	store   store.Store
	cfg     Config
	clock   clockwork.Clock
	shuffle order.Shuffler
	machine *draft.Machine

	// per-draft mutexes; the draft row lock still guards across processes
	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	// deadline watcher
	workCh         chan expiry
	activeTimers   map[uuid.UUID]*scheduledDeadline
	activeTimersMu sync.Mutex
	stopOnce       sync.Once
	stopCh         chan struct{}
	instanceID     string
	numWorkers     int
}

// NewOrchestrator creates a new draft orchestrator
func NewOrchestrator(st store.Store, cfg Config, opts ...Option) *Orchestrator {
	defaults := DefaultConfig()
	if cfg.DefaultTimePerPickSec <= 0 {
		cfg.DefaultTimePerPickSec = defaults.DefaultTimePerPickSec
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaults.MaxRounds
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}

	o := &Orchestrator{
		store:        st,
		cfg:          cfg,
		clock:        clockwork.NewRealClock(),
		locks:        make(map[uuid.UUID]*sync.Mutex),
		workCh:       make(chan expiry, cfg.Workers*2),
		activeTimers: make(map[uuid.UUID]*scheduledDeadline),
		stopCh:       make(chan struct{}),
		instanceID:   uuid.New().String()[:8],
		numWorkers:   cfg.Workers,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.machine = draft.NewMachine(o.clock, o.shuffle)
	return o
}

// lockDraft serialises mutations of one draft within this process.
func (o *Orchestrator) lockDraft(draftID uuid.UUID) func() {
	o.locksMu.Lock()
	mu, ok := o.locks[draftID]
	if !ok {
		mu = &sync.Mutex{}
		o.locks[draftID] = mu
	}
	o.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// resolveMember maps the authenticated user to their seat in the league.
func resolveMember(ctx context.Context, r store.Reader, leagueID, userID uuid.UUID) (*models.LeagueMember, error) {
	if userID == uuid.Nil {
		return nil, drafterr.ErrUnauthenticated
	}
	member, err := r.GetMemberByUser(ctx, leagueID, userID)
	if err != nil {
		if drafterr.IsKind(err, drafterr.KindNotFound) {
			return nil, drafterr.ErrNotMember
		}
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}
	return member, nil
}

func resolveCommissioner(ctx context.Context, r store.Reader, leagueID, userID uuid.UUID) (*models.LeagueMember, error) {
	member, err := resolveMember(ctx, r, leagueID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsCommissioner() {
		return nil, drafterr.ErrNotCommissioner
	}
	return member, nil
}

// readerFor loads a draft and the caller's membership outside a transaction.
func (o *Orchestrator) readerFor(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, *models.LeagueMember, error) {
	if userID == uuid.Nil {
		return nil, nil, drafterr.ErrUnauthenticated
	}
	d, err := o.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	member, err := resolveMember(ctx, o.store, d.LeagueID, userID)
	if err != nil {
		return nil, nil, err
	}
	return d, member, nil
}

func logRejected(err error, draftID uuid.UUID, op string) {
	if drafterr.KindOf(err) == drafterr.KindUnavailable || drafterr.KindOf(err) == drafterr.KindUnknown {
		log.Error().Err(err).Str("draft_id", draftID.String()).Str("op", op).Msg("draft operation failed")
		return
	}
	log.Debug().Err(err).Str("draft_id", draftID.String()).Str("op", op).Msg("draft operation rejected")
}
