package orchestrator

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/rs/zerolog/log"
)

// expiry is the work item a deadline timer hands to the workers.
type expiry struct {
	DraftID     uuid.UUID
	MemberID    uuid.UUID
	OverallPick int
	Deadline    time.Time
}

type scheduledDeadline struct {
	timer  clockwork.Timer
	cancel chan struct{}
	pick   int
}

// afterCommit keeps the deadline watcher in step with a committed draft.
func (o *Orchestrator) afterCommit(d models.Draft) {
	if !d.IsActive() || d.PickDeadline == nil || d.CurrentMemberID == nil {
		o.cancelTimer(d.ID)
		return
	}
	o.scheduleDeadline(expiry{
		DraftID:     d.ID,
		MemberID:    *d.CurrentMemberID,
		OverallPick: d.CurrentPick,
		Deadline:    *d.PickDeadline,
	})
}

// scheduleDeadline arms a one-shot timer for the current pick. Scheduling the
// same pick twice is a no-op.
func (o *Orchestrator) scheduleDeadline(exp expiry) {
	o.activeTimersMu.Lock()
	if existing, ok := o.activeTimers[exp.DraftID]; ok && existing.pick == exp.OverallPick {
		o.activeTimersMu.Unlock()
		log.Debug().
			Str("draft_id", exp.DraftID.String()).
			Int("overall_pick", exp.OverallPick).
			Msg("skipping duplicate schedule - pick already scheduled")
		return
	}

	duration := exp.Deadline.Sub(o.clock.Now())
	if duration < 0 {
		duration = 0
	}
	sd := &scheduledDeadline{
		timer:  o.clock.NewTimer(duration),
		cancel: make(chan struct{}),
		pick:   exp.OverallPick,
	}
	o.replaceTimerLocked(exp.DraftID, sd)
	o.activeTimersMu.Unlock()

	go o.awaitDeadline(exp, sd)

	log.Debug().
		Str("draft_id", exp.DraftID.String()).
		Int("overall_pick", exp.OverallPick).
		Time("deadline", exp.Deadline).
		Dur("duration", duration).
		Msg("scheduled pick deadline")
}

func (o *Orchestrator) awaitDeadline(exp expiry, sd *scheduledDeadline) {
	select {
	case <-sd.timer.Chan():
		o.removeTimer(exp.DraftID, sd)
		select {
		case o.workCh <- exp:
			log.Debug().Str("draft_id", exp.DraftID.String()).Msg("deadline passed - enqueued for processing")
		default:
			log.Warn().Str("draft_id", exp.DraftID.String()).Msg("deadline passed but work channel full")
		}
	case <-sd.cancel:
	case <-o.stopCh:
		stopAndDrainTimer(sd.timer)
	}
}

// replaceTimerLocked swaps in a new timer, cancelling any existing one. Caller holds activeTimersMu.
func (o *Orchestrator) replaceTimerLocked(draftID uuid.UUID, sd *scheduledDeadline) {
	if existing, ok := o.activeTimers[draftID]; ok {
		stopAndDrainTimer(existing.timer)
		close(existing.cancel)
		log.Debug().Str("draft_id", draftID.String()).Msg("replaced existing timer")
	}
	o.activeTimers[draftID] = sd
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

// cancelTimer cancels and removes an active timer for a draft
func (o *Orchestrator) cancelTimer(draftID uuid.UUID) {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()

	if sd, ok := o.activeTimers[draftID]; ok {
		stopAndDrainTimer(sd.timer)
		close(sd.cancel)
		delete(o.activeTimers, draftID)
		log.Debug().Str("draft_id", draftID.String()).Msg("cancelled existing timer")
	}
}

// removeTimer forgets a timer that fired, unless it was already replaced.
func (o *Orchestrator) removeTimer(draftID uuid.UUID, sd *scheduledDeadline) {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()
	if o.activeTimers[draftID] == sd {
		delete(o.activeTimers, draftID)
	}
}

// pendingDeadlines reports how many drafts have an armed timer.
func (o *Orchestrator) pendingDeadlines() int {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()
	return len(o.activeTimers)
}
