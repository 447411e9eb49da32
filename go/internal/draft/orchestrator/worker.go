package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/outbox"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/rs/zerolog/log"
)

// Run re-arms deadlines for every active draft and processes expiries until
// ctx is cancelled. An expiry only publishes PickExpired; it never picks.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().
		Str("instance", o.instanceID).
		Int("workers", o.numWorkers).
		Msg("deadline watcher started")

	var wg sync.WaitGroup
	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(ctx, &wg, i)
	}

	if err := o.Recover(ctx); err != nil {
		log.Error().Err(err).Str("instance", o.instanceID).Msg("failed to recover pick deadlines")
	}

	<-ctx.Done()
	log.Info().Str("instance", o.instanceID).Msg("deadline watcher shutdown requested")
	o.Stop()
	wg.Wait()
	log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	return nil
}

// Recover schedules the current deadline of every in-progress draft.
func (o *Orchestrator) Recover(ctx context.Context) error {
	drafts, err := o.store.ListActiveDrafts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active drafts: %w", err)
	}
	for _, d := range drafts {
		o.afterCommit(d)
	}
	log.Info().Int("drafts", len(drafts)).Msg("recovered pick deadlines")
	return nil
}

// Stop cancels every armed timer. Safe to call more than once.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopCh)
		o.activeTimersMu.Lock()
		for draftID, sd := range o.activeTimers {
			stopAndDrainTimer(sd.timer)
			log.Debug().Str("draft_id", draftID.String()).Msg("cancelled timer on shutdown")
		}
		o.activeTimers = make(map[uuid.UUID]*scheduledDeadline)
		o.activeTimersMu.Unlock()
	})
}

// worker processes pick deadlines from the work channel
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Debug().
				Str("instance", o.instanceID).
				Int("worker_id", workerID).
				Msg("worker shutting down")
			return
		case exp := <-o.workCh:
			if err := o.handleExpiry(ctx, exp); err != nil {
				log.Error().
					Err(err).
					Str("draft_id", exp.DraftID.String()).
					Int("overall_pick", exp.OverallPick).
					Int("worker_id", workerID).
					Msg("deadline handling failed")
			}
		}
	}
}

// handleExpiry records a PickExpired notification if the pick is still open
// and its deadline has passed. The event id is keyed on the pick, so replays
// and other instances collapse into one notification.
func (o *Orchestrator) handleExpiry(ctx context.Context, exp expiry) error {
	unlock := o.lockDraft(exp.DraftID)
	defer unlock()

	emitted := false
	err := o.store.InTx(ctx, func(tx store.Tx) error {
		d, err := tx.LockDraft(ctx, exp.DraftID)
		if err != nil {
			return err
		}
		if !d.IsActive() || d.CurrentPick != exp.OverallPick || d.PickDeadline == nil || d.CurrentMemberID == nil {
			return nil
		}
		now := o.clock.Now()
		if now.Before(*d.PickDeadline) {
			return nil
		}

		payload := events.PickExpiredPayload{
			MemberID:    d.CurrentMemberID.String(),
			OverallPick: d.CurrentPick,
			Deadline:    *d.PickDeadline,
		}
		ev, err := outbox.NewKeyedEvent(strconv.Itoa(d.CurrentPick), d.ID, events.EventTypePickExpired, payload, nil, now)
		if err != nil {
			return err
		}
		if err := tx.InsertOutboxEvent(ctx, ev); err != nil {
			return fmt.Errorf("failed to insert %s event: %w", events.EventTypePickExpired, err)
		}
		emitted = true
		return nil
	})
	if err != nil {
		return err
	}

	if emitted {
		log.Info().
			Str("draft_id", exp.DraftID.String()).
			Str("member_id", exp.MemberID.String()).
			Int("overall_pick", exp.OverallPick).
			Msg("pick deadline passed")
	} else {
		log.Debug().
			Str("draft_id", exp.DraftID.String()).
			Int("overall_pick", exp.OverallPick).
			Msg("stale deadline ignored")
	}
	return nil
}
