package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/draft"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/events"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/order"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/queue"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/store"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/rs/zerolog/log"
)

// CreateDraft schedules the league's draft. Commissioner only.
func (o *Orchestrator) CreateDraft(ctx context.Context, userID uuid.UUID, req draft.CreateDraftRequest) (*models.Draft, error) {
	if req.DraftType == "" {
		req.DraftType = models.DraftTypeSnake
	}
	if req.Settings.TimePerPickSec == 0 {
		req.Settings.TimePerPickSec = o.cfg.DefaultTimePerPickSec
	}
	if req.Settings.Rounds > o.cfg.MaxRounds {
		return nil, drafterr.New(drafterr.KindInvalidArgument, "rounds must be at most %d", o.cfg.MaxRounds)
	}

	created, err := o.machine.Create(req)
	if err != nil {
		return nil, err
	}
	err = o.store.InTx(ctx, func(tx store.Tx) error {
		commissioner, err := resolveCommissioner(ctx, tx, req.LeagueID, userID)
		if err != nil {
			return err
		}
		if _, err := tx.GetDraftByLeague(ctx, req.LeagueID); err == nil {
			return drafterr.ErrDraftExists
		} else if !drafterr.IsKind(err, drafterr.KindNotFound) {
			return fmt.Errorf("failed to check existing draft: %w", err)
		}

		d := created
		if err := tx.InsertDraft(ctx, d); err != nil {
			return fmt.Errorf("failed to insert draft: %w", err)
		}
		payload := events.DraftCreatedPayload{
			DraftID:     d.ID.String(),
			LeagueID:    d.LeagueID.String(),
			DraftType:   string(d.DraftType),
			TotalRounds: d.Settings.Rounds,
			ScheduledAt: d.ScheduledAt,
		}
		if err := emit(ctx, tx, d.ID, events.EventTypeDraftCreated, payload, actorMeta(commissioner), d.CreatedAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		logRejected(err, created.ID, "create_draft")
		return nil, err
	}

	log.Info().
		Str("draft_id", created.ID.String()).
		Str("league_id", created.LeagueID.String()).
		Int("rounds", created.Settings.Rounds).
		Int("time_per_pick_sec", created.Settings.TimePerPickSec).
		Msg("draft created")
	return created, nil
}

// StartDraft activates the draft, assigning pick order on first start. Commissioner only.
func (o *Orchestrator) StartDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error) {
	if userID == uuid.Nil {
		return nil, drafterr.ErrUnauthenticated
	}
	unlock := o.lockDraft(draftID)
	defer unlock()

	var started models.Draft
	err := o.store.InTx(ctx, func(tx store.Tx) error {
		d, err := tx.LockDraft(ctx, draftID)
		if err != nil {
			return err
		}
		commissioner, err := resolveCommissioner(ctx, tx, d.LeagueID, userID)
		if err != nil {
			return err
		}
		members, err := tx.ListMembers(ctx, d.LeagueID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		t, err := o.machine.Start(*d, members)
		if err != nil {
			return err
		}
		if t.PickOrder != nil {
			if err := tx.AssignPickOrder(ctx, d.LeagueID, t.PickOrder); err != nil {
				return fmt.Errorf("failed to assign pick order: %w", err)
			}
		}
		if err := tx.UpdateDraft(ctx, &t.Draft, t.ExpectedPick); err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}

		now := t.Draft.UpdatedAt
		meta := actorMeta(commissioner)
		startedPayload := events.DraftStartedPayload{
			DraftID:     d.ID.String(),
			DraftType:   string(d.DraftType),
			StartedAt:   now,
			TotalRounds: d.Settings.Rounds,
			TotalPicks:  order.TotalPicks(d.Settings.Rounds, len(members)),
			PickOrder:   memberIDs(members),
		}
		if err := emit(ctx, tx, d.ID, events.EventTypeDraftStarted, startedPayload, meta, now); err != nil {
			return err
		}
		if err := emit(ctx, tx, d.ID, events.EventTypePickStarted, pickStartedPayload(t.Draft, len(members)), meta, now); err != nil {
			return err
		}
		started = t.Draft
		return nil
	})
	if err != nil {
		logRejected(err, draftID, "start_draft")
		return nil, err
	}

	o.afterCommit(started)
	log.Info().
		Str("draft_id", draftID.String()).
		Str("member_id", started.CurrentMemberID.String()).
		Time("pick_deadline", *started.PickDeadline).
		Msg("draft started")
	return &started, nil
}

// MakePick drafts playerID for the caller, who must be on the clock. The pick,
// the queue purge, the turn advance and the notifications commit together.
func (o *Orchestrator) MakePick(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.DraftPick, *models.Draft, error) {
	if userID == uuid.Nil {
		return nil, nil, drafterr.ErrUnauthenticated
	}
	unlock := o.lockDraft(draftID)
	defer unlock()

	var (
		pick *models.DraftPick
		next models.Draft
	)
	err := o.store.InTx(ctx, func(tx store.Tx) error {
		d, err := tx.LockDraft(ctx, draftID)
		if err != nil {
			return err
		}
		member, err := resolveMember(ctx, tx, d.LeagueID, userID)
		if err != nil {
			return err
		}
		if err := o.machine.CheckPick(d, member.ID); err != nil {
			return err
		}
		if _, err := tx.GetPlayer(ctx, playerID); err != nil {
			return err
		}
		drafted, err := tx.IsPlayerDrafted(ctx, draftID, playerID)
		if err != nil {
			return fmt.Errorf("failed to check drafted player: %w", err)
		}
		if drafted {
			return drafterr.ErrAlreadyDrafted
		}
		members, err := tx.ListMembers(ctx, d.LeagueID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		seats := order.Seated(members)

		p, t, err := o.machine.MakePick(*d, seats, member.ID, playerID)
		if err != nil {
			return err
		}
		if err := tx.InsertPick(ctx, p); err != nil {
			return fmt.Errorf("failed to insert pick: %w", err)
		}
		purged, err := queue.NewApp(tx, o.clock).PurgePlayer(ctx, draftID, playerID)
		if err != nil {
			return err
		}
		if err := tx.UpdateDraft(ctx, &t.Draft, t.ExpectedPick); err != nil {
			return fmt.Errorf("failed to advance draft: %w", err)
		}

		meta := actorMeta(member)
		madePayload := events.PickMadePayload{
			PickID:      p.ID.String(),
			MemberID:    p.MemberID.String(),
			PlayerID:    p.PlayerID.String(),
			Round:       p.Round,
			Pick:        p.Pick,
			OverallPick: p.OverallPick,
			MadeAt:      p.PickedAt,
		}
		if err := emit(ctx, tx, draftID, events.EventTypePickMade, madePayload, meta, p.PickedAt); err != nil {
			return err
		}
		if t.Completed() {
			err = emit(ctx, tx, draftID, events.EventTypeDraftCompleted, draftCompletedPayload(t.Draft, false), meta, p.PickedAt)
		} else {
			err = emit(ctx, tx, draftID, events.EventTypePickStarted, pickStartedPayload(t.Draft, len(seats)), meta, p.PickedAt)
		}
		if err != nil {
			return err
		}
		if len(purged) > 0 {
			queuePayload := events.QueueUpdatedPayload{
				MemberIDs: uuidStrings(purged),
				Reason:    "player_drafted",
				PlayerID:  playerID.String(),
			}
			if err := emit(ctx, tx, draftID, events.EventTypeQueueUpdated, queuePayload, actorMeta(member, purged...), p.PickedAt); err != nil {
				return err
			}
		}

		pick = p
		next = t.Draft
		return nil
	})
	if err != nil {
		logRejected(err, draftID, "make_pick")
		return nil, nil, err
	}

	o.afterCommit(next)
	log.Info().
		Str("draft_id", draftID.String()).
		Str("member_id", pick.MemberID.String()).
		Str("player_id", pick.PlayerID.String()).
		Int("overall_pick", pick.OverallPick).
		Str("status", string(next.Status)).
		Msg("pick made")
	return pick, &next, nil
}

// EndDraft forces the draft to completion. Commissioner only.
func (o *Orchestrator) EndDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error) {
	if userID == uuid.Nil {
		return nil, drafterr.ErrUnauthenticated
	}
	unlock := o.lockDraft(draftID)
	defer unlock()

	var ended models.Draft
	err := o.store.InTx(ctx, func(tx store.Tx) error {
		d, err := tx.LockDraft(ctx, draftID)
		if err != nil {
			return err
		}
		commissioner, err := resolveCommissioner(ctx, tx, d.LeagueID, userID)
		if err != nil {
			return err
		}
		t, err := o.machine.End(*d)
		if err != nil {
			return err
		}
		if err := tx.UpdateDraft(ctx, &t.Draft, t.ExpectedPick); err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}
		if err := emit(ctx, tx, draftID, events.EventTypeDraftCompleted, draftCompletedPayload(t.Draft, true), actorMeta(commissioner), t.Draft.UpdatedAt); err != nil {
			return err
		}
		ended = t.Draft
		return nil
	})
	if err != nil {
		logRejected(err, draftID, "end_draft")
		return nil, err
	}

	o.afterCommit(ended)
	log.Info().Str("draft_id", draftID.String()).Int("picks_made", ended.CurrentPick-1).Msg("draft ended by commissioner")
	return &ended, nil
}

// GetActiveDraft returns the league's draft.
func (o *Orchestrator) GetActiveDraft(ctx context.Context, leagueID, userID uuid.UUID) (*models.Draft, error) {
	if _, err := resolveMember(ctx, o.store, leagueID, userID); err != nil {
		return nil, err
	}
	return o.store.GetDraftByLeague(ctx, leagueID)
}

// GetLeagueMembers returns the league roster in pick order along with the
// caller's own seat.
func (o *Orchestrator) GetLeagueMembers(ctx context.Context, leagueID, userID uuid.UUID) ([]models.LeagueMember, *models.LeagueMember, error) {
	viewer, err := resolveMember(ctx, o.store, leagueID, userID)
	if err != nil {
		return nil, nil, err
	}
	members, err := o.store.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, viewer, nil
}

// GetDraftPicks returns every pick so far in overall order.
func (o *Orchestrator) GetDraftPicks(ctx context.Context, draftID, userID uuid.UUID) ([]models.DraftPick, error) {
	if _, _, err := o.readerFor(ctx, draftID, userID); err != nil {
		return nil, err
	}
	return o.store.ListPicks(ctx, draftID)
}

// GetDraftablePlayers returns the player pool minus players already drafted.
func (o *Orchestrator) GetDraftablePlayers(ctx context.Context, draftID, userID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error) {
	if _, _, err := o.readerFor(ctx, draftID, userID); err != nil {
		return nil, err
	}
	return o.store.ListDraftablePlayers(ctx, draftID, filter)
}

// Snapshot is everything a reconnecting client needs to rebuild its view.
type Snapshot struct {
	Draft            models.Draft          `json:"draft"`
	Members          []models.LeagueMember `json:"members"`
	Picks            []models.DraftPick    `json:"picks"`
	Queue            []models.QueueEntry   `json:"queue"`
	ViewerMemberID   uuid.UUID             `json:"viewer_member_id"`
	ServerTime       time.Time             `json:"server_time"`
	SecondsRemaining int                   `json:"seconds_remaining"`
}

// GetDraftSnapshot reads the draft, members, picks and the caller's queue
// under the draft lock, so the pieces agree with each other.
func (o *Orchestrator) GetDraftSnapshot(ctx context.Context, draftID, userID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, drafterr.ErrUnauthenticated
	}

	var snap Snapshot
	err := o.store.InTx(ctx, func(tx store.Tx) error {
		d, err := tx.LockDraft(ctx, draftID)
		if err != nil {
			return err
		}
		member, err := resolveMember(ctx, tx, d.LeagueID, userID)
		if err != nil {
			return err
		}
		members, err := tx.ListMembers(ctx, d.LeagueID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		picks, err := tx.ListPicks(ctx, draftID)
		if err != nil {
			return fmt.Errorf("failed to list picks: %w", err)
		}
		entries, err := tx.ListQueue(ctx, draftID, member.ID)
		if err != nil {
			return fmt.Errorf("failed to list queue: %w", err)
		}

		now := o.clock.Now()
		snap = Snapshot{
			Draft:          *d,
			Members:        members,
			Picks:          picks,
			Queue:          entries,
			ViewerMemberID: member.ID,
			ServerTime:     now,
		}
		if d.IsActive() && d.PickDeadline != nil && d.PickDeadline.After(now) {
			snap.SecondsRemaining = int(d.PickDeadline.Sub(now).Seconds())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
