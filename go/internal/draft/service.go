package draft

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	machine "github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/draft"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/orchestrator"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// ServiceName is the fully-qualified name of the draft service.
const ServiceName = "draft.v1.DraftService"

// Procedure paths.
const (
	CreateDraftProcedure         = "/" + ServiceName + "/CreateDraft"
	StartDraftProcedure          = "/" + ServiceName + "/StartDraft"
	MakePickProcedure            = "/" + ServiceName + "/MakePick"
	EndDraftProcedure            = "/" + ServiceName + "/EndDraft"
	AddToQueueProcedure          = "/" + ServiceName + "/AddToQueue"
	RemoveFromQueueProcedure     = "/" + ServiceName + "/RemoveFromQueue"
	ReorderQueueProcedure        = "/" + ServiceName + "/ReorderQueue"
	GetUserQueueProcedure        = "/" + ServiceName + "/GetUserQueue"
	GetDraftPicksProcedure       = "/" + ServiceName + "/GetDraftPicks"
	GetActiveDraftProcedure      = "/" + ServiceName + "/GetActiveDraft"
	GetDraftablePlayersProcedure = "/" + ServiceName + "/GetDraftablePlayers"
	GetNextQueuedPlayerProcedure = "/" + ServiceName + "/GetNextQueuedPlayer"
	GetDraftSnapshotProcedure    = "/" + ServiceName + "/GetDraftSnapshot"
)

// Engine defines what the service layer needs from the draft orchestrator
type Engine interface {
	CreateDraft(ctx context.Context, userID uuid.UUID, req machine.CreateDraftRequest) (*models.Draft, error)
	StartDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error)
	MakePick(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.DraftPick, *models.Draft, error)
	EndDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error)
	AddToQueue(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.QueueEntry, error)
	RemoveFromQueue(ctx context.Context, draftID, userID, entryID uuid.UUID) error
	ReorderQueue(ctx context.Context, draftID, userID, entryID uuid.UUID, newRank int) ([]models.QueueEntry, error)
	GetUserQueue(ctx context.Context, draftID, userID uuid.UUID) ([]models.QueueEntry, error)
	GetDraftPicks(ctx context.Context, draftID, userID uuid.UUID) ([]models.DraftPick, error)
	GetActiveDraft(ctx context.Context, leagueID, userID uuid.UUID) (*models.Draft, error)
	GetDraftablePlayers(ctx context.Context, draftID, userID uuid.UUID, filter models.PlayerFilter) ([]models.Player, error)
	NextAvailableFromQueue(ctx context.Context, draftID, userID uuid.UUID) (*models.QueueEntry, error)
	GetDraftSnapshot(ctx context.Context, draftID, userID uuid.UUID) (*orchestrator.Snapshot, error)
}

// Service implements the DraftService connect handlers
type Service struct {
	engine Engine
}

// NewService creates a new draft service
func NewService(engine Engine) *Service {
	return &Service{
		engine: engine,
	}
}

// Handler returns the service's path prefix and a handler serving every procedure.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(NewIdentityInterceptor()),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateDraftProcedure, connect.NewUnaryHandler(CreateDraftProcedure, s.CreateDraft, opts...))
	mux.Handle(StartDraftProcedure, connect.NewUnaryHandler(StartDraftProcedure, s.StartDraft, opts...))
	mux.Handle(MakePickProcedure, connect.NewUnaryHandler(MakePickProcedure, s.MakePick, opts...))
	mux.Handle(EndDraftProcedure, connect.NewUnaryHandler(EndDraftProcedure, s.EndDraft, opts...))
	mux.Handle(AddToQueueProcedure, connect.NewUnaryHandler(AddToQueueProcedure, s.AddToQueue, opts...))
	mux.Handle(RemoveFromQueueProcedure, connect.NewUnaryHandler(RemoveFromQueueProcedure, s.RemoveFromQueue, opts...))
	mux.Handle(ReorderQueueProcedure, connect.NewUnaryHandler(ReorderQueueProcedure, s.ReorderQueue, opts...))
	mux.Handle(GetUserQueueProcedure, connect.NewUnaryHandler(GetUserQueueProcedure, s.GetUserQueue, opts...))
	mux.Handle(GetDraftPicksProcedure, connect.NewUnaryHandler(GetDraftPicksProcedure, s.GetDraftPicks, opts...))
	mux.Handle(GetActiveDraftProcedure, connect.NewUnaryHandler(GetActiveDraftProcedure, s.GetActiveDraft, opts...))
	mux.Handle(GetDraftablePlayersProcedure, connect.NewUnaryHandler(GetDraftablePlayersProcedure, s.GetDraftablePlayers, opts...))
	mux.Handle(GetNextQueuedPlayerProcedure, connect.NewUnaryHandler(GetNextQueuedPlayerProcedure, s.GetNextQueuedPlayer, opts...))
	mux.Handle(GetDraftSnapshotProcedure, connect.NewUnaryHandler(GetDraftSnapshotProcedure, s.GetDraftSnapshot, opts...))
	return "/" + ServiceName + "/", mux
}

type CreateDraftRequest struct {
	LeagueID       uuid.UUID  `json:"league_id"`
	DraftType      string     `json:"draft_type,omitempty"`
	Rounds         int        `json:"rounds"`
	TimePerPickSec int        `json:"time_per_pick_sec,omitempty"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
}

type DraftRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
}

type DraftResponse struct {
	Draft *models.Draft `json:"draft"`
}

type MakePickRequest struct {
	DraftID  uuid.UUID `json:"draft_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

type MakePickResponse struct {
	Pick  *models.DraftPick `json:"pick"`
	Draft *models.Draft     `json:"draft"`
}

type AddToQueueRequest struct {
	DraftID  uuid.UUID `json:"draft_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

type QueueEntryRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
	EntryID uuid.UUID `json:"entry_id"`
}

type ReorderQueueRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
	EntryID uuid.UUID `json:"entry_id"`
	NewRank int       `json:"new_rank"`
}

type QueueEntryResponse struct {
	Entry *models.QueueEntry `json:"entry"`
}

type QueueResponse struct {
	Entries []models.QueueEntry `json:"entries"`
}

type PicksResponse struct {
	Picks []models.DraftPick `json:"picks"`
}

type LeagueRequest struct {
	LeagueID uuid.UUID `json:"league_id"`
}

type GetDraftablePlayersRequest struct {
	DraftID  uuid.UUID `json:"draft_id"`
	Position string    `json:"position,omitempty"`
	Search   string    `json:"search,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

type PlayersResponse struct {
	Players []models.Player `json:"players"`
}

type Empty struct{}

// CreateDraft creates a new draft
func (s *Service) CreateDraft(ctx context.Context, req *connect.Request[CreateDraftRequest]) (*connect.Response[DraftResponse], error) {
	if req.Msg.LeagueID == uuid.Nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("league_id is required"))
	}
	d, err := s.engine.CreateDraft(ctx, UserFromContext(ctx), machine.CreateDraftRequest{
		LeagueID:  req.Msg.LeagueID,
		DraftType: models.DraftType(req.Msg.DraftType),
		Settings: models.DraftSettings{
			Rounds:         req.Msg.Rounds,
			TimePerPickSec: req.Msg.TimePerPickSec,
		},
		ScheduledAt: req.Msg.ScheduledAt,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DraftResponse{Draft: d}), nil
}

// StartDraft starts a scheduled draft
func (s *Service) StartDraft(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[DraftResponse], error) {
	d, err := s.engine.StartDraft(ctx, req.Msg.DraftID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DraftResponse{Draft: d}), nil
}

// MakePick drafts a player for the caller
func (s *Service) MakePick(ctx context.Context, req *connect.Request[MakePickRequest]) (*connect.Response[MakePickResponse], error) {
	if req.Msg.PlayerID == uuid.Nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}
	pick, d, err := s.engine.MakePick(ctx, req.Msg.DraftID, UserFromContext(ctx), req.Msg.PlayerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&MakePickResponse{Pick: pick, Draft: d}), nil
}

// EndDraft forces a draft to completion
func (s *Service) EndDraft(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[DraftResponse], error) {
	d, err := s.engine.EndDraft(ctx, req.Msg.DraftID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DraftResponse{Draft: d}), nil
}

// AddToQueue appends a player to the caller's queue
func (s *Service) AddToQueue(ctx context.Context, req *connect.Request[AddToQueueRequest]) (*connect.Response[QueueEntryResponse], error) {
	entry, err := s.engine.AddToQueue(ctx, req.Msg.DraftID, UserFromContext(ctx), req.Msg.PlayerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&QueueEntryResponse{Entry: entry}), nil
}

// RemoveFromQueue deletes an entry from the caller's queue
func (s *Service) RemoveFromQueue(ctx context.Context, req *connect.Request[QueueEntryRequest]) (*connect.Response[Empty], error) {
	if err := s.engine.RemoveFromQueue(ctx, req.Msg.DraftID, UserFromContext(ctx), req.Msg.EntryID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// ReorderQueue moves an entry within the caller's queue
func (s *Service) ReorderQueue(ctx context.Context, req *connect.Request[ReorderQueueRequest]) (*connect.Response[QueueResponse], error) {
	entries, err := s.engine.ReorderQueue(ctx, req.Msg.DraftID, UserFromContext(ctx), req.Msg.EntryID, req.Msg.NewRank)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&QueueResponse{Entries: entries}), nil
}

// GetUserQueue returns the caller's queue
func (s *Service) GetUserQueue(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[QueueResponse], error) {
	entries, err := s.engine.GetUserQueue(ctx, req.Msg.DraftID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&QueueResponse{Entries: entries}), nil
}

// GetDraftPicks returns every pick made so far
func (s *Service) GetDraftPicks(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[PicksResponse], error) {
	picks, err := s.engine.GetDraftPicks(ctx, req.Msg.DraftID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PicksResponse{Picks: picks}), nil
}

// GetActiveDraft returns a league's draft
func (s *Service) GetActiveDraft(ctx context.Context, req *connect.Request[LeagueRequest]) (*connect.Response[DraftResponse], error) {
	d, err := s.engine.GetActiveDraft(ctx, req.Msg.LeagueID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DraftResponse{Draft: d}), nil
}

// GetDraftablePlayers lists players not yet drafted
func (s *Service) GetDraftablePlayers(ctx context.Context, req *connect.Request[GetDraftablePlayersRequest]) (*connect.Response[PlayersResponse], error) {
	players, err := s.engine.GetDraftablePlayers(ctx, req.Msg.DraftID, UserFromContext(ctx), models.PlayerFilter{
		Position: req.Msg.Position,
		Search:   req.Msg.Search,
		Limit:    req.Msg.Limit,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PlayersResponse{Players: players}), nil
}

// GetNextQueuedPlayer returns the caller's best undrafted queued player, if any
func (s *Service) GetNextQueuedPlayer(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[QueueEntryResponse], error) {
	entry, err := s.engine.NextAvailableFromQueue(ctx, req.Msg.DraftID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&QueueEntryResponse{Entry: entry}), nil
}

// GetDraftSnapshot returns the full draft state for a reconnecting client
func (s *Service) GetDraftSnapshot(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[orchestrator.Snapshot], error) {
	snap, err := s.engine.GetDraftSnapshot(ctx, req.Msg.DraftID, UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(snap), nil
}

// toConnectError maps engine error kinds onto connect codes.
func toConnectError(err error) error {
	code := connect.CodeInternal
	switch drafterr.KindOf(err) {
	case drafterr.KindUnauthenticated:
		code = connect.CodeUnauthenticated
	case drafterr.KindPermissionDenied:
		code = connect.CodePermissionDenied
	case drafterr.KindTurnViolation, drafterr.KindConfiguration:
		code = connect.CodeFailedPrecondition
	case drafterr.KindConflict:
		switch {
		case errors.Is(err, drafterr.ErrDraftExists), errors.Is(err, drafterr.ErrAlreadyDrafted), errors.Is(err, drafterr.ErrAlreadyQueued):
			code = connect.CodeAlreadyExists
		case errors.Is(err, drafterr.ErrStalePick):
			code = connect.CodeAborted
		default:
			code = connect.CodeFailedPrecondition
		}
	case drafterr.KindNotFound:
		code = connect.CodeNotFound
	case drafterr.KindInvalidArgument:
		code = connect.CodeInvalidArgument
	case drafterr.KindUnavailable:
		code = connect.CodeUnavailable
	}

	cerr := connect.NewError(code, err)
	cerr.Meta().Set("X-Draft-Error", drafterr.KindOf(err).String())
	return cerr
}
