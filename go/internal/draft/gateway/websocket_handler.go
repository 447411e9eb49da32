package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for draft rooms and
// league waiting rooms
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	stateProvider     StateProvider
	presence          *presenceHub
	clock             clockwork.Clock
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, provider StateProvider, presence *presenceHub, clock clockwork.Clock) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		stateProvider:     provider,
		presence:          presence,
		clock:             clock,
	}
}

// HandleDraftConnection handles GET /ws/draft/{draftID}. The caller must be a
// member of the draft's league; the first frame is a full state snapshot.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuidParam(r, "draftID")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.stateProvider.GetDraftSnapshot(r.Context(), draftID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	frame, err := newFrame(EventTypeSnapshot, buildDraftState(snap), h.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	frame.DraftID = draftID.String()

	// Upgrade writes its own error response on failure.
	if _, err := h.connectionManager.UpgradeConnection(w, r, userID, snap.ViewerMemberID, DraftRoom(draftID), frame); err != nil {
		log.Debug().Err(err).Str("draft_id", draftID.String()).Msg("failed to upgrade draft connection")
	}
}

// HandleLobbyConnection handles GET /ws/lobby/{leagueID}. Joining marks the
// member present until their last lobby socket closes.
func (h *WebSocketHandler) HandleLobbyConnection(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuidParam(r, "leagueID")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	_, viewer, err := h.stateProvider.GetLeagueMembers(r.Context(), leagueID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Counted before the socket exists so its eventual unregister always
	// pairs with this join.
	added := h.presence.tracker.Join(leagueID, viewer.ID)
	if _, err := h.connectionManager.UpgradeConnection(w, r, userID, viewer.ID, LobbyRoom(leagueID)); err != nil {
		h.presence.tracker.Leave(leagueID, viewer.ID)
		log.Debug().Err(err).Str("league_id", leagueID.String()).Msg("failed to upgrade lobby connection")
		return
	}
	h.presence.changed(leagueID, added)
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// userFromRequest reads the caller identity. Browsers cannot set headers on a
// websocket handshake, so the user_id query parameter is accepted as well.
func userFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(draft.UserIDHeader)
	if raw == "" {
		raw = r.URL.Query().Get("user_id")
	}
	if raw == "" {
		return uuid.Nil, drafterr.ErrUnauthenticated
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, drafterr.Wrap(drafterr.KindUnauthenticated, err, "malformed user id")
	}
	return userID, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, drafterr.Wrap(drafterr.KindInvalidArgument, err, "invalid "+name)
	}
	return id, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func httpStatus(kind drafterr.Kind) int {
	switch kind {
	case drafterr.KindUnauthenticated:
		return http.StatusUnauthorized
	case drafterr.KindPermissionDenied:
		return http.StatusForbidden
	case drafterr.KindNotFound:
		return http.StatusNotFound
	case drafterr.KindInvalidArgument:
		return http.StatusBadRequest
	case drafterr.KindTurnViolation, drafterr.KindConflict, drafterr.KindConfiguration:
		return http.StatusConflict
	case drafterr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := drafterr.KindOf(err)
	status := httpStatus(kind)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("gateway request failed")
		msg = http.StatusText(status)
	}
	var de *drafterr.Error
	if errors.As(err, &de) && status < http.StatusInternalServerError {
		msg = de.Msg
	}
	writeJSON(w, status, errorResponse{Error: kind.String(), Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
