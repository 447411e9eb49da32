package gateway

import (
	"net/http"
)

// StateHandler serves the reconnect and presence reads
type StateHandler struct {
	stateProvider StateProvider
	presence      *presenceHub
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider, presence *presenceHub) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
		presence:      presence,
	}
}

// HandleGetDraftState handles GET /api/drafts/{draftID}/state
func (h *StateHandler) HandleGetDraftState(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, buildDraftState(snap))
}

// HandleGetPresence handles GET /api/leagues/{leagueID}/presence. The caller
// is counted present.
func (h *StateHandler) HandleGetPresence(w http.ResponseWriter, r *http.Request) {
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

	members, viewer, err := h.stateProvider.GetLeagueMembers(r.Context(), leagueID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	active := h.presence.tracker.Snapshot(leagueID, viewer.ID)
	writeJSON(w, http.StatusOK, buildPresenceState(leagueID, members, active))
}
