package apiserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"friendly/internal/middleware"
	"friendly/internal/models"
	"friendly/internal/services"
)

// MatchHandler exposes the candidate feed and match operations over HTTP.
type MatchHandler struct {
	matchService services.MatchService
}

// NewMatchHandler creates a new MatchHandler instance.
func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// MatchResponse reports the result of a match decision. Decisions are
// first-write-wins: when a decision for the pair already exists, Mutual
// reflects the stored decision, not the verb of this request — a no-match
// replayed over a stored positive can still report Mutual=true.
type MatchResponse struct {
	Target string `json:"target"`
	Mutual bool   `json:"mutual"`
}

// Candidates returns the session user's candidate feed.
func (h *MatchHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	cards, err := h.matchService.CandidateFeed(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, "user not found", http.StatusNotFound)
		default:
			writeJSONError(w, "failed to load candidates", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, cards)
}

// Match records a positive decision about the target user.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	h.recordDecision(w, r, true)
}

// NoMatch records a negative decision about the target user.
func (h *MatchHandler) NoMatch(w http.ResponseWriter, r *http.Request) {
	h.recordDecision(w, r, false)
}

func (h *MatchHandler) recordDecision(w http.ResponseWriter, r *http.Request, interested bool) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	target := mux.Vars(r)["username"]

	mutual, err := h.matchService.RecordInterest(r.Context(), username, target, interested)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfMatch):
			writeJSONError(w, "cannot match with yourself", http.StatusBadRequest)
		case errors.Is(err, services.ErrTargetNotFound):
			writeJSONError(w, "match target not found", http.StatusNotFound)
		default:
			writeJSONError(w, "failed to record decision", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, MatchResponse{Target: target, Mutual: mutual})
}

// PotentialMatches lists users who liked the session user and are still
// awaiting a response. Only the session user may view their own list.
func (h *MatchHandler) PotentialMatches(w http.ResponseWriter, r *http.Request) {
	h.matchList(w, r, h.matchService.PotentialMatches)
}

// Matches lists the session user's confirmed mutual matches.
func (h *MatchHandler) Matches(w http.ResponseWriter, r *http.Request) {
	h.matchList(w, r, h.matchService.ConfirmedMatches)
}

func (h *MatchHandler) matchList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, sessionUser, username string) ([]models.UserCard, error)) {
	sessionUser, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	username := mux.Vars(r)["username"]

	cards, err := list(r.Context(), sessionUser, username)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthorized) {
			writeJSONError(w, "access unauthorized", http.StatusForbidden)
		} else {
			writeJSONError(w, "failed to load matches", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, cards)
}
