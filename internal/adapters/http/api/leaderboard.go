package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/pkg/logger"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         Dependencies
	logger       logger.Logger
	cacheControl string
}

// NewLeaderboardHandler creates a new leaderboard handler. cacheControl is
// sent with every successful response.
func NewLeaderboardHandler(deps Dependencies, l logger.Logger, cacheControl string) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		logger:       l,
		cacheControl: cacheControl,
	}
}

// HandleGetLeaderboard handles GET /competitions/{id}/leaderboard requests.
// The id may be a competition id or slug.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	resp, err := h.deps.ComputeLeaderboard(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	case err != nil:
		h.logger.Error(r.Context(), "leaderboard request failed",
			logger.String("competition", id),
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	writeJSON(w, http.StatusOK, resp)
}

// cacheControl renders a public Cache-Control value.
func cacheControl(maxAge, staleWhileRevalidate time.Duration) string {
	v := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	if staleWhileRevalidate > 0 {
		v += fmt.Sprintf(", stale-while-revalidate=%d", int(staleWhileRevalidate.Seconds()))
	}
	return v
}
