package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/service"
)

// RewardsHandler serves the caller's points statement.
type RewardsHandler struct {
	rewards *service.RewardsService
	logger  *slog.Logger
}

func NewRewardsHandler(rewards *service.RewardsService, logger *slog.Logger) *RewardsHandler {
	return &RewardsHandler{
		rewards: rewards,
		logger:  logger,
	}
}

// HandleMine lists the caller's ledger entries, newest first.
//
// HTTP: GET /api/rewards/mine
func (h *RewardsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	events, err := h.rewards.History(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
