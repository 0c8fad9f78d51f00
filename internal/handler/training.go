package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/service"
)

// TrainingHandler serves the training catalog and module completions.
type TrainingHandler struct {
	training *service.TrainingService
	logger   *slog.Logger
}

func NewTrainingHandler(training *service.TrainingService, logger *slog.Logger) *TrainingHandler {
	return &TrainingHandler{
		training: training,
		logger:   logger,
	}
}

// HandleModules returns the module catalog.
//
// HTTP: GET /api/training/modules
func (h *TrainingHandler) HandleModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.training.Modules())
}

// HandleComplete credits a module's points to the caller. A repeat
// completion of the same module is a 409.
//
// HTTP: POST /api/training/{id}/complete
func (h *TrainingHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	moduleID := chi.URLParam(r, "id")

	balance, err := h.training.Complete(r.Context(), ident.UserID, moduleID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"moduleId":   moduleID,
		"newBalance": balance,
	})
}
