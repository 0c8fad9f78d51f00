package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/service"
)

// ComplaintHandler serves complaint filing, history and status updates.
type ComplaintHandler struct {
	complaints *service.ComplaintService
	logger     *slog.Logger
}

func NewComplaintHandler(complaints *service.ComplaintService, logger *slog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		logger:     logger,
	}
}

type complaintRequest struct {
	ComplaintType string  `json:"complaintType"`
	Description   string  `json:"description"`
	Location      string  `json:"location"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// HandleFile files a complaint for the authenticated citizen.
//
// HTTP: POST /api/complaints
func (h *ComplaintHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	var req complaintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.complaints.File(r.Context(), service.ComplaintInput{
		UserID:      ident.UserID,
		Type:        model.ComplaintType(req.ComplaintType),
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleMine lists the authenticated citizen's complaints.
//
// HTTP: GET /api/complaints/mine
func (h *ComplaintHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	complaints, err := h.complaints.HistoryForUser(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, complaints)
}

// HandleGet returns one complaint. Citizens only see their own.
//
// HTTP: GET /api/complaints/{id}
func (h *ComplaintHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := h.complaints.Get(r.Context(), id, ident.UserID, ident.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type complaintStatusRequest struct {
	Status string `json:"status"`
}

// HandleStatus advances a complaint's status.
//
// HTTP: PATCH /api/complaints/{id}/status
func (h *ComplaintHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req complaintStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.complaints.AdvanceStatus(r.Context(), id, model.ComplaintStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}
