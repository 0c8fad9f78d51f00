package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/service"
)

// dateLayout is how clients send calendar dates.
const dateLayout = "2006-01-02"

// CollectionHandler serves pickup booking, history, the worker route
// view and status updates.
type CollectionHandler struct {
	collections *service.CollectionService
	logger      *slog.Logger
}

func NewCollectionHandler(collections *service.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		collections: collections,
		logger:      logger,
	}
}

type scheduleRequest struct {
	ScheduledFor string  `json:"scheduledFor"` // "2006-01-02" or RFC 3339
	WasteType    string  `json:"wasteType"`
	WeightKg     float64 `json:"weightKg"`
	Segregated   bool    `json:"segregated"`
	Address      string  `json:"address"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// HandleSchedule books a pickup for the authenticated citizen.
//
// HTTP: POST /api/collections
func (h *CollectionHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	scheduledFor, err := parseFlexibleTime(req.ScheduledFor)
	if err != nil {
		writeError(w, apperror.ValidationFailed("scheduledFor", "date must be YYYY-MM-DD or RFC 3339"))
		return
	}

	res, err := h.collections.Schedule(r.Context(), service.ScheduleInput{
		UserID:       ident.UserID,
		ScheduledFor: scheduledFor,
		WasteType:    model.WasteType(req.WasteType),
		WeightKg:     req.WeightKg,
		Segregated:   req.Segregated,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleMine lists the authenticated citizen's pickups.
//
// HTTP: GET /api/collections/mine
func (h *CollectionHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	collections, err := h.collections.HistoryForUser(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collections)
}

// HandleGet returns one pickup. Citizens only see their own.
//
// HTTP: GET /api/collections/{id}
func (h *CollectionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := h.collections.Get(r.Context(), id, ident.UserID, ident.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// HandleRoute lists all pickups on a date for the collection crew.
// Defaults to today when ?date= is absent.
//
// HTTP: GET /api/collections/route?date=2006-01-02
func (h *CollectionHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			writeError(w, apperror.ValidationFailed("date", "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	route, err := h.collections.RouteForDate(r.Context(), day)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, route)
}

type statusRequest struct {
	Status        string `json:"status"`
	CollectedBy   string `json:"collectedBy,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
}

// HandleStatus advances a pickup's status.
//
// HTTP: PATCH /api/collections/{id}/status
func (h *CollectionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.collections.AdvanceStatus(r.Context(),
		id, model.CollectionStatus(req.Status), req.CollectedBy, req.VehicleNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return id, nil
}

// parseFlexibleTime accepts a bare date or a full RFC 3339 timestamp.
func parseFlexibleTime(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
