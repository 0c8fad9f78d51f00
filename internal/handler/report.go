package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/service"
)

// ReportHandler serves dashboards, aggregates, the CSV export and the
// admin user directory.
type ReportHandler struct {
	reports  *service.ReportService
	identity *service.IdentityService
	logger   *slog.Logger
}

func NewReportHandler(reports *service.ReportService, identity *service.IdentityService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		identity: identity,
		logger:   logger,
	}
}

// HandleDashboard returns the headline totals.
//
// HTTP: GET /api/stats/dashboard
func (h *ReportHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.DashboardStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleSegregation returns the segregation percentage.
//
// HTTP: GET /api/stats/segregation
func (h *ReportHandler) HandleSegregation(w http.ResponseWriter, r *http.Request) {
	rate, err := h.reports.SegregationRate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"rate": rate})
}

// HandleWards returns the ward × waste-type breakdown.
//
// HTTP: GET /api/stats/wards
func (h *ReportHandler) HandleWards(w http.ResponseWriter, r *http.Request) {
	aggregates, err := h.reports.WardBreakdown(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregates)
}

// HandleExportCSV streams the date-range collection export.
//
// HTTP: GET /api/reports/collections.csv?start=2006-01-02&end=2006-01-02
func (h *ReportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="collections_%s_%s.csv"`,
			start.Format(dateLayout), end.Format(dateLayout)))

	if err := h.reports.ExportCollectionsCSV(r.Context(), w, start, end); err != nil {
		// Headers may already be out; log and stop the stream.
		h.logger.Error("csv export failed", slog.String("error", err.Error()))
	}
}

// HandleListUsers returns a page of the user directory.
//
// HTTP: GET /api/users?limit=&offset=
func (h *ReportHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	users, err := h.identity.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, apperror.ValidationFailed(name, name+" date is required")
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed(name, name+" must be YYYY-MM-DD")
	}
	return t, nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
