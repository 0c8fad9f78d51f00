package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/cache"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// dashboardCacheKey is the Redis key for the headline stats.
const dashboardCacheKey = "stats:dashboard"

// csvHeader is the one wire format of the collection export. Column
// order is fixed; consumers key on position as much as name.
var csvHeader = []string{
	"id", "scheduled_for", "waste_type", "weight_kg", "segregated",
	"status", "collected_by", "vehicle_number",
	"citizen_name", "ward", "phone", "address",
}

// ReportService serves dashboards and exports. Everything here is a
// read-only projection; the optional cache only shaves load off the
// dashboard query and may lag writes by its TTL.
type ReportService struct {
	reports repository.ReportRepository
	cache   *cache.Cache
	logger  *slog.Logger
}

func NewReportService(reports repository.ReportRepository, c *cache.Cache, logger *slog.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		cache:   c,
		logger:  logger,
	}
}

// DashboardStats returns the headline numbers, serving from the cache
// when a fresh copy exists.
func (s *ReportService) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var cached model.DashboardStats
	if err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached); err == nil {
		return &cached, nil
	}

	stats, err := s.reports.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing dashboard stats: %w", err)
	}

	if err := s.cache.SetJSON(ctx, dashboardCacheKey, stats); err != nil {
		// A cache write failure must not fail the read.
		s.logger.Warn("caching dashboard stats failed", slog.String("error", err.Error()))
	}
	return stats, nil
}

// SegregationRate returns the percentage of pickups logged as
// segregated; 0 when nothing has been collected yet.
func (s *ReportService) SegregationRate(ctx context.Context) (float64, error) {
	return s.reports.SegregationRate(ctx)
}

// WardBreakdown returns collected weight grouped by ward and waste type.
func (s *ReportService) WardBreakdown(ctx context.Context) ([]model.WardTypeAggregate, error) {
	return s.reports.WasteByWardAndType(ctx)
}

// ExportCollectionsCSV streams the collections scheduled in [start, end]
// as CSV. Timestamps are RFC 3339 UTC and rows come out in schedule
// order, so exporting the same range twice yields identical bytes.
func (s *ReportService) ExportCollectionsCSV(ctx context.Context, w io.Writer, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperror.ValidationFailed("range", "start and end dates are required")
	}
	if end.Before(start) {
		return apperror.ValidationFailed("range", "end date is before start date")
	}

	// The range is inclusive of the end date's whole day.
	rangeStart := startOfDay(start.UTC())
	rangeEnd := startOfDay(end.UTC()).Add(24 * time.Hour)

	details, err := s.reports.CollectionsByDateRange(ctx, rangeStart, rangeEnd)
	if err != nil {
		return fmt.Errorf("listing collections for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}
	for _, d := range details {
		row := []string{
			strconv.FormatInt(d.ID, 10),
			d.ScheduledFor.UTC().Format(time.RFC3339),
			string(d.WasteType),
			strconv.FormatFloat(d.WeightKg, 'f', -1, 64),
			strconv.FormatBool(d.Segregated),
			string(d.Status),
			d.CollectedBy,
			d.VehicleNumber,
			d.FullName,
			d.Ward,
			d.UserPhone,
			d.UserAddr,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}

	s.logger.Info("collections exported",
		slog.Int("rows", len(details)),
		slog.String("start", rangeStart.Format("2006-01-02")),
		slog.String("end", end.UTC().Format("2006-01-02")),
	)
	return nil
}
