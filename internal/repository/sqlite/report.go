package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// compile-time check that *DB implements repository.ReportRepository
var _ repository.ReportRepository = (*DB)(nil)

// DashboardStats computes the headline numbers for the admin dashboard.
// Four independent scalar queries; no transaction needed since the numbers
// are informational, not invariant-bearing.
func (db *DB) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats

	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("sqlite: counting users: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(weight_kg), 0) FROM waste_collections`).Scan(&stats.TotalWasteKg); err != nil {
		return nil, fmt.Errorf("sqlite: summing collected waste: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM complaints WHERE status != ?`,
		string(model.ComplaintResolved)).Scan(&stats.ActiveComplaints); err != nil {
		return nil, fmt.Errorf("sqlite: counting active complaints: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM facilities`).Scan(&stats.Facilities); err != nil {
		return nil, fmt.Errorf("sqlite: counting facilities: %w", err)
	}
	return &stats, nil
}

// WasteByWardAndType aggregates collected weight per (ward, waste type) pair,
// skipping users with no ward on record.
func (db *DB) WasteByWardAndType(ctx context.Context) ([]model.WardTypeAggregate, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.ward, wc.waste_type, SUM(wc.weight_kg), COUNT(*)
		 FROM waste_collections wc
		 JOIN users u ON wc.user_id = u.id
		 WHERE u.ward != ''
		 GROUP BY u.ward, wc.waste_type
		 ORDER BY u.ward, wc.waste_type`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating waste by ward: %w", err)
	}
	defer rows.Close()

	aggregates := []model.WardTypeAggregate{}
	for rows.Next() {
		var (
			a         model.WardTypeAggregate
			wasteType string
		)
		if err := rows.Scan(&a.Ward, &wasteType, &a.TotalKg, &a.Collections); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ward aggregate row: %w", err)
		}
		a.WasteType = model.WasteType(wasteType)
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}

// CollectionsByDateRange returns collections scheduled in [start, end)
// joined with citizen details, oldest first. Feeds the CSV export.
func (db *DB) CollectionsByDateRange(ctx context.Context, start, end time.Time) ([]model.CollectionDetail, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT wc.id, wc.user_id, wc.scheduled_for, wc.waste_type, wc.weight_kg,
			wc.segregated, wc.collected_by, wc.vehicle_number, wc.status,
			wc.address, wc.latitude, wc.longitude, wc.created_at,
			u.full_name, u.ward, u.phone, u.address
		 FROM waste_collections wc
		 JOIN users u ON wc.user_id = u.id
		 WHERE wc.scheduled_for >= ? AND wc.scheduled_for < ?
		 ORDER BY wc.scheduled_for, wc.id`,
		encodeTime(start), encodeTime(end))
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collections in range: %w", err)
	}
	defer rows.Close()

	return collectDetails(rows)
}

// SegregationRate returns the percentage of collections recorded as
// segregated. An empty table yields 0, not a division error.
func (db *DB) SegregationRate(ctx context.Context) (float64, error) {
	var total, segregated int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(segregated), 0) FROM waste_collections`).
		Scan(&total, &segregated); err != nil {
		return 0, fmt.Errorf("sqlite: computing segregation rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(segregated) / float64(total) * 100, nil
}
