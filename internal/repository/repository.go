// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/sakif/waste-portal/internal/model"
)

// ListOptions paginates directory-style listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists accounts. CreateUser must fail atomically with a
// duplicate error when the username or email is already taken — uniqueness
// is enforced by the store, not by a read-then-write in the caller.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// LedgerRepository applies point-balance changes. Every mutation updates the
// balance AND appends a rewards row in one transaction; there is no way to
// touch the balance without leaving an audit entry.
type LedgerRepository interface {
	// Credit adds points (amount >= 0) and returns the new balance.
	Credit(ctx context.Context, userID int64, amount int, rewardType, description string) (int, error)
	// Debit removes points only if the balance covers the amount; otherwise
	// it fails with an insufficient-points error and changes nothing.
	Debit(ctx context.Context, userID int64, amount int, rewardType, description string) (int, error)
	// CompleteTraining credits a module's points, marks the user trained and
	// rejects a repeat completion of the same module — all in one transaction.
	CompleteTraining(ctx context.Context, userID int64, moduleID string, points int, description string) (int, error)
	EventsForUser(ctx context.Context, userID int64) ([]model.RewardEvent, error)
	// SumForUser returns the sum of ledger deltas; it must equal the user's
	// stored balance at every commit point.
	SumForUser(ctx context.Context, userID int64) (int, error)
}

// CollectionRepository persists pickups. Schedule inserts the collection row,
// credits the points and writes the ledger row atomically, returning the new
// balance.
type CollectionRepository interface {
	Schedule(ctx context.Context, c *model.WasteCollection, points int, description string) (int, error)
	CollectionByID(ctx context.Context, id int64) (*model.WasteCollection, error)
	CollectionsByUser(ctx context.Context, userID int64) ([]model.WasteCollection, error)
	CollectionsForDate(ctx context.Context, day time.Time) ([]model.CollectionDetail, error)
	// AdvanceCollectionStatus moves the status forward, stamping collector
	// and vehicle. Same-state is a no-op; backward transitions conflict.
	AdvanceCollectionStatus(ctx context.Context, id int64, to model.CollectionStatus, collectedBy, vehicleNumber string) (*model.WasteCollection, error)
}

// ComplaintRepository persists citizen complaints. FileComplaint inserts the
// row and credits the reporting bonus atomically, returning the new balance.
type ComplaintRepository interface {
	FileComplaint(ctx context.Context, c *model.Complaint, points int, description string) (int, error)
	ComplaintByID(ctx context.Context, id int64) (*model.Complaint, error)
	ComplaintsByUser(ctx context.Context, userID int64) ([]model.Complaint, error)
	AdvanceComplaintStatus(ctx context.Context, id int64, to model.ComplaintStatus) (*model.Complaint, error)
}

// FacilityRepository persists processing facilities.
type FacilityRepository interface {
	CreateFacility(ctx context.Context, f *model.Facility) error
	ListFacilities(ctx context.Context) ([]model.Facility, error)
}

// VehicleRepository persists the fleet.
type VehicleRepository interface {
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	UpdateVehiclePosition(ctx context.Context, id int64, lat, lon float64, status model.VehicleStatus) (*model.Vehicle, error)
}

// ReportRepository serves the read-only projections behind dashboards and
// exports. Nothing here mutates state.
type ReportRepository interface {
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
	WasteByWardAndType(ctx context.Context) ([]model.WardTypeAggregate, error)
	CollectionsByDateRange(ctx context.Context, start, end time.Time) ([]model.CollectionDetail, error)
	// SegregationRate returns the percentage (0-100) of collections with the
	// segregation flag set, and 0 when there are no collections at all.
	SegregationRate(ctx context.Context) (float64, error)
}
