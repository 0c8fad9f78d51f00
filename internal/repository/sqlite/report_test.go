package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/waste-portal/internal/model"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	scheduleCollection(t, db, alice.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), true)
	scheduleCollection(t, db, alice.ID, time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC), false)

	fileComplaint(t, db, alice.ID)
	resolved := fileComplaint(t, db, alice.ID)
	if _, err := db.AdvanceComplaintStatus(ctx, resolved.ID, model.ComplaintResolved); err != nil {
		t.Fatalf("resolving complaint: %v", err)
	}

	if err := db.CreateFacility(ctx, &model.Facility{Name: "Transfer Station", Type: "transfer"}); err != nil {
		t.Fatalf("CreateFacility() error = %v", err)
	}

	stats, err := db.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", stats.TotalUsers)
	}
	if stats.TotalWasteKg != 7 { // two 3.5kg pickups
		t.Errorf("TotalWasteKg = %v, want 7", stats.TotalWasteKg)
	}
	if stats.ActiveComplaints != 1 {
		t.Errorf("ActiveComplaints = %d, want 1", stats.ActiveComplaints)
	}
	if stats.Facilities != 1 {
		t.Errorf("Facilities = %d, want 1", stats.Facilities)
	}
}

func TestWasteByWardAndType(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice") // Ward-1

	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	// Two wet 3.5kg pickups in the same ward.
	scheduleCollection(t, db, alice.ID, day, true)
	scheduleCollection(t, db, alice.ID, day.Add(time.Hour), true)

	aggregates, err := db.WasteByWardAndType(ctx)
	if err != nil {
		t.Fatalf("WasteByWardAndType() error = %v", err)
	}
	if len(aggregates) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggregates))
	}
	a := aggregates[0]
	if a.Ward != "Ward-1" || a.WasteType != model.WasteWet || a.TotalKg != 7 || a.Collections != 2 {
		t.Errorf("aggregate = %+v", a)
	}
}

func TestSegregationRate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rate, err := db.SegregationRate(ctx)
	if err != nil {
		t.Fatalf("SegregationRate() on empty db: %v", err)
	}
	if rate != 0 {
		t.Errorf("empty rate = %v, want 0", rate)
	}

	alice := seedUser(t, db, "alice")
	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	scheduleCollection(t, db, alice.ID, day, true)
	scheduleCollection(t, db, alice.ID, day.Add(time.Hour), true)
	scheduleCollection(t, db, alice.ID, day.Add(2*time.Hour), true)
	scheduleCollection(t, db, alice.ID, day.Add(3*time.Hour), false)

	rate, err = db.SegregationRate(ctx)
	if err != nil {
		t.Fatalf("SegregationRate() error = %v", err)
	}
	if rate != 75 {
		t.Errorf("rate = %v, want 75", rate)
	}
}

func TestCollectionsByDateRange_HalfOpen(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	scheduleCollection(t, db, alice.ID, time.Date(2025, 6, 9, 23, 0, 0, 0, time.UTC), true)
	scheduleCollection(t, db, alice.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), true)
	scheduleCollection(t, db, alice.ID, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), true)

	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	details, err := db.CollectionsByDateRange(ctx, start, end)
	if err != nil {
		t.Fatalf("CollectionsByDateRange() error = %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("got %d rows, want 1 (end exclusive)", len(details))
	}
	if details[0].FullName != "Test User" {
		t.Errorf("citizen name = %q", details[0].FullName)
	}
}
