package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
)

func scheduleCollection(t *testing.T, db *DB, userID int64, day time.Time, segregated bool) *model.WasteCollection {
	t.Helper()
	c := &model.WasteCollection{
		UserID:       userID,
		ScheduledFor: day,
		WasteType:    model.WasteWet,
		WeightKg:     3.5,
		Segregated:   segregated,
		Address:      "12 Lake Road",
	}
	points := 5
	if segregated {
		points = 10
	}
	if _, err := db.Schedule(context.Background(), c, points, "pickup scheduled"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	return c
}

func TestSchedule_CreditsAtomically(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	c := scheduleCollection(t, db, user.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), true)
	if c.ID == 0 {
		t.Fatal("Schedule() did not assign an ID")
	}
	if c.Status != model.CollectionScheduled {
		t.Errorf("status = %s, want scheduled", c.Status)
	}

	got, _ := db.GetUserByID(ctx, user.ID)
	if got.Points != 10 {
		t.Errorf("balance = %d, want 10", got.Points)
	}
	events, _ := db.EventsForUser(ctx, user.ID)
	if len(events) != 1 || events[0].Type != model.RewardCollection {
		t.Errorf("events = %+v, want one collection reward", events)
	}
}

func TestSchedule_MissingUserInsertsNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := &model.WasteCollection{
		UserID:       999,
		ScheduledFor: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		WasteType:    model.WasteDry,
		WeightKg:     1,
	}
	_, err := db.Schedule(ctx, c, 5, "pickup")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Schedule() error = %v, want ErrNotFound", err)
	}

	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM waste_collections`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 0 {
		t.Errorf("collection rows = %d, want 0 after rollback", count)
	}
}

func TestCollectionsByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	scheduleCollection(t, db, user.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), false)
	scheduleCollection(t, db, user.ID, time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC), true)

	list, err := db.CollectionsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CollectionsByUser() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d collections, want 2", len(list))
	}
	if !list[0].ScheduledFor.After(list[1].ScheduledFor) {
		t.Errorf("order: %v before %v", list[0].ScheduledFor, list[1].ScheduledFor)
	}
}

func TestCollectionsForDate_DayWindowWithCitizenDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	scheduleCollection(t, db, user.ID, day.Add(9*time.Hour), true)
	scheduleCollection(t, db, user.ID, day.Add(23*time.Hour+59*time.Minute), false)
	scheduleCollection(t, db, user.ID, day.Add(25*time.Hour), true) // next day

	route, err := db.CollectionsForDate(ctx, day)
	if err != nil {
		t.Fatalf("CollectionsForDate() error = %v", err)
	}
	if len(route) != 2 {
		t.Fatalf("got %d stops, want 2", len(route))
	}
	if route[0].FullName != "Test User" || route[0].Ward != "Ward-1" {
		t.Errorf("citizen details = %q / %q", route[0].FullName, route[0].Ward)
	}
	if route[0].ScheduledFor.After(route[1].ScheduledFor) {
		t.Error("route not in schedule order")
	}
}

func TestAdvanceCollectionStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")
	c := scheduleCollection(t, db, user.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), true)

	got, err := db.AdvanceCollectionStatus(ctx, c.ID, model.CollectionCollected, "worker-raju", "WB-01-1234")
	if err != nil {
		t.Fatalf("advance to collected: %v", err)
	}
	if got.Status != model.CollectionCollected || got.CollectedBy != "worker-raju" || got.VehicleNumber != "WB-01-1234" {
		t.Errorf("got %+v", got)
	}

	// Forward again without stamps keeps the existing ones.
	got, err = db.AdvanceCollectionStatus(ctx, c.ID, model.CollectionProcessed, "", "")
	if err != nil {
		t.Fatalf("advance to processed: %v", err)
	}
	if got.CollectedBy != "worker-raju" || got.VehicleNumber != "WB-01-1234" {
		t.Errorf("stamps lost: %+v", got)
	}

	// Same state is a no-op.
	if _, err := db.AdvanceCollectionStatus(ctx, c.ID, model.CollectionProcessed, "", ""); err != nil {
		t.Errorf("same-state advance error = %v", err)
	}

	// Backward is a conflict.
	_, err = db.AdvanceCollectionStatus(ctx, c.ID, model.CollectionScheduled, "", "")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("backward move error = %v, want ErrConflict", err)
	}

	_, err = db.AdvanceCollectionStatus(ctx, 999, model.CollectionCollected, "", "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing collection error = %v, want ErrNotFound", err)
	}
}

func TestAdvanceCollectionStatus_SkipAllowed(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	c := scheduleCollection(t, db, user.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), true)

	got, err := db.AdvanceCollectionStatus(context.Background(), c.ID, model.CollectionProcessed, "worker-raju", "")
	if err != nil {
		t.Fatalf("skip to processed: %v", err)
	}
	if got.Status != model.CollectionProcessed {
		t.Errorf("status = %s, want processed", got.Status)
	}
}
