package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
)

func TestCreditAndDebit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	balance, err := db.Credit(ctx, user.ID, 10, model.RewardCollection, "segregated pickup")
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if balance != 10 {
		t.Errorf("balance after credit = %d, want 10", balance)
	}

	balance, err = db.Debit(ctx, user.ID, 4, model.RewardPurchase, "eco bags")
	if err != nil {
		t.Fatalf("Debit() error = %v", err)
	}
	if balance != 6 {
		t.Errorf("balance after debit = %d, want 6", balance)
	}

	// Stored balance must agree with the ledger sum.
	got, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	sum, err := db.SumForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("SumForUser() error = %v", err)
	}
	if got.Points != 6 || sum != 6 {
		t.Errorf("stored = %d, ledger sum = %d, want both 6", got.Points, sum)
	}
}

func TestDebit_Insufficient(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	if _, err := db.Credit(ctx, user.ID, 5, model.RewardComplaint, "complaint filed"); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	_, err := db.Debit(ctx, user.ID, 60, model.RewardPurchase, "safety gloves")
	if !errors.Is(err, apperror.ErrInsufficientPoints) {
		t.Fatalf("Debit() error = %v, want ErrInsufficientPoints", err)
	}

	// The failed debit must leave no trace.
	got, _ := db.GetUserByID(ctx, user.ID)
	if got.Points != 5 {
		t.Errorf("balance = %d, want 5", got.Points)
	}
	events, err := db.EventsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("EventsForUser() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("ledger rows = %d, want 1", len(events))
	}
}

func TestCreditMissingUser(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Credit(context.Background(), 999, 10, model.RewardCollection, "pickup")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Credit() error = %v, want ErrNotFound", err)
	}
}

func TestCompleteTraining_OncePerModule(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	balance, err := db.CompleteTraining(ctx, user.ID, "home-composting", 100, "Home Composting")
	if err != nil {
		t.Fatalf("CompleteTraining() error = %v", err)
	}
	if balance != 100 {
		t.Errorf("balance = %d, want 100", balance)
	}

	got, _ := db.GetUserByID(ctx, user.ID)
	if !got.TrainingDone {
		t.Error("training_completed not set")
	}

	_, err = db.CompleteTraining(ctx, user.ID, "home-composting", 100, "Home Composting")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("repeat completion error = %v, want ErrConflict", err)
	}
	got, _ = db.GetUserByID(ctx, user.ID)
	if got.Points != 100 {
		t.Errorf("balance after rejected repeat = %d, want 100", got.Points)
	}

	// A different module still credits.
	balance, err = db.CompleteTraining(ctx, user.ID, "waste-classification", 50, "Waste Classification")
	if err != nil {
		t.Fatalf("CompleteTraining(second module) error = %v", err)
	}
	if balance != 150 {
		t.Errorf("balance = %d, want 150", balance)
	}
}

func TestEventsForUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice")

	descriptions := []string{"first", "second", "third"}
	for _, d := range descriptions {
		if _, err := db.Credit(ctx, user.ID, 5, model.RewardComplaint, d); err != nil {
			t.Fatalf("Credit(%q) error = %v", d, err)
		}
	}

	events, err := db.EventsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("EventsForUser() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Description != "third" || events[2].Description != "first" {
		t.Errorf("order = [%s %s %s], want newest first",
			events[0].Description, events[1].Description, events[2].Description)
	}
	if events[0].EarnedAt.IsZero() {
		t.Error("EarnedAt not stamped")
	}
}
