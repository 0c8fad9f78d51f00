package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// Point awards and weight bounds for pickups. Segregated waste earns
// double to push the behaviour the program exists for.
const (
	PointsSegregated   = 10
	PointsUnsegregated = 5
	MinWeightKg        = 0.1
	MaxWeightKg        = 100
)

// ScheduleInput describes a pickup request from a citizen.
type ScheduleInput struct {
	UserID       int64
	ScheduledFor time.Time
	WasteType    model.WasteType
	WeightKg     float64
	Segregated   bool
	Address      string
	Latitude     float64
	Longitude    float64
}

// ScheduledCollection is the result of a successful booking: the stored
// pickup, the points it earned and the citizen's new balance.
type ScheduledCollection struct {
	Collection *model.WasteCollection `json:"collection"`
	Points     int                    `json:"points_earned"`
	NewBalance int                    `json:"new_balance"`
}

// CollectionService owns the pickup lifecycle: booking, the worker's
// daily route view and the status progression.
type CollectionService struct {
	collections repository.CollectionRepository
	logger      *slog.Logger
}

func NewCollectionService(collections repository.CollectionRepository, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		collections: collections,
		logger:      logger,
	}
}

// Schedule validates and books a pickup, crediting the points in the
// same transaction as the insert.
func (s *CollectionService) Schedule(ctx context.Context, in ScheduleInput) (*ScheduledCollection, error) {
	if !in.WasteType.Valid() {
		return nil, apperror.ValidationFailed("waste_type", fmt.Sprintf("unknown waste type %q", in.WasteType))
	}
	if in.WeightKg < MinWeightKg || in.WeightKg > MaxWeightKg {
		return nil, apperror.ValidationFailed("weight_kg",
			fmt.Sprintf("weight must be between %g and %g kg", MinWeightKg, float64(MaxWeightKg)))
	}
	if in.ScheduledFor.IsZero() {
		return nil, apperror.ValidationFailed("scheduled_for", "a pickup date is required")
	}

	// Compare dates, not instants: booking for later today is fine.
	today := startOfDay(time.Now().UTC())
	if startOfDay(in.ScheduledFor.UTC()).Before(today) {
		return nil, apperror.ValidationFailed("scheduled_for", "pickup date cannot be in the past")
	}

	points := PointsUnsegregated
	if in.Segregated {
		points = PointsSegregated
	}

	c := &model.WasteCollection{
		UserID:       in.UserID,
		ScheduledFor: in.ScheduledFor.UTC(),
		WasteType:    in.WasteType,
		WeightKg:     in.WeightKg,
		Segregated:   in.Segregated,
		Address:      in.Address,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
	}

	balance, err := s.collections.Schedule(ctx, c, points, fmt.Sprintf("scheduled %s waste pickup", c.WasteType))
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection scheduled",
		slog.Int64("collection_id", c.ID),
		slog.Int64("user_id", c.UserID),
		slog.String("waste_type", string(c.WasteType)),
		slog.Int("points", points),
	)

	return &ScheduledCollection{Collection: c, Points: points, NewBalance: balance}, nil
}

// HistoryForUser returns the citizen's own pickups, newest first.
func (s *CollectionService) HistoryForUser(ctx context.Context, userID int64) ([]model.WasteCollection, error) {
	return s.collections.CollectionsByUser(ctx, userID)
}

// Get returns a single pickup. Citizens may only see their own; staff
// see everything.
func (s *CollectionService) Get(ctx context.Context, id, callerID int64, callerRole model.Role) (*model.WasteCollection, error) {
	c, err := s.collections.CollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !callerRole.Staff() && c.UserID != callerID {
		return nil, apperror.Forbidden("collection belongs to another user")
	}
	return c, nil
}

// RouteForDate returns the worker's route: every pickup scheduled on the
// given day, with the citizen's contact details attached.
func (s *CollectionService) RouteForDate(ctx context.Context, day time.Time) ([]model.CollectionDetail, error) {
	if day.IsZero() {
		day = time.Now().UTC()
	}
	return s.collections.CollectionsForDate(ctx, day)
}

// AdvanceStatus moves a pickup forward through scheduled → collected →
// processed. Same-state updates are no-ops; backward moves conflict.
func (s *CollectionService) AdvanceStatus(ctx context.Context, id int64, to model.CollectionStatus, collectedBy, vehicleNumber string) (*model.WasteCollection, error) {
	if !to.Valid() {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown collection status %q", to))
	}

	c, err := s.collections.AdvanceCollectionStatus(ctx, id, to, collectedBy, vehicleNumber)
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection status updated",
		slog.Int64("collection_id", id),
		slog.String("status", string(to)),
	)
	return c, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
