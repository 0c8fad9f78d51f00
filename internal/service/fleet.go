package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// FacilityInput describes a new processing facility.
type FacilityInput struct {
	Name             string
	Type             string
	Address          string
	Latitude         float64
	Longitude        float64
	CapacityTPD      float64
	ContactNumber    string
	OperationalHours string
}

// VehicleInput describes a new fleet vehicle.
type VehicleInput struct {
	Number       string
	Type         string
	CapacityTons float64
	Latitude     float64
	Longitude    float64
	DriverName   string
	DriverPhone  string
}

// FleetService manages facilities and the vehicle fleet.
type FleetService struct {
	facilities repository.FacilityRepository
	vehicles   repository.VehicleRepository
	logger     *slog.Logger
}

func NewFleetService(facilities repository.FacilityRepository, vehicles repository.VehicleRepository, logger *slog.Logger) *FleetService {
	return &FleetService{
		facilities: facilities,
		vehicles:   vehicles,
		logger:     logger,
	}
}

// CreateFacility registers a processing facility.
func (s *FleetService) CreateFacility(ctx context.Context, in FacilityInput) (*model.Facility, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.ValidationFailed("name", "facility name is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, apperror.ValidationFailed("facility_type", "facility type is required")
	}
	if in.CapacityTPD < 0 {
		return nil, apperror.ValidationFailed("capacity_tpd", "capacity cannot be negative")
	}

	f := &model.Facility{
		Name:             strings.TrimSpace(in.Name),
		Type:             strings.TrimSpace(in.Type),
		Address:          strings.TrimSpace(in.Address),
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		CapacityTPD:      in.CapacityTPD,
		ContactNumber:    strings.TrimSpace(in.ContactNumber),
		OperationalHours: strings.TrimSpace(in.OperationalHours),
	}

	if err := s.facilities.CreateFacility(ctx, f); err != nil {
		return nil, fmt.Errorf("creating facility: %w", err)
	}

	s.logger.Info("facility created",
		slog.Int64("facility_id", f.ID),
		slog.String("name", f.Name),
	)
	return f, nil
}

// ListFacilities returns all facilities.
func (s *FleetService) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	return s.facilities.ListFacilities(ctx)
}

// CreateVehicle registers a fleet vehicle. The vehicle number is the
// public identifier and must be unique.
func (s *FleetService) CreateVehicle(ctx context.Context, in VehicleInput) (*model.Vehicle, error) {
	number := strings.ToUpper(strings.TrimSpace(in.Number))
	if number == "" {
		return nil, apperror.ValidationFailed("vehicle_number", "vehicle number is required")
	}
	if in.CapacityTons <= 0 {
		return nil, apperror.ValidationFailed("capacity_tons", "capacity must be positive")
	}

	v := &model.Vehicle{
		Number:       number,
		Type:         strings.TrimSpace(in.Type),
		CapacityTons: in.CapacityTons,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		DriverName:   strings.TrimSpace(in.DriverName),
		DriverPhone:  strings.TrimSpace(in.DriverPhone),
	}

	if err := s.vehicles.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle created",
		slog.Int64("vehicle_id", v.ID),
		slog.String("number", v.Number),
	)
	return v, nil
}

// ListVehicles returns the fleet.
func (s *FleetService) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	return s.vehicles.ListVehicles(ctx)
}

// UpdateVehiclePosition records a vehicle's current coordinates and
// working status, stamping last_updated.
func (s *FleetService) UpdateVehiclePosition(ctx context.Context, id int64, lat, lon float64, status model.VehicleStatus) (*model.Vehicle, error) {
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown vehicle status %q", status))
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apperror.ValidationFailed("position", "coordinates out of range")
	}

	v, err := s.vehicles.UpdateVehiclePosition(ctx, id, lat, lon, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("vehicle position updated",
		slog.Int64("vehicle_id", id),
		slog.String("status", string(status)),
	)
	return v, nil
}
