package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// compile-time checks for the infrastructure repositories
var (
	_ repository.FacilityRepository = (*DB)(nil)
	_ repository.VehicleRepository  = (*DB)(nil)
)

// CreateFacility inserts a processing facility record.
func (db *DB) CreateFacility(ctx context.Context, f *model.Facility) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO facilities (name, facility_type, address, latitude,
			longitude, capacity_tpd, contact_number, operational_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Type, f.Address, f.Latitude, f.Longitude,
		f.CapacityTPD, f.ContactNumber, f.OperationalHours)
	if err != nil {
		return fmt.Errorf("sqlite: inserting facility %q: %w", f.Name, err)
	}
	if f.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("sqlite: reading new facility id: %w", err)
	}
	return nil
}

// ListFacilities returns all facilities ordered by name.
func (db *DB) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, facility_type, address, latitude, longitude,
			capacity_tpd, contact_number, operational_hours
		 FROM facilities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing facilities: %w", err)
	}
	defer rows.Close()

	facilities := []model.Facility{}
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &f.Address, &f.Latitude,
			&f.Longitude, &f.CapacityTPD, &f.ContactNumber, &f.OperationalHours); err != nil {
			return nil, fmt.Errorf("sqlite: scanning facility row: %w", err)
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

const vehicleColumns = `id, vehicle_number, vehicle_type, capacity_tons,
	latitude, longitude, driver_name, driver_phone, status, last_updated`

// CreateVehicle inserts a fleet vehicle. New vehicles default to idle.
func (db *DB) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if v.Status == "" {
		v.Status = model.VehicleIdle
	}
	v.LastUpdated = now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO vehicles (vehicle_number, vehicle_type, capacity_tons,
			latitude, longitude, driver_name, driver_phone, status, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Number, v.Type, v.CapacityTons, v.Latitude, v.Longitude,
		v.DriverName, v.DriverPhone, string(v.Status), encodeTime(v.LastUpdated))
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("sqlite: inserting vehicle %q: %w", v.Number, err)
	}
	if v.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("sqlite: reading new vehicle id: %w", err)
	}
	return nil
}

// ListVehicles returns the fleet ordered by vehicle number.
func (db *DB) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY vehicle_number`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []model.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning vehicle row: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// UpdateVehiclePosition stamps a vehicle's coordinates, status and last_updated.
func (db *DB) UpdateVehiclePosition(ctx context.Context, id int64, lat, lon float64, status model.VehicleStatus) (*model.Vehicle, error) {
	var result *model.Vehicle
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id)
		v, err := scanVehicle(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("vehicle", id)
			}
			return fmt.Errorf("sqlite: getting vehicle %d: %w", id, err)
		}

		v.Latitude = lat
		v.Longitude = lon
		v.Status = status
		v.LastUpdated = now()

		if _, err := tx.ExecContext(ctx,
			`UPDATE vehicles
			 SET latitude = ?, longitude = ?, status = ?, last_updated = ?
			 WHERE id = ?`,
			lat, lon, string(status), encodeTime(v.LastUpdated), id); err != nil {
			return fmt.Errorf("sqlite: updating vehicle %d position: %w", id, err)
		}

		result = v
		return nil
	})
	return result, err
}

func scanVehicle(s scanner) (*model.Vehicle, error) {
	var (
		v           model.Vehicle
		status      string
		lastUpdated string
	)
	err := s.Scan(
		&v.ID,
		&v.Number,
		&v.Type,
		&v.CapacityTons,
		&v.Latitude,
		&v.Longitude,
		&v.DriverName,
		&v.DriverPhone,
		&status,
		&lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	v.Status = model.VehicleStatus(status)
	if v.LastUpdated, err = decodeTime(lastUpdated); err != nil {
		return nil, err
	}
	return &v, nil
}
