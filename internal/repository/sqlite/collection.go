package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// compile-time check that *DB implements repository.CollectionRepository
var _ repository.CollectionRepository = (*DB)(nil)

const collectionColumns = `id, user_id, scheduled_for, waste_type, weight_kg,
	segregated, collected_by, vehicle_number, status, address, latitude, longitude, created_at`

// Schedule inserts the collection row, credits the points and writes the
// ledger row in one transaction: either the pickup exists and the citizen
// was paid, or neither happened.
func (db *DB) Schedule(ctx context.Context, c *model.WasteCollection, points int, description string) (int, error) {
	c.Status = model.CollectionScheduled
	c.CreatedAt = now()

	var balance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		// Verify the owner exists before inserting; a bare FK violation
		// would surface as an opaque constraint error.
		var err error
		if _, err = balanceForUpdate(ctx, tx, c.UserID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO waste_collections (user_id, scheduled_for, waste_type,
				weight_kg, segregated, collected_by, vehicle_number, status,
				address, latitude, longitude, created_at)
			 VALUES (?, ?, ?, ?, ?, '', '', ?, ?, ?, ?, ?)`,
			c.UserID,
			encodeTime(c.ScheduledFor),
			string(c.WasteType),
			c.WeightKg,
			boolToInt(c.Segregated),
			string(c.Status),
			c.Address,
			c.Latitude,
			c.Longitude,
			encodeTime(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting collection for user %d: %w", c.UserID, err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sqlite: reading new collection id: %w", err)
		}

		balance, err = applyDelta(ctx, tx, c.UserID, points, model.RewardCollection, description)
		return err
	})
	return balance, err
}

// CollectionByID retrieves a single collection.
func (db *DB) CollectionByID(ctx context.Context, id int64) (*model.WasteCollection, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM waste_collections WHERE id = ?`, id)

	c, err := scanCollection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("collection", id)
		}
		return nil, fmt.Errorf("sqlite: getting collection %d: %w", id, err)
	}
	return c, nil
}

// CollectionsByUser returns the user's collection history, newest scheduled first.
func (db *DB) CollectionsByUser(ctx context.Context, userID int64) ([]model.WasteCollection, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM waste_collections
		 WHERE user_id = ? ORDER BY scheduled_for DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collections for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectCollections(rows)
}

// CollectionsForDate returns all collections scheduled on the given day joined with
// the owning citizen's contact details — the worker's route list.
func (db *DB) CollectionsForDate(ctx context.Context, day time.Time) ([]model.CollectionDetail, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

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
		return nil, fmt.Errorf("sqlite: listing collections for %s: %w", start.Format("2006-01-02"), err)
	}
	defer rows.Close()

	return collectDetails(rows)
}

// AdvanceCollectionStatus moves a collection's status forward, stamping the collector
// and vehicle. The read and the write share a transaction so a concurrent
// update cannot sneak a backward move through.
//
// Transition policy: same state is a no-op (the row is returned unchanged),
// skipping an intermediate state is allowed, moving backward is a conflict.
func (db *DB) AdvanceCollectionStatus(ctx context.Context, id int64, to model.CollectionStatus, collectedBy, vehicleNumber string) (*model.WasteCollection, error) {
	var result *model.WasteCollection
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+collectionColumns+` FROM waste_collections WHERE id = ?`, id)
		c, err := scanCollection(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("collection", id)
			}
			return fmt.Errorf("sqlite: getting collection %d: %w", id, err)
		}

		switch {
		case to.Rank() == c.Status.Rank():
			result = c // no-op, nothing to write
			return nil
		case to.Rank() < c.Status.Rank():
			return apperror.Conflict(fmt.Sprintf(
				"collection status cannot move backward from %s to %s", c.Status, to))
		}

		// Stamp collector/vehicle on the first forward move; keep existing
		// stamps if the caller did not supply new ones.
		if collectedBy == "" {
			collectedBy = c.CollectedBy
		}
		if vehicleNumber == "" {
			vehicleNumber = c.VehicleNumber
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE waste_collections
			 SET status = ?, collected_by = ?, vehicle_number = ?
			 WHERE id = ?`,
			string(to), collectedBy, vehicleNumber, id); err != nil {
			return fmt.Errorf("sqlite: updating collection %d status: %w", id, err)
		}

		c.Status = to
		c.CollectedBy = collectedBy
		c.VehicleNumber = vehicleNumber
		result = c
		return nil
	})
	return result, err
}

func scanCollection(s scanner) (*model.WasteCollection, error) {
	var (
		c            model.WasteCollection
		wasteType    string
		segregated   int
		status       string
		scheduledFor string
		createdAt    string
	)
	err := s.Scan(
		&c.ID,
		&c.UserID,
		&scheduledFor,
		&wasteType,
		&c.WeightKg,
		&segregated,
		&c.CollectedBy,
		&c.VehicleNumber,
		&status,
		&c.Address,
		&c.Latitude,
		&c.Longitude,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.WasteType = model.WasteType(wasteType)
	c.Segregated = segregated != 0
	c.Status = model.CollectionStatus(status)
	if c.ScheduledFor, err = decodeTime(scheduledFor); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCollections(rows *sql.Rows) ([]model.WasteCollection, error) {
	collections := []model.WasteCollection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection row: %w", err)
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

func collectDetails(rows *sql.Rows) ([]model.CollectionDetail, error) {
	details := []model.CollectionDetail{}
	for rows.Next() {
		var (
			d            model.CollectionDetail
			wasteType    string
			segregated   int
			status       string
			scheduledFor string
			createdAt    string
		)
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&scheduledFor,
			&wasteType,
			&d.WeightKg,
			&segregated,
			&d.CollectedBy,
			&d.VehicleNumber,
			&status,
			&d.Address,
			&d.Latitude,
			&d.Longitude,
			&createdAt,
			&d.FullName,
			&d.Ward,
			&d.UserPhone,
			&d.UserAddr,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection detail row: %w", err)
		}

		d.WasteType = model.WasteType(wasteType)
		d.Segregated = segregated != 0
		d.Status = model.CollectionStatus(status)
		if d.ScheduledFor, err = decodeTime(scheduledFor); err != nil {
			return nil, err
		}
		if d.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
