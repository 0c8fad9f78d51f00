package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// compile-time check that *DB implements repository.ComplaintRepository
var _ repository.ComplaintRepository = (*DB)(nil)

const complaintColumns = `id, reference, user_id, complaint_type, description,
	location, latitude, longitude, status, created_at, resolved_at`

// FileComplaint inserts the complaint and credits the reporting bonus in one
// transaction. The public reference (xid) is generated here, at creation —
// it is the identifier citizens quote when following up.
func (db *DB) FileComplaint(ctx context.Context, c *model.Complaint, points int, description string) (int, error) {
	c.Reference = xid.New().String()
	c.Status = model.ComplaintPending
	c.CreatedAt = now()

	var balance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if _, err = balanceForUpdate(ctx, tx, c.UserID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO complaints (reference, user_id, complaint_type,
				description, location, latitude, longitude, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Reference,
			c.UserID,
			string(c.Type),
			c.Description,
			c.Location,
			c.Latitude,
			c.Longitude,
			string(c.Status),
			encodeTime(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting complaint for user %d: %w", c.UserID, err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sqlite: reading new complaint id: %w", err)
		}

		balance, err = applyDelta(ctx, tx, c.UserID, points, model.RewardComplaint, description)
		return err
	})
	return balance, err
}

// ComplaintByID retrieves a single complaint.
func (db *DB) ComplaintByID(ctx context.Context, id int64) (*model.Complaint, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id)

	c, err := scanComplaint(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("complaint", id)
		}
		return nil, fmt.Errorf("sqlite: getting complaint %d: %w", id, err)
	}
	return c, nil
}

// ComplaintsByUser returns the user's complaints, newest first.
func (db *DB) ComplaintsByUser(ctx context.Context, userID int64) ([]model.Complaint, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing complaints for user %d: %w", userID, err)
	}
	defer rows.Close()

	complaints := []model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning complaint row: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// AdvanceComplaintStatus moves a complaint's status forward under the same policy as
// collections: no-op on same state, conflict on backward. The resolved
// timestamp is stamped exactly once, on the transition into resolved.
func (db *DB) AdvanceComplaintStatus(ctx context.Context, id int64, to model.ComplaintStatus) (*model.Complaint, error) {
	var result *model.Complaint
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id)
		c, err := scanComplaint(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("complaint", id)
			}
			return fmt.Errorf("sqlite: getting complaint %d: %w", id, err)
		}

		switch {
		case to.Rank() == c.Status.Rank():
			result = c
			return nil
		case to.Rank() < c.Status.Rank():
			return apperror.Conflict(fmt.Sprintf(
				"complaint status cannot move backward from %s to %s", c.Status, to))
		}

		if to == model.ComplaintResolved {
			resolvedAt := now()
			if _, err := tx.ExecContext(ctx,
				`UPDATE complaints SET status = ?, resolved_at = ? WHERE id = ?`,
				string(to), encodeTime(resolvedAt), id); err != nil {
				return fmt.Errorf("sqlite: resolving complaint %d: %w", id, err)
			}
			c.ResolvedAt = &resolvedAt
		} else {
			if _, err := tx.ExecContext(ctx,
				`UPDATE complaints SET status = ? WHERE id = ?`,
				string(to), id); err != nil {
				return fmt.Errorf("sqlite: updating complaint %d status: %w", id, err)
			}
		}

		c.Status = to
		result = c
		return nil
	})
	return result, err
}

func scanComplaint(s scanner) (*model.Complaint, error) {
	var (
		c             model.Complaint
		complaintType string
		status        string
		createdAt     string
		resolvedAt    sql.NullString
	)
	err := s.Scan(
		&c.ID,
		&c.Reference,
		&c.UserID,
		&complaintType,
		&c.Description,
		&c.Location,
		&c.Latitude,
		&c.Longitude,
		&status,
		&createdAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = model.ComplaintType(complaintType)
	c.Status = model.ComplaintStatus(status)
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		t, err := decodeTime(resolvedAt.String)
		if err != nil {
			return nil, err
		}
		c.ResolvedAt = &t
	}
	return &c, nil
}
