package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, full_name, phone,
	address, role, ward, tracking_code, registered_at, training_completed, points`

// CreateUser inserts a new account. The UNIQUE constraints on username, email
// and tracking_code make the duplicate check atomic with the insert — two
// concurrent registrations of the same name cannot both succeed.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = now()
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, phone,
			address, role, ward, tracking_code, registered_at, training_completed, points)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.Address,
		string(user.Role),
		user.Ward,
		user.TrackingCode,
		encodeTime(user.RegisteredAt),
		boolToInt(user.TrainingDone),
		user.Points,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username. The username column is
// COLLATE NOCASE, so the lookup matches case-insensitively — consistent
// with the uniqueness rule.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user not found with username %s", username),
			}
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return user, nil
}

// ListUsers returns the user directory ordered by registration.
func (db *DB) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of accounts. The server uses it to decide
// whether to provision the bootstrap admin.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// scanner abstracts *sql.Row and *sql.Rows so one scan function serves both.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u            model.User
		role         string
		registeredAt string
		trainingDone int
	)
	err := s.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Phone,
		&u.Address,
		&role,
		&u.Ward,
		&u.TrackingCode,
		&registeredAt,
		&trainingDone,
		&u.Points,
	)
	if err != nil {
		return nil, err
	}

	u.Role = model.Role(role)
	u.TrainingDone = trainingDone != 0
	if u.RegisteredAt, err = decodeTime(registeredAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
