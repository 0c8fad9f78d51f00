package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// compile-time check that *DB implements repository.LedgerRepository
var _ repository.LedgerRepository = (*DB)(nil)

// Credit adds amount to the user's balance and appends the rewards row in
// the same transaction. The balance/ledger invariant depends on this being
// the only way (along with Debit) that points ever change.
func (db *DB) Credit(ctx context.Context, userID int64, amount int, rewardType, description string) (int, error) {
	var balance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, err = applyDelta(ctx, tx, userID, amount, rewardType, description)
		return err
	})
	return balance, err
}

// Debit removes amount from the user's balance only if the balance covers
// it. The check and the write share a transaction, so two concurrent debits
// cannot both pass the check against a stale balance.
func (db *DB) Debit(ctx context.Context, userID int64, amount int, rewardType, description string) (int, error) {
	var balance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := balanceForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current < amount {
			return apperror.InsufficientPoints(current, amount)
		}
		balance, err = applyDelta(ctx, tx, userID, -amount, rewardType, description)
		return err
	})
	return balance, err
}

// CompleteTraining credits a module's points, sets the training flag and
// records the ledger row — rejecting a repeat of the same module — all
// atomically. The reward description keyed by module ID is the repeat guard.
func (db *DB) CompleteTraining(ctx context.Context, userID int64, moduleID string, points int, description string) (int, error) {
	rewardType := model.RewardTraining + ":" + moduleID

	var balance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM rewards WHERE user_id = ? AND reward_type = ?`,
			userID, rewardType,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("sqlite: checking training completion: %w", err)
		}
		if count > 0 {
			return apperror.Conflict(fmt.Sprintf("training module %s already completed", moduleID))
		}

		if balance, err = applyDelta(ctx, tx, userID, points, rewardType, description); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET training_completed = 1 WHERE id = ?`, userID); err != nil {
			return fmt.Errorf("sqlite: marking training complete: %w", err)
		}
		return nil
	})
	return balance, err
}

// EventsForUser returns the user's ledger rows, newest first.
func (db *DB) EventsForUser(ctx context.Context, userID int64) ([]model.RewardEvent, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, reward_type, points, description, earned_at
		 FROM rewards WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing rewards for user %d: %w", userID, err)
	}
	defer rows.Close()

	events := []model.RewardEvent{}
	for rows.Next() {
		var (
			e        model.RewardEvent
			earnedAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Points, &e.Description, &earnedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reward row: %w", err)
		}
		if e.EarnedAt, err = decodeTime(earnedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SumForUser returns the sum of the user's ledger deltas. At any commit
// point this equals the stored balance; the tests assert exactly that.
func (db *DB) SumForUser(ctx context.Context, userID int64) (int, error) {
	var sum int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM rewards WHERE user_id = ?`, userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing rewards for user %d: %w", userID, err)
	}
	return sum, nil
}

// balanceForUpdate reads the user's balance inside tx, mapping a missing
// user to the not-found sentinel.
func balanceForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int, error) {
	var balance int
	err := tx.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = ?`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, apperror.NotFound("user", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading balance for user %d: %w", userID, err)
	}
	return balance, nil
}

// applyDelta updates the balance and appends the rewards row inside tx.
// delta may be negative (debits). Returns the new balance.
func applyDelta(ctx context.Context, tx *sql.Tx, userID int64, delta int, rewardType, description string) (int, error) {
	// The existence check doubles as the balance read for the return value.
	current, err := balanceForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points + ? WHERE id = ?`, delta, userID); err != nil {
		return 0, fmt.Errorf("sqlite: updating balance for user %d: %w", userID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rewards (user_id, reward_type, points, description, earned_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, rewardType, delta, description, encodeTime(now()),
	); err != nil {
		return 0, fmt.Errorf("sqlite: inserting reward row for user %d: %w", userID, err)
	}

	return current + delta, nil
}
