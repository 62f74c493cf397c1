package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paywatch/paywatch-backend/internal/domain"
)

const obligationColumns = `id, user_id, expected_amount, state, settlement_transfer_id, balance_before, balance_after, created_at, updated_at, settled_at`

// ObligationRepository implements domain.ObligationRepository using PostgreSQL
type ObligationRepository struct {
	pool *pgxpool.Pool
}

// NewObligationRepository creates a new ObligationRepository
func NewObligationRepository(pool *pgxpool.Pool) *ObligationRepository {
	return &ObligationRepository{pool: pool}
}

// Create inserts a new unsettled obligation
func (r *ObligationRepository) Create(obligation *domain.PaymentObligation) (*domain.PaymentObligation, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(obligation.ExpectedAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid expected amount: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO payment_obligations (user_id, expected_amount, state)
		 VALUES ($1, $2, $3)
		 RETURNING `+obligationColumns,
		obligation.UserID, amount, string(domain.ObligationStateUnsettled))
	return scanObligation(row)
}

// GetByID retrieves an obligation by its id
func (r *ObligationRepository) GetByID(id int64) (*domain.PaymentObligation, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+obligationColumns+` FROM payment_obligations WHERE id = $1`, id)
	obligation, err := scanObligation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrObligationNotFound
		}
		return nil, err
	}
	return obligation, nil
}

// ListAll retrieves all obligations in ascending id order
func (r *ObligationRepository) ListAll() ([]*domain.PaymentObligation, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+obligationColumns+` FROM payment_obligations ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObligations(rows)
}

// ListByState retrieves obligations in the given state in ascending id order
func (r *ObligationRepository) ListByState(state domain.ObligationState) ([]*domain.PaymentObligation, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+obligationColumns+` FROM payment_obligations WHERE state = $1 ORDER BY id ASC`,
		string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObligations(rows)
}

// ListUnsettled retrieves all unsettled obligations in ascending id order
func (r *ObligationRepository) ListUnsettled() ([]*domain.PaymentObligation, error) {
	return r.ListByState(domain.ObligationStateUnsettled)
}

// LastSettledBefore retrieves the most recent settled obligation with an id
// below the given id.
func (r *ObligationRepository) LastSettledBefore(id int64) (*domain.PaymentObligation, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+obligationColumns+` FROM payment_obligations
		 WHERE state = $1 AND id < $2
		 ORDER BY id DESC LIMIT 1`,
		string(domain.ObligationStateSettled), id)
	obligation, err := scanObligation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrObligationNotFound
		}
		return nil, err
	}
	return obligation, nil
}

// Settle marks an obligation settled and credits the user's balance in one
// database transaction. The obligation and user rows are locked so a
// concurrent writer cannot produce a lost balance update; an obligation
// that is no longer unsettled fails with ErrObligationSettled and nothing
// is written.
func (r *ObligationRepository) Settle(params domain.SettleObligationParams) (*domain.PaymentObligation, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin settlement: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT user_id FROM payment_obligations
		 WHERE id = $1 AND state = $2
		 FOR UPDATE`,
		params.ObligationID, string(domain.ObligationStateUnsettled)).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrObligationSettled
		}
		return nil, err
	}

	var balanceNum pgtype.Numeric
	err = tx.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balanceNum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	balanceBefore := pgNumericToDecimal(balanceNum)
	balanceAfter := balanceBefore.Add(params.Amount)

	beforeNum, err := decimalToPgNumeric(balanceBefore)
	if err != nil {
		return nil, err
	}
	afterNum, err := decimalToPgNumeric(balanceAfter)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`UPDATE payment_obligations
		 SET state = $2, settlement_transfer_id = $3, balance_before = $4,
		     balance_after = $5, settled_at = now(), updated_at = now()
		 WHERE id = $1
		 RETURNING `+obligationColumns,
		params.ObligationID, string(domain.ObligationStateSettled),
		params.TransferID, beforeNum, afterNum)
	settled, err := scanObligation(row)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET balance = $2, updated_at = now() WHERE id = $1`,
		userID, afterNum)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit settlement: %w", err)
	}
	return settled, nil
}

// Helper functions

func scanObligations(rows pgx.Rows) ([]*domain.PaymentObligation, error) {
	var result []*domain.PaymentObligation
	for rows.Next() {
		obligation, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, obligation)
	}
	return result, rows.Err()
}

func scanObligation(row pgx.Row) (*domain.PaymentObligation, error) {
	var (
		o          domain.PaymentObligation
		state      string
		transferID pgtype.Text
		before     pgtype.Numeric
		after      pgtype.Numeric
		amount     pgtype.Numeric
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
		settledAt  pgtype.Timestamptz
	)
	err := row.Scan(&o.ID, &o.UserID, &amount, &state, &transferID, &before, &after, &createdAt, &updatedAt, &settledAt)
	if err != nil {
		return nil, err
	}

	o.ExpectedAmount = pgNumericToDecimal(amount)
	o.State = domain.ObligationState(state)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	if transferID.Valid {
		o.SettlementTransferID = &transferID.String
	}
	if before.Valid {
		d := pgNumericToDecimal(before)
		o.BalanceBefore = &d
	}
	if after.Valid {
		d := pgNumericToDecimal(after)
		o.BalanceAfter = &d
	}
	if settledAt.Valid {
		o.SettledAt = &settledAt.Time
	}
	return &o, nil
}
