package prizepool

import (
	"context"
	"database/sql"
	"sync"
)

// Accumulator is the single durable prize counter, one sqlite row mutated
// under a process-wide mutex so a drain never loses a concurrent add.
//
// Balances accumulate float64 contributions; totals are approximate to
// floating precision, not exact decimal.
type Accumulator struct {
	db *sql.DB
	mu sync.Mutex
}

func New(db *sql.DB) *Accumulator {
	return &Accumulator{db: db}
}

// Add credits amount to the pool. Fractional and, when corrections are
// enabled upstream, negative amounts are accepted as-is.
func (a *Accumulator) Add(ctx context.Context, amount float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.ExecContext(ctx,
		`UPDATE prize_pool SET balance = balance + ? WHERE id = 1`, amount)
	return err
}

// Balance reads the current undistributed total.
func (a *Accumulator) Balance(ctx context.Context) (float64, error) {
	var balance float64
	err := a.db.QueryRowContext(ctx,
		`SELECT balance FROM prize_pool WHERE id = 1`).Scan(&balance)
	return balance, err
}

// DrainToZero atomically returns the balance and resets it. Every add lands
// either in the returned value or in the next drain, never in neither.
func (a *Accumulator) DrainToZero(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var balance float64
	if err := tx.QueryRowContext(ctx,
		`SELECT balance FROM prize_pool WHERE id = 1`).Scan(&balance); err != nil {
		tx.Rollback()
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE prize_pool SET balance = 0 WHERE id = 1`); err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}
