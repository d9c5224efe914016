package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// RetryObserver recibe un aviso por cada reintento de transacción.
type RetryObserver interface {
	TxRetried()
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL y los reintenta
// ante fallos de serialización (40001) o deadlock (40P01).
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries uint64
	base       time.Duration
	observer   RetryObserver
}

// NewTxRunner construye el runner. observer puede ser nil.
func NewTxRunner(pool *pgxpool.Pool, cfg config.TxConfig, observer RetryObserver) *TxRunner {
	base := cfg.RetryBase
	if base <= 0 {
		base = 20 * time.Millisecond
	}
	maxRetries := uint64(0)
	if cfg.MaxRetries > 0 {
		maxRetries = uint64(cfg.MaxRetries)
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, base: base, observer: observer}
}

// Reader repositorios atados al pool (lecturas sin bloqueo).
func (r *TxRunner) Reader() inventory.Repos {
	return reposFor(r.pool)
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Agotados los reintentos devuelve domain.ErrTxConflict envolviendo la causa.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.WithJitterPercent(25, retry.NewExponential(r.base)))

	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempts > 0 && r.observer != nil {
			r.observer.TxRetried()
		}
		attempts++
		err := r.runOnce(ctx, fn)
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil && isRetryable(err) {
		return fmt.Errorf("transacción abortada tras %d intentos: %w: %w", attempts, domain.ErrTxConflict, err)
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func reposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Inventory: NewInventoryRepository(q),
		Movements: NewStockMovementRepository(q),
		Transfers: NewStockTransferRepository(q),
	}
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)
