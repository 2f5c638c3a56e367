package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

var (
	_ repository.TxRunner   = (*TxRunner)(nil)
	_ repository.DumpRunner = (*TxRunner)(nil)
)

// TxRunner abre una transacción por llamada. Si PostgreSQL aborta por serialization_failure
// o deadlock, la función se vuelve a ejecutar completa hasta retries veces.
type TxRunner struct {
	pool    *pgxpool.Pool
	retries uint
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, retries: 1}
}

// WithRetries n < 1 equivale a un solo intento.
func (r *TxRunner) WithRetries(n int) *TxRunner {
	r.retries = uint(max(n, 1))
	return r
}

// Run fn recibe un Store atado a la tx; error de fn = rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(s repository.Store) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error { return fn(NewStore(tx)) })
}

// RunDump como Run pero con el repositorio de volcado.
func (r *TxRunner) RunDump(ctx context.Context, fn func(d repository.DumpRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error { return fn(NewDumpRepository(tx)) })
}

func (r *TxRunner) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if r.retries <= 1 {
		return r.once(ctx, fn)
	}
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := r.once(ctx, fn)
		switch {
		case err == nil:
			return struct{}{}, nil
		case !retryable(err):
			return struct{}{}, backoff.Permanent(err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("transacción abortada por concurrencia, reintentando")
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(r.retries),
	)
	return err
}

func (r *TxRunner) once(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPostgresError("commit transaction", err)
	}
	return nil
}

// retryable serialization_failure y deadlock_detected; lock_not_available no se reintenta.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
