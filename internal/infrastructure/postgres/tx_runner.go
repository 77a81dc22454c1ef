package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/ServiTec-api/internal/application/jobs"
	"github.com/jhoicas/ServiTec-api/internal/application/stock"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

// Ensure TxRunner implementa jobs.TxRunner y stock.TxRunner.
var _ jobs.TxRunner = (*TxRunner)(nil)
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunJob inicia una transacción, ejecuta fn con el repo de trabajos atado a la
// tx y hace Commit o Rollback.
func (r *TxRunner) RunJob(ctx context.Context, fn func(jobRepo repository.JobRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewJobRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunStock inicia una transacción con los repos del motor de stock: la
// mutación de la asignación y la del ítem quedan en la misma tx.
func (r *TxRunner) RunStock(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	assignmentRepo repository.StockAssignmentRepository,
	usageRepo repository.UsageRecordRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockItemRepository(tx), NewStockAssignmentRepository(tx), NewUsageRecordRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
