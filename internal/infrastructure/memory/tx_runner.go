package memory

import (
	"context"

	"github.com/jhoicas/ServiTec-api/internal/application/jobs"
	"github.com/jhoicas/ServiTec-api/internal/application/stock"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de ambos motores.
var _ jobs.TxRunner = (*TxRunner)(nil)
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks sosteniendo el lock de escritura del store:
// el equivalente en memoria de una transacción serializada. Un crash entre la
// mutación de la asignación y la del ítem no es observable desde fuera porque
// ningún lector entra mientras el lock está tomado.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// RunJob ejecuta fn con el repositorio de trabajos atado a la "transacción".
func (r *TxRunner) RunJob(ctx context.Context, fn func(jobRepo repository.JobRepository) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(&JobRepo{store: r.store, inTx: true})
}

// RunStock ejecuta fn con los repositorios de stock atados a la "transacción".
func (r *TxRunner) RunStock(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	assignmentRepo repository.StockAssignmentRepository,
	usageRepo repository.UsageRecordRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(
		&StockItemRepo{store: r.store, inTx: true},
		&StockAssignmentRepo{store: r.store, inTx: true},
		&UsageRecordRepo{store: r.store, inTx: true},
	)
}
