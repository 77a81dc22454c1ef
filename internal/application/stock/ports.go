package stock

import (
	"context"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios
// atados a esa tx. La mutación de la asignación y la del ítem dentro de una
// operación son una unidad atómica: un crash entre ambas no es observable.
type TxRunner interface {
	RunStock(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		assignmentRepo repository.StockAssignmentRepository,
		usageRepo repository.UsageRecordRepository,
	) error) error
}

// Notifier puerto de intenciones de notificación (fire-and-forget).
type Notifier interface {
	Notify(n entity.Notification)
}
