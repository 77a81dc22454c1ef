package repository

import "github.com/jhoicas/ServiTec-api/internal/domain/entity"

// StockItemRepository define el puerto de persistencia para ítems de stock.
// Usado dentro de transacciones para garantizar consistencia; GetForUpdate
// bloquea la fila (SELECT FOR UPDATE) para el check-then-act de asignación.
type StockItemRepository interface {
	Create(item *entity.StockItem) error
	GetByID(id string) (*entity.StockItem, error)
	GetForUpdate(id string) (*entity.StockItem, error)
	Update(item *entity.StockItem) error
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockItem, error)
	// ListBelowMinimum devuelve los ítems con cantidad <= mínimo (alertas),
	// calculado bajo demanda, no almacenado.
	ListBelowMinimum(warehouseID string) ([]*entity.StockItem, error)
}
