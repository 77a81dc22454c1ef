package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

const stockItemColumns = `
	id, sku, name, category, unit_measure, quantity, minimum, unit_cost,
	warehouse_id, status, created_at, updated_at`

// Create persiste un ítem nuevo. SKU único por bodega.
func (r *StockItemRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SKU, item.Name, item.Category, item.UnitMeasure,
		item.Quantity, item.Minimum, item.UnitCost,
		item.WarehouseID, item.Status, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID, o nil si no existe.
func (r *StockItemRepo) GetByID(id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE) para el
// check-then-act de asignación: dos Allocate concurrentes se serializan aquí.
func (r *StockItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update actualiza cantidad, mínimo y estado derivado del ítem.
func (r *StockItemRepo) Update(item *entity.StockItem) error {
	query := `
		UPDATE stock_items SET
			name = $2, category = $3, unit_measure = $4, quantity = $5,
			minimum = $6, unit_cost = $7, status = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Category, item.UnitMeasure, item.Quantity,
		item.Minimum, item.UnitCost, item.Status, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByWarehouse ítems de una bodega (o todos si warehouseID es vacío).
func (r *StockItemRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockItem, error) {
	query := `
		SELECT ` + stockItemColumns + ` FROM stock_items
		WHERE ($1 = '' OR warehouse_id = $1)
		ORDER BY sku ASC LIMIT $2 OFFSET $3`
	return r.scanMany(query, warehouseID, limit, offset)
}

// ListBelowMinimum ítems con cantidad <= mínimo (alerta derivada bajo demanda,
// no almacenada).
func (r *StockItemRepo) ListBelowMinimum(warehouseID string) ([]*entity.StockItem, error) {
	query := `
		SELECT ` + stockItemColumns + ` FROM stock_items
		WHERE ($1 = '' OR warehouse_id = $1) AND quantity <= minimum
		ORDER BY sku ASC`
	return r.scanMany(query, warehouseID)
}

func (r *StockItemRepo) scanOne(query string, args ...any) (*entity.StockItem, error) {
	var s entity.StockItem
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&s.ID, &s.SKU, &s.Name, &s.Category, &s.UnitMeasure, &s.Quantity, &s.Minimum,
		&s.UnitCost, &s.WarehouseID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return &s, nil
}

func (r *StockItemRepo) scanMany(query string, args ...any) ([]*entity.StockItem, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockItem
	for rows.Next() {
		var s entity.StockItem
		if err := rows.Scan(
			&s.ID, &s.SKU, &s.Name, &s.Category, &s.UnitMeasure, &s.Quantity, &s.Minimum,
			&s.UnitCost, &s.WarehouseID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
