package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un ítem de stock (función pura de cantidad vs. mínimo).
const (
	StockStatusInStock    = "in-stock"
	StockStatusLowStock   = "low-stock"
	StockStatusOutOfStock = "out-of-stock"
)

// StockItem representa un ítem del catálogo de consumibles en bodega.
// Quantity nunca baja de cero; Status se recalcula en cada mutación.
type StockItem struct {
	ID          string
	SKU         string // código único por bodega
	Name        string
	Category    string
	UnitMeasure string // unidad, metro, litro, kg...
	Quantity    decimal.Decimal
	Minimum     decimal.Decimal // umbral de alerta de stock bajo
	UnitCost    decimal.Decimal
	WarehouseID string
	Status      string // derivado: in-stock | low-stock | out-of-stock
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeStockStatus deriva el estado a partir de cantidad y mínimo.
func ComputeStockStatus(quantity, minimum decimal.Decimal) string {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return StockStatusOutOfStock
	}
	if quantity.LessThanOrEqual(minimum) {
		return StockStatusLowStock
	}
	return StockStatusInStock
}

// Recompute recalcula el estado derivado del ítem. Llamar tras toda mutación
// de Quantity o Minimum.
func (s *StockItem) Recompute() {
	s.Status = ComputeStockStatus(s.Quantity, s.Minimum)
}
