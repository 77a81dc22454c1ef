package dto

import (
	"github.com/shopspring/decimal"
)

// CreateStockItemRequest alta de un ítem de catálogo.
type CreateStockItemRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitMeasure string          `json:"unit_measure"`
	Quantity    decimal.Decimal `json:"quantity"`
	Minimum     decimal.Decimal `json:"minimum"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	WarehouseID string          `json:"warehouse_id"`
}

// AllocateStockRequest asignación de stock a un técnico.
type AllocateStockRequest struct {
	ItemID       string          `json:"item_id"`
	TechnicianID string          `json:"technician_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes,omitempty"`
}

// RecordUsageRequest consumo contra una asignación.
type RecordUsageRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	JobID    string          `json:"job_id,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// ReturnStockRequest devolución de remanente a bodega.
type ReturnStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// SetMinimumRequest ajuste del umbral mínimo de un ítem.
type SetMinimumRequest struct {
	Minimum decimal.Decimal `json:"minimum"`
}
