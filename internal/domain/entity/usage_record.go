package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageRecord hecho inmutable de consumo de stock (append-only).
// Fuente de verdad para auditoría y analítica, independiente del snapshot
// mutable de la asignación. Nunca se muta ni se elimina.
type UsageRecord struct {
	ID           string
	TechnicianID string
	AssignmentID string
	ItemID       string
	Quantity     decimal.Decimal
	JobID        string // referencia al trabajo donde se consumió (opcional)
	Notes        string
	CreatedAt    time.Time
}
