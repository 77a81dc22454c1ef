package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una asignación de stock a técnico.
const (
	AssignmentStatusAssigned = "assigned"
	AssignmentStatusInUse    = "in-use"
	AssignmentStatusDepleted = "depleted"
	AssignmentStatusReturned = "returned"
)

// StockAssignment representa stock asignado a un técnico para consumir en campo.
// Invariante de conservación: Assigned == Used + Remaining en todo momento.
// Una devolución reduce Remaining y Assigned por igual y acredita la misma
// cantidad al StockItem origen (conservación de masa entre ambas entidades).
// ItemName y UnitMeasure son snapshot del ítem al momento de asignar.
// Nunca se elimina: depleted/returned se conservan como historial.
type StockAssignment struct {
	ID           string
	TechnicianID string
	ItemID       string
	ItemName     string
	UnitMeasure  string
	Assigned     decimal.Decimal
	Used         decimal.Decimal
	Remaining    decimal.Decimal
	Status       string // assigned | in-use | depleted | returned
	AssignedBy   string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ConservationHolds verifica el invariante Assigned == Used + Remaining.
func (a *StockAssignment) ConservationHolds() bool {
	return a.Assigned.Equal(a.Used.Add(a.Remaining))
}

// RecomputeStatus deriva el estado según used/remaining. returned indica que
// la mutación que cerró el remanente fue una devolución (no un consumo).
func (a *StockAssignment) RecomputeStatus(returned bool) {
	switch {
	case a.Remaining.LessThanOrEqual(decimal.Zero) && returned:
		a.Status = AssignmentStatusReturned
	case a.Remaining.LessThanOrEqual(decimal.Zero):
		a.Status = AssignmentStatusDepleted
	case a.Used.GreaterThan(decimal.Zero):
		a.Status = AssignmentStatusInUse
	default:
		a.Status = AssignmentStatusAssigned
	}
}
