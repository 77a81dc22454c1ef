package entity

import "time"

// Tipos de intención de notificación que emite el motor.
const (
	NotifyJobAssigned     = "job-assigned"
	NotifyJobTransition   = "job-transition"
	NotifyReviewRequested = "review-requested"
	NotifyStockAllocated  = "stock-allocated"
	NotifyStockLow        = "stock-low"
	NotifyStockOut        = "stock-out"
)

// Prioridades de notificación.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification intención de notificación (registro plano).
// El motor la emite fire-and-forget: la entrega es del colaborador externo y
// un fallo de despacho jamás revierte la transición que la produjo.
type Notification struct {
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Priority    string    `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
}
