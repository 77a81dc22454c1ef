package entity

import "time"

// DelegateLink vínculo activo asistente ↔ técnico principal.
// La autoridad de un asistente sigue al técnico con el que está emparejado
// actualmente, no al trabajo: el lookup se hace en cada comando.
type DelegateLink struct {
	ID           string
	AssistantID  string
	TechnicianID string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
