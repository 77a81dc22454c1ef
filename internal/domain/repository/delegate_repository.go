package repository

import "github.com/jhoicas/ServiTec-api/internal/domain/entity"

// DelegateRepository define el lookup de emparejamiento asistente ↔ técnico.
// La autoridad de un asistente sobre un trabajo se deriva de su vínculo activo
// con el técnico principal en el momento del comando (colaborador externo
// modelado como puerto).
type DelegateRepository interface {
	Create(link *entity.DelegateLink) error
	// ActiveLinkFor devuelve el vínculo activo del asistente, o nil si no hay.
	ActiveLinkFor(assistantID string) (*entity.DelegateLink, error)
	DeactivateByAssistant(assistantID string) error
}
