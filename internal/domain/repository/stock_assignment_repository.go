package repository

import "github.com/jhoicas/ServiTec-api/internal/domain/entity"

// StockAssignmentRepository define el puerto de persistencia para asignaciones
// de stock a técnicos.
type StockAssignmentRepository interface {
	Create(assignment *entity.StockAssignment) error
	GetByID(id string) (*entity.StockAssignment, error)
	GetForUpdate(id string) (*entity.StockAssignment, error)
	Update(assignment *entity.StockAssignment) error
	ListByTechnician(technicianID string, limit, offset int) ([]*entity.StockAssignment, error)
}
