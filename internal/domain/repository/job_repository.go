package repository

import "github.com/jhoicas/ServiTec-api/internal/domain/entity"

// JobRepository define el puerto de persistencia para trabajos de campo (DIP).
// GetForUpdate bloquea la fila dentro de una transacción para serializar
// transiciones concurrentes sobre el mismo trabajo.
type JobRepository interface {
	Create(job *entity.Job) error
	GetByID(id string) (*entity.Job, error)
	GetForUpdate(id string) (*entity.Job, error)
	Update(job *entity.Job) error
	ListByTechnician(technicianID string, limit, offset int) ([]*entity.Job, error)
	ListByStatus(status string, limit, offset int) ([]*entity.Job, error)
	AppendNote(note *entity.JobNote) error
	ListNotes(jobID string) ([]*entity.JobNote, error)
}
