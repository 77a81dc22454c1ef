package repository

import "github.com/jhoicas/ServiTec-api/internal/domain/entity"

// UsageRecordRepository define el puerto para el stream append-only de consumos.
// Solo Create y lecturas: los registros jamás se mutan ni eliminan.
type UsageRecordRepository interface {
	Create(record *entity.UsageRecord) error
	ListByAssignment(assignmentID string) ([]*entity.UsageRecord, error)
	ListByJob(jobID string) ([]*entity.UsageRecord, error)
}
