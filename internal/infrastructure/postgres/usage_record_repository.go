package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.UsageRecordRepository = (*UsageRecordRepo)(nil)

// UsageRecordRepo implementación del stream append-only de consumos sobre
// PostgreSQL. Solo INSERT y SELECT: los registros jamás se mutan.
type UsageRecordRepo struct {
	q Querier
}

// NewUsageRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsageRecordRepository(q Querier) *UsageRecordRepo {
	return &UsageRecordRepo{q: q}
}

// Create agrega un registro de consumo.
func (r *UsageRecordRepo) Create(record *entity.UsageRecord) error {
	query := `
		INSERT INTO usage_records (id, technician_id, assignment_id, item_id, quantity, job_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.TechnicianID, record.AssignmentID, record.ItemID,
		record.Quantity, record.JobID, record.Notes, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// ListByAssignment registros de una asignación en orden de llegada.
func (r *UsageRecordRepo) ListByAssignment(assignmentID string) ([]*entity.UsageRecord, error) {
	return r.list(`assignment_id`, assignmentID)
}

// ListByJob registros consumidos contra un trabajo en orden de llegada.
func (r *UsageRecordRepo) ListByJob(jobID string) ([]*entity.UsageRecord, error) {
	return r.list(`job_id`, jobID)
}

func (r *UsageRecordRepo) list(column, value string) ([]*entity.UsageRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, technician_id, assignment_id, item_id, quantity, job_id, notes, created_at
		FROM usage_records WHERE %s = $1 ORDER BY created_at ASC`, column)
	rows, err := r.q.Query(context.Background(), query, value)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	defer rows.Close()

	var out []*entity.UsageRecord
	for rows.Next() {
		var u entity.UsageRecord
		if err := rows.Scan(
			&u.ID, &u.TechnicianID, &u.AssignmentID, &u.ItemID,
			&u.Quantity, &u.JobID, &u.Notes, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
