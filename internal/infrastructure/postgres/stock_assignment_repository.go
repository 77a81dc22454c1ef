package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.StockAssignmentRepository = (*StockAssignmentRepo)(nil)

// StockAssignmentRepo implementación de StockAssignmentRepository sobre PostgreSQL.
type StockAssignmentRepo struct {
	q Querier
}

// NewStockAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAssignmentRepository(q Querier) *StockAssignmentRepo {
	return &StockAssignmentRepo{q: q}
}

const assignmentColumns = `
	id, technician_id, item_id, item_name, unit_measure, assigned, used,
	remaining, status, assigned_by, notes, created_at, updated_at`

// Create persiste una asignación nueva.
func (r *StockAssignmentRepo) Create(a *entity.StockAssignment) error {
	query := `
		INSERT INTO stock_assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.TechnicianID, a.ItemID, a.ItemName, a.UnitMeasure, a.Assigned, a.Used,
		a.Remaining, a.Status, a.AssignedBy, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock assignment: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación por ID, o nil si no existe.
func (r *StockAssignmentRepo) GetByID(id string) (*entity.StockAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM stock_assignments WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene la asignación y bloquea la fila (SELECT FOR UPDATE).
func (r *StockAssignmentRepo) GetForUpdate(id string) (*entity.StockAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM stock_assignments WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update actualiza los contadores y estado de la asignación.
func (r *StockAssignmentRepo) Update(a *entity.StockAssignment) error {
	query := `
		UPDATE stock_assignments SET
			assigned = $2, used = $3, remaining = $4, status = $5, notes = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		a.ID, a.Assigned, a.Used, a.Remaining, a.Status, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock assignment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByTechnician asignaciones del técnico, más recientes primero.
func (r *StockAssignmentRepo) ListByTechnician(technicianID string, limit, offset int) ([]*entity.StockAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + ` FROM stock_assignments
		WHERE technician_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, technicianID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock assignments: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockAssignment
	for rows.Next() {
		var a entity.StockAssignment
		if err := rows.Scan(
			&a.ID, &a.TechnicianID, &a.ItemID, &a.ItemName, &a.UnitMeasure, &a.Assigned, &a.Used,
			&a.Remaining, &a.Status, &a.AssignedBy, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock assignment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *StockAssignmentRepo) scanOne(query string, args ...any) (*entity.StockAssignment, error) {
	var a entity.StockAssignment
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&a.ID, &a.TechnicianID, &a.ItemID, &a.ItemName, &a.UnitMeasure, &a.Assigned, &a.Used,
		&a.Remaining, &a.Status, &a.AssignedBy, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock assignment: %w", err)
	}
	return &a, nil
}
