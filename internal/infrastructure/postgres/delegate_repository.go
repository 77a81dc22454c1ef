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

var _ repository.DelegateRepository = (*DelegateRepo)(nil)

// DelegateRepo lookup asistente ↔ técnico sobre PostgreSQL.
type DelegateRepo struct {
	q Querier
}

// NewDelegateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDelegateRepository(q Querier) *DelegateRepo {
	return &DelegateRepo{q: q}
}

// Create persiste un vínculo nuevo, desactivando el activo previo del
// asistente (un asistente se empareja con un solo técnico a la vez).
func (r *DelegateRepo) Create(link *entity.DelegateLink) error {
	ctx := context.Background()
	_, err := r.q.Exec(ctx,
		`UPDATE delegate_links SET active = false, updated_at = now()
		 WHERE assistant_id = $1 AND active`,
		link.AssistantID,
	)
	if err != nil {
		return fmt.Errorf("deactivate previous delegate link: %w", err)
	}
	_, err = r.q.Exec(ctx,
		`INSERT INTO delegate_links (id, assistant_id, technician_id, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		link.ID, link.AssistantID, link.TechnicianID, link.Active, link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert delegate link: %w", err)
	}
	return nil
}

// ActiveLinkFor devuelve el vínculo activo del asistente, o nil si no hay.
func (r *DelegateRepo) ActiveLinkFor(assistantID string) (*entity.DelegateLink, error) {
	query := `
		SELECT id, assistant_id, technician_id, active, created_at, updated_at
		FROM delegate_links WHERE assistant_id = $1 AND active
		ORDER BY created_at DESC LIMIT 1`
	var l entity.DelegateLink
	err := r.q.QueryRow(context.Background(), query, assistantID).Scan(
		&l.ID, &l.AssistantID, &l.TechnicianID, &l.Active, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delegate link: %w", err)
	}
	return &l, nil
}

// DeactivateByAssistant desactiva el vínculo activo del asistente.
func (r *DelegateRepo) DeactivateByAssistant(assistantID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE delegate_links SET active = false, updated_at = now()
		 WHERE assistant_id = $1 AND active`,
		assistantID,
	)
	if err != nil {
		return fmt.Errorf("deactivate delegate link: %w", err)
	}
	return nil
}
