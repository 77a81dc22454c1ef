package memory

import (
	"sort"

	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.StockAssignmentRepository = (*StockAssignmentRepo)(nil)

// StockAssignmentRepo implementación en memoria de StockAssignmentRepository.
type StockAssignmentRepo struct {
	store *Store
	inTx  bool
}

// NewStockAssignmentRepository construye el adaptador para lecturas fuera de transacción.
func NewStockAssignmentRepository(store *Store) *StockAssignmentRepo {
	return &StockAssignmentRepo{store: store}
}

func (r *StockAssignmentRepo) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.RLock()
	return r.store.mu.RUnlock
}

func (r *StockAssignmentRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// Create persiste una asignación nueva.
func (r *StockAssignmentRepo) Create(assignment *entity.StockAssignment) error {
	defer r.lock()()
	if _, ok := r.store.assignments[assignment.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.assignments[assignment.ID] = cloneAssignment(assignment)
	return nil
}

// GetByID devuelve la asignación o nil si no existe.
func (r *StockAssignmentRepo) GetByID(id string) (*entity.StockAssignment, error) {
	defer r.rlock()()
	return cloneAssignment(r.store.assignments[id]), nil
}

// GetForUpdate en memoria equivale a GetByID bajo el lock de la transacción.
func (r *StockAssignmentRepo) GetForUpdate(id string) (*entity.StockAssignment, error) {
	defer r.rlock()()
	return cloneAssignment(r.store.assignments[id]), nil
}

// Update reemplaza el estado persistido de la asignación.
func (r *StockAssignmentRepo) Update(assignment *entity.StockAssignment) error {
	defer r.lock()()
	if _, ok := r.store.assignments[assignment.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.assignments[assignment.ID] = cloneAssignment(assignment)
	return nil
}

// ListByTechnician asignaciones del técnico, más recientes primero.
func (r *StockAssignmentRepo) ListByTechnician(technicianID string, limit, offset int) ([]*entity.StockAssignment, error) {
	defer r.rlock()()
	var out []*entity.StockAssignment
	for _, a := range r.store.assignments {
		if a.TechnicianID == technicianID {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID < out[k].ID
	})
	if offset >= len(out) {
		return []*entity.StockAssignment{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
