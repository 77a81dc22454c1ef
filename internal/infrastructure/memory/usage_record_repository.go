package memory

import (
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.UsageRecordRepository = (*UsageRecordRepo)(nil)

// UsageRecordRepo implementación en memoria del stream append-only de consumos.
type UsageRecordRepo struct {
	store *Store
	inTx  bool
}

// NewUsageRecordRepository construye el adaptador para lecturas fuera de transacción.
func NewUsageRecordRepository(store *Store) *UsageRecordRepo {
	return &UsageRecordRepo{store: store}
}

func (r *UsageRecordRepo) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.RLock()
	return r.store.mu.RUnlock
}

func (r *UsageRecordRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// Create agrega un registro al stream. Los registros jamás se mutan.
func (r *UsageRecordRepo) Create(record *entity.UsageRecord) error {
	defer r.lock()()
	c := *record
	r.store.usage = append(r.store.usage, &c)
	return nil
}

// ListByAssignment registros de una asignación en orden de llegada.
func (r *UsageRecordRepo) ListByAssignment(assignmentID string) ([]*entity.UsageRecord, error) {
	defer r.rlock()()
	var out []*entity.UsageRecord
	for _, u := range r.store.usage {
		if u.AssignmentID == assignmentID {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

// ListByJob registros consumidos contra un trabajo en orden de llegada.
func (r *UsageRecordRepo) ListByJob(jobID string) ([]*entity.UsageRecord, error) {
	defer r.rlock()()
	var out []*entity.UsageRecord
	for _, u := range r.store.usage {
		if u.JobID == jobID {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}
