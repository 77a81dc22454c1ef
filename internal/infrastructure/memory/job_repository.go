package memory

import (
	"sort"

	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo implementación en memoria de JobRepository.
// inTx indica que el caller ya sostiene el lock del store (transacción).
type JobRepo struct {
	store *Store
	inTx  bool
}

// NewJobRepository construye el adaptador para lecturas fuera de transacción.
func NewJobRepository(store *Store) *JobRepo {
	return &JobRepo{store: store}
}

func (r *JobRepo) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.RLock()
	return r.store.mu.RUnlock
}

func (r *JobRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// Create persiste un trabajo nuevo.
func (r *JobRepo) Create(job *entity.Job) error {
	defer r.lock()()
	if _, ok := r.store.jobs[job.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetByID devuelve el trabajo o nil si no existe.
func (r *JobRepo) GetByID(id string) (*entity.Job, error) {
	defer r.rlock()()
	return cloneJob(r.store.jobs[id]), nil
}

// GetForUpdate en memoria equivale a GetByID: la exclusión la da el lock de la
// transacción que el caller ya sostiene.
func (r *JobRepo) GetForUpdate(id string) (*entity.Job, error) {
	defer r.rlock()()
	return cloneJob(r.store.jobs[id]), nil
}

// Update reemplaza el estado persistido del trabajo.
func (r *JobRepo) Update(job *entity.Job) error {
	defer r.lock()()
	if _, ok := r.store.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.jobs[job.ID] = cloneJob(job)
	return nil
}

// ListByTechnician trabajos del técnico, más recientes primero.
func (r *JobRepo) ListByTechnician(technicianID string, limit, offset int) ([]*entity.Job, error) {
	defer r.rlock()()
	var out []*entity.Job
	for _, j := range r.store.jobs {
		if j.TechnicianID == technicianID {
			out = append(out, cloneJob(j))
		}
	}
	return pageJobs(out, limit, offset), nil
}

// ListByStatus trabajos por estado, más recientes primero.
func (r *JobRepo) ListByStatus(status string, limit, offset int) ([]*entity.Job, error) {
	defer r.rlock()()
	var out []*entity.Job
	for _, j := range r.store.jobs {
		if j.Status == status {
			out = append(out, cloneJob(j))
		}
	}
	return pageJobs(out, limit, offset), nil
}

// AppendNote agrega una nota al log del trabajo (append-only).
func (r *JobRepo) AppendNote(note *entity.JobNote) error {
	defer r.lock()()
	n := *note
	r.store.notes[note.JobID] = append(r.store.notes[note.JobID], &n)
	return nil
}

// ListNotes devuelve las notas en orden de llegada.
func (r *JobRepo) ListNotes(jobID string) ([]*entity.JobNote, error) {
	defer r.rlock()()
	src := r.store.notes[jobID]
	out := make([]*entity.JobNote, 0, len(src))
	for _, n := range src {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func pageJobs(jobs []*entity.Job, limit, offset int) []*entity.Job {
	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return jobs[i].ID < jobs[k].ID
	})
	if offset >= len(jobs) {
		return []*entity.Job{}
	}
	jobs = jobs[offset:]
	if limit > 0 && limit < len(jobs) {
		jobs = jobs[:limit]
	}
	return jobs
}
