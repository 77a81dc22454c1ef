package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo implementación de JobRepository sobre PostgreSQL (usable con pool o tx).
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador de trabajos. Pasar pool o tx (Querier).
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

const jobColumns = `
	id, work_order, title, description, site_lat, site_lng, site_address,
	technician_id, assistant_id, assigned_by, assigned_at, status,
	accepted_at, started_at, paused_at, last_resumed_at, completed_at,
	elapsed_seconds, last_lat, last_lng, last_location_at,
	review_requested_by, requested_status, sign_off, created_at, updated_at`

// Create persiste un trabajo nuevo.
func (r *JobRepo) Create(job *entity.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	lat, lng, locAt := locationCols(job.LastLocation)
	_, err := r.q.Exec(context.Background(), query,
		job.ID, job.WorkOrder, job.Title, job.Description, job.SiteLat, job.SiteLng, job.SiteAddress,
		job.TechnicianID, job.AssistantID, job.AssignedBy, job.AssignedAt, job.Status,
		job.AcceptedAt, job.StartedAt, job.PausedAt, job.LastResumedAt, job.CompletedAt,
		job.ElapsedSeconds, lat, lng, locAt,
		job.ReviewRequestedBy, job.RequestedStatus, job.SignOff, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID obtiene un trabajo por ID, o nil si no existe.
func (r *JobRepo) GetByID(id string) (*entity.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene el trabajo y bloquea la fila (SELECT FOR UPDATE):
// serializa transiciones concurrentes sobre el mismo trabajo.
func (r *JobRepo) GetForUpdate(id string) (*entity.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update actualiza el trabajo completo. WorkOrder es inmutable y no se toca.
func (r *JobRepo) Update(job *entity.Job) error {
	query := `
		UPDATE jobs SET
			status = $2, accepted_at = $3, started_at = $4, paused_at = $5,
			last_resumed_at = $6, completed_at = $7, elapsed_seconds = $8,
			last_lat = $9, last_lng = $10, last_location_at = $11,
			review_requested_by = $12, requested_status = $13, sign_off = $14,
			assistant_id = $15, updated_at = $16
		WHERE id = $1`
	lat, lng, locAt := locationCols(job.LastLocation)
	cmd, err := r.q.Exec(context.Background(), query,
		job.ID, job.Status, job.AcceptedAt, job.StartedAt, job.PausedAt,
		job.LastResumedAt, job.CompletedAt, job.ElapsedSeconds,
		lat, lng, locAt,
		job.ReviewRequestedBy, job.RequestedStatus, job.SignOff,
		job.AssistantID, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByTechnician trabajos del técnico, más recientes primero.
func (r *JobRepo) ListByTechnician(technicianID string, limit, offset int) ([]*entity.Job, error) {
	query := `
		SELECT ` + jobColumns + ` FROM jobs
		WHERE technician_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.scanMany(query, technicianID, limit, offset)
}

// ListByStatus trabajos por estado, más recientes primero.
func (r *JobRepo) ListByStatus(status string, limit, offset int) ([]*entity.Job, error) {
	query := `
		SELECT ` + jobColumns + ` FROM jobs
		WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.scanMany(query, status, limit, offset)
}

// AppendNote agrega una nota al log del trabajo (append-only).
func (r *JobRepo) AppendNote(note *entity.JobNote) error {
	query := `
		INSERT INTO job_notes (id, job_id, actor_id, actor_role, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		note.ID, note.JobID, note.ActorID, note.ActorRole, note.Text, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job note: %w", err)
	}
	return nil
}

// ListNotes notas del trabajo en orden de llegada.
func (r *JobRepo) ListNotes(jobID string) ([]*entity.JobNote, error) {
	query := `
		SELECT id, job_id, actor_id, actor_role, text, created_at
		FROM job_notes WHERE job_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job notes: %w", err)
	}
	defer rows.Close()

	var out []*entity.JobNote
	for rows.Next() {
		var n entity.JobNote
		if err := rows.Scan(&n.ID, &n.JobID, &n.ActorID, &n.ActorRole, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job note: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *JobRepo) scanOne(query string, args ...any) (*entity.Job, error) {
	j, err := scanJob(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) scanMany(query string, args ...any) ([]*entity.Job, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*entity.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// rowScanner común entre pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*entity.Job, error) {
	var j entity.Job
	var lastLat, lastLng *float64
	var lastAt *time.Time
	err := row.Scan(
		&j.ID, &j.WorkOrder, &j.Title, &j.Description, &j.SiteLat, &j.SiteLng, &j.SiteAddress,
		&j.TechnicianID, &j.AssistantID, &j.AssignedBy, &j.AssignedAt, &j.Status,
		&j.AcceptedAt, &j.StartedAt, &j.PausedAt, &j.LastResumedAt, &j.CompletedAt,
		&j.ElapsedSeconds, &lastLat, &lastLng, &lastAt,
		&j.ReviewRequestedBy, &j.RequestedStatus, &j.SignOff, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLat != nil && lastLng != nil && lastAt != nil {
		j.LastLocation = &entity.Location{Lat: *lastLat, Lng: *lastLng, Timestamp: *lastAt}
	}
	return &j, nil
}

func locationCols(loc *entity.Location) (*float64, *float64, *time.Time) {
	if loc == nil {
		return nil, nil, nil
	}
	return &loc.Lat, &loc.Lng, &loc.Timestamp
}
