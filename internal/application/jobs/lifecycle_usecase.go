package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/lifecycle"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

// LifecycleUseCase aplica comandos de ciclo de vida sobre trabajos de campo:
// asignación, transiciones autorizadas por rol, notas y consultas.
// Serialización por trabajo: un keyed mutex en memoria más GetForUpdate dentro
// de la transacción; comandos sobre trabajos distintos corren en paralelo.
type LifecycleUseCase struct {
	txRunner  TxRunner
	jobRepo   repository.JobRepository
	delegates repository.DelegateRepository
	sessions  SessionRegistry
	notifier  Notifier
	jobLocks  *keyedMutex
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	txRunner TxRunner,
	jobRepo repository.JobRepository,
	delegates repository.DelegateRepository,
	sessions SessionRegistry,
	notifier Notifier,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		txRunner:  txRunner,
		jobRepo:   jobRepo,
		delegates: delegates,
		sessions:  sessions,
		notifier:  notifier,
		jobLocks:  newKeyedMutex(),
	}
}

// AssignJobInput entrada para crear un trabajo (acción de coordinador).
type AssignJobInput struct {
	Title        string
	Description  string
	SiteLat      float64
	SiteLng      float64
	SiteAddress  string
	TechnicianID string
	AssistantID  string // opcional
	AssignerID   string
	AssignerRole string
}

// AssignJob crea un trabajo en estado "assigned" con su número de orden
// derivado e inmutable, y emite la intención de notificación al técnico.
func (uc *LifecycleUseCase) AssignJob(ctx context.Context, input AssignJobInput) (*entity.Job, error) {
	if input.AssignerRole != entity.RoleCoordinador {
		return nil, domain.ErrUnauthorized
	}
	if input.Title == "" || input.TechnicianID == "" || input.AssignerID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	id := uuid.New().String()
	job := &entity.Job{
		ID:           id,
		WorkOrder:    deriveWorkOrder(id, now),
		Title:        input.Title,
		Description:  input.Description,
		SiteLat:      input.SiteLat,
		SiteLng:      input.SiteLng,
		SiteAddress:  input.SiteAddress,
		TechnicianID: input.TechnicianID,
		AssignedBy:   input.AssignerID,
		AssignedAt:   now,
		Status:       entity.JobStatusAssigned,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.AssistantID != "" {
		job.AssistantID = &input.AssistantID
	}

	err := uc.txRunner.RunJob(ctx, func(jobRepo repository.JobRepository) error {
		return jobRepo.Create(job)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(entity.Notification{
		RecipientID: job.TechnicianID,
		Type:        entity.NotifyJobAssigned,
		Title:       "Nuevo trabajo asignado",
		Message:     fmt.Sprintf("Orden %s: %s", job.WorkOrder, job.Title),
		Priority:    entity.PriorityNormal,
		Timestamp:   now,
	})
	if job.AssistantID != nil {
		uc.notifier.Notify(entity.Notification{
			RecipientID: *job.AssistantID,
			Type:        entity.NotifyJobAssigned,
			Title:       "Nuevo trabajo como asistente",
			Message:     fmt.Sprintf("Orden %s: %s", job.WorkOrder, job.Title),
			Priority:    entity.PriorityNormal,
			Timestamp:   now,
		})
	}

	return job, nil
}

// TransitionInput comando de transición de estado.
// Dwell solo viene poblado en auto-inicios (rol sistema): el tiempo de
// permanencia acreditado se descuenta del timestamp de inicio.
type TransitionInput struct {
	JobID     string
	ActorID   string
	ActorRole string
	Target    string
	SignOff   json.RawMessage // payload de cierre opaco (solo en completed)
	Dwell     time.Duration
}

// TransitionJob autoriza y aplica una transición del grafo de estados.
// Falla sin mutación parcial: ErrUnauthorized ("no es su trabajo"),
// ErrInvalidTransition ("etapa incorrecta") o ErrNotFound.
func (uc *LifecycleUseCase) TransitionJob(ctx context.Context, input TransitionInput) (*entity.Job, error) {
	if input.JobID == "" || input.Target == "" {
		return nil, domain.ErrInvalidInput
	}
	if !lifecycle.Known(input.Target) {
		return nil, domain.ErrInvalidInput
	}

	// El vínculo del asistente se resuelve antes de abrir la transacción: es
	// una lectura del colaborador externo, no parte de la unidad atómica, y
	// dentro de la tx del store en memoria bloquearía contra su propio lock.
	link, err := uc.resolveDelegate(input.ActorID, input.ActorRole)
	if err != nil {
		return nil, err
	}

	// Una sola transición en vuelo por trabajo.
	unlock := uc.jobLocks.Lock(input.JobID)
	defer unlock()

	var updated *entity.Job
	var notes []entity.Notification

	err = uc.txRunner.RunJob(ctx, func(jobRepo repository.JobRepository) error {
		job, err := jobRepo.GetForUpdate(input.JobID)
		if err != nil {
			return err
		}
		if job == nil {
			return domain.ErrNotFound
		}

		if err := authorizeActor(job, input.ActorID, input.ActorRole, link); err != nil {
			return err
		}

		target, err := lifecycle.Resolve(job.Status, input.Target, input.ActorRole)
		if err != nil {
			return err
		}

		now := time.Now()
		previous := job.Status
		if err := applyTransition(job, target, input, now); err != nil {
			return err
		}
		job.UpdatedAt = now

		if err := jobRepo.Update(job); err != nil {
			return err
		}

		// Nota de auditoría append-only por cada transición aplicada.
		note := &entity.JobNote{
			ID:        uuid.New().String(),
			JobID:     job.ID,
			ActorID:   input.ActorID,
			ActorRole: input.ActorRole,
			Text:      fmt.Sprintf("estado: %s → %s", previous, target),
			CreatedAt: now,
		}
		if err := jobRepo.AppendNote(note); err != nil {
			return err
		}

		notes = buildTransitionNotifications(job, previous, target, now)
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Efectos post-commit: sesión de proximidad y notificaciones.
	// Nada de esto puede revertir la transición ya confirmada.
	switch updated.Status {
	case entity.JobStatusAccepted:
		uc.sessions.StartSession(updated.ID, updated.SiteLat, updated.SiteLng)
	default:
		uc.sessions.Retire(updated.ID)
	}
	for _, n := range notes {
		uc.notifier.Notify(n)
	}

	return updated, nil
}

// resolveDelegate hace el lookup del vínculo activo del asistente (en vivo,
// por comando). Para los demás roles no hay nada que resolver. Se llama
// siempre fuera de la transacción.
func (uc *LifecycleUseCase) resolveDelegate(actorID, role string) (*entity.DelegateLink, error) {
	if role != entity.RoleAsistente {
		return nil, nil
	}
	return uc.delegates.ActiveLinkFor(actorID)
}

// authorizeActor aplica el contrato de autorización por identidad:
// un técnico debe ser el técnico principal del trabajo; un asistente debe
// estar vinculado actualmente a ese técnico (link ya resuelto por el caller).
func authorizeActor(job *entity.Job, actorID, role string, link *entity.DelegateLink) error {
	switch role {
	case entity.RoleTecnico:
		if actorID != job.TechnicianID {
			return domain.ErrUnauthorized
		}
	case entity.RoleAsistente:
		if link == nil || !link.Active || link.TechnicianID != job.TechnicianID {
			return domain.ErrUnauthorized
		}
	case entity.RoleSistema:
		// comando interno (auto-inicio); no requiere identidad
	default:
		return domain.ErrUnauthorized
	}
	return nil
}

// applyTransition muta el trabajo para el estado destino ya validado.
// La contabilidad de tiempo cierra el tramo abierto en pause/review/complete
// y lo reabre en start/resume.
func applyTransition(job *entity.Job, target string, input TransitionInput, now time.Time) error {
	switch target {
	case entity.JobStatusAccepted:
		job.AcceptedAt = &now

	case entity.JobStatusInProgress:
		switch job.Status {
		case entity.JobStatusAccepted:
			// Inicio. El auto-inicio retrocede el timestamp por la permanencia
			// acumulada: el tiempo en el geocerco cuenta como trabajo.
			started := now.Add(-input.Dwell)
			job.StartedAt = &started
			job.LastResumedAt = &started
		case entity.JobStatusPaused:
			// Reanudación: sin crédito de permanencia.
			job.LastResumedAt = &now
		case entity.JobStatusPendingReview:
			// Rechazo de la revisión: el trabajo vuelve a ejecución.
			job.ReviewRequestedBy = nil
			job.RequestedStatus = nil
			job.LastResumedAt = &now
		}

	case entity.JobStatusPaused:
		if job.LastResumedAt != nil {
			job.ElapsedSeconds += int64(now.Sub(*job.LastResumedAt).Seconds())
			job.LastResumedAt = nil
		}
		job.PausedAt = &now

	case entity.JobStatusPendingReview:
		if job.LastResumedAt != nil {
			job.ElapsedSeconds += int64(now.Sub(*job.LastResumedAt).Seconds())
			job.LastResumedAt = nil
		}
		requested := entity.JobStatusCompleted
		job.ReviewRequestedBy = &input.ActorID
		job.RequestedStatus = &requested

	case entity.JobStatusCompleted:
		if job.CompletedAt != nil {
			// completedDate se escribe exactamente una vez.
			return domain.ErrInvalidTransition
		}
		if job.LastResumedAt != nil {
			job.ElapsedSeconds += int64(now.Sub(*job.LastResumedAt).Seconds())
			job.LastResumedAt = nil
		}
		job.CompletedAt = &now
		if len(input.SignOff) > 0 {
			job.SignOff = input.SignOff
		}
	}

	job.Status = target
	return nil
}

// buildTransitionNotifications arma las intenciones post-commit de una transición.
func buildTransitionNotifications(job *entity.Job, previous, target string, now time.Time) []entity.Notification {
	var out []entity.Notification

	if target == entity.JobStatusPendingReview {
		out = append(out, entity.Notification{
			RecipientID: job.TechnicianID,
			Type:        entity.NotifyReviewRequested,
			Title:       "Cierre pendiente de revisión",
			Message:     fmt.Sprintf("Orden %s: un asistente solicitó el cierre", job.WorkOrder),
			Priority:    entity.PriorityHigh,
			Timestamp:   now,
		})
		return out
	}

	msg := fmt.Sprintf("Orden %s: %s → %s", job.WorkOrder, previous, target)
	out = append(out, entity.Notification{
		RecipientID: job.TechnicianID,
		Type:        entity.NotifyJobTransition,
		Title:       "Trabajo actualizado",
		Message:     msg,
		Priority:    entity.PriorityNormal,
		Timestamp:   now,
	})
	if job.AssistantID != nil {
		out = append(out, entity.Notification{
			RecipientID: *job.AssistantID,
			Type:        entity.NotifyJobTransition,
			Title:       "Trabajo actualizado",
			Message:     msg,
			Priority:    entity.PriorityNormal,
			Timestamp:   now,
		})
	}
	return out
}

// ReportLocation registra una muestra de ubicación del trabajo y, si el actor
// dio consentimiento de ubicación esta sesión, alimenta el monitor de
// proximidad (que puede disparar el auto-inicio por la misma vía autorizada).
func (uc *LifecycleUseCase) ReportLocation(ctx context.Context, jobID string, lat, lng float64, ts time.Time, locationConsent bool) error {
	if jobID == "" {
		return domain.ErrInvalidInput
	}
	unlock := uc.jobLocks.Lock(jobID)
	err := uc.txRunner.RunJob(ctx, func(jobRepo repository.JobRepository) error {
		job, err := jobRepo.GetForUpdate(jobID)
		if err != nil {
			return err
		}
		if job == nil {
			return domain.ErrNotFound
		}
		job.LastLocation = &entity.Location{Lat: lat, Lng: lng, Timestamp: ts}
		job.UpdatedAt = time.Now()
		return jobRepo.Update(job)
	})
	unlock()
	if err != nil {
		return err
	}

	// Fuera del lock por trabajo: un auto-inicio reentra por TransitionJob.
	if locationConsent {
		uc.sessions.Ingest(jobID, lat, lng, ts)
	}
	return nil
}

// AddNote agrega una nota al log append-only del trabajo.
func (uc *LifecycleUseCase) AddNote(ctx context.Context, jobID, actorID, actorRole, text string) (*entity.JobNote, error) {
	if jobID == "" || actorID == "" || strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}
	job, err := uc.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	link, err := uc.resolveDelegate(actorID, actorRole)
	if err != nil {
		return nil, err
	}
	if err := authorizeActor(job, actorID, actorRole, link); err != nil {
		return nil, err
	}
	note := &entity.JobNote{
		ID:        uuid.New().String(),
		JobID:     jobID,
		ActorID:   actorID,
		ActorRole: actorRole,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := uc.jobRepo.AppendNote(note); err != nil {
		return nil, err
	}
	return note, nil
}

// GetJob consulta por ID.
func (uc *LifecycleUseCase) GetJob(ctx context.Context, id string) (*entity.Job, error) {
	job, err := uc.jobRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// GetNotes devuelve el log de notas del trabajo.
func (uc *LifecycleUseCase) GetNotes(ctx context.Context, jobID string) ([]*entity.JobNote, error) {
	return uc.jobRepo.ListNotes(jobID)
}

// ListByTechnician trabajos del técnico con paginación.
func (uc *LifecycleUseCase) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]*entity.Job, error) {
	return uc.jobRepo.ListByTechnician(technicianID, limit, offset)
}

// ListByStatus trabajos por estado con paginación.
func (uc *LifecycleUseCase) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.Job, error) {
	if !lifecycle.Known(status) {
		return nil, domain.ErrInvalidInput
	}
	return uc.jobRepo.ListByStatus(status, limit, offset)
}

// AllowedActions devuelve los estados alcanzables para el actor: la UI se
// renderiza a partir de esta respuesta, nunca duplica la tabla de estados.
// Un actor no autorizado sobre el trabajo recibe lista vacía.
func (uc *LifecycleUseCase) AllowedActions(ctx context.Context, jobID, actorID, role string) ([]string, error) {
	job, err := uc.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	link, err := uc.resolveDelegate(actorID, role)
	if err != nil {
		return nil, err
	}
	if err := authorizeActor(job, actorID, role, link); err != nil {
		if err == domain.ErrUnauthorized {
			return []string{}, nil
		}
		return nil, err
	}
	return lifecycle.AllowedActions(job.Status, role), nil
}

/// deriveWorkOrder deriva el número de orden: OT-<fecha>-<prefijo del UUID>.
func deriveWorkOrder(id string, t time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 6 {
		short = short[:6]
	}
	return fmt.Sprintf("OT-%s-%s", t.Format("20060102"), short)
}
