package entity

import (
	"encoding/json"
	"time"
)

// Estados del ciclo de vida de un trabajo de campo.
// El grafo de transiciones vive en internal/domain/lifecycle; aquí solo los valores.
const (
	JobStatusAssigned      = "assigned"
	JobStatusAccepted      = "accepted"
	JobStatusInProgress    = "in-progress"
	JobStatusPaused        = "paused"
	JobStatusPendingReview = "pending-review"
	JobStatusCompleted     = "completed"
)

// Roles de actor sobre un trabajo.
const (
	RoleTecnico     = "tecnico"
	RoleAsistente   = "asistente"
	RoleCoordinador = "coordinador"
	RoleSistema     = "sistema" // auto-inicio por proximidad
)

// Location muestra de ubicación (lat/lng en grados decimales).
type Location struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// JobNote entrada del log de notas del trabajo (append-only).
type JobNote struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Job representa un trabajo de campo asignado a un técnico (con asistente opcional).
// WorkOrder es derivado e inmutable desde la asignación. Los trabajos nunca se
// eliminan: los estados terminales se conservan para auditoría y reportes.
type Job struct {
	ID          string
	WorkOrder   string // número de orden de trabajo, ej. OT-20250901-A1B2C3
	Title       string
	Description string

	// Sitio del trabajo (centro del geocerco para el monitor de proximidad)
	SiteLat     float64
	SiteLng     float64
	SiteAddress string

	// Asignación
	TechnicianID string  // técnico principal (dueño responsable)
	AssistantID  *string // asistente delegado opcional
	AssignedBy   string  // coordinador que asignó
	AssignedAt   time.Time

	// Ciclo de vida
	Status        string
	AcceptedAt    *time.Time
	StartedAt     *time.Time
	PausedAt      *time.Time
	LastResumedAt *time.Time // inicio del tramo de trabajo en curso (start o último resume)
	CompletedAt   *time.Time // se escribe exactamente una vez, solo por un técnico

	// Datos de ejecución
	ElapsedSeconds int64 // segundos acumulados de tramos cerrados (pause/complete)
	LastLocation   *Location

	// Revisión pendiente: asistente que solicitó el cierre y estado que pidió
	ReviewRequestedBy *string
	RequestedStatus   *string

	// Payload de cierre: stock usado, campos UDF, referencias de fotos.
	// Blob opaco; el motor lo adjunta sin interpretarlo.
	SignOff json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal indica si el trabajo está en estado terminal (no admite más transiciones).
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted
}

// OpenSegmentSince devuelve el inicio del tramo de trabajo abierto, si lo hay.
// Un tramo está abierto entre start/resume y el siguiente pause/complete.
func (j *Job) OpenSegmentSince() *time.Time {
	if j.Status != JobStatusInProgress {
		return nil
	}
	return j.LastResumedAt
}
