package dto

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
)

// AssignJobRequest creación de un trabajo por un coordinador.
type AssignJobRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	SiteLat      float64 `json:"site_lat"`
	SiteLng      float64 `json:"site_lng"`
	SiteAddress  string  `json:"site_address"`
	TechnicianID string  `json:"technician_id"`
	AssistantID  string  `json:"assistant_id,omitempty"`
}

// TransitionRequest comando de transición de estado.
// target_status cubre accept/start/pause/resume/complete/request-review.
type TransitionRequest struct {
	TargetStatus string          `json:"target_status"`
	SignOff      json.RawMessage `json:"sign_off,omitempty"` // blob opaco de cierre
}

// LocationReportRequest muestra de ubicación para el monitor de proximidad.
// location_consent es el flag de capacidad de la sesión del cliente: sin él,
// la muestra se registra pero no alimenta el geocerco.
type LocationReportRequest struct {
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	Timestamp       time.Time `json:"timestamp"`
	LocationConsent bool      `json:"location_consent"`
}

// NoteRequest nota de texto libre para el log del trabajo.
type NoteRequest struct {
	Text string `json:"text"`
}

// JobResponse representación HTTP de un trabajo.
type JobResponse struct {
	ID             string           `json:"id"`
	WorkOrder      string           `json:"work_order"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	SiteLat        float64          `json:"site_lat"`
	SiteLng        float64          `json:"site_lng"`
	SiteAddress    string           `json:"site_address,omitempty"`
	TechnicianID   string           `json:"technician_id"`
	AssistantID    *string          `json:"assistant_id,omitempty"`
	AssignedBy     string           `json:"assigned_by"`
	AssignedAt     time.Time        `json:"assigned_at"`
	Status         string           `json:"status"`
	AcceptedAt     *time.Time       `json:"accepted_at,omitempty"`
	StartedAt      *time.Time       `json:"started_at,omitempty"`
	PausedAt       *time.Time       `json:"paused_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
	LastLocation   *entity.Location `json:"last_location,omitempty"`
	ReviewBy       *string          `json:"review_requested_by,omitempty"`
	SignOff        json.RawMessage  `json:"sign_off,omitempty"`
}

// JobToResponse mapea la entidad al DTO de salida.
func JobToResponse(j *entity.Job) JobResponse {
	return JobResponse{
		ID:             j.ID,
		WorkOrder:      j.WorkOrder,
		Title:          j.Title,
		Description:    j.Description,
		SiteLat:        j.SiteLat,
		SiteLng:        j.SiteLng,
		SiteAddress:    j.SiteAddress,
		TechnicianID:   j.TechnicianID,
		AssistantID:    j.AssistantID,
		AssignedBy:     j.AssignedBy,
		AssignedAt:     j.AssignedAt,
		Status:         j.Status,
		AcceptedAt:     j.AcceptedAt,
		StartedAt:      j.StartedAt,
		PausedAt:       j.PausedAt,
		CompletedAt:    j.CompletedAt,
		ElapsedSeconds: j.ElapsedSeconds,
		LastLocation:   j.LastLocation,
		ReviewBy:       j.ReviewRequestedBy,
		SignOff:        j.SignOff,
	}
}
