// Package lifecycle contiene el grafo de estados de un trabajo de campo como
// tabla única (lógica pura, sin dependencias de infraestructura). Cualquier UI
// es un renderizador de (status, AllowedActions(role)): la lógica condicional
// por rol vive solo aquí.
package lifecycle

import (
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
)

// edge arista del grafo de estados.
type edge struct {
	from string
	to   string
}

// transitions tabla de transiciones: arista → roles que pueden ejecutarla.
// "completed" es terminal: ninguna arista sale de él.
var transitions = map[edge][]string{
	{entity.JobStatusAssigned, entity.JobStatusAccepted}: {entity.RoleTecnico, entity.RoleAsistente},

	// Inicio manual (técnico/asistente) o auto-inicio por proximidad (sistema).
	{entity.JobStatusAccepted, entity.JobStatusInProgress}: {entity.RoleTecnico, entity.RoleAsistente, entity.RoleSistema},

	{entity.JobStatusInProgress, entity.JobStatusPaused}: {entity.RoleTecnico, entity.RoleAsistente},
	{entity.JobStatusPaused, entity.JobStatusInProgress}: {entity.RoleTecnico, entity.RoleAsistente},

	// Cierre: solo un técnico escribe completedDate.
	{entity.JobStatusInProgress, entity.JobStatusCompleted}: {entity.RoleTecnico},
	{entity.JobStatusPaused, entity.JobStatusCompleted}:     {entity.RoleTecnico},

	// Un asistente solicita el cierre; el trabajo queda en revisión.
	{entity.JobStatusInProgress, entity.JobStatusPendingReview}: {entity.RoleAsistente},
	{entity.JobStatusPaused, entity.JobStatusPendingReview}:     {entity.RoleAsistente},

	// El técnico confirma el cierre pendiente o lo rechaza de vuelta a in-progress.
	{entity.JobStatusPendingReview, entity.JobStatusCompleted}:  {entity.RoleTecnico},
	{entity.JobStatusPendingReview, entity.JobStatusInProgress}: {entity.RoleTecnico},
}

// Resolve valida y resuelve una transición solicitada según el rol del actor.
// Devuelve el estado destino efectivo: un asistente que pide "completed" es
// redirigido a "pending-review" (la compuerta de aprobación), no rechazado.
// Errores: ErrInvalidTransition si la arista no existe para ningún rol,
// ErrUnauthorized si existe pero no para este rol.
func Resolve(current, requested, role string) (string, error) {
	// Redirección del asistente: su intento de cierre se convierte en solicitud.
	if role == entity.RoleAsistente && requested == entity.JobStatusCompleted {
		requested = entity.JobStatusPendingReview
	}

	roles, ok := transitions[edge{current, requested}]
	if !ok {
		return "", domain.ErrInvalidTransition
	}
	for _, r := range roles {
		if r == role {
			return requested, nil
		}
	}
	return "", domain.ErrUnauthorized
}

// AllowedActions devuelve los estados destino alcanzables desde status para el
// rol dado (con la redirección de asistente aplicada: ve "completed" como
// acción aunque el motor la convierta en pending-review). Siempre devuelve un
// slice no nil para que se serialice como [] y no como null.
func AllowedActions(status, role string) []string {
	out := []string{}
	for e, roles := range transitions {
		if e.from != status {
			continue
		}
		for _, r := range roles {
			if r == role {
				out = append(out, e.to)
				break
			}
		}
	}
	// El asistente puede "completar" (redirigido): se expone como completed
	// para que la UI muestre el mismo botón que al técnico.
	if role == entity.RoleAsistente {
		for i, a := range out {
			if a == entity.JobStatusPendingReview {
				out[i] = entity.JobStatusCompleted
			}
		}
	}
	sortStatuses(out)
	return out
}

// Known indica si un estado pertenece al conjunto declarado.
func Known(status string) bool {
	switch status {
	case entity.JobStatusAssigned, entity.JobStatusAccepted, entity.JobStatusInProgress,
		entity.JobStatusPaused, entity.JobStatusPendingReview, entity.JobStatusCompleted:
		return true
	}
	return false
}

// sortStatuses orden estable para respuestas determinísticas (el mapa no lo garantiza).
func sortStatuses(ss []string) {
	order := map[string]int{
		entity.JobStatusAccepted:      0,
		entity.JobStatusInProgress:    1,
		entity.JobStatusPaused:        2,
		entity.JobStatusPendingReview: 3,
		entity.JobStatusCompleted:     4,
	}
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && order[ss[j]] < order[ss[j-1]]; j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}
