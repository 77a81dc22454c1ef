package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/lifecycle"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests Resolve: grafo de transiciones por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_CaminoFelizTecnico(t *testing.T) {
	cases := []struct {
		from, to string
	}{
		{entity.JobStatusAssigned, entity.JobStatusAccepted},
		{entity.JobStatusAccepted, entity.JobStatusInProgress},
		{entity.JobStatusInProgress, entity.JobStatusPaused},
		{entity.JobStatusPaused, entity.JobStatusInProgress},
		{entity.JobStatusInProgress, entity.JobStatusCompleted},
		{entity.JobStatusPaused, entity.JobStatusCompleted},
	}
	for _, c := range cases {
		got, err := lifecycle.Resolve(c.from, c.to, entity.RoleTecnico)
		require.NoError(t, err, "el técnico debe poder %s → %s", c.from, c.to)
		assert.Equal(t, c.to, got)
	}
}

// El asistente que pide "completed" es redirigido a pending-review, nunca
// llega a completed directamente.
func TestResolve_AsistenteRedirigidoARevision(t *testing.T) {
	got, err := lifecycle.Resolve(entity.JobStatusInProgress, entity.JobStatusCompleted, entity.RoleAsistente)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPendingReview, got, "el cierre de un asistente debe quedar en revisión")

	got, err = lifecycle.Resolve(entity.JobStatusPaused, entity.JobStatusCompleted, entity.RoleAsistente)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPendingReview, got)
}

// Solo un técnico confirma (o rechaza) un cierre pendiente de revisión.
func TestResolve_RevisionSoloTecnico(t *testing.T) {
	got, err := lifecycle.Resolve(entity.JobStatusPendingReview, entity.JobStatusCompleted, entity.RoleTecnico)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, got)

	// Rechazo: vuelve a ejecución.
	got, err = lifecycle.Resolve(entity.JobStatusPendingReview, entity.JobStatusInProgress, entity.RoleTecnico)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusInProgress, got)

	// Un asistente no puede confirmar su propia solicitud: su "completed" se
	// redirige a pending-review y esa arista no existe desde pending-review.
	_, err = lifecycle.Resolve(entity.JobStatusPendingReview, entity.JobStatusCompleted, entity.RoleAsistente)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Arista inexistente vs. arista existente con rol equivocado: errores distintos.
func TestResolve_DistincionDeErrores(t *testing.T) {
	// assigned → completed no existe para nadie.
	_, err := lifecycle.Resolve(entity.JobStatusAssigned, entity.JobStatusCompleted, entity.RoleTecnico)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "arista inexistente debe ser transición inválida")

	// in-progress → completed existe, pero no para el rol sistema.
	_, err = lifecycle.Resolve(entity.JobStatusInProgress, entity.JobStatusCompleted, entity.RoleSistema)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "arista existente con rol equivocado debe ser no autorizado")
}

// El auto-inicio (rol sistema) solo puede accepted → in-progress.
func TestResolve_RolSistemaSoloAutoInicio(t *testing.T) {
	got, err := lifecycle.Resolve(entity.JobStatusAccepted, entity.JobStatusInProgress, entity.RoleSistema)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusInProgress, got)

	_, err = lifecycle.Resolve(entity.JobStatusPaused, entity.JobStatusInProgress, entity.RoleSistema)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// completed es terminal: ninguna arista sale de él.
func TestResolve_CompletedEsTerminal(t *testing.T) {
	for _, to := range []string{
		entity.JobStatusAssigned, entity.JobStatusAccepted, entity.JobStatusInProgress,
		entity.JobStatusPaused, entity.JobStatusPendingReview,
	} {
		_, err := lifecycle.Resolve(entity.JobStatusCompleted, to, entity.RoleTecnico)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "completed → %s no debe existir", to)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AllowedActions
// ──────────────────────────────────────────────────────────────────────────────

func TestAllowedActions_PorEstadoYRol(t *testing.T) {
	// Técnico en in-progress: pausar o completar.
	got := lifecycle.AllowedActions(entity.JobStatusInProgress, entity.RoleTecnico)
	assert.Equal(t, []string{entity.JobStatusPaused, entity.JobStatusCompleted}, got)

	// Asistente en in-progress: pausar o "completar" (redirigido a revisión,
	// pero la UI muestra el mismo botón).
	got = lifecycle.AllowedActions(entity.JobStatusInProgress, entity.RoleAsistente)
	assert.Equal(t, []string{entity.JobStatusPaused, entity.JobStatusCompleted}, got)

	// Técnico en pending-review: confirmar o rechazar.
	got = lifecycle.AllowedActions(entity.JobStatusPendingReview, entity.RoleTecnico)
	assert.Equal(t, []string{entity.JobStatusInProgress, entity.JobStatusCompleted}, got)

	// Asistente en pending-review: nada que hacer.
	got = lifecycle.AllowedActions(entity.JobStatusPendingReview, entity.RoleAsistente)
	assert.Empty(t, got)

	// Estado terminal: vacío para todos.
	assert.Empty(t, lifecycle.AllowedActions(entity.JobStatusCompleted, entity.RoleTecnico))
}

// Sin acciones sigue siendo un slice, no nil: la API serializa [] y no null.
func TestAllowedActions_VacioNoEsNil(t *testing.T) {
	got := lifecycle.AllowedActions(entity.JobStatusCompleted, entity.RoleTecnico)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)

	got = lifecycle.AllowedActions(entity.JobStatusPendingReview, entity.RoleAsistente)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestKnown(t *testing.T) {
	assert.True(t, lifecycle.Known(entity.JobStatusAssigned))
	assert.True(t, lifecycle.Known(entity.JobStatusPendingReview))
	assert.False(t, lifecycle.Known("archivado"))
	assert.False(t, lifecycle.Known(""))
}
