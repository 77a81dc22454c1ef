package jobs_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ServiTec-api/internal/application/jobs"
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	coordID     = "coord-1"
	techID      = "tech-1"
	assistantID = "assist-1"
	otherTechID = "tech-2"
)

// captureNotifier acumula las intenciones emitidas.
type captureNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
}

func (n *captureNotifier) Notify(notif entity.Notification) {
	n.mu.Lock()
	n.sent = append(n.sent, notif)
	n.mu.Unlock()
}

func (n *captureNotifier) byType(typ string) []entity.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []entity.Notification
	for _, s := range n.sent {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// fakeSessions registra las llamadas del caso de uso al monitor.
type fakeSessions struct {
	mu      sync.Mutex
	started []string
	retired []string
	samples []string
}

func (s *fakeSessions) StartSession(jobID string, _, _ float64) {
	s.mu.Lock()
	s.started = append(s.started, jobID)
	s.mu.Unlock()
}

func (s *fakeSessions) Retire(jobID string) {
	s.mu.Lock()
	s.retired = append(s.retired, jobID)
	s.mu.Unlock()
}

func (s *fakeSessions) Ingest(jobID string, _, _ float64, _ time.Time) {
	s.mu.Lock()
	s.samples = append(s.samples, jobID)
	s.mu.Unlock()
}

type fixture struct {
	uc       *jobs.LifecycleUseCase
	store    *memory.Store
	notifier *captureNotifier
	sessions *fakeSessions
}

// newFixture caso de uso sobre el store en memoria, con el asistente vinculado
// al técnico principal.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	delegates := memory.NewDelegateRepository(store)
	require.NoError(t, delegates.Create(&entity.DelegateLink{
		ID:           "link-1",
		AssistantID:  assistantID,
		TechnicianID: techID,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))

	notifier := &captureNotifier{}
	sessions := &fakeSessions{}
	uc := jobs.NewLifecycleUseCase(
		memory.NewTxRunner(store),
		memory.NewJobRepository(store),
		delegates,
		sessions,
		notifier,
	)
	return &fixture{uc: uc, store: store, notifier: notifier, sessions: sessions}
}

// assign crea un trabajo asignado al técnico principal.
func (f *fixture) assign(t *testing.T) *entity.Job {
	t.Helper()
	job, err := f.uc.AssignJob(context.Background(), jobs.AssignJobInput{
		Title:        "Mantenimiento UPS",
		SiteLat:      4.598056,
		SiteLng:      -74.075833,
		TechnicianID: techID,
		AssignerID:   coordID,
		AssignerRole: entity.RoleCoordinador,
	})
	require.NoError(t, err)
	return job
}

// transition aplica una transición y exige éxito.
func (f *fixture) transition(t *testing.T, jobID, actorID, role, target string) *entity.Job {
	t.Helper()
	job, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
		JobID:     jobID,
		ActorID:   actorID,
		ActorRole: role,
		Target:    target,
	})
	require.NoError(t, err, "%s (%s) debe poder pasar a %s", actorID, role, target)
	return job
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AssignJob
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignJob_CreaConOrdenDerivada(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)

	assert.Equal(t, entity.JobStatusAssigned, job.Status)
	assert.Regexp(t, `^OT-\d{8}-[0-9A-F]{6}$`, job.WorkOrder, "la orden debe derivarse de fecha y UUID")
	assert.Equal(t, techID, job.TechnicianID)
	assert.Equal(t, coordID, job.AssignedBy)

	// Intención de notificación al técnico.
	sent := f.notifier.byType(entity.NotifyJobAssigned)
	require.Len(t, sent, 1)
	assert.Equal(t, techID, sent[0].RecipientID)
}

func TestAssignJob_SoloCoordinador(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.AssignJob(context.Background(), jobs.AssignJobInput{
		Title:        "Mantenimiento",
		TechnicianID: techID,
		AssignerID:   techID,
		AssignerRole: entity.RoleTecnico,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "un técnico no asigna trabajos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests TransitionJob: autorización por identidad
// ──────────────────────────────────────────────────────────────────────────────

// El técnico debe ser el técnico principal del trabajo, no basta el rol.
func TestTransition_TecnicoAjenoRechazado(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)

	_, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
		JobID:     job.ID,
		ActorID:   otherTechID,
		ActorRole: entity.RoleTecnico,
		Target:    entity.JobStatusAccepted,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// El estado no cambió.
	got, err := f.uc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusAssigned, got.Status)
}

// La autoridad del asistente sigue su vínculo vivo con el técnico.
func TestTransition_AsistenteSegunVinculo(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)

	// Vinculado al técnico del trabajo: puede aceptar.
	f.transition(t, job.ID, assistantID, entity.RoleAsistente, entity.JobStatusAccepted)

	// Re-emparejado con otro técnico: pierde autoridad sobre este trabajo.
	delegates := memory.NewDelegateRepository(f.store)
	require.NoError(t, delegates.Create(&entity.DelegateLink{
		ID:           "link-2",
		AssistantID:  assistantID,
		TechnicianID: otherTechID,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))

	_, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
		JobID:     job.ID,
		ActorID:   assistantID,
		ActorRole: entity.RoleAsistente,
		Target:    entity.JobStatusInProgress,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "el vínculo vigente manda, no el histórico")
}

// El vínculo del asistente se resuelve antes de abrir la transacción: el
// comando debe terminar aunque el store en memoria sostenga su lock de
// escritura durante toda la tx (el lookup no puede anidarse dentro).
func TestTransition_AsistenteTerminaConStoreEnMemoria(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
			JobID:     job.ID,
			ActorID:   assistantID,
			ActorRole: entity.RoleAsistente,
			Target:    entity.JobStatusAccepted,
		})
		errCh <- err
	}()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("la transición del asistente quedó bloqueada")
	}

	got, err := f.uc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusAccepted, got.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests TransitionJob: compuerta de revisión
// ──────────────────────────────────────────────────────────────────────────────

// El asistente que completa deja el trabajo en revisión; el técnico confirma y
// solo entonces se escribe CompletedAt.
func TestTransition_CierreDeAsistentePasaPorRevision(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusInProgress)

	got := f.transition(t, job.ID, assistantID, entity.RoleAsistente, entity.JobStatusCompleted)
	assert.Equal(t, entity.JobStatusPendingReview, got.Status, "el cierre del asistente queda en revisión")
	require.NotNil(t, got.ReviewRequestedBy)
	assert.Equal(t, assistantID, *got.ReviewRequestedBy)
	assert.Nil(t, got.CompletedAt, "un asistente jamás escribe CompletedAt")

	// Notificación de revisión al técnico.
	sent := f.notifier.byType(entity.NotifyReviewRequested)
	require.Len(t, sent, 1)
	assert.Equal(t, techID, sent[0].RecipientID)

	// El técnico confirma.
	got = f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusCompleted)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

// El técnico puede rechazar la revisión: el trabajo vuelve a ejecución y los
// campos de revisión se limpian.
func TestTransition_RechazoDeRevision(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusInProgress)
	f.transition(t, job.ID, assistantID, entity.RoleAsistente, entity.JobStatusCompleted)

	got := f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusInProgress)
	assert.Equal(t, entity.JobStatusInProgress, got.Status)
	assert.Nil(t, got.ReviewRequestedBy)
	assert.Nil(t, got.RequestedStatus)
	assert.Nil(t, got.CompletedAt)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests TransitionJob: efectos y contabilidad
// ──────────────────────────────────────────────────────────────────────────────

// Aceptar abre la sesión de proximidad; salir de accepted la retira.
func TestTransition_SesionDeProximidad(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)

	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)
	assert.Equal(t, []string{job.ID}, f.sessions.started)

	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusInProgress)
	assert.Contains(t, f.sessions.retired, job.ID, "el inicio manual retira la sesión")
}

// El auto-inicio (rol sistema) retrocede StartedAt por la permanencia acreditada.
func TestTransition_AutoInicioRetrocedeInicio(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)

	dwell := 120 * time.Second
	before := time.Now()
	got, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
		JobID:     job.ID,
		ActorID:   "proximity-monitor",
		ActorRole: entity.RoleSistema,
		Target:    entity.JobStatusInProgress,
		Dwell:     dwell,
	})
	require.NoError(t, err)

	require.NotNil(t, got.StartedAt)
	backdated := before.Add(-dwell)
	assert.WithinDuration(t, backdated, *got.StartedAt, 2*time.Second,
		"StartedAt debe retrocederse por la permanencia en el geocerco")
}

// El sign-off se adjunta solo al completar y la nota de auditoría queda en el log.
func TestTransition_SignOffYAuditoria(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusInProgress)

	signOff := json.RawMessage(`{"fotos":["a.jpg"],"firma":"base64..."}`)
	got, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
		JobID:     job.ID,
		ActorID:   techID,
		ActorRole: entity.RoleTecnico,
		Target:    entity.JobStatusCompleted,
		SignOff:   signOff,
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(signOff), string(got.SignOff), "el blob de cierre se adjunta sin interpretarse")

	notes, err := f.uc.GetNotes(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3, "cada transición deja una nota de auditoría")
	assert.Contains(t, notes[2].Text, "completed")
}

// Transición sobre estado terminal: rechazada sin mutación.
func TestTransition_TerminalRechaza(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusInProgress)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusCompleted)

	_, err := f.uc.TransitionJob(context.Background(), jobs.TransitionInput{
		JobID:     job.ID,
		ActorID:   techID,
		ActorRole: entity.RoleTecnico,
		Target:    entity.JobStatusInProgress,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ReportLocation y AllowedActions
// ──────────────────────────────────────────────────────────────────────────────

func TestReportLocation_ConsentimientoControlaIngest(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)
	f.transition(t, job.ID, techID, entity.RoleTecnico, entity.JobStatusAccepted)

	now := time.Now()

	// Sin consentimiento: se registra la ubicación pero no alimenta el monitor.
	require.NoError(t, f.uc.ReportLocation(context.Background(), job.ID, 4.5981, -74.0758, now, false))
	assert.Empty(t, f.sessions.samples)

	// Con consentimiento: la muestra llega al monitor.
	require.NoError(t, f.uc.ReportLocation(context.Background(), job.ID, 4.5981, -74.0758, now, true))
	assert.Equal(t, []string{job.ID}, f.sessions.samples)

	got, err := f.uc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLocation)
	assert.InDelta(t, 4.5981, got.LastLocation.Lat, 1e-9)
}

func TestAllowedActions_ActorNoAutorizadoListaVacia(t *testing.T) {
	f := newFixture(t)
	job := f.assign(t)

	actions, err := f.uc.AllowedActions(context.Background(), job.ID, otherTechID, entity.RoleTecnico)
	require.NoError(t, err)
	assert.Empty(t, actions, "un actor ajeno no ve acciones")

	actions, err = f.uc.AllowedActions(context.Background(), job.ID, techID, entity.RoleTecnico)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.JobStatusAccepted}, actions)
}
