package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	siteLat = 4.598056
	siteLng = -74.075833
)

// newTestMonitor monitor con radio 100 m, umbral 120 s y muestras cada 1 s.
func newTestMonitor() (*ProximityMonitor, *[]time.Duration) {
	m := NewProximityMonitor(100, 120*time.Second, time.Second, nil)
	var fired []time.Duration
	m.SetAutoStart(func(jobID string, dwell time.Duration) {
		fired = append(fired, dwell)
	})
	return m, &fired
}

// feed alimenta n muestras consecutivas desde el punto dado.
func feed(m *ProximityMonitor, jobID string, lat, lng float64, n int, from time.Time) time.Time {
	ts := from
	for i := 0; i < n; i++ {
		m.Ingest(jobID, lat, lng, ts)
		ts = ts.Add(time.Second)
	}
	return ts
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ProximityMonitor
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: permanencia contigua dentro del radio cruza el umbral y dispara
// exactamente una vez, con la permanencia acumulada.
func TestMonitor_DisparaUnaVezAlCruzarUmbral(t *testing.T) {
	m, fired := newTestMonitor()
	m.StartSession("job-1", siteLat, siteLng)

	// 125 muestras de 1 s dentro del radio: el disparo ocurre en la 120.
	feed(m, "job-1", siteLat, siteLng, 125, time.Now())

	require.Len(t, *fired, 1, "debe disparar exactamente una vez")
	assert.Equal(t, 120*time.Second, (*fired)[0], "la permanencia acreditada debe ser el umbral")
	assert.False(t, m.Active("job-1"), "la sesión debe retirarse tras el disparo")
}

// Caso 2: una muestra fuera del radio reinicia el contador; la permanencia
// debe ser contigua.
func TestMonitor_MuestraFueraReiniciaContador(t *testing.T) {
	m, fired := newTestMonitor()
	m.StartSession("job-1", siteLat, siteLng)

	ts := feed(m, "job-1", siteLat, siteLng, 119, time.Now())

	// Un outlier a ~1.1 km del sitio: contador a cero.
	m.Ingest("job-1", siteLat+0.01, siteLng, ts)
	ts = ts.Add(time.Second)

	// 119 muestras más: todavía no alcanza.
	feed(m, "job-1", siteLat, siteLng, 119, ts)
	assert.Empty(t, *fired, "no debe disparar sin permanencia contigua completa")
	assert.True(t, m.Active("job-1"))
}

// Caso 3: sin sesión (trabajo no aceptado o ya disparado) las muestras se ignoran.
func TestMonitor_SinSesionIgnoraMuestras(t *testing.T) {
	m, fired := newTestMonitor()

	feed(m, "job-x", siteLat, siteLng, 200, time.Now())
	assert.Empty(t, *fired)
}

// Caso 4: Retire es idempotente y detiene el seguimiento (inicio manual).
func TestMonitor_RetireDetieneSeguimiento(t *testing.T) {
	m, fired := newTestMonitor()
	m.StartSession("job-1", siteLat, siteLng)

	ts := feed(m, "job-1", siteLat, siteLng, 60, time.Now())
	m.Retire("job-1")
	m.Retire("job-1") // idempotente

	feed(m, "job-1", siteLat, siteLng, 200, ts)
	assert.Empty(t, *fired, "tras retirar la sesión no debe disparar")
	assert.False(t, m.Active("job-1"))
}

// Caso 5: StartSession reemplaza la sesión con el contador en cero
// (re-aceptación = ventana nueva).
func TestMonitor_StartSessionReiniciaVentana(t *testing.T) {
	m, fired := newTestMonitor()
	m.StartSession("job-1", siteLat, siteLng)

	ts := feed(m, "job-1", siteLat, siteLng, 100, time.Now())
	m.StartSession("job-1", siteLat, siteLng)

	feed(m, "job-1", siteLat, siteLng, 119, ts)
	assert.Empty(t, *fired, "la ventana nueva no hereda permanencia")
}

// Caso 6: sesiones de trabajos distintos son independientes.
func TestMonitor_SesionesIndependientes(t *testing.T) {
	m, fired := newTestMonitor()
	m.StartSession("job-a", siteLat, siteLng)
	m.StartSession("job-b", siteLat, siteLng)

	feed(m, "job-a", siteLat, siteLng, 125, time.Now())

	require.Len(t, *fired, 1)
	assert.False(t, m.Active("job-a"))
	assert.True(t, m.Active("job-b"), "la sesión del otro trabajo sigue viva")
}
