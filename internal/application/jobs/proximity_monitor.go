package jobs

import (
	"sync"
	"time"

	"github.com/jhoicas/ServiTec-api/internal/domain/geo"
	"github.com/jhoicas/ServiTec-api/pkg/logger"
)

// AutoStartFunc callback del disparo de auto-inicio: recibe el trabajo y la
// permanencia contigua acumulada dentro del geocerco.
type AutoStartFunc func(jobID string, dwell time.Duration)

// ProximityMonitor máquina de muestreo por trabajo: mientras un trabajo está
// en "accepted" mantiene una sesión con contador de permanencia contigua.
// Muestras consecutivas dentro del radio avanzan el contador; una muestra
// fuera lo reinicia a cero. Al cruzar el umbral emite exactamente un disparo
// de auto-inicio y retira la sesión (idempotencia por ventana de aceptación).
type ProximityMonitor struct {
	mu       sync.Mutex
	sessions map[string]*proximitySession

	radiusM   float64
	threshold time.Duration
	interval  time.Duration

	onAutoStart AutoStartFunc
	log         *logger.Logger
}

// proximitySession estado de permanencia de un trabajo aceptado.
type proximitySession struct {
	siteLat    float64
	siteLng    float64
	isNear     bool
	dwell      time.Duration
	lastSample time.Time
}

// NewProximityMonitor construye el monitor. El callback de auto-inicio se
// registra después con SetAutoStart (rompe el ciclo monitor ↔ ciclo de vida).
func NewProximityMonitor(radiusM float64, threshold, interval time.Duration, log *logger.Logger) *ProximityMonitor {
	return &ProximityMonitor{
		sessions:  make(map[string]*proximitySession),
		radiusM:   radiusM,
		threshold: threshold,
		interval:  interval,
		log:       log,
	}
}

// SetAutoStart registra el callback que reingresa por TransitionJob con rol sistema.
func (m *ProximityMonitor) SetAutoStart(fn AutoStartFunc) {
	m.mu.Lock()
	m.onAutoStart = fn
	m.mu.Unlock()
}

// StartSession crea la sesión del trabajo (al entrar en "accepted").
// Si ya existe una, la reemplaza con el contador en cero.
func (m *ProximityMonitor) StartSession(jobID string, siteLat, siteLng float64) {
	m.mu.Lock()
	m.sessions[jobID] = &proximitySession{siteLat: siteLat, siteLng: siteLng}
	m.mu.Unlock()
}

// Retire destruye la sesión del trabajo (inicio manual, auto-inicio o salida
// de "accepted"). Idempotente: retirar una sesión inexistente no hace nada.
func (m *ProximityMonitor) Retire(jobID string) {
	m.mu.Lock()
	delete(m.sessions, jobID)
	m.mu.Unlock()
}

// Active indica si el trabajo tiene sesión viva (consultas y tests).
func (m *ProximityMonitor) Active(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[jobID]
	return ok
}

// Ingest procesa una muestra de ubicación. Sin sesión para el trabajo la
// muestra se ignora (el trabajo ya no está en "accepted" o ya disparó).
// El callback de auto-inicio se invoca fuera del lock del monitor.
func (m *ProximityMonitor) Ingest(jobID string, lat, lng float64, ts time.Time) {
	m.mu.Lock()
	s, ok := m.sessions[jobID]
	if !ok {
		m.mu.Unlock()
		return
	}

	within := geo.WithinRadius(s.siteLat, s.siteLng, lat, lng, m.radiusM)
	if !within {
		// Alejarse reinicia el progreso: la permanencia debe ser contigua.
		s.isNear = false
		s.dwell = 0
		s.lastSample = ts
		m.mu.Unlock()
		return
	}

	s.isNear = true
	s.dwell += m.interval
	s.lastSample = ts

	if s.dwell < m.threshold {
		m.mu.Unlock()
		return
	}

	// Umbral cruzado: un solo disparo por ventana de aceptación.
	dwell := s.dwell
	fire := m.onAutoStart
	delete(m.sessions, jobID)
	m.mu.Unlock()

	if m.log != nil {
		m.log.Info().
			Str("job_id", jobID).
			Dur("dwell", dwell).
			Msg("permanencia en geocerco alcanzada, auto-inicio")
	}
	if fire != nil {
		fire(jobID, dwell)
	}
}
