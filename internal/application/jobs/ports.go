package jobs

import (
	"context"
	"time"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando el
// repositorio de trabajos atado a esa tx. Garantiza que la lectura con
// bloqueo y la escritura de una transición sean una unidad atómica.
type TxRunner interface {
	RunJob(ctx context.Context, fn func(jobRepo repository.JobRepository) error) error
}

// Notifier puerto de intenciones de notificación (fire-and-forget).
// Nunca bloquea ni falla: un fallo de entrega jamás revierte la transición.
type Notifier interface {
	Notify(n entity.Notification)
}

// SessionRegistry puerto del monitor de proximidad: una sesión por trabajo
// mientras está en "accepted". Ingest alimenta una muestra de ubicación; si no
// hay sesión para el trabajo, la muestra se ignora.
type SessionRegistry interface {
	StartSession(jobID string, siteLat, siteLng float64)
	Retire(jobID string)
	Ingest(jobID string, lat, lng float64, ts time.Time)
}
