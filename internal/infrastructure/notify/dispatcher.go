// Package notify implementa el despachador de intenciones de notificación.
// Es fire-and-forget: el motor encola y sigue; si el buffer se llena la
// intención se descarta con un warning, nunca se bloquea una transición.
package notify

import (
	"sync"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/pkg/logger"
)

// Dispatcher consume intenciones de un canal con buffer y las registra.
// La entrega real (push, correo, SMS) es de un colaborador externo; aquí
// solo se emite el log estructurado de la intención.
type Dispatcher struct {
	ch   chan entity.Notification
	log  *logger.Logger
	wg   sync.WaitGroup
	once sync.Once
}

// NewDispatcher crea el despachador y arranca su goroutine de consumo.
func NewDispatcher(bufferSize int, log *logger.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	d := &Dispatcher{
		ch:  make(chan entity.Notification, bufferSize),
		log: log,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.ch {
		d.log.Info().
			Str("recipient_id", n.RecipientID).
			Str("type", n.Type).
			Str("priority", n.Priority).
			Str("title", n.Title).
			Str("message", n.Message).
			Msg("notificación despachada")
	}
}

// Notify encola la intención sin bloquear. Buffer lleno -> se descarta.
func (d *Dispatcher) Notify(n entity.Notification) {
	select {
	case d.ch <- n:
	default:
		d.log.Warn().
			Str("recipient_id", n.RecipientID).
			Str("type", n.Type).
			Msg("buffer de notificaciones lleno, intención descartada")
	}
}

// Close cierra el canal y espera a drenar lo encolado.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.ch)
		d.wg.Wait()
	})
}
