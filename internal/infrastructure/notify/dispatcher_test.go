package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.Nop()
}

// Notify nunca bloquea, ni siquiera con el buffer lleno.
func TestDispatcher_NotifyNoBloquea(t *testing.T) {
	d := NewDispatcher(1, testLogger())
	defer d.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Notify(entity.Notification{
				RecipientID: "tech-1",
				Type:        entity.NotifyJobTransition,
				Timestamp:   time.Now(),
			})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify bloqueó con el buffer lleno")
	}
}

// Close drena lo encolado y es idempotente.
func TestDispatcher_CloseIdempotente(t *testing.T) {
	d := NewDispatcher(16, testLogger())
	d.Notify(entity.Notification{RecipientID: "tech-1", Type: entity.NotifyStockLow})

	assert.NotPanics(t, func() {
		d.Close()
		d.Close()
	})
}
