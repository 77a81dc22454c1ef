// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, detrás de la misma abstracción de repositorio que PostgreSQL.
// Útil para desarrollo (ENGINE_STORE=memory) y para los tests de los casos de
// uso. La atomicidad se garantiza con un único lock de escritura sostenido
// durante toda la transacción.
package memory

import (
	"sync"

	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
)

// Store contenedor de colecciones en memoria. mu protege todas.
type Store struct {
	mu sync.RWMutex

	jobs        map[string]*entity.Job
	notes       map[string][]*entity.JobNote // jobID → notas en orden de llegada
	items       map[string]*entity.StockItem
	assignments map[string]*entity.StockAssignment
	usage       []*entity.UsageRecord
	delegates   map[string]*entity.DelegateLink // id → vínculo
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		jobs:        make(map[string]*entity.Job),
		notes:       make(map[string][]*entity.JobNote),
		items:       make(map[string]*entity.StockItem),
		assignments: make(map[string]*entity.StockAssignment),
		delegates:   make(map[string]*entity.DelegateLink),
	}
}

// Copias defensivas: los repos devuelven y guardan copias para que nadie mute
// el estado del store fuera de una transacción.

func cloneJob(j *entity.Job) *entity.Job {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}

func cloneItem(i *entity.StockItem) *entity.StockItem {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func cloneAssignment(a *entity.StockAssignment) *entity.StockAssignment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
