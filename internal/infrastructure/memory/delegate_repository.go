package memory

import (
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.DelegateRepository = (*DelegateRepo)(nil)

// DelegateRepo implementación en memoria del lookup asistente ↔ técnico.
type DelegateRepo struct {
	store *Store
}

// NewDelegateRepository construye el adaptador.
func NewDelegateRepository(store *Store) *DelegateRepo {
	return &DelegateRepo{store: store}
}

// Create persiste un vínculo. Desactiva cualquier vínculo activo previo del
// asistente: un asistente está emparejado con un solo técnico a la vez.
func (r *DelegateRepo) Create(link *entity.DelegateLink) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range r.store.delegates {
		if l.AssistantID == link.AssistantID && l.Active {
			l.Active = false
		}
	}
	c := *link
	r.store.delegates[link.ID] = &c
	return nil
}

// ActiveLinkFor devuelve el vínculo activo del asistente, o nil si no hay.
func (r *DelegateRepo) ActiveLinkFor(assistantID string) (*entity.DelegateLink, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, l := range r.store.delegates {
		if l.AssistantID == assistantID && l.Active {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

// DeactivateByAssistant desactiva el vínculo activo del asistente.
func (r *DelegateRepo) DeactivateByAssistant(assistantID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range r.store.delegates {
		if l.AssistantID == assistantID && l.Active {
			l.Active = false
		}
	}
	return nil
}
