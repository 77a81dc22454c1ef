package memory

import (
	"sort"

	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación en memoria de StockItemRepository.
type StockItemRepo struct {
	store *Store
	inTx  bool
}

// NewStockItemRepository construye el adaptador para lecturas fuera de transacción.
func NewStockItemRepository(store *Store) *StockItemRepo {
	return &StockItemRepo{store: store}
}

func (r *StockItemRepo) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.RLock()
	return r.store.mu.RUnlock
}

func (r *StockItemRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// Create persiste un ítem nuevo. SKU único por bodega.
func (r *StockItemRepo) Create(item *entity.StockItem) error {
	defer r.lock()()
	if _, ok := r.store.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, it := range r.store.items {
		if it.WarehouseID == item.WarehouseID && it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	r.store.items[item.ID] = cloneItem(item)
	return nil
}

// GetByID devuelve el ítem o nil si no existe.
func (r *StockItemRepo) GetByID(id string) (*entity.StockItem, error) {
	defer r.rlock()()
	return cloneItem(r.store.items[id]), nil
}

// GetForUpdate en memoria equivale a GetByID bajo el lock de la transacción.
func (r *StockItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	defer r.rlock()()
	return cloneItem(r.store.items[id]), nil
}

// Update reemplaza el estado persistido del ítem.
func (r *StockItemRepo) Update(item *entity.StockItem) error {
	defer r.lock()()
	if _, ok := r.store.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.items[item.ID] = cloneItem(item)
	return nil
}

// ListByWarehouse ítems de una bodega (o todos si warehouseID es vacío).
func (r *StockItemRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockItem, error) {
	defer r.rlock()()
	var out []*entity.StockItem
	for _, it := range r.store.items {
		if warehouseID == "" || it.WarehouseID == warehouseID {
			out = append(out, cloneItem(it))
		}
	}
	sortItems(out)
	if offset >= len(out) {
		return []*entity.StockItem{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ListBelowMinimum ítems con cantidad <= mínimo (alerta derivada bajo demanda).
func (r *StockItemRepo) ListBelowMinimum(warehouseID string) ([]*entity.StockItem, error) {
	defer r.rlock()()
	var out []*entity.StockItem
	for _, it := range r.store.items {
		if warehouseID != "" && it.WarehouseID != warehouseID {
			continue
		}
		if it.Quantity.LessThanOrEqual(it.Minimum) {
			out = append(out, cloneItem(it))
		}
	}
	sortItems(out)
	return out, nil
}

func sortItems(items []*entity.StockItem) {
	sort.Slice(items, func(i, k int) bool { return items[i].SKU < items[k].SKU })
}
