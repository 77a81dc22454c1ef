package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ServiTec-api/internal/domain"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AllocationUseCase libro mayor de asignación de stock a técnicos: asigna
// contra el inventario de bodega, registra consumos y devoluciones, y mantiene
// consistentes inventario, tenencias del técnico e historial bajo concurrencia.
// Toda mutación corre dentro de TxRunner con bloqueo de fila (GetForUpdate)
// para serializar el check-then-act por ítem.
type AllocationUseCase struct {
	txRunner       TxRunner
	itemRepo       repository.StockItemRepository
	assignmentRepo repository.StockAssignmentRepository
	usageRepo      repository.UsageRecordRepository
	notifier       Notifier
}

// NewAllocationUseCase construye el caso de uso.
func NewAllocationUseCase(
	txRunner TxRunner,
	itemRepo repository.StockItemRepository,
	assignmentRepo repository.StockAssignmentRepository,
	usageRepo repository.UsageRecordRepository,
	notifier Notifier,
) *AllocationUseCase {
	return &AllocationUseCase{
		txRunner:       txRunner,
		itemRepo:       itemRepo,
		assignmentRepo: assignmentRepo,
		usageRepo:      usageRepo,
		notifier:       notifier,
	}
}

// CreateItemInput entrada para crear un ítem del catálogo (gestión externa;
// el motor solo expone la costura).
type CreateItemInput struct {
	SKU         string
	Name        string
	Category    string
	UnitMeasure string
	Quantity    decimal.Decimal
	Minimum     decimal.Decimal
	UnitCost    decimal.Decimal
	WarehouseID string
}

// CreateItem crea un ítem de catálogo con su estado derivado inicial.
func (uc *AllocationUseCase) CreateItem(ctx context.Context, input CreateItemInput) (*entity.StockItem, error) {
	if input.SKU == "" || input.Name == "" || input.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity.LessThan(decimal.Zero) || input.Minimum.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.StockItem{
		ID:          uuid.New().String(),
		SKU:         input.SKU,
		Name:        input.Name,
		Category:    input.Category,
		UnitMeasure: input.UnitMeasure,
		Quantity:    input.Quantity,
		Minimum:     input.Minimum,
		UnitCost:    input.UnitCost,
		WarehouseID: input.WarehouseID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.Recompute()

	err := uc.txRunner.RunStock(ctx, func(
		itemRepo repository.StockItemRepository,
		_ repository.StockAssignmentRepository,
		_ repository.UsageRecordRepository,
	) error {
		return itemRepo.Create(item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AllocateInput entrada para asignar stock a un técnico.
type AllocateInput struct {
	ItemID       string
	TechnicianID string
	Quantity     decimal.Decimal
	AssignerID   string
	Notes        string
}

// Allocate debita atómicamente el ítem y crea la asignación con
// remaining = quantity. Es el read-modify-write que debe serializarse por
// ítem: dos asignaciones concurrentes jamás debitan más que la cantidad
// inicial. Falla con ErrInsufficientStock sin mutación alguna.
func (uc *AllocationUseCase) Allocate(ctx context.Context, input AllocateInput) (*entity.StockAssignment, error) {
	if input.ItemID == "" || input.TechnicianID == "" || input.AssignerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var assignment *entity.StockAssignment
	var alerts []entity.Notification

	err := uc.txRunner.RunStock(ctx, func(
		itemRepo repository.StockItemRepository,
		assignmentRepo repository.StockAssignmentRepository,
		_ repository.UsageRecordRepository,
	) error {
		// Bloquea la fila del ítem: el check de cantidad y el débito son una unidad.
		item, err := itemRepo.GetForUpdate(input.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Quantity.LessThan(input.Quantity) {
			return domain.ErrInsufficientStock
		}

		previous := item.Status
		now := time.Now()
		item.Quantity = item.Quantity.Sub(input.Quantity)
		item.Recompute()
		item.UpdatedAt = now
		if err := itemRepo.Update(item); err != nil {
			return err
		}

		assignment = &entity.StockAssignment{
			ID:           uuid.New().String(),
			TechnicianID: input.TechnicianID,
			ItemID:       item.ID,
			ItemName:     item.Name,
			UnitMeasure:  item.UnitMeasure,
			Assigned:     input.Quantity,
			Used:         decimal.Zero,
			Remaining:    input.Quantity,
			Status:       entity.AssignmentStatusAssigned,
			AssignedBy:   input.AssignerID,
			Notes:        input.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := assignmentRepo.Create(assignment); err != nil {
			return err
		}

		alerts = thresholdAlerts(item, previous, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(entity.Notification{
		RecipientID: input.TechnicianID,
		Type:        entity.NotifyStockAllocated,
		Title:       "Stock asignado",
		Message:     fmt.Sprintf("%s: %s %s", assignment.ItemName, assignment.Assigned.String(), assignment.UnitMeasure),
		Priority:    entity.PriorityNormal,
		Timestamp:   assignment.CreatedAt,
	})
	for _, n := range alerts {
		uc.notifier.Notify(n)
	}

	return assignment, nil
}

// UsageInput entrada para registrar consumo contra una asignación.
type UsageInput struct {
	AssignmentID string
	ActorID      string // debe ser el técnico dueño de la asignación
	Quantity     decimal.Decimal
	JobID        string
	Notes        string
}

// RecordUsage mueve cantidad de remaining a used, agrega el UsageRecord
// inmutable y marca depleted al llegar remaining a cero.
// Falla con ErrOverUse sin mutación alguna.
func (uc *AllocationUseCase) RecordUsage(ctx context.Context, input UsageInput) (*entity.StockAssignment, error) {
	if input.AssignmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var assignment *entity.StockAssignment
	err := uc.txRunner.RunStock(ctx, func(
		_ repository.StockItemRepository,
		assignmentRepo repository.StockAssignmentRepository,
		usageRepo repository.UsageRecordRepository,
	) error {
		a, err := assignmentRepo.GetForUpdate(input.AssignmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if input.ActorID != "" && input.ActorID != a.TechnicianID {
			return domain.ErrUnauthorized
		}
		if input.Quantity.GreaterThan(a.Remaining) {
			return domain.ErrOverUse
		}

		now := time.Now()
		a.Used = a.Used.Add(input.Quantity)
		a.Remaining = a.Remaining.Sub(input.Quantity)
		a.RecomputeStatus(false)
		a.UpdatedAt = now
		if err := assignmentRepo.Update(a); err != nil {
			return err
		}

		record := &entity.UsageRecord{
			ID:           uuid.New().String(),
			TechnicianID: a.TechnicianID,
			AssignmentID: a.ID,
			ItemID:       a.ItemID,
			Quantity:     input.Quantity,
			JobID:        input.JobID,
			Notes:        input.Notes,
			CreatedAt:    now,
		}
		if err := usageRepo.Create(record); err != nil {
			return err
		}

		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Return devuelve cantidad no usada a bodega: descuenta remaining (y assigned,
// conservando assigned == used + remaining) y acredita la misma cantidad al
// ítem origen recalculando su estado, todo en una transacción.
// Falla con ErrOverReturn dejando asignación e ítem intactos.
func (uc *AllocationUseCase) Return(ctx context.Context, assignmentID, actorID string, quantity decimal.Decimal) (*entity.StockAssignment, error) {
	if assignmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var assignment *entity.StockAssignment
	var alerts []entity.Notification

	err := uc.txRunner.RunStock(ctx, func(
		itemRepo repository.StockItemRepository,
		assignmentRepo repository.StockAssignmentRepository,
		_ repository.UsageRecordRepository,
	) error {
		a, err := assignmentRepo.GetForUpdate(assignmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if actorID != "" && actorID != a.TechnicianID {
			return domain.ErrUnauthorized
		}
		if quantity.GreaterThan(a.Remaining) {
			return domain.ErrOverReturn
		}

		item, err := itemRepo.GetForUpdate(a.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		now := time.Now()
		a.Remaining = a.Remaining.Sub(quantity)
		a.Assigned = a.Assigned.Sub(quantity)
		a.RecomputeStatus(true)
		a.UpdatedAt = now
		if err := assignmentRepo.Update(a); err != nil {
			return err
		}

		previous := item.Status
		item.Quantity = item.Quantity.Add(quantity)
		item.Recompute()
		item.UpdatedAt = now
		if err := itemRepo.Update(item); err != nil {
			return err
		}

		alerts = thresholdAlerts(item, previous, now)
		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range alerts {
		uc.notifier.Notify(n)
	}
	return assignment, nil
}

// AdjustMinimum cambia el umbral mínimo del ítem (metadato) y recalcula el
// estado inmediatamente contra la cantidad sin cambios.
func (uc *AllocationUseCase) AdjustMinimum(ctx context.Context, itemID string, newMinimum decimal.Decimal) (*entity.StockItem, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if newMinimum.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.StockItem
	var alerts []entity.Notification

	err := uc.txRunner.RunStock(ctx, func(
		itemRepo repository.StockItemRepository,
		_ repository.StockAssignmentRepository,
		_ repository.UsageRecordRepository,
	) error {
		item, err := itemRepo.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		previous := item.Status
		item.Minimum = newMinimum
		item.Recompute()
		item.UpdatedAt = now
		if err := itemRepo.Update(item); err != nil {
			return err
		}
		alerts = thresholdAlerts(item, previous, now)
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range alerts {
		uc.notifier.Notify(n)
	}
	return updated, nil
}

// GetItem consulta un ítem por ID.
func (uc *AllocationUseCase) GetItem(ctx context.Context, id string) (*entity.StockItem, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListItems ítems por bodega con paginación.
func (uc *AllocationUseCase) ListItems(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockItem, error) {
	return uc.itemRepo.ListByWarehouse(warehouseID, limit, offset)
}

// ListAlerts ítems en low-stock / out-of-stock, derivado bajo demanda de
// cantidad vs. mínimo (no se almacena).
func (uc *AllocationUseCase) ListAlerts(ctx context.Context, warehouseID string) ([]*entity.StockItem, error) {
	return uc.itemRepo.ListBelowMinimum(warehouseID)
}

// ListByTechnician asignaciones del técnico ("cuánto tiene en mano" es una
// lectura directa del snapshot, no un agregado sobre historial).
func (uc *AllocationUseCase) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]*entity.StockAssignment, error) {
	return uc.assignmentRepo.ListByTechnician(technicianID, limit, offset)
}

// UsageHistory stream append-only de consumos de una asignación.
func (uc *AllocationUseCase) UsageHistory(ctx context.Context, assignmentID string) ([]*entity.UsageRecord, error) {
	return uc.usageRepo.ListByAssignment(assignmentID)
}

// thresholdAlerts intenciones de alerta al cruzar umbrales de stock.
// Solo se emite en el cruce (cambio de estado), no en cada mutación.
func thresholdAlerts(item *entity.StockItem, previousStatus string, now time.Time) []entity.Notification {
	if item.Status == previousStatus {
		return nil
	}
	switch item.Status {
	case entity.StockStatusLowStock:
		return []entity.Notification{{
			RecipientID: item.WarehouseID,
			Type:        entity.NotifyStockLow,
			Title:       "Stock bajo",
			Message:     fmt.Sprintf("%s (%s): quedan %s %s", item.Name, item.SKU, item.Quantity.String(), item.UnitMeasure),
			Priority:    entity.PriorityHigh,
			Timestamp:   now,
		}}
	case entity.StockStatusOutOfStock:
		return []entity.Notification{{
			RecipientID: item.WarehouseID,
			Type:        entity.NotifyStockOut,
			Title:       "Stock agotado",
			Message:     fmt.Sprintf("%s (%s) sin existencias", item.Name, item.SKU),
			Priority:    entity.PriorityHigh,
			Timestamp:   now,
		}}
	}
	return nil
}
