package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ServiTec-api/internal/application/dto"
	"github.com/jhoicas/ServiTec-api/internal/application/stock"
	"github.com/shopspring/decimal"
)

// StockHandler maneja las peticiones HTTP del libro mayor de stock (protegido).
type StockHandler struct {
	uc *stock.AllocationUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.AllocationUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// CreateItem godoc
// @Summary      Crear ítem de catálogo
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockItemRequest  true  "Datos del ítem"
// @Success      201   {object}  entity.StockItem
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/items [post]
func (h *StockHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateStockItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SKU == "" || in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku y name son requeridos"})
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "und"
	}
	item, err := h.uc.CreateItem(c.Context(), stock.CreateItemInput{
		SKU:         in.SKU,
		Name:        in.Name,
		Category:    in.Category,
		UnitMeasure: in.UnitMeasure,
		Quantity:    in.Quantity,
		Minimum:     in.Minimum,
		UnitCost:    in.UnitCost,
		WarehouseID: in.WarehouseID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetItem godoc
// @Summary      Obtener ítem por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  entity.StockItem
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id} [get]
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(item)
}

// ListItems godoc
// @Summary      Listar ítems del catálogo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {array}  entity.StockItem
// @Router       /api/stock/items [get]
func (h *StockHandler) ListItems(c *fiber.Ctx) error {
	var page dto.PageRequest
	page.Limit = c.QueryInt("limit", 20)
	page.Offset = c.QueryInt("offset", 0)
	page.DefaultPage()
	items, err := h.uc.ListItems(c.Context(), c.Query("warehouse_id"), page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(items)
}

// SetMinimum godoc
// @Summary      Ajustar el umbral mínimo de un ítem
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del ítem"
// @Param        body  body  dto.SetMinimumRequest  true  "Nuevo mínimo"
// @Success      200   {object}  entity.StockItem
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/minimum [put]
func (h *StockHandler) SetMinimum(c *fiber.Ctx) error {
	var in dto.SetMinimumRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.AdjustMinimum(c.Context(), c.Params("id"), in.Minimum)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(item)
}

// ListAlerts godoc
// @Summary      Ítems en umbral de alerta (low-stock / out-of-stock)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {array}  entity.StockItem
// @Router       /api/stock/alerts [get]
func (h *StockHandler) ListAlerts(c *fiber.Ctx) error {
	items, err := h.uc.ListAlerts(c.Context(), c.Query("warehouse_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(items)
}

// Allocate godoc
// @Summary      Asignar stock a un técnico
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateStockRequest  true  "Datos de la asignación"
// @Success      201   {object}  entity.StockAssignment
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/allocations [post]
func (h *StockHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	assignment, err := h.uc.Allocate(c.Context(), stock.AllocateInput{
		ItemID:       in.ItemID,
		TechnicianID: in.TechnicianID,
		Quantity:     in.Quantity,
		AssignerID:   GetUserID(c),
		Notes:        in.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(assignment)
}

// ListAssignments godoc
// @Summary      Listar asignaciones de un técnico
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        technician_id  query  string  true   "Técnico"
// @Param        limit          query  int     false  "Límite"   default(20)
// @Param        offset         query  int     false  "Offset"   default(0)
// @Success      200  {array}  entity.StockAssignment
// @Router       /api/stock/assignments [get]
func (h *StockHandler) ListAssignments(c *fiber.Ctx) error {
	tech := c.Query("technician_id")
	if tech == "" {
		tech = GetUserID(c)
	}
	var page dto.PageRequest
	page.Limit = c.QueryInt("limit", 20)
	page.Offset = c.QueryInt("offset", 0)
	page.DefaultPage()
	list, err := h.uc.ListByTechnician(c.Context(), tech, page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// RecordUsage godoc
// @Summary      Registrar consumo contra una asignación
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la asignación"
// @Param        body  body  dto.RecordUsageRequest  true  "Cantidad consumida"
// @Success      200   {object}  entity.StockAssignment
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/assignments/{id}/usage [post]
func (h *StockHandler) RecordUsage(c *fiber.Ctx) error {
	var in dto.RecordUsageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	assignment, err := h.uc.RecordUsage(c.Context(), stock.UsageInput{
		AssignmentID: c.Params("id"),
		ActorID:      GetUserID(c),
		Quantity:     in.Quantity,
		JobID:        in.JobID,
		Notes:        in.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assignment)
}

// Return godoc
// @Summary      Devolver remanente de una asignación a bodega
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la asignación"
// @Param        body  body  dto.ReturnStockRequest  true  "Cantidad devuelta"
// @Success      200   {object}  entity.StockAssignment
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/assignments/{id}/return [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser mayor que cero"})
	}
	assignment, err := h.uc.Return(c.Context(), c.Params("id"), GetUserID(c), in.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assignment)
}

// UsageHistory godoc
// @Summary      Historial de consumos de una asignación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la asignación"
// @Success      200  {array}  entity.UsageRecord
// @Router       /api/stock/assignments/{id}/usage [get]
func (h *StockHandler) UsageHistory(c *fiber.Ctx) error {
	records, err := h.uc.UsageHistory(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(records)
}
