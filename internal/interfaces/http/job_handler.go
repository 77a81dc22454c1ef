package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ServiTec-api/internal/application/dto"
	"github.com/jhoicas/ServiTec-api/internal/application/jobs"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
)

// JobHandler maneja las peticiones HTTP del ciclo de vida de trabajos (protegido).
type JobHandler struct {
	uc *jobs.LifecycleUseCase
}

// NewJobHandler construye el handler.
func NewJobHandler(uc *jobs.LifecycleUseCase) *JobHandler {
	return &JobHandler{uc: uc}
}

// Assign godoc
// @Summary      Crear y asignar un trabajo a un técnico
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignJobRequest  true  "Datos del trabajo"
// @Success      201   {object}  dto.JobResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/jobs [post]
func (h *JobHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignJobRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Title == "" || in.TechnicianID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "title y technician_id son requeridos"})
	}
	job, err := h.uc.AssignJob(c.Context(), jobs.AssignJobInput{
		Title:        in.Title,
		Description:  in.Description,
		SiteLat:      in.SiteLat,
		SiteLng:      in.SiteLng,
		SiteAddress:  in.SiteAddress,
		TechnicianID: in.TechnicianID,
		AssistantID:  in.AssistantID,
		AssignerID:   GetUserID(c),
		AssignerRole: GetRole(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.JobToResponse(job))
}

// Transition godoc
// @Summary      Aplicar una transición de estado al trabajo
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del trabajo"
// @Param        body  body  dto.TransitionRequest  true  "Estado destino"
// @Success      200   {object}  dto.JobResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/transition [post]
func (h *JobHandler) Transition(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	job, err := h.uc.TransitionJob(c.Context(), jobs.TransitionInput{
		JobID:     id,
		ActorID:   GetUserID(c),
		ActorRole: GetRole(c),
		Target:    in.TargetStatus,
		SignOff:   in.SignOff,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.JobToResponse(job))
}

// ReportLocation godoc
// @Summary      Reportar una muestra de ubicación del trabajo
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del trabajo"
// @Param        body  body  dto.LocationReportRequest  true  "Muestra de ubicación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/location [post]
func (h *JobHandler) ReportLocation(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.LocationReportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if err := h.uc.ReportLocation(c.Context(), id, in.Lat, in.Lng, ts, in.LocationConsent); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddNote godoc
// @Summary      Agregar una nota al log del trabajo
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del trabajo"
// @Param        body  body  dto.NoteRequest  true  "Texto de la nota"
// @Success      201   {object}  entity.JobNote
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/notes [post]
func (h *JobHandler) AddNote(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.NoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	note, err := h.uc.AddNote(c.Context(), id, GetUserID(c), GetRole(c), in.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// ListNotes godoc
// @Summary      Listar el log de notas del trabajo
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del trabajo"
// @Success      200  {array}  entity.JobNote
// @Router       /api/jobs/{id}/notes [get]
func (h *JobHandler) ListNotes(c *fiber.Ctx) error {
	notes, err := h.uc.GetNotes(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notes)
}

// GetByID godoc
// @Summary      Obtener trabajo por ID
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del trabajo"
// @Success      200  {object}  dto.JobResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) GetByID(c *fiber.Ctx) error {
	job, err := h.uc.GetJob(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.JobToResponse(job))
}

// Actions godoc
// @Summary      Estados alcanzables para el actor sobre este trabajo
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del trabajo"
// @Success      200  {array}  string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/actions [get]
func (h *JobHandler) Actions(c *fiber.Ctx) error {
	actions, err := h.uc.AllowedActions(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(actions)
}

// List godoc
// @Summary      Listar trabajos por técnico o por estado
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        technician_id  query  string  false  "Filtrar por técnico"
// @Param        status         query  string  false  "Filtrar por estado"
// @Param        limit          query  int     false  "Límite"   default(20)
// @Param        offset         query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.JobResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/jobs [get]
func (h *JobHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	page.Limit = c.QueryInt("limit", 20)
	page.Offset = c.QueryInt("offset", 0)
	page.DefaultPage()

	var (
		list []*entity.Job
		err  error
	)
	if tech := c.Query("technician_id"); tech != "" {
		list, err = h.uc.ListByTechnician(c.Context(), tech, page.Limit, page.Offset)
	} else if status := c.Query("status"); status != "" {
		list, err = h.uc.ListByStatus(c.Context(), status, page.Limit, page.Offset)
	} else {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "technician_id o status es requerido"})
	}
	if err != nil {
		return fail(c, err)
	}

	out := make([]dto.JobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, dto.JobToResponse(j))
	}
	return c.JSON(out)
}
