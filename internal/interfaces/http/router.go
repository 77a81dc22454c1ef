package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ServiTec-api/internal/application/jobs"
	"github.com/jhoicas/ServiTec-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	JobUC     *jobs.LifecycleUseCase
	StockUC   *stock.AllocationUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Jobs (protegido)
	jobsGroup := protected.Group("/jobs")
	jobHandler := NewJobHandler(deps.JobUC)
	jobsGroup.Post("/", jobHandler.Assign)
	jobsGroup.Get("/", jobHandler.List)
	jobsGroup.Get("/:id", jobHandler.GetByID)
	jobsGroup.Post("/:id/transition", jobHandler.Transition)
	jobsGroup.Post("/:id/location", jobHandler.ReportLocation)
	jobsGroup.Get("/:id/actions", jobHandler.Actions)
	jobsGroup.Post("/:id/notes", jobHandler.AddNote)
	jobsGroup.Get("/:id/notes", jobHandler.ListNotes)

	// Stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Post("/items", stockHandler.CreateItem)
	stockGroup.Get("/items", stockHandler.ListItems)
	stockGroup.Get("/items/:id", stockHandler.GetItem)
	stockGroup.Put("/items/:id/minimum", stockHandler.SetMinimum)
	stockGroup.Get("/alerts", stockHandler.ListAlerts)
	stockGroup.Post("/allocations", stockHandler.Allocate)
	stockGroup.Get("/assignments", stockHandler.ListAssignments)
	stockGroup.Post("/assignments/:id/usage", stockHandler.RecordUsage)
	stockGroup.Get("/assignments/:id/usage", stockHandler.UsageHistory)
	stockGroup.Post("/assignments/:id/return", stockHandler.Return)
}
