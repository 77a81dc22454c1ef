package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/ServiTec-api/internal/application/jobs"
	"github.com/jhoicas/ServiTec-api/internal/application/stock"
	"github.com/jhoicas/ServiTec-api/internal/domain/entity"
	"github.com/jhoicas/ServiTec-api/internal/domain/repository"
	"github.com/jhoicas/ServiTec-api/internal/infrastructure/memory"
	"github.com/jhoicas/ServiTec-api/internal/infrastructure/notify"
	"github.com/jhoicas/ServiTec-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ServiTec-api/internal/interfaces/http"
	"github.com/jhoicas/ServiTec-api/pkg/config"
	"github.com/jhoicas/ServiTec-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Engine.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Selección de persistencia: PostgreSQL en despliegues reales; memoria para
	// desarrollo local y demos sin base de datos.
	var (
		jobRepo        repository.JobRepository
		delegateRepo   repository.DelegateRepository
		itemRepo       repository.StockItemRepository
		assignmentRepo repository.StockAssignmentRepository
		usageRepo      repository.UsageRecordRepository
		jobTx          jobs.TxRunner
		stockTx        stock.TxRunner
	)
	switch cfg.Engine.Store {
	case "memory":
		store := memory.NewStore()
		jobRepo = memory.NewJobRepository(store)
		delegateRepo = memory.NewDelegateRepository(store)
		itemRepo = memory.NewStockItemRepository(store)
		assignmentRepo = memory.NewStockAssignmentRepository(store)
		usageRepo = memory.NewUsageRecordRepository(store)
		runner := memory.NewTxRunner(store)
		jobTx, stockTx = runner, runner
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		jobRepo = postgres.NewJobRepository(pool)
		delegateRepo = postgres.NewDelegateRepository(pool)
		itemRepo = postgres.NewStockItemRepository(pool)
		assignmentRepo = postgres.NewStockAssignmentRepository(pool)
		usageRepo = postgres.NewUsageRecordRepository(pool)
		runner := postgres.NewTxRunner(pool)
		jobTx, stockTx = runner, runner
	}

	dispatcher := notify.NewDispatcher(cfg.Engine.NotifyBufferSize, log)
	defer dispatcher.Close()

	monitor := jobs.NewProximityMonitor(
		cfg.Engine.ProximityRadiusM,
		time.Duration(cfg.Engine.DwellThresholdSec)*time.Second,
		time.Duration(cfg.Engine.SampleIntervalSec)*time.Second,
		log,
	)

	jobUC := jobs.NewLifecycleUseCase(jobTx, jobRepo, delegateRepo, monitor, dispatcher)
	stockUC := stock.NewAllocationUseCase(stockTx, itemRepo, assignmentRepo, usageRepo, dispatcher)

	// El auto-inicio reingresa por la misma transición autorizada que un inicio
	// manual, con rol sistema y la permanencia acreditada.
	monitor.SetAutoStart(func(jobID string, dwell time.Duration) {
		if _, err := jobUC.TransitionJob(context.Background(), jobs.TransitionInput{
			JobID:     jobID,
			ActorID:   "proximity-monitor",
			ActorRole: entity.RoleSistema,
			Target:    entity.JobStatusInProgress,
			Dwell:     dwell,
		}); err != nil {
			log.Warn().Err(err).Str("job_id", jobID).Msg("auto-inicio rechazado")
		}
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	// El middleware entra en pánico si el archivo no existe; se registra solo
	// cuando el documento está presente.
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "ServiTec API",
		}))
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado, swagger UI deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		JobUC:     jobUC,
		StockUC:   stockUC,
		JWTSecret: cfg.JWT.Secret,
	})

	// Apagado ordenado: se termina de atender lo en vuelo y se drenan las
	// notificaciones encoladas.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("señal de apagado recibida")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(cfg.HTTP.Addr()); err != nil {
		log.Fatal().Err(err).Msg("servidor HTTP")
	}
	log.Info().Msg("aplicación detenida")
}
