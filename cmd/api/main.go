package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/events"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/export"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}
	metrics := telemetry.NewMetrics()

	deps := inventory.Deps{
		Metrics: metrics,
		Logger:  log.Component("inventory"),
	}
	var closers []io.Closer

	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		memory.SeedDemo(store)
		deps.TxRunner = store
		deps.Reader = store.Reader()
		deps.Catalog = store
		deps.Branches = store
		deps.Access = store
		deps.Users = store
		log.Warn().Str("company_id", memory.DemoCompanyID).Msg("almacenamiento en memoria con datos de demostración")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.App.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool, postgres.MigrateUp); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner := postgres.NewTxRunner(pool, cfg.Tx, metrics)
		dir := postgres.NewDirectory(pool)
		deps.TxRunner = txRunner
		deps.Reader = txRunner.Reader()
		deps.Catalog = dir
		deps.Branches = dir
		deps.Access = dir
		deps.Users = dir
	}

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rs, err := cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		idem = rs
		closers = append(closers, rs)
	} else {
		ms := cache.NewInMemoryIdempotencyStore()
		idem = ms
		closers = append(closers, ms)
	}

	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Component("events"))
		deps.Publisher = kp
		closers = append(closers, kp)
	} else {
		deps.Publisher = events.NewLogPublisher(log.Component("events"))
	}

	queryUC := inventory.NewQueryUseCase(deps)
	stockUC := inventory.NewStockUseCase(deps)
	replenishmentUC := inventory.NewReplenishmentUseCase(deps)
	movementUC := inventory.NewMovementUseCase(deps, export.NewMovementsXLSX())
	transferUC := inventory.NewTransferUseCase(deps, idem, cfg.Redis.IdempotencyTTL)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), metrics))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Telemetry.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Query:         queryUC,
		Stock:         stockUC,
		Replenishment: replenishmentUC,
		Movements:     movementUC,
		Transfers:     transferUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar recurso")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar trazas")
	}

	log.Info().Msg("aplicación detenida")
}
