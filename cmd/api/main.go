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
	"github.com/hibiken/asynq"

	_ "github.com/jhoicas/stock-reconciler/docs"
	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
	"github.com/jhoicas/stock-reconciler/internal/application/orders"
	"github.com/jhoicas/stock-reconciler/internal/application/ports"
	"github.com/jhoicas/stock-reconciler/internal/application/usecase"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/memory"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/notify"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/stock-reconciler/internal/interfaces/http"
	"github.com/jhoicas/stock-reconciler/internal/jobs"
	"github.com/jhoicas/stock-reconciler/pkg/config"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

// storage repositorios según el driver configurado.
type storage struct {
	txRunner     inventory.TxRunner
	products     repository.ProductRepository
	movements    repository.StockMovementRepository
	orderStates  repository.OrderStateRepository
	closeStorage func()
}

// @title        Stock Reconciler API
// @version      1.0
// @description  Reconciliación de stock dirigida por el estado de los pedidos de la tienda.
// @BasePath     /
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
		Str("storage", cfg.Storage.Driver).
		Bool("redis", cfg.Redis.Enabled()).
		Msg("iniciando aplicación")
	if cfg.Webhook.Secret == "" {
		log.Warn().Msg("WEBHOOK_SECRET vacío: los webhooks no se verifican (solo development)")
	}

	ctx := context.Background()
	store := openStorage(ctx, cfg, log)
	defer store.closeStorage()

	var (
		notifier ports.LowStockNotifier = notify.NewLogNotifier(log)
		locker   ports.OrderLocker
		deduper  ports.DeliveryDeduper
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redislock.NewClient(ctx, redislock.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		locker = redislock.NewOrderLocker(redisClient, cfg.Reconcile.LockTTL, log)
		deduper = redislock.NewDeliveryDeduper(redisClient, cfg.Reconcile.DedupTTL)

		jobsClient := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer jobsClient.Close()
		notifier = jobsClient
	}

	reconcileUC := inventory.NewReconcileUseCase(store.txRunner, store.products, notifier, inventory.ReconcileConfig{
		NotifyTimeout: cfg.Reconcile.NotifyTimeout,
	}, log)
	syncUC := orders.NewSyncUseCase(store.orderStates, reconcileUC, locker, deduper, log)
	productUC := usecase.NewProductUseCase(store.products, store.movements)
	auditUC := inventory.NewLedgerAuditUseCase(store.products, store.movements, cfg.Reconcile.AuditWorkers, log)
	replenishUC := inventory.NewReplenishmentUseCase(store.products, store.movements)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Reconcile.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Reconciler API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SyncUC:           syncUC,
		ProductUC:        productUC,
		AuditUC:          auditUC,
		ReplenishUC:      replenishUC,
		WebhookSecret:    cfg.Webhook.Secret,
		RequestTimeout:   cfg.Reconcile.Timeout,
		WebhookRateLimit: cfg.HTTP.RateLimit,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Reconcile.Timeout+5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: el estado se pierde al reiniciar")
		s := memory.NewStore()
		return storage{
			txRunner:     memory.NewTxRunner(s),
			products:     s.Products(),
			movements:    s.Movements(),
			orderStates:  s.Orders(),
			closeStorage: func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migración del esquema")
	}
	return storage{
		txRunner:     postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		products:     postgres.NewProductRepository(pool),
		movements:    postgres.NewStockMovementRepository(pool),
		orderStates:  postgres.NewOrderStateRepository(pool),
		closeStorage: pool.Close,
	}
}
