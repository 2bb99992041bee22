package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
	"github.com/jhoicas/stock-reconciler/internal/application/orders"
	"github.com/jhoicas/stock-reconciler/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SyncUC         *orders.SyncUseCase
	ProductUC      *usecase.ProductUseCase
	AuditUC        *inventory.LedgerAuditUseCase
	ReplenishUC    *inventory.ReplenishmentUseCase
	WebhookSecret  string
	RequestTimeout time.Duration
	// WebhookRateLimit peticiones por minuto e IP; 0 desactiva el límite.
	WebhookRateLimit int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Ingreso de eventos (firmado)
	webhookHandler := NewWebhookHandler(deps.SyncUC, deps.RequestTimeout)
	ingress := []fiber.Handler{}
	if deps.WebhookRateLimit > 0 {
		ingress = append(ingress, limiter.New(limiter.Config{
			Max:        deps.WebhookRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones"})
			},
		}))
	}
	woo := append(append([]fiber.Handler{}, ingress...), WooCommercePing(), WebhookSignature(deps.WebhookSecret), webhookHandler.WooCommerceOrder)
	api.Post("/webhooks/woocommerce/orders", woo...)
	generic := append(append([]fiber.Handler{}, ingress...), WebhookSignature(deps.WebhookSecret), webhookHandler.Reconciliation)
	api.Post("/reconciliations", generic...)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.AuditUC, deps.ReplenishUC)
	products.Post("/catalog", productHandler.SyncCatalog)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.ListLowStock)
	products.Get("/replenishment", inventoryHandler.Replenishment)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/movements", productHandler.Movements)

	// Orders
	api.Get("/orders/:number/movements", productHandler.OrderMovements)

	// Ledger
	api.Get("/ledger/audit", inventoryHandler.LedgerAudit)
}
