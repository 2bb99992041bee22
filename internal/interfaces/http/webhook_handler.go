package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/application/orders"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
)

// WebhookHandler ingreso de eventos de pedido (firmados).
type WebhookHandler struct {
	uc      *orders.SyncUseCase
	timeout time.Duration
}

// NewWebhookHandler construye el handler. timeout acota cada reconciliación.
func NewWebhookHandler(uc *orders.SyncUseCase, timeout time.Duration) *WebhookHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookHandler{uc: uc, timeout: timeout}
}

// WooCommerceOrder godoc
// @Summary      Webhook de pedidos WooCommerce (order.created / order.updated)
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-WC-Webhook-Signature    header  string  true   "base64(HMAC-SHA256(body, secret))"
// @Param        X-WC-Webhook-Delivery-ID  header  string  false  "Id de entrega para deduplicar"
// @Param        body  body  dto.WooOrderPayload  true  "Pedido WooCommerce"
// @Success      200   {object}  dto.SyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/webhooks/woocommerce/orders [post]
func (h *WebhookHandler) WooCommerceOrder(c *fiber.Ctx) error {
	var in dto.WooOrderPayload
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return h.handle(c, wooToEvent(in))
}

// Reconciliation godoc
// @Summary      Evento de pedido genérico (otros upstreams o re-procesos)
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-WC-Webhook-Signature  header  string  true  "base64(HMAC-SHA256(body, secret))"
// @Param        body  body  dto.ReconciliationRequest  true  "Evento de pedido"
// @Success      200   {object}  dto.SyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reconciliations [post]
func (h *WebhookHandler) Reconciliation(c *fiber.Ctx) error {
	var in dto.ReconciliationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	event := entity.OrderEvent{
		ExternalOrderID: in.ExternalOrderID,
		OrderNumber:     in.OrderNumber,
		Status:          in.Status,
		PreviousStatus:  in.PreviousStatus,
	}
	for _, li := range in.LineItems {
		event.LineItems = append(event.LineItems, entity.LineItem{
			ExternalProductID: li.ExternalProductID,
			Quantity:          li.Quantity,
			Name:              li.Name,
		})
	}
	return h.handle(c, event)
}

func (h *WebhookHandler) handle(c *fiber.Ctx, event entity.OrderEvent) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	res, err := h.uc.HandleOrderEvent(ctx, event, c.Get(HeaderWebhookDeliveryID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSyncResponse(res))
}

// wooToEvent la variación, si existe, es la que lleva stock propio.
func wooToEvent(in dto.WooOrderPayload) entity.OrderEvent {
	event := entity.OrderEvent{
		ExternalOrderID: in.ID,
		OrderNumber:     in.Number,
		Status:          in.Status,
	}
	for _, li := range in.LineItems {
		productID := li.ProductID
		if li.VariationID != 0 {
			productID = li.VariationID
		}
		event.LineItems = append(event.LineItems, entity.LineItem{
			ExternalProductID: productID,
			Quantity:          li.Quantity,
			Name:              li.Name,
			UnitPrice:         li.Price,
		})
	}
	return event
}

func toSyncResponse(res *orders.SyncResult) dto.SyncResponse {
	out := dto.SyncResponse{
		OrderID:        res.OrderID,
		PreviousStatus: res.PreviousStatus,
		Status:         res.Status,
		Duplicate:      res.Duplicate,
		Actions:        make([]dto.ActionResultDTO, 0, len(res.Results)),
	}
	for _, r := range res.Results {
		out.Actions = append(out.Actions, dto.ActionResultDTO{
			Action:  string(r.Action),
			Applied: r.Applied,
			Skipped: r.Skipped,
			Failed:  r.Failed,
		})
	}
	return out
}
