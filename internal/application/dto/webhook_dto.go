package dto

import "github.com/shopspring/decimal"

// WooOrderPayload cuerpo de los webhooks order.created / order.updated de WooCommerce.
// Solo se mapean los campos que usa la reconciliación.
type WooOrderPayload struct {
	ID        int64              `json:"id" validate:"required,gt=0"`
	Number    string             `json:"number"`
	Status    string             `json:"status" validate:"required"`
	LineItems []WooOrderLineItem `json:"line_items" validate:"dive"`
}

// WooOrderLineItem línea de pedido WooCommerce. VariationID, si no es 0, identifica el
// producto con stock propio.
type WooOrderLineItem struct {
	ProductID   int64           `json:"product_id" validate:"required_without=VariationID,gte=0"`
	VariationID int64           `json:"variation_id" validate:"gte=0"`
	Quantity    int             `json:"quantity"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
}

// ReconciliationRequest evento genérico de pedido (upstreams distintos de WooCommerce o re-procesos).
// PreviousStatus nil hace que se use el último estado persistido.
type ReconciliationRequest struct {
	ExternalOrderID int64                   `json:"externalOrderId" validate:"required,gt=0"`
	OrderNumber     string                  `json:"orderNumber"`
	Status          string                  `json:"status" validate:"required"`
	PreviousStatus  *string                 `json:"previousStatus"`
	LineItems       []ReconciliationLineDTO `json:"lineItems" validate:"dive"`
}

// ReconciliationLineDTO línea del evento genérico.
type ReconciliationLineDTO struct {
	ExternalProductID int64  `json:"externalProductId" validate:"required,gt=0"`
	Quantity          int    `json:"quantity"`
	Name              string `json:"name"`
}

// ActionResultDTO resumen de una acción aplicada.
type ActionResultDTO struct {
	Action  string `json:"action"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// SyncResponse respuesta del ingreso de eventos de pedido.
type SyncResponse struct {
	OrderID        int64             `json:"order_id"`
	PreviousStatus string            `json:"previous_status"`
	Status         string            `json:"status"`
	Duplicate      bool              `json:"duplicate,omitempty"`
	Actions        []ActionResultDTO `json:"actions"`
}
