package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItem una línea producto-cantidad de un pedido upstream.
type LineItem struct {
	ExternalProductID int64
	Quantity          int
	Name              string
	UnitPrice         decimal.Decimal
}

// OrderEvent evento de pedido ya verificado por el ingreso (webhook).
// PreviousStatus nil significa que el ingreso no lo conoce; se resuelve contra el estado persistido.
type OrderEvent struct {
	ExternalOrderID int64
	OrderNumber     string
	Status          string
	PreviousStatus  *string
	LineItems       []LineItem
}

// Reference referencia usada en los movimientos de stock generados por el pedido.
func (e *OrderEvent) Reference() string {
	if e.OrderNumber != "" {
		return "ORDER-" + e.OrderNumber
	}
	return "ORDER-" + strconv.FormatInt(e.ExternalOrderID, 10)
}
