package entity

import "time"

// OrderState último estado conocido de un pedido upstream.
// Sirve para calcular la transición cuando el webhook no trae el estado anterior.
type OrderState struct {
	ExternalOrderID int64
	OrderNumber     string
	Status          string
	UpdatedAt       time.Time
}
