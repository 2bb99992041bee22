package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeSale       = "SALE"
	MovementTypeAdjustment = "ADJUSTMENT"
	MovementTypeReturn     = "RETURN"
	MovementTypePurchase   = "PURCHASE"
	MovementTypeTransfer   = "TRANSFER"
	MovementTypeSync       = "SYNC"
	MovementTypeDamage     = "DAMAGE"
	MovementTypeRecount    = "RECOUNT"
)

var movementTypes = map[string]struct{}{
	MovementTypeSale:       {},
	MovementTypeAdjustment: {},
	MovementTypeReturn:     {},
	MovementTypePurchase:   {},
	MovementTypeTransfer:   {},
	MovementTypeSync:       {},
	MovementTypeDamage:     {},
	MovementTypeRecount:    {},
}

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	_, ok := movementTypes[t]
	return ok
}

// StockMovement registro append-only del libro de movimientos.
// Quantity es el delta con signo del movimiento; los snapshots Before/After reflejan
// lo que realmente quedó en el producto (pueden diferir por el piso en 0).
type StockMovement struct {
	ID             string
	ProductID      string
	Type           string
	Quantity       int
	BeforeActual   int
	AfterActual    int
	BeforeReserved int
	AfterReserved  int
	Reference      string // p.ej. ORDER-1234
	Reason         string
	Notes          string
	UnitPrice      decimal.Decimal
	CreatedAt      time.Time
}

// ActualDelta cambio efectivo del stock actual registrado en el movimiento.
func (m *StockMovement) ActualDelta() int {
	return m.AfterActual - m.BeforeActual
}
