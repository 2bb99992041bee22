package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementResponse registro del log de movimientos.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	Quantity       int             `json:"quantity"`
	BeforeActual   int             `json:"before_actual"`
	AfterActual    int             `json:"after_actual"`
	BeforeReserved int             `json:"before_reserved"`
	AfterReserved  int             `json:"after_reserved"`
	Reference      string          `json:"reference"`
	Reason         string          `json:"reason"`
	Notes          string          `json:"notes"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ChainBreakDTO salto en la cadena de snapshots de un producto.
type ChainBreakDTO struct {
	MovementID     string `json:"movement_id"`
	ExpectedBefore int    `json:"expected_before"`
	ActualBefore   int    `json:"actual_before"`
}

// ProductAuditDTO resultado de auditar el libro de un producto.
type ProductAuditDTO struct {
	ProductID   string          `json:"product_id"`
	ExternalID  int64           `json:"external_id"`
	ActualStock int             `json:"actual_stock"`
	LedgerStock int             `json:"ledger_stock"`
	Movements   int             `json:"movements"`
	Consistent  bool            `json:"consistent"`
	Breaks      []ChainBreakDTO `json:"breaks,omitempty"`
}

// LedgerAuditResponse resumen de auditoría.
type LedgerAuditResponse struct {
	Audited      int               `json:"audited"`
	Inconsistent int               `json:"inconsistent"`
	Products     []ProductAuditDTO `json:"products"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto con stock bajo.
type ReplenishmentSuggestionDTO struct {
	ProductID     string          `json:"product_id"`
	ExternalID    int64           `json:"external_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	ActualStock   int             `json:"actual_stock"`
	ReservedStock int             `json:"reserved_stock"`
	LowStockAlert int             `json:"low_stock_alert"`
	IdealStock    int             `json:"ideal_stock"`
	SuggestedQty  int             `json:"suggested_qty"`
	UnitsSold     int             `json:"units_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	Priority      int             `json:"priority"`
}
