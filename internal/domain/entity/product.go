package entity

import "time"

// Product representa una entrada del libro de stock: un producto local enlazado a su
// identificador en la tienda upstream (WooCommerce u otro sistema de pedidos).
// ActualStock y ReservedStock solo se modifican vía reconciliación o sincronización de catálogo.
type Product struct {
	ID            string
	ExternalID    int64 // id del producto en la tienda upstream
	SKU           string
	Name          string
	ActualStock   int // unidades físicamente disponibles
	ReservedStock int // unidades apartadas por pedidos aún no completados
	LowStockAlert int // umbral de alerta de stock bajo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available devuelve las unidades vendibles (actual - reservado), nunca negativo.
func (p *Product) Available() int {
	if p.ReservedStock >= p.ActualStock {
		return 0
	}
	return p.ActualStock - p.ReservedStock
}

// IsLowStock indica si el stock actual llegó al umbral de alerta.
func (p *Product) IsLowStock() bool {
	return p.ActualStock <= p.LowStockAlert
}

// StockDelta cambio a aplicar sobre los contadores de un producto.
// Los resultados se limitan a 0 como mínimo en la capa de persistencia.
type StockDelta struct {
	Actual   int
	Reserved int
}

// IsZero indica si el delta no cambia nada.
func (d StockDelta) IsZero() bool {
	return d.Actual == 0 && d.Reserved == 0
}

// StockChange fotografía de los contadores antes y después de una actualización atómica.
type StockChange struct {
	ProductID      string
	BeforeActual   int
	AfterActual    int
	BeforeReserved int
	AfterReserved  int
	LowStockAlert  int
}
