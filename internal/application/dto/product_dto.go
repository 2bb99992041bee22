package dto

import "time"

// CatalogProductRequest producto del catálogo upstream para crear/refrescar su entrada en el libro.
// InitialStock solo se usa al crear; luego el stock cambia únicamente vía movimientos.
type CatalogProductRequest struct {
	ExternalID    int64  `json:"external_id" validate:"required,gt=0"`
	SKU           string `json:"sku" validate:"max=100"`
	Name          string `json:"name" validate:"required,min=1,max=200"`
	InitialStock  int    `json:"initial_stock" validate:"min=0"`
	LowStockAlert int    `json:"low_stock_alert" validate:"min=0"`
}

// CatalogSyncRequest lote de productos del catálogo.
type CatalogSyncRequest struct {
	Products []CatalogProductRequest `json:"products" validate:"required,min=1,max=500,dive"`
}

// ProductResponse salida de una entrada del libro de stock.
type ProductResponse struct {
	ID            string    `json:"id"`
	ExternalID    int64     `json:"external_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	ActualStock   int       `json:"actual_stock"`
	ReservedStock int       `json:"reserved_stock"`
	Available     int       `json:"available"`
	LowStockAlert int       `json:"low_stock_alert"`
	LowStock      bool      `json:"low_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
