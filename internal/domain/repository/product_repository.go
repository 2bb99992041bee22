package repository

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia del libro de stock (DIP).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// FindByExternalID devuelve nil, nil si no existe un producto con ese id upstream.
	FindByExternalID(ctx context.Context, externalID int64) (*entity.Product, error)
	// ApplyStockDelta aplica el delta de forma atómica (UPDATE condicional, sin leer-modificar-escribir)
	// y devuelve los contadores antes y después. Los contadores nunca quedan por debajo de 0.
	ApplyStockDelta(ctx context.Context, productID string, delta entity.StockDelta) (*entity.StockChange, error)
	// UpsertFromCatalog crea o refresca un producto por ExternalID. El stock solo se toma al insertar.
	UpsertFromCatalog(ctx context.Context, product *entity.Product) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
}
