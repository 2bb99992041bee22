package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/application/usecase"
	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/memory"
)

func newProductUseCase() (*usecase.ProductUseCase, *memory.Store) {
	store := memory.NewStore()
	return usecase.NewProductUseCase(store.Products(), store.Movements()), store
}

func TestSyncCatalog_CreaYRefrescaSinPisarStock(t *testing.T) {
	uc, store := newProductUseCase()
	ctx := context.Background()

	created, err := uc.SyncCatalog(ctx, dto.CatalogSyncRequest{Products: []dto.CatalogProductRequest{
		{ExternalID: 10, SKU: " TS-01 ", Name: "Camiseta", InitialStock: 8, LowStockAlert: 2},
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "TS-01", created[0].SKU)
	assert.Equal(t, 8, created[0].ActualStock)

	_, err = store.Products().ApplyStockDelta(ctx, created[0].ID, entity.StockDelta{Actual: -3})
	require.NoError(t, err)

	refreshed, err := uc.SyncCatalog(ctx, dto.CatalogSyncRequest{Products: []dto.CatalogProductRequest{
		{ExternalID: 10, SKU: "TS-01", Name: "Camiseta negra", InitialStock: 100, LowStockAlert: 4},
	}})
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, refreshed[0].ID)
	assert.Equal(t, "Camiseta negra", refreshed[0].Name)
	assert.Equal(t, 5, refreshed[0].ActualStock)
	assert.Equal(t, 4, refreshed[0].LowStockAlert)
}

func TestSyncCatalog_ExternalIDRepetido(t *testing.T) {
	uc, _ := newProductUseCase()
	_, err := uc.SyncCatalog(context.Background(), dto.CatalogSyncRequest{Products: []dto.CatalogProductRequest{
		{ExternalID: 1, Name: "A"},
		{ExternalID: 1, Name: "B"},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByID_NoEncontrado(t *testing.T) {
	uc, _ := newProductUseCase()
	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListLowStock_SoloBajoUmbral(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()
	_, err := uc.SyncCatalog(ctx, dto.CatalogSyncRequest{Products: []dto.CatalogProductRequest{
		{ExternalID: 1, Name: "Bajo", InitialStock: 2, LowStockAlert: 2},
		{ExternalID: 2, Name: "Sano", InitialStock: 20, LowStockAlert: 2},
	}})
	require.NoError(t, err)

	low, err := uc.ListLowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, int64(1), low[0].ExternalID)
	assert.True(t, low[0].LowStock)
}

func TestMovementsByOrder_UsaReferenciaDelPedido(t *testing.T) {
	uc, store := newProductUseCase()
	ctx := context.Background()
	products, err := uc.SyncCatalog(ctx, dto.CatalogSyncRequest{Products: []dto.CatalogProductRequest{
		{ExternalID: 1, Name: "A", InitialStock: 5},
	}})
	require.NoError(t, err)

	require.NoError(t, store.Movements().Append(ctx, &entity.StockMovement{
		ProductID: products[0].ID, Type: entity.MovementTypeSale, Quantity: -1, Reference: "ORDER-1001",
	}))
	require.NoError(t, store.Movements().Append(ctx, &entity.StockMovement{
		ProductID: products[0].ID, Type: entity.MovementTypeSale, Quantity: -1, Reference: "ORDER-1002",
	}))

	list, err := uc.MovementsByOrder(ctx, "1001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ORDER-1001", list[0].Reference)

	_, err = uc.MovementsByOrder(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.MovementsByProduct(ctx, "no-existe", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byProduct, err := uc.MovementsByProduct(ctx, products[0].ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)
}
