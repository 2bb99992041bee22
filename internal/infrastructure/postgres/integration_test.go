//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-reconciler/pkg/config"
)

// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/ (requiere Docker).

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "stock",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL: fmt.Sprintf("postgres://test:test@%s:%s/stock?sslmode=disable", host, port.Port()),
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func TestIntegracion_Postgres(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)

	t.Run("ApplyStockDelta limita a cero y devuelve antes/después", func(t *testing.T) {
		p, err := products.UpsertFromCatalog(ctx, &entity.Product{
			ExternalID: 100, SKU: "TAZA", Name: "Taza", ActualStock: 2, ReservedStock: 1, LowStockAlert: 1,
		})
		require.NoError(t, err)

		change, err := products.ApplyStockDelta(ctx, p.ID, entity.StockDelta{Actual: -5, Reserved: -3})
		require.NoError(t, err)
		assert.Equal(t, entity.StockChange{
			ProductID: p.ID, BeforeActual: 2, AfterActual: 0, BeforeReserved: 1, AfterReserved: 0, LowStockAlert: 1,
		}, *change)

		got, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.ActualStock)
		assert.Equal(t, 0, got.ReservedStock)

		_, err = products.ApplyStockDelta(ctx, uuid.New().String(), entity.StockDelta{Actual: 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpsertFromCatalog no pisa el stock existente", func(t *testing.T) {
		first, err := products.UpsertFromCatalog(ctx, &entity.Product{ExternalID: 200, Name: "Plato", ActualStock: 7})
		require.NoError(t, err)
		again, err := products.UpsertFromCatalog(ctx, &entity.Product{ExternalID: 200, Name: "Plato hondo", ActualStock: 99})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 7, again.ActualStock)
		assert.Equal(t, "Plato hondo", again.Name)
	})

	t.Run("CompareAndSwap pierde cuando el estado cambió", func(t *testing.T) {
		orders := postgres.NewOrderStateRepository(pool)
		state := func(status string) *entity.OrderState {
			return &entity.OrderState{ExternalOrderID: 9001, OrderNumber: "9001", Status: status}
		}

		ok, err := orders.CompareAndSwap(ctx, "", state("processing"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = orders.CompareAndSwap(ctx, "", state("on-hold"))
		require.NoError(t, err)
		assert.False(t, ok, "insert con estado existente debe perder")

		ok, err = orders.CompareAndSwap(ctx, "processing", state("completed"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = orders.CompareAndSwap(ctx, "processing", state("cancelled"))
		require.NoError(t, err)
		assert.False(t, ok, "expected desactualizado debe perder")

		got, err := orders.Get(ctx, 9001)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "completed", got.Status)
	})

	t.Run("TxRunner revierte delta y movimiento juntos", func(t *testing.T) {
		p, err := products.UpsertFromCatalog(ctx, &entity.Product{ExternalID: 300, Name: "Vaso", ActualStock: 5})
		require.NoError(t, err)

		boom := errors.New("fallo al registrar")
		err = postgres.NewTxRunner(pool, 2*time.Second).Run(ctx, func(
			ctx context.Context, pr repository.ProductRepository, mr repository.StockMovementRepository,
		) error {
			if _, err := pr.ApplyStockDelta(ctx, p.ID, entity.StockDelta{Actual: -2}); err != nil {
				return err
			}
			if err := mr.Append(ctx, &entity.StockMovement{
				ProductID: p.ID, Type: entity.MovementTypeSale, Quantity: -2, BeforeActual: 5, AfterActual: 3,
			}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.ActualStock)
		movs, err := postgres.NewStockMovementRepository(pool).ListByProduct(ctx, p.ID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, movs)
	})
}
