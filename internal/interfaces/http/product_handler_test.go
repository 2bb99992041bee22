package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
)

func TestSyncCatalog_CreaProductos(t *testing.T) {
	env := newTestEnv(t)

	body := []byte(`{"products":[{"external_id":10,"sku":"TZ","name":"Taza","initial_stock":4,"low_stock_alert":5}]}`)
	resp := env.signedPost(t, "/api/products/catalog", body, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[[]dto.ProductResponse](t, resp)
	require.Len(t, created, 1)
	assert.Equal(t, 4, created[0].ActualStock)
	assert.True(t, created[0].LowStock)

	got := decode[dto.ProductResponse](t, env.get(t, "/api/products/"+created[0].ID))
	assert.Equal(t, "Taza", got.Name)

	low := decode[[]dto.ProductResponse](t, env.get(t, "/api/products/low-stock"))
	require.Len(t, low, 1)
	assert.Equal(t, created[0].ID, low[0].ID)

	list := decode[dto.ProductListResponse](t, env.get(t, "/api/products?limit=5"))
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Page.Limit)
	assert.Equal(t, 1, list.Page.Count)
	assert.False(t, list.Page.HasMore)
}

func TestSyncCatalog_Validacion(t *testing.T) {
	env := newTestEnv(t)
	resp := env.signedPost(t, "/api/products/catalog", []byte(`{"products":[{"external_id":0,"name":""}]}`), "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProduct_NoEncontrado(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get(t, "/api/products/no-existe")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductMovements_HistorialCronologico(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, 10, 10, 0)

	for _, status := range []string{"processing", "completed"} {
		body := []byte(`{"externalOrderId": 1, "orderNumber": "1", "status": "` + status + `", "lineItems": [{"externalProductId": 10, "quantity": 2}]}`)
		resp := env.signedPost(t, "/api/reconciliations", body, testSecret, nil)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	movs := decode[[]dto.StockMovementResponse](t, env.get(t, "/api/products/"+p.ID+"/movements"))
	require.Len(t, movs, 2)
	assert.Equal(t, "order_reserve", movs[0].Reason)
	assert.Equal(t, "order_complete", movs[1].Reason)
	assert.Equal(t, 8, movs[1].AfterActual)
}

func TestLedgerAudit_ReportaInconsistencias(t *testing.T) {
	env := newTestEnv(t)
	ok := env.product(t, 1, 5, 0)
	broken := env.product(t, 2, 5, 0)
	require.NoError(t, env.store.Movements().Append(context.Background(), &entity.StockMovement{
		ProductID: broken.ID, Type: entity.MovementTypeAdjustment, Quantity: 1, BeforeActual: 1, AfterActual: 2,
	}))

	out := decode[dto.LedgerAuditResponse](t, env.get(t, "/api/ledger/audit"))
	assert.Equal(t, 2, out.Audited)
	assert.Equal(t, 1, out.Inconsistent)
	assert.Len(t, out.Products, 2)

	only := decode[dto.LedgerAuditResponse](t, env.get(t, "/api/ledger/audit?only_inconsistent=true"))
	require.Len(t, only.Products, 1)
	assert.Equal(t, broken.ID, only.Products[0].ProductID)
	assert.NotEqual(t, ok.ID, only.Products[0].ProductID)
	assert.Equal(t, 2, only.Products[0].LedgerStock)
}

func TestReplenishment_ListaProductosBajos(t *testing.T) {
	env := newTestEnv(t)
	low, err := env.store.Products().UpsertFromCatalog(context.Background(), &entity.Product{
		ExternalID: 5, SKU: "TAZA", Name: "Taza", ActualStock: 2, LowStockAlert: 4,
	})
	require.NoError(t, err)
	env.product(t, 6, 40, 0)

	resp := env.get(t, "/api/products/replenishment")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[[]dto.ReplenishmentSuggestionDTO](t, resp)
	require.Len(t, out, 1)
	assert.Equal(t, low.ID, out[0].ProductID)
	assert.Equal(t, 6, out[0].IdealStock)
	assert.Equal(t, 4, out[0].SuggestedQty)
	assert.Equal(t, 1, out[0].Priority)

	resp = env.get(t, "/api/products/replenishment?days=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
