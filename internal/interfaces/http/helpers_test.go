package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
	"github.com/jhoicas/stock-reconciler/internal/application/orders"
	"github.com/jhoicas/stock-reconciler/internal/application/usecase"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-reconciler/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testSecret = "woo-secret-for-tests"

type testEnv struct {
	app   *fiber.App
	store *memory.Store
}

// newTestEnv construye la API completa sobre el store en memoria, sin Redis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	reconcileUC := inventory.NewReconcileUseCase(memory.NewTxRunner(store), store.Products(), nil, inventory.ReconcileConfig{}, nil)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SyncUC:         orders.NewSyncUseCase(store.Orders(), reconcileUC, nil, nil, nil),
		ProductUC:      usecase.NewProductUseCase(store.Products(), store.Movements()),
		AuditUC:        inventory.NewLedgerAuditUseCase(store.Products(), store.Movements(), 2, nil),
		ReplenishUC:    inventory.NewReplenishmentUseCase(store.Products(), store.Movements()),
		WebhookSecret:  testSecret,
		RequestTimeout: 5 * time.Second,
	})
	return &testEnv{app: app, store: store}
}

func (e *testEnv) product(t *testing.T, externalID int64, actual, reserved int) *entity.Product {
	t.Helper()
	p, err := e.store.Products().UpsertFromCatalog(context.Background(), &entity.Product{
		ExternalID: externalID, SKU: "SKU", Name: "Producto", ActualStock: actual, ReservedStock: reserved,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) stock(t *testing.T, id string) (int, int) {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.ActualStock, p.ReservedStock
}

// signedPost envía body firmado con secret; secret vacío = sin cabecera de firma.
func (e *testEnv) signedPost(t *testing.T, path string, body []byte, secret string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(apphttp.HeaderWebhookSignature, apphttp.ComputeSignature(secret, body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
