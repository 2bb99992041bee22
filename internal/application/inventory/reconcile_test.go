package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/orderstatus"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type notifyCall struct {
	productID string
	current   int
	threshold int
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
	panic bool
}

func (n *fakeNotifier) NotifyLowStock(_ context.Context, productID string, current, threshold int) error {
	n.mu.Lock()
	n.calls = append(n.calls, notifyCall{productID, current, threshold})
	n.mu.Unlock()
	if n.panic {
		panic("notificador roto")
	}
	return n.err
}

// failingTxRunner falla la transacción cuando toca el producto indicado.
type failingTxRunner struct {
	inner     inventory.TxRunner
	productID string
}

func (r failingTxRunner) Run(ctx context.Context, fn func(context.Context, repository.ProductRepository, repository.StockMovementRepository) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, p repository.ProductRepository, m repository.StockMovementRepository) error {
		return fn(ctx, p, failingMovements{StockMovementRepository: m, productID: r.productID})
	})
}

type failingMovements struct {
	repository.StockMovementRepository
	productID string
}

func (f failingMovements) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ProductID == f.productID {
		return errors.New("insert stock movement: conexión perdida")
	}
	return f.StockMovementRepository.Append(ctx, m)
}

type fixture struct {
	store    *memory.Store
	notifier *fakeNotifier
	uc       *inventory.ReconcileUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	n := &fakeNotifier{}
	uc := inventory.NewReconcileUseCase(memory.NewTxRunner(store), store.Products(), n, inventory.ReconcileConfig{}, nil)
	return &fixture{store: store, notifier: n, uc: uc}
}

func (f *fixture) product(t *testing.T, externalID int64, actual, reserved, alert int) *entity.Product {
	t.Helper()
	p, err := f.store.Products().UpsertFromCatalog(context.Background(), &entity.Product{
		ExternalID: externalID, SKU: "SKU-X", Name: "Camiseta", ActualStock: actual, ReservedStock: reserved, LowStockAlert: alert,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, id string) (actual, reserved int) {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.ActualStock, p.ReservedStock
}

func (f *fixture) movements(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.Movements().ListByProduct(context.Background(), id, 0, 0)
	require.NoError(t, err)
	return movs
}

func order(status string, items ...entity.LineItem) entity.OrderEvent {
	return entity.OrderEvent{ExternalOrderID: 501, OrderNumber: "1001", Status: status, LineItems: items}
}

func line(externalID int64, qty int) entity.LineItem {
	return entity.LineItem{ExternalProductID: externalID, Quantity: qty, Name: "Camiseta", UnitPrice: decimal.NewFromInt(25)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios A-C: ciclo reserva -> venta -> reembolso
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_CicloReservaVentaReembolso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 100, 10, 0, 0)

	// A: "" -> processing
	resA := f.uc.Reconcile(ctx, order("processing", line(100, 3)), "")
	require.Len(t, resA.Results, 1)
	assert.Equal(t, orderstatus.ActionReserve, resA.Results[0].Action)
	actual, reserved := f.stock(t, p.ID)
	assert.Equal(t, 10, actual)
	assert.Equal(t, 3, reserved)
	movs := f.movements(t, p.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSale, movs[0].Type)
	assert.Equal(t, -3, movs[0].Quantity)
	assert.Equal(t, "ORDER-1001", movs[0].Reference)
	assert.Equal(t, "order_reserve", movs[0].Reason)

	// B: processing -> completed
	resB := f.uc.Reconcile(ctx, order("completed", line(100, 3)), "processing")
	require.Len(t, resB.Results, 1)
	assert.Equal(t, orderstatus.ActionComplete, resB.Results[0].Action)
	actual, reserved = f.stock(t, p.ID)
	assert.Equal(t, 7, actual)
	assert.Equal(t, 0, reserved)
	movs = f.movements(t, p.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeSale, movs[1].Type)
	assert.Equal(t, -3, movs[1].Quantity)
	assert.Equal(t, 10, movs[1].BeforeActual)
	assert.Equal(t, 7, movs[1].AfterActual)

	// C: completed -> refunded: REFUND, no RELEASE
	resC := f.uc.Reconcile(ctx, order("refunded", line(100, 3)), "completed")
	require.Len(t, resC.Results, 1)
	assert.Equal(t, orderstatus.ActionRefund, resC.Results[0].Action)
	actual, reserved = f.stock(t, p.ID)
	assert.Equal(t, 10, actual)
	assert.Equal(t, 0, reserved)
	movs = f.movements(t, p.ID)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementTypeReturn, movs[2].Type)
	assert.Equal(t, 3, movs[2].Quantity)
}

// Escenario D: on-hold -> cancelled libera la reserva.
func TestReconcile_CancelacionLiberaReserva(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 200, 5, 2, 0)

	res := f.uc.Reconcile(context.Background(), order("cancelled", line(200, 2)), "on-hold")

	require.Len(t, res.Results, 1)
	assert.Equal(t, orderstatus.ActionRelease, res.Results[0].Action)
	actual, reserved := f.stock(t, p.ID)
	assert.Equal(t, 5, actual)
	assert.Equal(t, 0, reserved)
	movs := f.movements(t, p.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.Equal(t, 2, movs[0].Quantity)
}

// Escenario E: un producto sin enlace no aborta el lote.
func TestReconcile_ProductoSinEnlaceSeOmite(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 300, 10, 0, 0)

	var res inventory.ReconcileResult
	require.NotPanics(t, func() {
		res = f.uc.Reconcile(context.Background(), order("processing", line(999, 1), line(300, 4)), "")
	})

	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Results[0].Applied)
	assert.Equal(t, 1, res.Results[0].Skipped)
	assert.Equal(t, 0, res.Results[0].Failed)
	assert.Len(t, res.Results[0].Movements, 1)
	assert.Len(t, f.movements(t, p.ID), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_CreacionEnReservaSoloReserva(t *testing.T) {
	for _, status := range []string{"processing", "on-hold"} {
		f := newFixture(t)
		p := f.product(t, 1, 8, 1, 0)

		res := f.uc.Reconcile(context.Background(), order(status, line(1, 4)), "")

		require.Len(t, res.Results, 1, status)
		assert.Equal(t, orderstatus.ActionReserve, res.Results[0].Action)
		actual, reserved := f.stock(t, p.ID)
		assert.Equal(t, 8, actual, status)
		assert.Equal(t, 5, reserved, status)
	}
}

func TestReconcile_CompletarConPisoEnCero(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 1, 2, 1, 0)

	res := f.uc.Reconcile(context.Background(), order("completed", line(1, 5)), "pending")

	require.Len(t, res.Results, 1)
	actual, reserved := f.stock(t, p.ID)
	assert.Equal(t, 0, actual)
	assert.Equal(t, 0, reserved)
	mov := res.Results[0].Movements[0]
	assert.Equal(t, -5, mov.Quantity, "el movimiento conserva la cantidad del pedido")
	assert.Equal(t, -2, mov.ActualDelta(), "el snapshot refleja el piso en 0")
}

// La suma de los cambios efectivos de stock actual en los movimientos es igual a final - inicial.
func TestReconcile_SumaDeMovimientosCuadraConElLibro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 1, 6, 0, 0)

	steps := [][2]string{
		{"", "processing"},
		{"processing", "completed"},
		{"completed", "refunded"},
		{"refunded", "processing"},
		{"processing", "cancelled"},
		{"cancelled", "completed"},
		{"completed", "completed"},
	}
	for _, s := range steps {
		f.uc.Reconcile(ctx, order(s[1], line(1, 4)), s[0])
	}

	final, _ := f.stock(t, p.ID)
	sum := 0
	for _, m := range f.movements(t, p.ID) {
		sum += m.ActualDelta()
	}
	assert.Equal(t, final-6, sum)
}

func TestReconcile_MismoEstadoNoHaceNada(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 1, 6, 0, 0)

	res := f.uc.Reconcile(context.Background(), order("processing", line(1, 2)), "processing")

	assert.Empty(t, res.Results)
	assert.Empty(t, f.movements(t, p.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento de fallos
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_FalloDePersistenciaNoDetieneElLote(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	a, err := store.Products().UpsertFromCatalog(ctx, &entity.Product{ExternalID: 1, ActualStock: 10})
	require.NoError(t, err)
	b, err := store.Products().UpsertFromCatalog(ctx, &entity.Product{ExternalID: 2, ActualStock: 10})
	require.NoError(t, err)

	runner := failingTxRunner{inner: memory.NewTxRunner(store), productID: a.ID}
	uc := inventory.NewReconcileUseCase(runner, store.Products(), nil, inventory.ReconcileConfig{}, nil)

	res := uc.Apply(ctx, orderstatus.ActionComplete, order("completed", line(1, 3), line(2, 3)))

	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Applied)

	pa, _ := store.Products().GetByID(ctx, a.ID)
	pb, _ := store.Products().GetByID(ctx, b.ID)
	assert.Equal(t, 10, pa.ActualStock, "la transacción fallida no debe dejar el libro modificado")
	assert.Equal(t, 7, pb.ActualStock)
}

func TestApply_NotificaStockBajoTrasCompletar(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 1, 5, 2, 3)

	f.uc.Apply(context.Background(), orderstatus.ActionComplete, order("completed", line(1, 2)))

	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, notifyCall{productID: p.ID, current: 3, threshold: 3}, f.notifier.calls[0])
}

func TestApply_NoNotificaEnReserva(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, 1, 0, 5)

	f.uc.Apply(context.Background(), orderstatus.ActionReserve, order("processing", line(1, 1)))

	assert.Empty(t, f.notifier.calls)
}

func TestApply_FalloDelNotificadorNoAfectaResultado(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("cola caída")
	f.product(t, 1, 1, 0, 5)
	f.product(t, 2, 1, 0, 5)

	res := f.uc.Apply(context.Background(), orderstatus.ActionComplete, order("completed", line(1, 1), line(2, 1)))

	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 0, res.Failed)
	assert.Len(t, f.notifier.calls, 2)
}

func TestApply_PanicoDelNotificadorNoDetieneLineasSiguientes(t *testing.T) {
	f := newFixture(t)
	f.notifier.panic = true
	f.product(t, 1, 1, 0, 5)
	p2 := f.product(t, 2, 4, 0, 0)

	var res inventory.ApplyResult
	require.NotPanics(t, func() {
		res = f.uc.Apply(context.Background(), orderstatus.ActionComplete, order("completed", line(1, 1), line(2, 1)))
	})

	assert.Equal(t, 2, res.Applied)
	actual, _ := f.stock(t, p2.ID)
	assert.Equal(t, 3, actual)
}

func TestApply_CantidadNoPositivaSeOmite(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 1, 5, 0, 0)

	res := f.uc.Apply(context.Background(), orderstatus.ActionReserve, order("processing", line(1, 0), line(1, -2)))

	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, f.movements(t, p.ID))
}
