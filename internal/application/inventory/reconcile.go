package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-reconciler/internal/application/ports"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/orderstatus"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

const defaultNotifyTimeout = 5 * time.Second

// actionEffect efecto de una acción sobre el libro y el movimiento que la documenta.
type actionEffect struct {
	movementType string
	movementSign int
	reason       string
	delta        func(qty int) entity.StockDelta
}

// effects tabla de acciones. Los decrementos se limitan a 0 en persistencia, por lo que
// Reserved: -qty equivale a restar min(reservado, qty).
var effects = map[orderstatus.Action]actionEffect{
	orderstatus.ActionReserve: {
		movementType: entity.MovementTypeSale,
		movementSign: -1,
		reason:       "order_reserve",
		delta:        func(q int) entity.StockDelta { return entity.StockDelta{Reserved: q} },
	},
	orderstatus.ActionComplete: {
		movementType: entity.MovementTypeSale,
		movementSign: -1,
		reason:       "order_complete",
		delta:        func(q int) entity.StockDelta { return entity.StockDelta{Actual: -q, Reserved: -q} },
	},
	orderstatus.ActionRelease: {
		movementType: entity.MovementTypeAdjustment,
		movementSign: 1,
		reason:       "order_release",
		delta:        func(q int) entity.StockDelta { return entity.StockDelta{Reserved: -q} },
	},
	orderstatus.ActionRefund: {
		movementType: entity.MovementTypeReturn,
		movementSign: 1,
		reason:       "order_refund",
		delta:        func(q int) entity.StockDelta { return entity.StockDelta{Actual: q} },
	},
}

var errSkipLine = errors.New("línea omitida")

// ReconcileConfig opciones del ejecutor.
type ReconcileConfig struct {
	NotifyTimeout time.Duration
}

// ReconcileUseCase aplica acciones de reconciliación sobre el libro de stock y deja
// un movimiento por acción y línea. Cada línea es independiente: un fallo en una no
// detiene las demás.
type ReconcileUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	notifier      ports.LowStockNotifier
	notifyTimeout time.Duration
	log           *logger.Logger
	now           func() time.Time
}

// NewReconcileUseCase construye el caso de uso. notifier puede ser nil.
func NewReconcileUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	notifier ports.LowStockNotifier,
	cfg ReconcileConfig,
	log *logger.Logger,
) *ReconcileUseCase {
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		notifier:      notifier,
		notifyTimeout: cfg.NotifyTimeout,
		log:           log.Named("reconcile"),
		now:           time.Now,
	}
}

// ApplyResult resumen de una acción aplicada a todas las líneas de un pedido.
type ApplyResult struct {
	Action    orderstatus.Action
	Applied   int
	Skipped   int
	Failed    int
	Movements []entity.StockMovement
}

// ReconcileResult resumen de una transición completa.
type ReconcileResult struct {
	Resolution orderstatus.Resolution
	Results    []ApplyResult
}

// Reconcile resuelve la transición previousStatus -> event.Status y aplica cada acción.
// No devuelve error: los fallos por línea se registran y se cuentan en el resultado.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, event entity.OrderEvent, previousStatus string) ReconcileResult {
	res := orderstatus.Resolve(previousStatus, event.Status)
	out := ReconcileResult{Resolution: res}

	if len(res.Overridden) > 0 {
		uc.log.Info().
			Int64("order_id", event.ExternalOrderID).
			Str("from", res.Previous).Str("to", res.Next).
			Interface("overridden", res.Overridden).
			Msg("acciones anuladas por precedencia")
	}
	if res.Ambiguous {
		uc.log.Warn().
			Int64("order_id", event.ExternalOrderID).
			Str("from", res.Previous).Str("to", res.Next).
			Interface("actions", res.Actions).
			Msg("transición ambigua: acciones con efectos opuestos sobre el stock")
	}

	for _, action := range res.Actions {
		out.Results = append(out.Results, uc.Apply(ctx, action, event))
	}
	return out
}

// Apply aplica una acción a cada línea del pedido.
func (uc *ReconcileUseCase) Apply(ctx context.Context, action orderstatus.Action, event entity.OrderEvent) ApplyResult {
	result := ApplyResult{Action: action}
	eff, ok := effects[action]
	if !ok {
		uc.log.Warn().Str("action", string(action)).Msg("acción desconocida, se ignora")
		return result
	}

	for _, item := range event.LineItems {
		mov, change, err := uc.applyLine(ctx, action, eff, event, item)
		switch {
		case errors.Is(err, errSkipLine):
			result.Skipped++
			continue
		case err != nil:
			result.Failed++
			uc.log.Error().Err(err).
				Int64("order_id", event.ExternalOrderID).
				Int64("external_product_id", item.ExternalProductID).
				Str("action", string(action)).
				Msg("no se pudo reconciliar la línea")
			continue
		}
		result.Applied++
		result.Movements = append(result.Movements, *mov)

		if action == orderstatus.ActionComplete {
			uc.notifyLowStock(ctx, change)
		}
	}
	return result
}

func (uc *ReconcileUseCase) applyLine(
	ctx context.Context,
	action orderstatus.Action,
	eff actionEffect,
	event entity.OrderEvent,
	item entity.LineItem,
) (*entity.StockMovement, *entity.StockChange, error) {
	if item.Quantity <= 0 {
		uc.log.Warn().
			Int64("order_id", event.ExternalOrderID).
			Int64("external_product_id", item.ExternalProductID).
			Int("quantity", item.Quantity).
			Msg("cantidad no positiva, línea omitida")
		return nil, nil, errSkipLine
	}

	product, err := uc.productRepo.FindByExternalID(ctx, item.ExternalProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil {
		uc.log.Warn().
			Int64("order_id", event.ExternalOrderID).
			Int64("external_product_id", item.ExternalProductID).
			Str("name", item.Name).
			Msg("producto sin enlace local, línea omitida")
		return nil, nil, errSkipLine
	}

	var (
		change *entity.StockChange
		mov    *entity.StockMovement
	)
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		c, err := productRepo.ApplyStockDelta(ctx, product.ID, eff.delta(item.Quantity))
		if err != nil {
			return err
		}
		m := &entity.StockMovement{
			ProductID:      product.ID,
			Type:           eff.movementType,
			Quantity:       eff.movementSign * item.Quantity,
			BeforeActual:   c.BeforeActual,
			AfterActual:    c.AfterActual,
			BeforeReserved: c.BeforeReserved,
			AfterReserved:  c.AfterReserved,
			Reference:      event.Reference(),
			Reason:         eff.reason,
			Notes:          movementNotes(action, event, item),
			UnitPrice:      item.UnitPrice,
			CreatedAt:      uc.now(),
		}
		if err := movementRepo.Append(ctx, m); err != nil {
			return err
		}
		change, mov = c, m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return mov, change, nil
}

// notifyLowStock avisa sin bloquear más de notifyTimeout; nunca propaga errores ni pánicos.
func (uc *ReconcileUseCase) notifyLowStock(ctx context.Context, change *entity.StockChange) {
	if uc.notifier == nil || change == nil || change.AfterActual > change.LowStockAlert {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			uc.log.Error().Interface("panic", r).Str("product_id", change.ProductID).Msg("notificador de stock bajo falló")
		}
	}()

	nctx, cancel := context.WithTimeout(ctx, uc.notifyTimeout)
	defer cancel()
	if err := uc.notifier.NotifyLowStock(nctx, change.ProductID, change.AfterActual, change.LowStockAlert); err != nil {
		uc.log.Error().Err(err).
			Str("product_id", change.ProductID).
			Int("actual_stock", change.AfterActual).
			Int("threshold", change.LowStockAlert).
			Msg("no se pudo notificar stock bajo")
	}
}

func movementNotes(action orderstatus.Action, event entity.OrderEvent, item entity.LineItem) string {
	order := event.OrderNumber
	if order == "" {
		order = fmt.Sprintf("%d", event.ExternalOrderID)
	}
	switch action {
	case orderstatus.ActionReserve:
		return fmt.Sprintf("Reserva por pedido #%s: %s x%d", order, item.Name, item.Quantity)
	case orderstatus.ActionComplete:
		return fmt.Sprintf("Venta completada pedido #%s: %s x%d", order, item.Name, item.Quantity)
	case orderstatus.ActionRelease:
		return fmt.Sprintf("Liberación de reserva pedido #%s (%s): %s x%d", order, event.Status, item.Name, item.Quantity)
	case orderstatus.ActionRefund:
		return fmt.Sprintf("Devolución por reembolso pedido #%s: %s x%d", order, item.Name, item.Quantity)
	}
	return ""
}
