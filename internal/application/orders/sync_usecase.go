// Package orders recibe eventos de pedido ya verificados y los convierte en reconciliaciones
// de stock, garantizando un procesamiento por pedido a la vez.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
	"github.com/jhoicas/stock-reconciler/internal/application/ports"
	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/orderstatus"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

// Reconciler ejecuta la reconciliación de una transición.
type Reconciler interface {
	Reconcile(ctx context.Context, event entity.OrderEvent, previousStatus string) inventory.ReconcileResult
}

// SyncResult resultado del ingreso de un evento.
type SyncResult struct {
	OrderID        int64
	PreviousStatus string
	Status         string
	Duplicate      bool
	Actions        []orderstatus.Action
	Results        []inventory.ApplyResult
}

// SyncUseCase contrato de ingreso: deduplica entregas, serializa por pedido, resuelve el
// estado anterior y persiste el nuevo antes de reconciliar.
type SyncUseCase struct {
	orderRepo  repository.OrderStateRepository
	reconciler Reconciler
	locker     ports.OrderLocker
	deduper    ports.DeliveryDeduper
	log        *logger.Logger
	now        func() time.Time
}

// NewSyncUseCase construye el caso de uso. locker y deduper pueden ser nil (modo memoria).
func NewSyncUseCase(
	orderRepo repository.OrderStateRepository,
	reconciler Reconciler,
	locker ports.OrderLocker,
	deduper ports.DeliveryDeduper,
	log *logger.Logger,
) *SyncUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SyncUseCase{
		orderRepo:  orderRepo,
		reconciler: reconciler,
		locker:     locker,
		deduper:    deduper,
		log:        log.Named("order_sync"),
		now:        time.Now,
	}
}

// HandleOrderEvent procesa un evento de pedido. deliveryID vacío desactiva la deduplicación.
// Devuelve domain.ErrInvalidInput si el evento está incompleto y domain.ErrConflict si otra
// entrega del mismo pedido está en curso o ganó la carrera por el estado.
func (uc *SyncUseCase) HandleOrderEvent(ctx context.Context, event entity.OrderEvent, deliveryID string) (*SyncResult, error) {
	if event.ExternalOrderID <= 0 || orderstatus.Normalize(event.Status) == "" {
		return nil, domain.ErrInvalidInput
	}
	log := uc.log.ForOrder(event.ExternalOrderID)

	if uc.deduper != nil && deliveryID != "" {
		first, err := uc.deduper.MarkDelivered(ctx, deliveryID)
		if err != nil {
			return nil, fmt.Errorf("mark delivery: %w", err)
		}
		if !first {
			log.Info().Str("delivery_id", deliveryID).Msg("entrega repetida, se ignora")
			return &SyncResult{OrderID: event.ExternalOrderID, Status: event.Status, Duplicate: true}, nil
		}
	}

	result, err := uc.process(ctx, event)
	if err != nil && uc.deduper != nil && deliveryID != "" {
		// El upstream reintentará con el mismo id de entrega.
		if ferr := uc.deduper.Forget(context.WithoutCancel(ctx), deliveryID); ferr != nil {
			log.Error().Err(ferr).Str("delivery_id", deliveryID).Msg("no se pudo liberar la marca de entrega")
		}
	}
	return result, err
}

func (uc *SyncUseCase) process(ctx context.Context, event entity.OrderEvent) (*SyncResult, error) {
	if uc.locker != nil {
		unlock, err := uc.locker.Lock(ctx, event.ExternalOrderID)
		if err != nil {
			if errors.Is(err, domain.ErrLockBusy) {
				return nil, fmt.Errorf("%w: %w", domain.ErrConflict, err)
			}
			return nil, fmt.Errorf("lock order: %w", err)
		}
		defer unlock()
	}

	persisted, err := uc.orderRepo.Get(ctx, event.ExternalOrderID)
	if err != nil {
		return nil, fmt.Errorf("get order state: %w", err)
	}
	stored := ""
	if persisted != nil {
		stored = persisted.Status
	}
	previous := stored
	if event.PreviousStatus != nil {
		previous = *event.PreviousStatus
	}

	swapped, err := uc.orderRepo.CompareAndSwap(ctx, stored, &entity.OrderState{
		ExternalOrderID: event.ExternalOrderID,
		OrderNumber:     event.OrderNumber,
		Status:          event.Status,
		UpdatedAt:       uc.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("save order state: %w", err)
	}
	if !swapped {
		return nil, fmt.Errorf("%w: el estado del pedido %d cambió durante el procesamiento", domain.ErrConflict, event.ExternalOrderID)
	}

	rec := uc.reconciler.Reconcile(ctx, event, previous)
	uc.log.Info().
		Int64("order_id", event.ExternalOrderID).
		Str("from", previous).Str("to", event.Status).
		Interface("actions", rec.Resolution.Actions).
		Msg("pedido reconciliado")

	return &SyncResult{
		OrderID:        event.ExternalOrderID,
		PreviousStatus: previous,
		Status:         event.Status,
		Actions:        rec.Resolution.Actions,
		Results:        rec.Results,
	}, nil
}
