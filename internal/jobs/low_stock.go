package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

// LowStockJob persiste los avisos de stock bajo para el back-office.
type LowStockJob struct {
	products      repository.ProductRepository
	notifications repository.NotificationRepository
	log           *logger.Logger
}

// NewLowStockJob construye el job.
func NewLowStockJob(products repository.ProductRepository, notifications repository.NotificationRepository, log *logger.Logger) *LowStockJob {
	if log == nil {
		log = logger.Nop()
	}
	return &LowStockJob{products: products, notifications: notifications, log: log.Named("low_stock_job")}
}

// Handle procesa TaskLowStock. Un payload ilegible no se reintenta.
func (j *LowStockJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode low stock payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ProductID == "" {
		return fmt.Errorf("low stock payload without product: %w", asynq.SkipRetry)
	}

	product, err := j.products.GetByID(ctx, payload.ProductID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		j.log.Warn().Str("product_id", payload.ProductID).Msg("producto eliminado, aviso descartado")
		return nil
	}

	msg := fmt.Sprintf("Stock bajo: %s (SKU %s) tiene %d unidades, umbral %d",
		product.Name, product.SKU, payload.ActualStock, payload.Threshold)
	n := &entity.Notification{
		Type:      entity.NotificationLowStock,
		ProductID: product.ID,
		Message:   msg,
		Payload:   t.Payload(),
	}
	if err := j.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	j.log.Info().Str("product_id", product.ID).Int("actual_stock", payload.ActualStock).Msg("aviso de stock bajo registrado")
	return nil
}
