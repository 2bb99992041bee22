package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-reconciler/internal/application/ports"
)

var _ ports.LowStockNotifier = (*Client)(nil)

// lowStockRetention ventana en la que los avisos repetidos del mismo producto se colapsan:
// la tarea (pendiente, activa o completada) conserva su ID durante ese tiempo.
const lowStockRetention = 10 * time.Minute

// LowStockTaskID ID de tarea por producto; asynq rechaza un segundo encolado con el mismo ID.
func LowStockTaskID(productID string) string {
	return "low_stock:" + productID
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client encola tareas; implementa ports.LowStockNotifier.
type Client struct {
	client enqueuer
	now    func() time.Time
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts), now: time.Now}
}

// NotifyLowStock encola el aviso. Un aviso ya encolado para el mismo producto no es error.
func (c *Client) NotifyLowStock(ctx context.Context, productID string, currentActualStock, threshold int) error {
	task, err := NewLowStockTask(LowStockPayload{
		ProductID:   productID,
		ActualStock: currentActualStock,
		Threshold:   threshold,
		DetectedAt:  c.now(),
	})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.TaskID(LowStockTaskID(productID)),
		asynq.Retention(lowStockRetention),
		asynq.MaxRetry(5),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue low stock: %w", err)
	}
	return nil
}

// Close libera el cliente.
func (c *Client) Close() error {
	return c.client.Close()
}
