// Package notify contiene notificadores que no dependen de una cola.
package notify

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/application/ports"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

var _ ports.LowStockNotifier = (*LogNotifier)(nil)

// LogNotifier registra el aviso de stock bajo en el log. Se usa cuando no hay Redis.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.Named("low_stock")}
}

func (n *LogNotifier) NotifyLowStock(ctx context.Context, productID string, currentActualStock, threshold int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Warn().
		Str("product_id", productID).
		Int("actual_stock", currentActualStock).
		Int("threshold", threshold).
		Msg("stock bajo")
	return nil
}
