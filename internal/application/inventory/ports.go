package inventory

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la actualización del libro y el movimiento se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}
