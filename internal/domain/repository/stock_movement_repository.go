package repository

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
)

// StockMovementRepository puerto del log de movimientos (append-only).
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos en orden cronológico ascendente.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
}
