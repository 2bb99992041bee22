package repository

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
)

// OrderStateRepository guarda el último estado conocido de cada pedido upstream.
type OrderStateRepository interface {
	// Get devuelve nil, nil si el pedido nunca se vio.
	Get(ctx context.Context, externalOrderID int64) (*entity.OrderState, error)
	// CompareAndSwap guarda state.Status solo si el estado persistido sigue siendo expected
	// ("" = el pedido no existe aún). Devuelve false si otra entrega ganó la carrera.
	CompareAndSwap(ctx context.Context, expected string, state *entity.OrderState) (bool, error)
}
