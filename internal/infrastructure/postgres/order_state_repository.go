package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

var _ repository.OrderStateRepository = (*OrderStateRepo)(nil)

// OrderStateRepo último estado por pedido sobre PostgreSQL.
type OrderStateRepo struct {
	q Querier
}

// NewOrderStateRepository construye el adaptador.
func NewOrderStateRepository(q Querier) *OrderStateRepo {
	return &OrderStateRepo{q: q}
}

// Get devuelve nil, nil si el pedido no existe.
func (r *OrderStateRepo) Get(ctx context.Context, externalOrderID int64) (*entity.OrderState, error) {
	var s entity.OrderState
	err := r.q.QueryRow(ctx, `
		SELECT external_order_id, order_number, status, updated_at
		FROM order_states WHERE external_order_id = $1`, externalOrderID,
	).Scan(&s.ExternalOrderID, &s.OrderNumber, &s.Status, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order state: %w", err)
	}
	return &s, nil
}

// CompareAndSwap inserta cuando expected es "" y, si no, actualiza solo si el estado sigue siendo expected.
func (r *OrderStateRepo) CompareAndSwap(ctx context.Context, expected string, state *entity.OrderState) (bool, error) {
	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	var query string
	if expected == "" {
		query = `
			INSERT INTO order_states (external_order_id, order_number, status, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (external_order_id) DO NOTHING`
	} else {
		query = `
			UPDATE order_states
			SET order_number = COALESCE(NULLIF($2, ''), order_number), status = $3, updated_at = $4
			WHERE external_order_id = $1 AND status = $5`
	}
	args := []any{state.ExternalOrderID, state.OrderNumber, state.Status, updatedAt}
	if expected != "" {
		args = append(args, expected)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("compare and swap order state: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
