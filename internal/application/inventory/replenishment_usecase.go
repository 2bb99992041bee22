package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/orderstatus"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

const (
	defaultSalesWindow    = 90 * 24 * time.Hour
	replenishmentMaxItems = 200
)

// ReplenishmentSuggestion sugerencia de reposición de un producto en o bajo su umbral.
type ReplenishmentSuggestion struct {
	Product      *entity.Product
	IdealStock   int // ceil(umbral * 1.5) + reservado
	SuggestedQty int // IdealStock - ActualStock, mínimo 0
	UnitsSold    int // ventas completadas menos reembolsos en la ventana
	Revenue      decimal.Decimal
	Priority     int // 1 = más urgente
}

// ReplenishmentUseCase genera la lista de reposición a partir del libro y de las ventas
// registradas en el log de movimientos.
type ReplenishmentUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	now          func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, movementRepo: movementRepo, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos en o bajo su umbral con la cantidad sugerida,
// priorizados por ingresos recientes, luego volumen vendido y finalmente déficit.
// window <= 0 usa 90 días.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, window time.Duration) ([]ReplenishmentSuggestion, error) {
	if window <= 0 {
		window = defaultSalesWindow
	}
	since := uc.now().Add(-window)

	products, err := uc.productRepo.ListLowStock(ctx, replenishmentMaxItems)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	onePointFive := decimal.NewFromFloat(1.5)
	suggestions := make([]ReplenishmentSuggestion, 0, len(products))
	for _, p := range products {
		movements, err := uc.movementRepo.ListByProduct(ctx, p.ID, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("list movements %s: %w", p.ID, err)
		}
		units, revenue := salesSince(movements, since)

		ideal := int(decimal.NewFromInt(int64(p.LowStockAlert)).Mul(onePointFive).Ceil().IntPart()) + p.ReservedStock
		suggestions = append(suggestions, ReplenishmentSuggestion{
			Product:      p,
			IdealStock:   ideal,
			SuggestedQty: max(ideal-p.ActualStock, 0),
			UnitsSold:    units,
			Revenue:      revenue,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		if a.UnitsSold != b.UnitsSold {
			return a.UnitsSold > b.UnitsSold
		}
		return a.SuggestedQty > b.SuggestedQty
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// salesSince suma ventas completadas y resta reembolsos desde since.
func salesSince(movements []*entity.StockMovement, since time.Time) (int, decimal.Decimal) {
	units := 0
	revenue := decimal.Zero
	for _, m := range movements {
		if m.CreatedAt.Before(since) {
			continue
		}
		var qty int
		switch m.Reason {
		case effects[orderstatus.ActionComplete].reason:
			qty = m.BeforeActual - m.AfterActual
		case effects[orderstatus.ActionRefund].reason:
			qty = -m.ActualDelta()
		default:
			continue
		}
		units += qty
		revenue = revenue.Add(m.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
	}
	return units, revenue
}
