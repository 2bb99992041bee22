package inventory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

const (
	auditPageSize       = 200
	defaultAuditWorkers = 4
)

// ChainBreak movimiento cuyo BeforeActual no coincide con el AfterActual anterior.
type ChainBreak struct {
	MovementID     string
	ExpectedBefore int
	ActualBefore   int
}

// ProductAudit resultado de auditar un producto.
type ProductAudit struct {
	Product     *entity.Product
	Movements   int
	LedgerStock int // AfterActual del último movimiento; ActualStock si no hay movimientos
	Breaks      []ChainBreak
}

// Consistent la cadena no tiene saltos y termina en el stock actual del producto.
func (a ProductAudit) Consistent() bool {
	return len(a.Breaks) == 0 && a.LedgerStock == a.Product.ActualStock
}

// LedgerAuditUseCase verifica que el log de movimientos explica el stock actual.
// Los productos se auditan en paralelo con un límite de workers.
type LedgerAuditUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	workers      int
	log          *logger.Logger
}

// NewLedgerAuditUseCase construye el caso de uso. workers <= 0 usa el valor por defecto.
func NewLedgerAuditUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	workers int,
	log *logger.Logger,
) *LedgerAuditUseCase {
	if workers <= 0 {
		workers = defaultAuditWorkers
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerAuditUseCase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		workers:      workers,
		log:          log.Named("ledger_audit"),
	}
}

// Run audita todos los productos. El orden del resultado sigue el orden del listado.
func (uc *LedgerAuditUseCase) Run(ctx context.Context) ([]ProductAudit, error) {
	var products []*entity.Product
	for offset := 0; ; offset += auditPageSize {
		page, err := uc.productRepo.List(ctx, auditPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, page...)
		if len(page) < auditPageSize {
			break
		}
	}

	results := make([]ProductAudit, len(products))
	var mu sync.Mutex
	inconsistent := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			audit, err := uc.auditProduct(gctx, p)
			if err != nil {
				return err
			}
			results[i] = audit
			if !audit.Consistent() {
				mu.Lock()
				inconsistent++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.log.Info().Int("audited", len(results)).Int("inconsistent", inconsistent).Msg("auditoría del libro completada")
	return results, nil
}

func (uc *LedgerAuditUseCase) auditProduct(ctx context.Context, p *entity.Product) (ProductAudit, error) {
	movements, err := uc.movementRepo.ListByProduct(ctx, p.ID, 0, 0)
	if err != nil {
		return ProductAudit{}, fmt.Errorf("list movements %s: %w", p.ID, err)
	}
	audit := ProductAudit{Product: p, Movements: len(movements), LedgerStock: p.ActualStock}
	for i, m := range movements {
		if i > 0 && m.BeforeActual != movements[i-1].AfterActual {
			audit.Breaks = append(audit.Breaks, ChainBreak{
				MovementID:     m.ID,
				ExpectedBefore: movements[i-1].AfterActual,
				ActualBefore:   m.BeforeActual,
			})
		}
		audit.LedgerStock = m.AfterActual
	}
	if !audit.Consistent() {
		uc.log.Warn().
			Str("product_id", p.ID).
			Int("actual_stock", p.ActualStock).
			Int("ledger_stock", audit.LedgerStock).
			Int("breaks", len(audit.Breaks)).
			Msg("libro inconsistente")
	}
	return audit, nil
}
