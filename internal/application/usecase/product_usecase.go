package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

// ProductUseCase casos de uso de lectura y alta desde catálogo. El stock no se edita aquí:
// solo cambia vía movimientos de reconciliación.
type ProductUseCase struct {
	repo         repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, movementRepo repository.StockMovementRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, movementRepo: movementRepo}
}

// SyncCatalog crea o refresca las entradas del libro a partir del catálogo upstream.
// El stock inicial solo se aplica a productos nuevos.
func (uc *ProductUseCase) SyncCatalog(ctx context.Context, in dto.CatalogSyncRequest) ([]dto.ProductResponse, error) {
	seen := make(map[int64]struct{}, len(in.Products))
	for _, p := range in.Products {
		if _, dup := seen[p.ExternalID]; dup {
			return nil, fmt.Errorf("%w: external_id %d repetido", domain.ErrInvalidInput, p.ExternalID)
		}
		seen[p.ExternalID] = struct{}{}
	}

	out := make([]dto.ProductResponse, 0, len(in.Products))
	for _, p := range in.Products {
		saved, err := uc.repo.UpsertFromCatalog(ctx, &entity.Product{
			ExternalID:    p.ExternalID,
			SKU:           strings.TrimSpace(p.SKU),
			Name:          strings.TrimSpace(p.Name),
			ActualStock:   p.InitialStock,
			LowStockAlert: p.LowStockAlert,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert product %d: %w", p.ExternalID, err)
		}
		out = append(out, *toProductResponse(saved))
	}
	return out, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos paginados.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page, len(items)),
	}, nil
}

// ListLowStock productos con stock real en o por debajo de su umbral.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, limit int) ([]dto.ProductResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := uc.repo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// MovementsByProduct historial de movimientos del producto, en orden cronológico.
func (uc *ProductUseCase) MovementsByProduct(ctx context.Context, productID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	page.Normalize()
	list, err := uc.movementRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// MovementsByOrder movimientos generados por un pedido (referencia ORDER-<número>).
func (uc *ProductUseCase) MovementsByOrder(ctx context.Context, orderNumber string) ([]dto.StockMovementResponse, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	event := entity.OrderEvent{OrderNumber: orderNumber}
	list, err := uc.movementRepo.ListByReference(ctx, event.Reference())
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		ExternalID:    p.ExternalID,
		SKU:           p.SKU,
		Name:          p.Name,
		ActualStock:   p.ActualStock,
		ReservedStock: p.ReservedStock,
		Available:     p.Available(),
		LowStockAlert: p.LowStockAlert,
		LowStock:      p.IsLowStock(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:             m.ID,
			ProductID:      m.ProductID,
			Type:           m.Type,
			Quantity:       m.Quantity,
			BeforeActual:   m.BeforeActual,
			AfterActual:    m.AfterActual,
			BeforeReserved: m.BeforeReserved,
			AfterReserved:  m.AfterReserved,
			Reference:      m.Reference,
			Reason:         m.Reason,
			Notes:          m.Notes,
			UnitPrice:      m.UnitPrice,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out
}
