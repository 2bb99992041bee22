package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
)

// InventoryHandler consultas de consistencia del libro y reposición.
type InventoryHandler struct {
	audit         *inventory.LedgerAuditUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(audit *inventory.LedgerAuditUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{audit: audit, replenishment: replenishment}
}

// LedgerAudit godoc
// @Summary      Auditar la cadena de movimientos contra el stock actual
// @Tags         inventory
// @Produce      json
// @Param        only_inconsistent  query  bool  false  "Devolver solo productos inconsistentes"
// @Success      200  {object}  dto.LedgerAuditResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/ledger/audit [get]
func (h *InventoryHandler) LedgerAudit(c *fiber.Ctx) error {
	results, err := h.audit.Run(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	onlyInconsistent := c.QueryBool("only_inconsistent", false)

	out := dto.LedgerAuditResponse{Audited: len(results), Products: make([]dto.ProductAuditDTO, 0, len(results))}
	for _, r := range results {
		consistent := r.Consistent()
		if !consistent {
			out.Inconsistent++
		}
		if onlyInconsistent && consistent {
			continue
		}
		item := dto.ProductAuditDTO{
			ProductID:   r.Product.ID,
			ExternalID:  r.Product.ExternalID,
			ActualStock: r.Product.ActualStock,
			LedgerStock: r.LedgerStock,
			Movements:   r.Movements,
			Consistent:  consistent,
		}
		for _, b := range r.Breaks {
			item.Breaks = append(item.Breaks, dto.ChainBreakDTO{
				MovementID:     b.MovementID,
				ExpectedBefore: b.ExpectedBefore,
				ActualBefore:   b.ActualBefore,
			})
		}
		out.Products = append(out.Products, item)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición de productos con stock bajo
// @Description  Ordenada por ingresos de la ventana, luego unidades vendidas y déficit.
// @Tags         inventory
// @Produce      json
// @Param        days  query  int  false  "Ventana de ventas en días (default 90)"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/products/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	if days < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe ser positivo"})
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:     s.Product.ID,
			ExternalID:    s.Product.ExternalID,
			SKU:           s.Product.SKU,
			Name:          s.Product.Name,
			ActualStock:   s.Product.ActualStock,
			ReservedStock: s.Product.ReservedStock,
			LowStockAlert: s.Product.LowStockAlert,
			IdealStock:    s.IdealStock,
			SuggestedQty:  s.SuggestedQty,
			UnitsSold:     s.UnitsSold,
			Revenue:       s.Revenue,
			Priority:      s.Priority,
		})
	}
	return c.JSON(out)
}
