package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
	"github.com/jhoicas/stock-reconciler/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP del libro de stock.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// SyncCatalog godoc
// @Summary      Crear o refrescar productos desde el catálogo upstream
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CatalogSyncRequest  true  "Productos del catálogo"
// @Success      200   {array}   dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/catalog [post]
func (h *ProductHandler) SyncCatalog(c *fiber.Ctx) error {
	var in dto.CatalogSyncRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.uc.SyncCatalog(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 20)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Productos en o bajo su umbral de stock
// @Tags         products
// @Produce      json
// @Param        limit  query  int  false  "Límite (default 50)"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) ListLowStock(c *fiber.Ctx) error {
	out, err := h.uc.ListLowStock(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         products
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.MovementsByProduct(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// OrderMovements godoc
// @Summary      Movimientos generados por un pedido
// @Tags         orders
// @Produce      json
// @Param        number  path  string  true  "Número de pedido"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/orders/{number}/movements [get]
func (h *ProductHandler) OrderMovements(c *fiber.Ctx) error {
	out, err := h.uc.MovementsByOrder(c.UserContext(), c.Params("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
