package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, external_id, sku, name, actual_stock, reserved_stock, low_stock_alert, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.ExternalID, &p.SKU, &p.Name, &p.ActualStock, &p.ReservedStock,
		&p.LowStockAlert, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// FindByExternalID obtiene un producto por su id upstream.
func (r *ProductRepo) FindByExternalID(ctx context.Context, externalID int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE external_id = $1`, externalID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by external id: %w", err)
	}
	return p, nil
}

// ApplyStockDelta bloquea la fila, aplica el delta con piso en 0 y devuelve los valores
// antes y después en una sola sentencia.
func (r *ProductRepo) ApplyStockDelta(ctx context.Context, productID string, delta entity.StockDelta) (*entity.StockChange, error) {
	query := `
		WITH prev AS (
			SELECT id, actual_stock, reserved_stock
			FROM products WHERE id = $1
			FOR UPDATE
		)
		UPDATE products p
		SET actual_stock   = GREATEST(p.actual_stock + $2, 0),
		    reserved_stock = GREATEST(p.reserved_stock + $3, 0),
		    updated_at     = now()
		FROM prev
		WHERE p.id = prev.id
		RETURNING p.id, prev.actual_stock, p.actual_stock, prev.reserved_stock, p.reserved_stock, p.low_stock_alert`
	var c entity.StockChange
	err := r.q.QueryRow(ctx, query, productID, delta.Actual, delta.Reserved).Scan(
		&c.ProductID, &c.BeforeActual, &c.AfterActual, &c.BeforeReserved, &c.AfterReserved, &c.LowStockAlert,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("apply stock delta: %w", err)
	}
	return &c, nil
}

// UpsertFromCatalog inserta o refresca por external_id. El stock solo se escribe al insertar.
func (r *ProductRepo) UpsertFromCatalog(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	id := product.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	query := `
		INSERT INTO products (id, external_id, sku, name, actual_stock, reserved_stock, low_stock_alert, created_at, updated_at)
		VALUES ($1, $2, $3, $4, GREATEST($5, 0), GREATEST($6, 0), $7, $8, $8)
		ON CONFLICT (external_id) DO UPDATE
		SET sku = EXCLUDED.sku,
		    name = EXCLUDED.name,
		    low_stock_alert = EXCLUDED.low_stock_alert,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query,
		id, product.ExternalID, product.SKU, product.Name,
		product.ActualStock, product.ReservedStock, product.LowStockAlert, now,
	))
	if err != nil {
		return nil, wrapWriteError("upsert product", err)
	}
	return p, nil
}

// List lista productos por external_id.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY external_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

// ListLowStock productos con actual_stock <= low_stock_alert.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE actual_stock <= low_stock_alert ORDER BY external_id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
