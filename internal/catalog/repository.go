package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for products.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = "id, sku, name, supplier_id, purchase_price, margin, final_price, stock, created_at, updated_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.SupplierID, &p.PurchasePrice, &p.Margin, &p.FinalPrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct inserts a new product and returns it with the
// assigned ID.
func (r *Repository) CreateProduct(ctx context.Context, input ProductInput, finalPrice float64) (*Product, error) {
	const query = `
		INSERT INTO products (sku, name, supplier_id, purchase_price, margin, final_price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + productColumns

	return scanProduct(r.pool.QueryRow(ctx, query,
		input.SKU, input.Name, input.SupplierID, input.PurchasePrice, input.Margin, finalPrice, input.Stock))
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

// ListProducts returns products with optional filtering.
func (r *Repository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE 1=1", productColumns)
	args := []any{}
	argNum := 1

	if filter.SupplierID > 0 {
		query += fmt.Sprintf(" AND supplier_id = $%d", argNum)
		args = append(args, filter.SupplierID)
		argNum++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	query += " ORDER BY name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.SupplierID, &p.PurchasePrice, &p.Margin, &p.FinalPrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProduct overwrites product fields.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, input ProductInput, finalPrice float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET sku = $2, name = $3, supplier_id = $4, purchase_price = $5, margin = $6, final_price = $7, stock = $8, updated_at = NOW()
		WHERE id = $1`,
		id, input.SKU, input.Name, input.SupplierID, input.PurchasePrice, input.Margin, finalPrice, input.Stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateSupplierMargin reprices every product of a supplier with one
// statement, keeping the rounding in SQL so the update stays atomic.
func (r *Repository) UpdateSupplierMargin(ctx context.Context, supplierID int64, margin float64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET margin = $2,
		    final_price = ROUND((purchase_price * (1 + $2 / 100.0))::numeric, 2),
		    updated_at = NOW()
		WHERE supplier_id = $1`, supplierID, margin)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PatchPrice sets the list price and stock of one product.
func (r *Repository) PatchPrice(ctx context.Context, id int64, finalPrice float64, stock int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET final_price = $2, stock = $3, updated_at = NOW() WHERE id = $1`,
		id, finalPrice, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
