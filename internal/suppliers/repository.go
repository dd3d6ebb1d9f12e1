package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for suppliers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const supplierColumns = "id, name, cuit, email, phone, payment_terms, created_at, updated_at"

// CreateSupplier inserts a new supplier and returns it with the
// assigned ID.
func (r *Repository) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	const query = `
		INSERT INTO suppliers (name, cuit, email, phone, payment_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + supplierColumns

	var sup Supplier
	err := r.pool.QueryRow(ctx, query,
		input.Name, input.CUIT, input.Email, input.Phone, input.PaymentTerms,
	).Scan(&sup.ID, &sup.Name, &sup.CUIT, &sup.Email, &sup.Phone, &sup.PaymentTerms, &sup.CreatedAt, &sup.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// GetSupplier retrieves a supplier by ID.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	query := fmt.Sprintf("SELECT %s FROM suppliers WHERE id = $1", supplierColumns)

	var sup Supplier
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sup.ID, &sup.Name, &sup.CUIT, &sup.Email, &sup.Phone, &sup.PaymentTerms, &sup.CreatedAt, &sup.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// ListSuppliers returns all suppliers ordered by name.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	query := fmt.Sprintf("SELECT %s FROM suppliers ORDER BY name", supplierColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.CUIT, &sup.Email, &sup.Phone, &sup.PaymentTerms, &sup.CreatedAt, &sup.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

// UpdateSupplier overwrites supplier fields.
func (r *Repository) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE suppliers SET name = $2, cuit = $3, email = $4, phone = $5, payment_terms = $6, updated_at = NOW()
		WHERE id = $1`,
		id, input.Name, input.CUIT, input.Email, input.Phone, input.PaymentTerms)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteSupplier removes a supplier.
func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
