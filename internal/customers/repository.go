package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for customers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = "id, name, cuit, email, phone, address, notes, created_at, updated_at"

// CreateCustomer inserts a new customer and returns it with the
// assigned ID.
func (r *Repository) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	const query = `
		INSERT INTO customers (name, cuit, email, phone, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + customerColumns

	var c Customer
	err := r.pool.QueryRow(ctx, query,
		input.Name, input.CUIT, input.Email, input.Phone, input.Address, input.Notes,
	).Scan(&c.ID, &c.Name, &c.CUIT, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomer retrieves a customer by ID.
func (r *Repository) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE id = $1", customerColumns)

	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.CUIT, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns customers ordered by name, optionally filtered
// by a name substring.
func (r *Repository) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers", customerColumns)
	args := []any{}
	if search != "" {
		query += " WHERE name ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CUIT, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCustomer overwrites customer fields.
func (r *Repository) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET name = $2, cuit = $3, email = $4, phone = $5, address = $6, notes = $7, updated_at = NOW()
		WHERE id = $1`,
		id, input.Name, input.CUIT, input.Email, input.Phone, input.Address, input.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteCustomer removes a customer.
func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
