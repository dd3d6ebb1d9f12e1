package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evita-erp/evita-erp/internal/platform/db"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for purchasing.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateOrder inserts the order and its lines in one transaction. The
// partial unique index on non-empty quote_ref values raises
// 23505 on a reference collision.
func (r *Repository) CreateOrder(ctx context.Context, order Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `
			INSERT INTO purchase_orders (id, supplier_id, quote_ref, issued_at, due_at, status, total, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`
		if _, err := tx.Exec(ctx, insertOrder,
			order.ID, order.SupplierID, order.QuoteRef, order.IssuedAt, order.DueAt, string(order.Status), order.Total); err != nil {
			return err
		}

		const insertLine = `
			INSERT INTO purchase_order_lines (order_id, product_id, description, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`
		for _, line := range order.Lines {
			var productID pgtype.Int8
			if line.ProductID > 0 {
				productID = pgtype.Int8{Int64: line.ProductID, Valid: true}
			}
			if _, err := tx.Exec(ctx, insertLine, order.ID, productID, line.Description, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		return nil
	})
}

const orderColumns = "id, supplier_id, quote_ref, issued_at, due_at, status, total, created_at, updated_at"

// GetOrder retrieves one order with its lines.
func (r *Repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	query := fmt.Sprintf("SELECT %s FROM purchase_orders WHERE id = $1", orderColumns)

	var order Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.SupplierID, &order.QuoteRef, &order.IssuedAt, &order.DueAt,
		&order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id, 0), description, quantity, unit_price
		FROM purchase_order_lines WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Description, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}
	return &order, rows.Err()
}

// ListOrders returns orders matching the filter, without lines.
func (r *Repository) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	query := fmt.Sprintf("SELECT %s FROM purchase_orders WHERE 1=1", orderColumns)
	args := []any{}
	argNum := 1

	if filter.SupplierID > 0 {
		query += fmt.Sprintf(" AND supplier_id = $%d", argNum)
		args = append(args, filter.SupplierID)
		argNum++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filter.Status))
		argNum++
	}
	query += " ORDER BY issued_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.SupplierID, &order.QuoteRef, &order.IssuedAt, &order.DueAt,
			&order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// QuoteRefExists reports whether the reference is already booked.
func (r *Repository) QuoteRefExists(ctx context.Context, quoteRef string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE quote_ref = $1 AND quote_ref <> '')`, quoteRef).Scan(&exists)
	return exists, err
}

// UpdateStatus sets the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE purchase_orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
