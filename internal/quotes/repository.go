package quotes

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

// Repository provides PostgreSQL backed persistence for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quoteColumns = "id, client, issued_at, valid_to, status, total, invoice_id, created_at, updated_at"

// CreateQuote inserts a quote with its lines in one transaction.
func (r *Repository) CreateQuote(ctx context.Context, quote Quote) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO quotes (id, client, issued_at, valid_to, status, total, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
			quote.ID, quote.Client, quote.IssuedAt, quote.ValidTo, quote.Status, quote.Total)
		if err != nil {
			return err
		}
		for _, line := range quote.Lines {
			_, err := tx.Exec(ctx, `
				INSERT INTO quote_lines (quote_id, description, quantity, unit_price)
				VALUES ($1, $2, $3, $4)`,
				quote.ID, line.Description, line.Quantity, line.UnitPrice)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetQuote retrieves a quote with its lines.
func (r *Repository) GetQuote(ctx context.Context, id string) (*Quote, error) {
	query := fmt.Sprintf("SELECT %s FROM quotes WHERE id = $1", quoteColumns)

	var q Quote
	var invoiceID pgtype.Text
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.Client, &q.IssuedAt, &q.ValidTo, &q.Status, &q.Total, &invoiceID, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if invoiceID.Valid {
		q.InvoiceID = &invoiceID.String
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, quote_id, description, quantity, unit_price
		FROM quote_lines WHERE quote_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line QuoteLine
		if err := rows.Scan(&line.ID, &line.QuoteID, &line.Description, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, line)
	}
	return &q, rows.Err()
}

// ListQuotes returns quotes without lines.
func (r *Repository) ListQuotes(ctx context.Context, filter ListFilter) ([]Quote, error) {
	query := fmt.Sprintf("SELECT %s FROM quotes WHERE 1=1", quoteColumns)
	args := []any{}
	argNum := 1

	if filter.Client != "" {
		query += fmt.Sprintf(" AND client = $%d", argNum)
		args = append(args, filter.Client)
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

	var out []Quote
	for rows.Next() {
		var q Quote
		var invoiceID pgtype.Text
		if err := rows.Scan(&q.ID, &q.Client, &q.IssuedAt, &q.ValidTo, &q.Status, &q.Total, &invoiceID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		if invoiceID.Valid {
			q.InvoiceID = &invoiceID.String
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// UpdateStatus sets the quote status and, when present, the invoice it
// became.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status QuoteStatus, invoiceID *string) error {
	var inv pgtype.Text
	if invoiceID != nil {
		inv = pgtype.Text{String: *invoiceID, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE quotes SET status = $2, invoice_id = $3, updated_at = NOW() WHERE id = $1`,
		id, string(status), inv)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
