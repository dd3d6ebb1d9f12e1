package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries the dashboard needs.
type Repository interface {
	ReceivableTotals(ctx context.Context) (total, pending float64, open, overdue int64, err error)
	CollectedBetween(ctx context.Context, from, to time.Time) (float64, error)
	TopDebtors(ctx context.Context, limit int) ([]Debtor, error)
	OpenInvoices(ctx context.Context) ([]OpenInvoice, error)
}

// PGRepository implements Repository against postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ReceivableTotals aggregates the whole ledger in one scan. Pending is
// computed against the payments actually applied to each invoice.
func (r *PGRepository) ReceivableTotals(ctx context.Context) (total, pending float64, open, overdue int64, err error) {
	const query = `
		SELECT
			COALESCE(SUM(i.total), 0),
			COALESCE(SUM(GREATEST(i.total - p.paid, 0)), 0),
			COUNT(*) FILTER (WHERE i.status IN ('pendiente', 'parcial', 'vencido')),
			COUNT(*) FILTER (WHERE i.status = 'vencido')
		FROM invoices i
		LEFT JOIN LATERAL (
			SELECT COALESCE(SUM(amount), 0) AS paid FROM payments WHERE invoice_id = i.id
		) p ON TRUE`
	err = r.pool.QueryRow(ctx, query).Scan(&total, &pending, &open, &overdue)
	return
}

// CollectedBetween sums payments registered in a time window.
func (r *PGRepository) CollectedBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var collected float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE date >= $1 AND date < $2`,
		from, to).Scan(&collected)
	return collected, err
}

// TopDebtors ranks clients by outstanding balance.
func (r *PGRepository) TopDebtors(ctx context.Context, limit int) ([]Debtor, error) {
	const query = `
		SELECT i.client, SUM(GREATEST(i.total - p.paid, 0)) AS pending
		FROM invoices i
		LEFT JOIN LATERAL (
			SELECT COALESCE(SUM(amount), 0) AS paid FROM payments WHERE invoice_id = i.id
		) p ON TRUE
		GROUP BY i.client
		HAVING SUM(GREATEST(i.total - p.paid, 0)) > 0
		ORDER BY pending DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Debtor
	for rows.Next() {
		var d Debtor
		if err := rows.Scan(&d.Client, &d.Pendiente); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// OpenInvoices returns every invoice that still owes money, with its
// remaining balance, for the aging report.
func (r *PGRepository) OpenInvoices(ctx context.Context) ([]OpenInvoice, error) {
	const query = `
		SELECT i.client, GREATEST(i.total - p.paid, 0) AS pending, i.due_at
		FROM invoices i
		LEFT JOIN LATERAL (
			SELECT COALESCE(SUM(amount), 0) AS paid FROM payments WHERE invoice_id = i.id
		) p ON TRUE
		WHERE i.total - p.paid > 0`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OpenInvoice
	for rows.Next() {
		var inv OpenInvoice
		if err := rows.Scan(&inv.Client, &inv.Pending, &inv.DueAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
