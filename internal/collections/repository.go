package collections

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for collections.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) GetInvoiceForUpdate(ctx context.Context, id string) (*invoicing.Invoice, error) {
	const query = `
		SELECT id, client, total, issued_at, due_at, status, created_at, updated_at
		FROM invoices WHERE id = $1 FOR UPDATE`

	var inv invoicing.Invoice
	err := t.tx.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Client, &inv.Total, &inv.IssuedAt, &inv.DueAt, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (t *txRepo) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]Payment, error) {
	return scanPayments(t.tx.Query(ctx, paymentSelect+" WHERE invoice_id = $1 ORDER BY date, created_at", invoiceID))
}

func (t *txRepo) InsertPayment(ctx context.Context, p Payment) error {
	const query = `
		INSERT INTO payments (id, invoice_id, client, amount, method, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	_, err := t.tx.Exec(ctx, query, p.ID, p.InvoiceID, p.Client, p.Amount, string(p.Method), p.Date)
	return err
}

func (t *txRepo) UpdateInvoiceStatus(ctx context.Context, id string, status invoicing.Status) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const paymentSelect = "SELECT id, invoice_id, client, amount, method, date, created_at FROM payments"

// GetInvoice retrieves one invoice without locking.
func (r *Repository) GetInvoice(ctx context.Context, id string) (*invoicing.Invoice, error) {
	const query = `
		SELECT id, client, total, issued_at, due_at, status, created_at, updated_at
		FROM invoices WHERE id = $1`

	var inv invoicing.Invoice
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Client, &inv.Total, &inv.IssuedAt, &inv.DueAt, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvoices returns the full invoice snapshot for reconciliation.
func (r *Repository) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client, total, issued_at, due_at, status, created_at, updated_at
		FROM invoices ORDER BY issued_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []invoicing.Invoice
	for rows.Next() {
		var inv invoicing.Invoice
		if err := rows.Scan(&inv.ID, &inv.Client, &inv.Total, &inv.IssuedAt, &inv.DueAt, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// ListPayments returns the full payment ledger snapshot.
func (r *Repository) ListPayments(ctx context.Context) ([]Payment, error) {
	return scanPayments(r.pool.Query(ctx, paymentSelect+" ORDER BY date, created_at"))
}

// ListPaymentsByInvoice returns the ledger entries of one invoice.
func (r *Repository) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]Payment, error) {
	return scanPayments(r.pool.Query(ctx, paymentSelect+" WHERE invoice_id = $1 ORDER BY date, created_at", invoiceID))
}

// InsertReceipt appends a receipt record.
func (r *Repository) InsertReceipt(ctx context.Context, rc Receipt) error {
	const query = `
		INSERT INTO receipts (number, fecha, cliente, factura_id, metodo, monto, saldo, manual, nota, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`

	var facturaID pgtype.Text
	if rc.FacturaID != nil {
		facturaID = pgtype.Text{String: *rc.FacturaID, Valid: true}
	}
	var saldo pgtype.Float8
	if rc.Saldo != nil {
		saldo = pgtype.Float8{Float64: *rc.Saldo, Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		rc.Number, rc.Fecha, rc.Cliente, facturaID, string(rc.Metodo), rc.Monto, saldo, rc.Manual, rc.Nota)
	return err
}

// ListReceipts returns receipts matching the filter, newest first.
func (r *Repository) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Receipt, error) {
	query := receiptSelect + " WHERE 1=1"
	args := []any{}
	argNum := 1

	if filter.Cliente != "" {
		query += fmt.Sprintf(" AND cliente = $%d", argNum)
		args = append(args, filter.Cliente)
		argNum++
	}
	if filter.Manual != nil {
		query += fmt.Sprintf(" AND manual = $%d", argNum)
		args = append(args, *filter.Manual)
		argNum++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rc)
	}
	return receipts, rows.Err()
}

// GetReceipt retrieves one receipt by number.
func (r *Repository) GetReceipt(ctx context.Context, number string) (*Receipt, error) {
	row := r.pool.QueryRow(ctx, receiptSelect+" WHERE number = $1", number)
	rc, err := scanReceipt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

const receiptSelect = "SELECT number, fecha, cliente, factura_id, metodo, monto, saldo, manual, nota, created_at FROM receipts"

func scanReceipt(row pgx.Row) (Receipt, error) {
	var rc Receipt
	var facturaID pgtype.Text
	var saldo pgtype.Float8
	if err := row.Scan(&rc.Number, &rc.Fecha, &rc.Cliente, &facturaID, &rc.Metodo, &rc.Monto, &saldo, &rc.Manual, &rc.Nota, &rc.CreatedAt); err != nil {
		return Receipt{}, err
	}
	if facturaID.Valid {
		id := facturaID.String
		rc.FacturaID = &id
	}
	if saldo.Valid {
		v := saldo.Float64
		rc.Saldo = &v
	}
	return rc, nil
}

func scanPayments(rows pgx.Rows, err error) ([]Payment, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Client, &p.Amount, &p.Method, &p.Date, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
