package collections

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/observability"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// TxRepository exposes the operations available inside the payment
// registration transaction.
type TxRepository interface {
	GetInvoiceForUpdate(ctx context.Context, id string) (*invoicing.Invoice, error)
	ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
	InsertPayment(ctx context.Context, p Payment) error
	UpdateInvoiceStatus(ctx context.Context, id string, status invoicing.Status) error
}

// RepositoryPort defines data access methods for collections.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	GetInvoice(ctx context.Context, id string) (*invoicing.Invoice, error)
	ListInvoices(ctx context.Context) ([]invoicing.Invoice, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
	InsertReceipt(ctx context.Context, rc Receipt) error
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Receipt, error)
	GetReceipt(ctx context.Context, number string) (*Receipt, error)
}

// Service handles collections business logic.
type Service struct {
	repo    RepositoryPort
	seq     shared.SequenceProvider
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, seq shared.SequenceProvider, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, seq: seq, logger: logger, metrics: metrics}
}

// RegisterPayment appends a payment to the ledger inside one
// transaction: the invoice row is locked, the pending balance is
// recomputed from the ledger, the requested amount is capped at that
// balance and the stored invoice status is updated. The receipt is
// written after commit on a best-effort basis; a receipt persistence
// failure is logged and never rolls back the payment.
func (s *Service) RegisterPayment(ctx context.Context, input RegisterPaymentInput) (*PaymentResult, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !input.Method.Valid() {
		return nil, ErrInvalidAmount
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	var result *PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		invoice, err := tx.GetInvoiceForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		payments, err := tx.ListPaymentsByInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}

		pendingBefore := PendingForInvoice(*invoice, payments)
		if pendingBefore <= 0 {
			return ErrNothingOutstanding
		}

		plan := PlanPayment(pendingBefore, input.Amount)
		payment := Payment{
			ID:        uuid.NewString(),
			InvoiceID: invoice.ID,
			Client:    invoice.Client,
			Amount:    plan.UsedAmount,
			Method:    input.Method,
			Date:      input.Date,
		}
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return err
		}
		if err := tx.UpdateInvoiceStatus(ctx, invoice.ID, plan.NewStatus); err != nil {
			return err
		}

		result = &PaymentResult{
			Payment:    payment,
			UsedAmount: plan.UsedAmount,
			Remaining:  plan.Remaining,
			NewStatus:  plan.NewStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CountPayment(string(input.Method))
	result.Receipt = s.issueReceipt(ctx, result)
	return result, nil
}

// issueReceipt writes the ledger-linked receipt for a committed
// payment. Best effort: the payment already exists, so failures only
// cost the reprint capability and are logged, not returned.
func (s *Service) issueReceipt(ctx context.Context, result *PaymentResult) *Receipt {
	number, err := s.seq.Next(ctx)
	if err != nil {
		s.logger.Warn("receipt number issuance failed", slog.Any("error", err))
		number = shared.FallbackSequence("RC", time.Now())
	}

	saldo := result.Remaining
	invoiceID := result.Payment.InvoiceID
	receipt := Receipt{
		Number:    number,
		Fecha:     result.Payment.Date,
		Cliente:   result.Payment.Client,
		FacturaID: &invoiceID,
		Metodo:    result.Payment.Method,
		Monto:     result.UsedAmount,
		Saldo:     &saldo,
		Manual:    false,
	}
	if err := s.repo.InsertReceipt(ctx, receipt); err != nil {
		s.logger.Warn("receipt persistence failed, payment already committed",
			slog.String("numero", receipt.Number),
			slog.String("factura", invoiceID),
			slog.Any("error", err))
	}
	return &receipt
}

// CreateManualReceipt records an informational receipt. It never reads
// or writes the payment ledger, so here the receipt row is the primary
// write and failures do surface.
func (s *Service) CreateManualReceipt(ctx context.Context, input ManualReceiptInput) (*Receipt, error) {
	input.Cliente = strings.TrimSpace(input.Cliente)
	if input.Cliente == "" {
		return nil, shared.ErrValidation
	}
	if input.Monto <= 0 {
		return nil, ErrInvalidAmount
	}
	if !input.Metodo.Valid() {
		return nil, ErrInvalidAmount
	}
	if input.Fecha.IsZero() {
		input.Fecha = time.Now()
	}

	number, err := s.seq.Next(ctx)
	if err != nil {
		return nil, err
	}

	receipt := Receipt{
		Number:  number,
		Fecha:   input.Fecha,
		Cliente: input.Cliente,
		Metodo:  input.Metodo,
		Monto:   input.Monto,
		Manual:  true,
		Nota:    strings.TrimSpace(input.Nota),
	}
	if ref := strings.TrimSpace(input.FacturaID); ref != "" {
		receipt.FacturaID = &ref
	}
	if err := s.repo.InsertReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SuggestPartial returns the pre-fill default for a partial payment.
func (s *Service) SuggestPartial(ctx context.Context, invoiceID string, proposed float64) (float64, error) {
	invoice, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	payments, err := s.repo.ListPaymentsByInvoice(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	pending := PendingForInvoice(*invoice, payments)
	if pending <= 0 {
		return 0, ErrNothingOutstanding
	}
	return PartialSuggestion(pending, proposed), nil
}

// ListAccounts recomputes the per-client rollup from fresh snapshots.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateAccounts(invoices, payments), nil
}

// GetStatement returns one invoice with its payments and live balance.
func (s *Service) GetStatement(ctx context.Context, invoiceID string) (*InvoiceStatement, error) {
	invoice, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	return &InvoiceStatement{
		Invoice:  *invoice,
		Payments: payments,
		PaidSum:  paid,
		Pending:  PendingForInvoice(*invoice, payments),
	}, nil
}

// ListReceipts returns receipts matching the filter.
func (s *Service) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Receipt, error) {
	return s.repo.ListReceipts(ctx, filter)
}

// GetReceipt returns one receipt for reprinting.
func (s *Service) GetReceipt(ctx context.Context, number string) (*Receipt, error) {
	return s.repo.GetReceipt(ctx, number)
}
