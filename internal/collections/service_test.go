package collections

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/shared"
)

type memoryCollectionsRepo struct {
	invoices       map[string]*invoicing.Invoice
	payments       []Payment
	receipts       []Receipt
	failReceipts   bool
	receiptInserts int
}

func newMemoryCollectionsRepo() *memoryCollectionsRepo {
	return &memoryCollectionsRepo{invoices: make(map[string]*invoicing.Invoice)}
}

func (r *memoryCollectionsRepo) addInvoice(id, client string, total float64) {
	r.invoices[id] = &invoicing.Invoice{ID: id, Client: client, Total: total, Status: invoicing.StatusPendiente}
}

func (r *memoryCollectionsRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryCollectionsRepo) GetInvoiceForUpdate(ctx context.Context, id string) (*invoicing.Invoice, error) {
	return r.GetInvoice(ctx, id)
}

func (r *memoryCollectionsRepo) GetInvoice(ctx context.Context, id string) (*invoicing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memoryCollectionsRepo) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	var out []invoicing.Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryCollectionsRepo) ListPayments(ctx context.Context) ([]Payment, error) {
	return append([]Payment(nil), r.payments...), nil
}

func (r *memoryCollectionsRepo) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryCollectionsRepo) InsertPayment(ctx context.Context, p Payment) error {
	r.payments = append(r.payments, p)
	return nil
}

func (r *memoryCollectionsRepo) UpdateInvoiceStatus(ctx context.Context, id string, status invoicing.Status) error {
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (r *memoryCollectionsRepo) InsertReceipt(ctx context.Context, rc Receipt) error {
	r.receiptInserts++
	if r.failReceipts {
		return errors.New("receipt store down")
	}
	r.receipts = append(r.receipts, rc)
	return nil
}

func (r *memoryCollectionsRepo) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Receipt, error) {
	var out []Receipt
	for _, rc := range r.receipts {
		if filter.Cliente != "" && rc.Cliente != filter.Cliente {
			continue
		}
		if filter.Manual != nil && rc.Manual != *filter.Manual {
			continue
		}
		out = append(out, rc)
	}
	return out, nil
}

func (r *memoryCollectionsRepo) GetReceipt(ctx context.Context, number string) (*Receipt, error) {
	for i := range r.receipts {
		if r.receipts[i].Number == number {
			return &r.receipts[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

type memorySequence struct {
	n int64
}

func (s *memorySequence) Next(ctx context.Context) (string, error) {
	s.n++
	return shared.FormatSequence("RC", s.n), nil
}

func newTestService(repo *memoryCollectionsRepo) (*Service, *memorySequence) {
	seq := &memorySequence{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, seq, logger, nil), seq
}

func TestRegisterPaymentPartialThenTruncatedThenRejected(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 1000)
	svc, _ := newTestService(repo)

	// First payment of 600 leaves 400 pending.
	res, err := svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 600, Method: MethodEfectivo})
	require.NoError(t, err)
	require.Equal(t, 600.0, res.UsedAmount)
	require.InDelta(t, 400.0, res.Remaining, 0.01)
	require.Equal(t, invoicing.StatusParcial, res.NewStatus)
	require.NotNil(t, res.Receipt)
	require.Equal(t, "RC-000001", res.Receipt.Number)
	require.NotNil(t, res.Receipt.Saldo)
	require.InDelta(t, 400.0, *res.Receipt.Saldo, 0.01)

	// Requesting 900 gets capped at the 400 still pending.
	res2, err := svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 900, Method: MethodTransferencia})
	require.NoError(t, err)
	require.InDelta(t, 400.0, res2.UsedAmount, 0.01)
	require.Equal(t, 0.0, res2.Remaining)
	require.Equal(t, invoicing.StatusPagado, res2.NewStatus)
	require.Equal(t, "RC-000002", res2.Receipt.Number)
	require.Equal(t, 0.0, *res2.Receipt.Saldo)

	// Invoice settled: further attempts are rejected, ledger untouched.
	_, err = svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 50, Method: MethodEfectivo})
	require.ErrorIs(t, err, ErrNothingOutstanding)
	require.Len(t, repo.payments, 2)
	require.Equal(t, invoicing.StatusPagado, repo.invoices["INV-1"].Status)
}

func TestRegisterPaymentNeverExceedsPending(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 100)
	svc, _ := newTestService(repo)

	res, err := svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 100000, Method: MethodCheque})
	require.NoError(t, err)
	require.Equal(t, 100.0, res.UsedAmount)
	require.Equal(t, 100.0, repo.payments[0].Amount)
}

func TestRegisterPaymentValidation(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 100)
	svc, _ := newTestService(repo)

	_, err := svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 0, Method: MethodEfectivo})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: -5, Method: MethodEfectivo})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 10, Method: "bitcoin"})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-404", Amount: 10, Method: MethodEfectivo})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReceiptFailureDoesNotBlockPayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 500)
	repo.failReceipts = true
	svc, _ := newTestService(repo)

	res, err := svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 500, Method: MethodEfectivo})
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)
	require.Len(t, repo.payments, 1)
	require.Equal(t, 1, repo.receiptInserts)
	require.Equal(t, invoicing.StatusPagado, repo.invoices["INV-1"].Status)
}

func TestReceiptNumbersAreSequential(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	svc, _ := newTestService(repo)

	var seen []string
	for i := 1; i <= 5; i++ {
		rc, err := svc.CreateManualReceipt(ctx, ManualReceiptInput{
			Cliente: "Cliente X", Metodo: MethodEfectivo, Monto: 10,
		})
		require.NoError(t, err)
		seen = append(seen, rc.Number)
	}
	require.Equal(t, []string{"RC-000001", "RC-000002", "RC-000003", "RC-000004", "RC-000005"}, seen)
}

func TestCreateManualReceipt(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 1000)
	svc, _ := newTestService(repo)

	rc, err := svc.CreateManualReceipt(ctx, ManualReceiptInput{
		Cliente:   "Cliente X",
		FacturaID: " INV-1 ",
		Metodo:    MethodMercadoPago,
		Monto:     250,
		Nota:      "sena mostrador",
	})
	require.NoError(t, err)
	require.True(t, rc.Manual)
	require.Nil(t, rc.Saldo)
	require.NotNil(t, rc.FacturaID)
	require.Equal(t, "INV-1", *rc.FacturaID)

	// Manual receipts never touch the ledger: pending is unchanged.
	stmt, err := svc.GetStatement(ctx, "INV-1")
	require.NoError(t, err)
	require.Equal(t, 1000.0, stmt.Pending)
	require.Empty(t, stmt.Payments)
}

func TestCreateManualReceiptValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemoryCollectionsRepo())

	_, err := svc.CreateManualReceipt(ctx, ManualReceiptInput{Cliente: " ", Metodo: MethodEfectivo, Monto: 10})
	require.Error(t, err)

	_, err = svc.CreateManualReceipt(ctx, ManualReceiptInput{Cliente: "X", Metodo: MethodEfectivo, Monto: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSuggestPartial(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 400)
	svc, _ := newTestService(repo)

	got, err := svc.SuggestPartial(ctx, "INV-1", 0)
	require.NoError(t, err)
	require.Equal(t, 200.0, got)

	got, err = svc.SuggestPartial(ctx, "INV-1", 150)
	require.NoError(t, err)
	require.Equal(t, 150.0, got)

	_, _ = svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 400, Method: MethodEfectivo})
	_, err = svc.SuggestPartial(ctx, "INV-1", 0)
	require.ErrorIs(t, err, ErrNothingOutstanding)
}

func TestListAccountsUsesOverdueFlag(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCollectionsRepo()
	repo.addInvoice("INV-1", "Cliente X", 500)
	repo.addInvoice("INV-2", "Cliente X", 300)
	repo.invoices["INV-2"].Status = invoicing.StatusVencido
	svc, _ := newTestService(repo)

	_, err := svc.RegisterPayment(ctx, RegisterPaymentInput{InvoiceID: "INV-1", Amount: 500, Method: MethodEfectivo, Date: time.Now()})
	require.NoError(t, err)

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, invoicing.StatusVencido, accounts[0].Status)
	require.InDelta(t, 300.0, accounts[0].PendingAmount, 0.01)
	require.NotNil(t, accounts[0].LastPayment)
}
