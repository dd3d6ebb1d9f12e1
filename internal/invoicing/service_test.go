package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evita-erp/evita-erp/internal/shared"
)

type memoryInvoiceRepo struct {
	invoices map[string]*Invoice
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: make(map[string]*Invoice)}
}

func (r *memoryInvoiceRepo) CreateInvoice(ctx context.Context, inv Invoice) error {
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	r.invoices[inv.ID] = &inv
	return nil
}

func (r *memoryInvoiceRepo) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memoryInvoiceRepo) ListInvoices(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if filter.Client != "" && inv.Client != filter.Client {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryInvoiceRepo) CountInvoices(ctx context.Context, filter ListFilter) (int, error) {
	var n int
	for _, inv := range r.invoices {
		if filter.Client != "" && inv.Client != filter.Client {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		n++
	}
	return n, nil
}

func (r *memoryInvoiceRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (r *memoryInvoiceRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var n int64
	for _, inv := range r.invoices {
		if inv.DueAt.Before(asOf) && (inv.Status == StatusPendiente || inv.Status == StatusParcial) {
			inv.Status = StatusVencido
			n++
		}
	}
	return n, nil
}

type fixedSequence struct {
	n int64
}

func (s *fixedSequence) Next(ctx context.Context) (string, error) {
	s.n++
	return shared.FormatSequence("FC", s.n), nil
}

func TestCreateInvoiceIssuesSequentialNumber(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInvoiceRepo()
	svc := NewService(repo, &fixedSequence{})

	inv, err := svc.CreateInvoice(ctx, InvoiceInput{Client: "Cliente X", Total: 1500})
	require.NoError(t, err)
	require.Equal(t, "FC-000001", inv.ID)
	require.Equal(t, StatusPendiente, inv.Status)

	inv2, err := svc.CreateInvoice(ctx, InvoiceInput{Client: "Cliente X", Total: 200})
	require.NoError(t, err)
	require.Equal(t, "FC-000002", inv2.ID)
}

func TestCreateInvoiceKeepsExplicitID(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInvoiceRepo()
	svc := NewService(repo, &fixedSequence{})

	inv, err := svc.CreateInvoice(ctx, InvoiceInput{ID: "FC-IMPORT-9", Client: "Cliente Y", Total: 10})
	require.NoError(t, err)
	require.Equal(t, "FC-IMPORT-9", inv.ID)
}

func TestCreateInvoiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryInvoiceRepo(), &fixedSequence{})

	_, err := svc.CreateInvoice(ctx, InvoiceInput{Client: "  ", Total: 10})
	require.Error(t, err)

	_, err = svc.CreateInvoice(ctx, InvoiceInput{Client: "Cliente X", Total: -1})
	require.Error(t, err)
}

func TestCreateInvoiceDefaultsDueDate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInvoiceRepo()
	svc := NewService(repo, &fixedSequence{})

	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	inv, err := svc.CreateInvoice(ctx, InvoiceInput{Client: "Cliente X", Total: 100, IssuedAt: issued})
	require.NoError(t, err)
	require.Equal(t, issued.AddDate(0, 0, 30), inv.DueAt)
}

func TestCountInvoicesHonorsFilter(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInvoiceRepo()
	svc := NewService(repo, &fixedSequence{})

	_, err := svc.CreateInvoice(ctx, InvoiceInput{Client: "Cliente X", Total: 100})
	require.NoError(t, err)
	_, err = svc.CreateInvoice(ctx, InvoiceInput{Client: "Cliente Y", Total: 200})
	require.NoError(t, err)

	total, err := svc.CountInvoices(ctx, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	total, err = svc.CountInvoices(ctx, ListFilter{Client: "Cliente Y"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestMarkOverdueStampsOpenInvoices(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInvoiceRepo()
	svc := NewService(repo, &fixedSequence{})

	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, 0, -10)
	future := asOf.AddDate(0, 0, 10)

	_, _ = svc.CreateInvoice(ctx, InvoiceInput{ID: "FC-1", Client: "A", Total: 100, IssuedAt: past.AddDate(0, -1, 0), DueAt: past})
	_, _ = svc.CreateInvoice(ctx, InvoiceInput{ID: "FC-2", Client: "A", Total: 100, IssuedAt: asOf, DueAt: future})
	paid, _ := svc.CreateInvoice(ctx, InvoiceInput{ID: "FC-3", Client: "B", Total: 100, IssuedAt: past.AddDate(0, -1, 0), DueAt: past})
	require.NoError(t, repo.UpdateStatus(ctx, paid.ID, StatusPagado))

	n, err := svc.MarkOverdue(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	inv, _ := repo.GetInvoice(ctx, "FC-1")
	require.Equal(t, StatusVencido, inv.Status)
	inv2, _ := repo.GetInvoice(ctx, "FC-2")
	require.Equal(t, StatusPendiente, inv2.Status)
	inv3, _ := repo.GetInvoice(ctx, "FC-3")
	require.Equal(t, StatusPagado, inv3.Status)
}
