package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, inv Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]Invoice, error)
	CountInvoices(ctx context.Context, filter ListFilter) (int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// Service handles invoicing business logic.
type Service struct {
	repo RepositoryPort
	seq  shared.SequenceProvider
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, seq shared.SequenceProvider) *Service {
	return &Service{repo: repo, seq: seq}
}

// CreateInvoice records a new invoice in pendiente state.
func (s *Service) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	input.Client = strings.TrimSpace(input.Client)
	if input.Client == "" {
		return nil, fmt.Errorf("%w: client is required", shared.ErrValidation)
	}
	if input.Total < 0 {
		return nil, fmt.Errorf("%w: total must not be negative", shared.ErrValidation)
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		var err error
		id, err = s.seq.Next(ctx)
		if err != nil {
			return nil, err
		}
	}

	issuedAt := input.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	dueAt := input.DueAt
	if dueAt.IsZero() {
		dueAt = issuedAt.AddDate(0, 0, 30)
	}

	inv := Invoice{
		ID:       id,
		Client:   input.Client,
		Total:    input.Total,
		IssuedAt: issuedAt,
		DueAt:    dueAt,
		Status:   StatusPendiente,
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvoice returns a single invoice.
func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// ListInvoices returns invoices matching the filter.
func (s *Service) ListInvoices(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// CountInvoices returns how many invoices match the filter.
func (s *Service) CountInvoices(ctx context.Context, filter ListFilter) (int, error) {
	return s.repo.CountInvoices(ctx, filter)
}

// MarkOverdue stamps overdue invoices as of the given time and returns
// how many were updated. The reconciliation layer reads only this
// stored flag, never the due date directly.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.repo.MarkOverdue(ctx, asOf)
}
