package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/shared"
)

const defaultValidityDays = 15

// RepositoryPort defines data access methods for quotes.
type RepositoryPort interface {
	CreateQuote(ctx context.Context, quote Quote) error
	GetQuote(ctx context.Context, id string) (*Quote, error)
	ListQuotes(ctx context.Context, filter ListFilter) ([]Quote, error)
	UpdateStatus(ctx context.Context, id string, status QuoteStatus, invoiceID *string) error
}

// InvoiceIssuer creates the invoice a converted quote turns into.
type InvoiceIssuer interface {
	CreateInvoice(ctx context.Context, input invoicing.InvoiceInput) (*invoicing.Invoice, error)
}

// Service handles quote business logic.
type Service struct {
	repo   RepositoryPort
	issuer InvoiceIssuer
	seq    shared.SequenceProvider
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, issuer InvoiceIssuer, seq shared.SequenceProvider) *Service {
	return &Service{repo: repo, issuer: issuer, seq: seq}
}

// CreateQuote books a new quote in borrador state.
func (s *Service) CreateQuote(ctx context.Context, input QuoteInput) (*Quote, error) {
	input.Client = strings.TrimSpace(input.Client)
	if input.Client == "" {
		return nil, fmt.Errorf("%w: client is required", shared.ErrValidation)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: quote needs at least one item", shared.ErrValidation)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", shared.ErrValidation)
		}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: item price must not be negative", shared.ErrValidation)
		}
	}

	number, err := s.seq.Next(ctx)
	if err != nil {
		return nil, err
	}

	issuedAt := input.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	validTo := input.ValidTo
	if validTo.IsZero() {
		validTo = issuedAt.AddDate(0, 0, defaultValidityDays)
	}

	var total float64
	lines := make([]QuoteLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		total += line.Quantity * line.UnitPrice
		lines = append(lines, QuoteLine{
			QuoteID:     number,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	quote := Quote{
		ID:       number,
		Client:   input.Client,
		IssuedAt: issuedAt,
		ValidTo:  validTo,
		Status:   QuoteBorrador,
		Total:    total,
		Lines:    lines,
	}
	if err := s.repo.CreateQuote(ctx, quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetQuote returns one quote with its lines.
func (s *Service) GetQuote(ctx context.Context, id string) (*Quote, error) {
	return s.repo.GetQuote(ctx, id)
}

// ListQuotes returns quotes matching the filter.
func (s *Service) ListQuotes(ctx context.Context, filter ListFilter) ([]Quote, error) {
	return s.repo.ListQuotes(ctx, filter)
}

// SendQuote marks a draft as sent to the customer.
func (s *Service) SendQuote(ctx context.Context, id string) error {
	return s.transition(ctx, id, QuoteBorrador, QuoteEnviado)
}

// AcceptQuote marks a sent quote as accepted.
func (s *Service) AcceptQuote(ctx context.Context, id string) error {
	return s.transition(ctx, id, QuoteEnviado, QuoteAceptado)
}

// RejectQuote marks a sent quote as rejected.
func (s *Service) RejectQuote(ctx context.Context, id string) error {
	return s.transition(ctx, id, QuoteEnviado, QuoteRechazado)
}

// ConvertToInvoice turns an accepted quote into an invoice. The quote
// moves to facturado and keeps the invoice number; converting twice is
// rejected.
func (s *Service) ConvertToInvoice(ctx context.Context, id string) (*invoicing.Invoice, error) {
	quote, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.InvoiceID != nil {
		return nil, fmt.Errorf("%w: el presupuesto ya fue facturado", shared.ErrValidation)
	}
	if quote.Status != QuoteAceptado {
		return nil, fmt.Errorf("%w: solo un presupuesto aceptado puede facturarse", shared.ErrValidation)
	}

	invoice, err := s.issuer.CreateInvoice(ctx, invoicing.InvoiceInput{
		Client: quote.Client,
		Total:  quote.Total,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, QuoteFacturado, &invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) transition(ctx context.Context, id string, from, to QuoteStatus) error {
	quote, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return err
	}
	if quote.Status != from {
		return fmt.Errorf("%w: el presupuesto no esta %s", shared.ErrValidation, from)
	}
	return s.repo.UpdateStatus(ctx, id, to, quote.InvoiceID)
}
