package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evita-erp/evita-erp/internal/shared"
	"github.com/evita-erp/evita-erp/internal/suppliers"
)

// RepositoryPort defines data access methods for purchasing.
type RepositoryPort interface {
	CreateOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, error)
	QuoteRefExists(ctx context.Context, quoteRef string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}

// SupplierDirectory resolves suppliers for payment term lookups.
type SupplierDirectory interface {
	GetSupplier(ctx context.Context, id int64) (*suppliers.Supplier, error)
}

// Service handles purchasing business logic.
type Service struct {
	repo      RepositoryPort
	suppliers SupplierDirectory
	seq       shared.SequenceProvider
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, directory SupplierDirectory, seq shared.SequenceProvider) *Service {
	return &Service{repo: repo, suppliers: directory, seq: seq}
}

// CreateOrder books a purchase order. A non-empty supplier quote
// reference may be used by at most one order; the check runs before
// the insert and the partial unique index backs it up under races,
// surfacing as the same ErrDuplicateReference.
func (s *Service) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	if input.SupplierID <= 0 {
		return nil, fmt.Errorf("%w: supplier is required", shared.ErrValidation)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", shared.ErrValidation)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", shared.ErrValidation)
		}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: item price must not be negative", shared.ErrValidation)
		}
	}

	supplier, err := s.suppliers.GetSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}

	quoteRef := strings.TrimSpace(input.QuoteRef)
	if quoteRef != "" {
		exists, err := s.repo.QuoteRefExists(ctx, quoteRef)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateReference
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

	var total float64
	lines := make([]OrderLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		total += line.Quantity * line.UnitPrice
		lines = append(lines, OrderLine{
			OrderID:     number,
			ProductID:   line.ProductID,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	order := Order{
		ID:         number,
		SupplierID: input.SupplierID,
		QuoteRef:   quoteRef,
		IssuedAt:   issuedAt,
		DueAt:      issuedAt.AddDate(0, 0, suppliers.TermsDays(supplier.PaymentTerms)),
		Status:     OrderPendiente,
		Total:      total,
		Lines:      lines,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}
	return &order, nil
}

// GetOrder returns one purchase order with its lines.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders returns orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

// SupplierFor resolves the supplier an order was placed with.
func (s *Service) SupplierFor(ctx context.Context, order *Order) (*suppliers.Supplier, error) {
	return s.suppliers.GetSupplier(ctx, order.SupplierID)
}

// ReceiveOrder marks a pending order as received.
func (s *Service) ReceiveOrder(ctx context.Context, id string) error {
	return s.transition(ctx, id, OrderPendiente, OrderRecibida)
}

// CancelOrder voids a pending order.
func (s *Service) CancelOrder(ctx context.Context, id string) error {
	return s.transition(ctx, id, OrderPendiente, OrderAnulada)
}

func (s *Service) transition(ctx context.Context, id string, from, to OrderStatus) error {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != from {
		return fmt.Errorf("%w: order is not %s", shared.ErrValidation, from)
	}
	return s.repo.UpdateStatus(ctx, id, to)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
