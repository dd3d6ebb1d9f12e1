package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// RepositoryPort defines data access methods for suppliers.
type RepositoryPort interface {
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error
	DeleteSupplier(ctx context.Context, id int64) error
}

// Service handles supplier business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateSupplier registers a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if err := normalize(&input); err != nil {
		return nil, err
	}
	return s.repo.CreateSupplier(ctx, input)
}

// GetSupplier returns one supplier by ID.
func (s *Service) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers returns every supplier.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// UpdateSupplier overwrites an existing supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	if err := normalize(&input); err != nil {
		return err
	}
	return s.repo.UpdateSupplier(ctx, id, input)
}

// DeleteSupplier removes a supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.repo.DeleteSupplier(ctx, id)
}

func normalize(input *SupplierInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.CUIT = strings.TrimSpace(input.CUIT)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.PaymentTerms = strings.TrimSpace(input.PaymentTerms)
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return nil
}
