package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	ListCustomers(ctx context.Context, search string) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input CustomerInput) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// Service handles customer business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateCustomer registers a new customer.
func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if err := normalize(&input); err != nil {
		return nil, err
	}
	return s.repo.CreateCustomer(ctx, input)
}

// GetCustomer returns one customer by ID.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ListCustomers returns customers, optionally filtered by name.
func (s *Service) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	return s.repo.ListCustomers(ctx, strings.TrimSpace(search))
}

// UpdateCustomer overwrites an existing customer.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) error {
	if err := normalize(&input); err != nil {
		return err
	}
	return s.repo.UpdateCustomer(ctx, id, input)
}

// DeleteCustomer removes a customer.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func normalize(input *CustomerInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.CUIT = strings.TrimSpace(input.CUIT)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return nil
}
