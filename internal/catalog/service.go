package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// RepositoryPort defines data access methods for the product catalog.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, input ProductInput, finalPrice float64) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput, finalPrice float64) error
	DeleteProduct(ctx context.Context, id int64) error
	UpdateSupplierMargin(ctx context.Context, supplierID int64, margin float64) (int64, error)
	PatchPrice(ctx context.Context, id int64, finalPrice float64, stock int64) error
}

// Service handles catalog business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// FinalPrice derives the list price from a purchase price and a margin
// percentage, rounded to cents.
func FinalPrice(purchasePrice, margin float64) float64 {
	return shared.Round2(purchasePrice * (1 + margin/100))
}

// CreateProduct registers a new product with its derived list price.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateProduct(&input); err != nil {
		return nil, err
	}
	return s.repo.CreateProduct(ctx, input, FinalPrice(input.PurchasePrice, input.Margin))
}

// GetProduct returns one product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts returns products matching the filter.
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// UpdateProduct overwrites a product, recomputing its list price.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) error {
	if err := validateProduct(&input); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, id, input, FinalPrice(input.PurchasePrice, input.Margin))
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

// UpdateSupplierMargin applies one margin percentage to every product
// of a supplier and reprices them in a single statement. Returns how
// many products changed; zero means the supplier has no products.
func (s *Service) UpdateSupplierMargin(ctx context.Context, supplierID int64, margin float64) (int64, error) {
	if supplierID <= 0 {
		return 0, fmt.Errorf("%w: proveedor invalido", shared.ErrValidation)
	}
	if math.IsNaN(margin) || math.IsInf(margin, 0) {
		return 0, fmt.Errorf("%w: margen invalido", shared.ErrValidation)
	}
	if margin < 0 {
		return 0, fmt.Errorf("%w: el margen no puede ser negativo", shared.ErrValidation)
	}
	count, err := s.repo.UpdateSupplierMargin(ctx, supplierID, margin)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: el proveedor no tiene productos", shared.ErrNotFound)
	}
	s.logger.Info("supplier margin applied",
		slog.Int64("supplier_id", supplierID),
		slog.Float64("margin", margin),
		slog.Int64("products", count))
	return count, nil
}

// ImportPrices applies a supplier price list to existing products.
// Rows match by SKU first, then by numeric ID, then by exact name;
// unmatched rows are reported, never created.
func (s *Service) ImportPrices(ctx context.Context, supplierID int64, rows []PriceRow) (*ImportSummary, error) {
	if supplierID <= 0 {
		return nil, fmt.Errorf("%w: proveedor invalido", shared.ErrValidation)
	}
	products, err := s.repo.ListProducts(ctx, ListFilter{SupplierID: supplierID})
	if err != nil {
		return nil, err
	}

	bySKU := make(map[string]*Product, len(products))
	byID := make(map[int64]*Product, len(products))
	byName := make(map[string]*Product, len(products))
	for i := range products {
		p := &products[i]
		if p.SKU != "" {
			bySKU[strings.ToLower(p.SKU)] = p
		}
		byID[p.ID] = p
		byName[strings.ToLower(strings.TrimSpace(p.Name))] = p
	}

	summary := &ImportSummary{NotFound: []string{}}
	for _, row := range rows {
		product := matchRow(row, bySKU, byID, byName)
		if product == nil {
			summary.NotFound = append(summary.NotFound, rowLabel(row))
			continue
		}
		stock := int64(math.Round(row.Stock))
		if stock < 0 {
			stock = 0
		}
		if err := s.repo.PatchPrice(ctx, product.ID, shared.Round2(row.Price), stock); err != nil {
			return nil, err
		}
		summary.Updated++
	}
	return summary, nil
}

func matchRow(row PriceRow, bySKU map[string]*Product, byID map[int64]*Product, byName map[string]*Product) *Product {
	if sku := strings.ToLower(strings.TrimSpace(row.SKU)); sku != "" {
		if p, ok := bySKU[sku]; ok {
			return p
		}
	}
	if row.ID > 0 {
		if p, ok := byID[row.ID]; ok {
			return p
		}
	}
	if name := strings.ToLower(strings.TrimSpace(row.Name)); name != "" {
		if p, ok := byName[name]; ok {
			return p
		}
	}
	return nil
}

func rowLabel(row PriceRow) string {
	if sku := strings.TrimSpace(row.SKU); sku != "" {
		return sku
	}
	if row.ID > 0 {
		return strconv.FormatInt(row.ID, 10)
	}
	return strings.TrimSpace(row.Name)
}

func validateProduct(input *ProductInput) error {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if input.PurchasePrice < 0 {
		return fmt.Errorf("%w: purchase price must not be negative", shared.ErrValidation)
	}
	if input.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative", shared.ErrValidation)
	}
	if input.Stock < 0 {
		input.Stock = 0
	}
	return nil
}
