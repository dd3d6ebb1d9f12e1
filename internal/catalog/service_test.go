package catalog

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evita-erp/evita-erp/internal/shared"
)

type memoryProductRepo struct {
	products map[int64]*Product
	nextID   int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: map[int64]*Product{}}
}

func (m *memoryProductRepo) CreateProduct(ctx context.Context, input ProductInput, finalPrice float64) (*Product, error) {
	m.nextID++
	p := &Product{
		ID:            m.nextID,
		SKU:           input.SKU,
		Name:          input.Name,
		SupplierID:    input.SupplierID,
		PurchasePrice: input.PurchasePrice,
		Margin:        input.Margin,
		FinalPrice:    finalPrice,
		Stock:         input.Stock,
	}
	m.products[p.ID] = p
	copied := *p
	return &copied, nil
}

func (m *memoryProductRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memoryProductRepo) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if filter.SupplierID > 0 && p.SupplierID != filter.SupplierID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryProductRepo) UpdateProduct(ctx context.Context, id int64, input ProductInput, finalPrice float64) error {
	p, ok := m.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.SKU = input.SKU
	p.Name = input.Name
	p.SupplierID = input.SupplierID
	p.PurchasePrice = input.PurchasePrice
	p.Margin = input.Margin
	p.FinalPrice = finalPrice
	p.Stock = input.Stock
	return nil
}

func (m *memoryProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryProductRepo) UpdateSupplierMargin(ctx context.Context, supplierID int64, margin float64) (int64, error) {
	var count int64
	for _, p := range m.products {
		if p.SupplierID != supplierID {
			continue
		}
		p.Margin = margin
		p.FinalPrice = FinalPrice(p.PurchasePrice, margin)
		count++
	}
	return count, nil
}

func (m *memoryProductRepo) PatchPrice(ctx context.Context, id int64, finalPrice float64, stock int64) error {
	p, ok := m.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.FinalPrice = finalPrice
	p.Stock = stock
	return nil
}

func newTestCatalog() (*Service, *memoryProductRepo) {
	repo := newMemoryProductRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func seedProduct(t *testing.T, svc *Service, sku, name string, supplierID int64, purchase, margin float64) *Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), ProductInput{
		SKU:           sku,
		Name:          name,
		SupplierID:    supplierID,
		PurchasePrice: purchase,
		Margin:        margin,
		Stock:         10,
	})
	require.NoError(t, err)
	return p
}

func TestFinalPriceRounding(t *testing.T) {
	require.Equal(t, 130.0, FinalPrice(100, 30))
	require.Equal(t, 13.57, FinalPrice(10.44, 30))
	require.Equal(t, 10.44, FinalPrice(10.44, 0))
	require.Equal(t, 0.0, FinalPrice(0, 45))
}

func TestUpdateSupplierMarginReprices(t *testing.T) {
	svc, repo := newTestCatalog()
	seedProduct(t, svc, "CEM-50", "Cemento x50kg", 1, 8500, 20)
	seedProduct(t, svc, "ARE-M3", "Arena m3", 1, 12000, 20)
	seedProduct(t, svc, "HIE-8", "Hierro 8mm", 2, 3100, 20)

	count, err := svc.UpdateSupplierMargin(context.Background(), 1, 35)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	for _, p := range repo.products {
		if p.SupplierID != 1 {
			require.Equal(t, 20.0, p.Margin)
			continue
		}
		require.Equal(t, 35.0, p.Margin)
		require.Equal(t, FinalPrice(p.PurchasePrice, 35), p.FinalPrice)
	}
}

func TestUpdateSupplierMarginValidation(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()

	_, err := svc.UpdateSupplierMargin(ctx, 0, 30)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateSupplierMargin(ctx, 1, -5)
	require.ErrorIs(t, err, shared.ErrValidation)

	// ParseFloat accepts NaN and Inf spellings in the URL param, so
	// they must be rejected here before they reach the reprice SQL.
	_, err = svc.UpdateSupplierMargin(ctx, 1, math.NaN())
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateSupplierMargin(ctx, 1, math.Inf(1))
	require.ErrorIs(t, err, shared.ErrValidation)

	// supplier without products
	_, err = svc.UpdateSupplierMargin(ctx, 77, 30)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestImportPricesMatchesBySkuIDAndName(t *testing.T) {
	svc, repo := newTestCatalog()
	bySKU := seedProduct(t, svc, "CEM-50", "Cemento x50kg", 1, 8500, 20)
	byID := seedProduct(t, svc, "", "Arena m3", 1, 12000, 20)
	byName := seedProduct(t, svc, "", "Hierro 8mm", 1, 3100, 20)

	summary, err := svc.ImportPrices(context.Background(), 1, []PriceRow{
		{SKU: "cem-50", Price: 9100.556, Stock: 25},
		{ID: byID.ID, Price: 12500, Stock: -3},
		{Name: "  HIERRO 8MM ", Price: 3350, Stock: 40.6},
		{SKU: "ZZZ-1", Name: "No existe", Price: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 3, summary.Updated)
	require.Equal(t, []string{"ZZZ-1"}, summary.NotFound)

	require.Equal(t, 9100.56, repo.products[bySKU.ID].FinalPrice)
	require.Equal(t, int64(25), repo.products[bySKU.ID].Stock)
	require.Equal(t, int64(0), repo.products[byID.ID].Stock)
	require.Equal(t, int64(41), repo.products[byName.ID].Stock)
	require.Equal(t, 3350.0, repo.products[byName.ID].FinalPrice)
}

func TestImportPricesNeverTouchesOtherSuppliers(t *testing.T) {
	svc, repo := newTestCatalog()
	mine := seedProduct(t, svc, "CEM-50", "Cemento x50kg", 1, 8500, 20)
	other := seedProduct(t, svc, "CEM-50B", "Cemento x50kg", 2, 8000, 20)

	summary, err := svc.ImportPrices(context.Background(), 1, []PriceRow{
		{SKU: "CEM-50B", Price: 9999, Stock: 1},
		{SKU: "CEM-50", Price: 9000, Stock: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Updated)
	require.Equal(t, []string{"CEM-50B"}, summary.NotFound)
	require.Equal(t, 9000.0, repo.products[mine.ID].FinalPrice)
	require.Equal(t, FinalPrice(8000, 20), repo.products[other.ID].FinalPrice)
}
