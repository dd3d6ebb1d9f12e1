package purchasing

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/evita-erp/evita-erp/internal/shared"
	"github.com/evita-erp/evita-erp/internal/suppliers"
)

type memoryOrderRepo struct {
	orders    map[string]*Order
	createErr error
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: map[string]*Order{}}
}

func (m *memoryOrderRepo) CreateOrder(ctx context.Context, order Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = &order
	return nil
}

func (m *memoryOrderRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memoryOrderRepo) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	var out []Order
	for _, order := range m.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (m *memoryOrderRepo) QuoteRefExists(ctx context.Context, quoteRef string) (bool, error) {
	for _, order := range m.orders {
		if order.QuoteRef != "" && order.QuoteRef == quoteRef {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryOrderRepo) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	order, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	order.Status = status
	return nil
}

type stubDirectory struct {
	suppliers map[int64]*suppliers.Supplier
}

func (d *stubDirectory) GetSupplier(ctx context.Context, id int64) (*suppliers.Supplier, error) {
	sup, ok := d.suppliers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return sup, nil
}

type memorySequence struct {
	prefix string
	n      int64
}

func (s *memorySequence) Next(ctx context.Context) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%06d", s.prefix, s.n), nil
}

func newTestPurchasing() (*Service, *memoryOrderRepo) {
	repo := newMemoryOrderRepo()
	directory := &stubDirectory{suppliers: map[int64]*suppliers.Supplier{
		1: {ID: 1, Name: "Distribuidora Sur", PaymentTerms: "Net 60"},
		2: {ID: 2, Name: "Mayorista Centro", PaymentTerms: "contado"},
	}}
	return NewService(repo, directory, &memorySequence{prefix: "PO"}), repo
}

func orderInput(supplierID int64, quoteRef string) OrderInput {
	return OrderInput{
		SupplierID: supplierID,
		QuoteRef:   quoteRef,
		IssuedAt:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Lines: []OrderLineInput{
			{Description: "Cemento x50kg", Quantity: 10, UnitPrice: 8500},
		},
	}
}

func TestCreateOrderRejectsDuplicateQuoteRef(t *testing.T) {
	svc, _ := newTestPurchasing()
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, orderInput(1, "COT-2041"))
	require.NoError(t, err)
	require.Equal(t, "COT-2041", first.QuoteRef)

	_, err = svc.CreateOrder(ctx, orderInput(1, "  COT-2041  "))
	require.ErrorIs(t, err, ErrDuplicateReference)
}

func TestCreateOrderAllowsManyEmptyQuoteRefs(t *testing.T) {
	svc, repo := newTestPurchasing()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, orderInput(1, "   "))
		require.NoError(t, err)
	}
	require.Len(t, repo.orders, 3)
	for _, order := range repo.orders {
		require.Empty(t, order.QuoteRef)
	}
}

func TestCreateOrderMapsUniqueViolation(t *testing.T) {
	svc, repo := newTestPurchasing()
	repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "purchase_orders_quote_ref_key"}

	_, err := svc.CreateOrder(context.Background(), orderInput(1, "COT-9001"))
	require.ErrorIs(t, err, ErrDuplicateReference)
}

func TestCreateOrderDueDateFromPaymentTerms(t *testing.T) {
	svc, _ := newTestPurchasing()
	ctx := context.Background()

	netSixty, err := svc.CreateOrder(ctx, orderInput(1, ""))
	require.NoError(t, err)
	require.Equal(t, netSixty.IssuedAt.AddDate(0, 0, 60), netSixty.DueAt)

	cash, err := svc.CreateOrder(ctx, orderInput(2, ""))
	require.NoError(t, err)
	require.Equal(t, cash.IssuedAt, cash.DueAt)
}

func TestCreateOrderTotalsLines(t *testing.T) {
	svc, _ := newTestPurchasing()

	input := orderInput(1, "")
	input.Lines = append(input.Lines, OrderLineInput{Description: "Arena m3", Quantity: 2.5, UnitPrice: 12000})
	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.InDelta(t, 10*8500+2.5*12000, order.Total, 1e-9)
	require.True(t, strings.HasPrefix(order.ID, "PO-"))
	require.Equal(t, OrderPendiente, order.Status)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _ := newTestPurchasing()
	ctx := context.Background()

	input := orderInput(1, "")
	input.Lines = nil
	_, err := svc.CreateOrder(ctx, input)
	require.ErrorIs(t, err, shared.ErrValidation)

	input = orderInput(1, "")
	input.Lines[0].Quantity = 0
	_, err = svc.CreateOrder(ctx, input)
	require.ErrorIs(t, err, shared.ErrValidation)

	input = orderInput(1, "")
	input.Lines[0].UnitPrice = -1
	_, err = svc.CreateOrder(ctx, input)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateOrder(ctx, orderInput(99, ""))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderTransitions(t *testing.T) {
	svc, _ := newTestPurchasing()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, orderInput(1, ""))
	require.NoError(t, err)

	require.NoError(t, svc.ReceiveOrder(ctx, order.ID))

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderRecibida, got.Status)

	// an order already received cannot be voided
	err = svc.CancelOrder(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}
