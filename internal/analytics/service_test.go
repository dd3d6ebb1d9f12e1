package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	total     float64
	pending   float64
	open      int64
	overdue   int64
	collected float64
	debtors   []Debtor
	invoices  []OpenInvoice
	calls     int
}

func (s *stubRepo) ReceivableTotals(ctx context.Context) (float64, float64, int64, int64, error) {
	s.calls++
	return s.total, s.pending, s.open, s.overdue, nil
}

func (s *stubRepo) CollectedBetween(ctx context.Context, from, to time.Time) (float64, error) {
	return s.collected, nil
}

func (s *stubRepo) TopDebtors(ctx context.Context, limit int) ([]Debtor, error) {
	if limit < len(s.debtors) {
		return s.debtors[:limit], nil
	}
	return s.debtors, nil
}

func (s *stubRepo) OpenInvoices(ctx context.Context) ([]OpenInvoice, error) {
	return s.invoices, nil
}

func newTestAnalytics(t *testing.T, repo *stubRepo) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(repo, NewCache(rdb, time.Minute))
}

func TestDashboardCachesUntilBump(t *testing.T) {
	repo := &stubRepo{total: 1500, pending: 700.004, open: 3, overdue: 1, collected: 800}
	svc := newTestAnalytics(t, repo)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1500.0, first.TotalFacturado)
	require.Equal(t, 700.0, first.TotalPendiente)
	require.Equal(t, 800.0, first.CobradoDelMes)
	require.Equal(t, 800.0, first.Cobrado7Dias)
	require.Equal(t, 800.0, first.Cobrado30Dias)
	require.Equal(t, int64(3), first.FacturasAbiertas)
	require.Equal(t, int64(1), first.FacturasVencidas)

	repo.total = 9999
	second, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1500.0, second.TotalFacturado, "second read must come from cache")
	require.Equal(t, 1, repo.calls)

	require.NoError(t, svc.Invalidate(ctx))
	third, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 9999.0, third.TotalFacturado)
	require.Equal(t, 2, repo.calls)
}

func TestTopDebtorsRounds(t *testing.T) {
	repo := &stubRepo{debtors: []Debtor{
		{Client: "Corralon El Obrero", Pendiente: 1200.005},
		{Client: "Obras Anexas SRL", Pendiente: 300},
	}}
	svc := newTestAnalytics(t, repo)

	debtors, err := svc.TopDebtors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, debtors, 2)
	require.Equal(t, 1200.01, debtors[0].Pendiente)
}

func TestBucketByAge(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return asOf.AddDate(0, 0, offset) }

	buckets := BucketByAge([]OpenInvoice{
		{Client: "A", Pending: 100, DueAt: day(5)},    // not yet due
		{Client: "B", Pending: 200, DueAt: day(0)},    // due today, still current
		{Client: "C", Pending: 300, DueAt: day(-15)},  // 15 days late
		{Client: "D", Pending: 400, DueAt: day(-45)},  // 45 days late
		{Client: "E", Pending: 500, DueAt: day(-90)},  // boundary of 61-90
		{Client: "F", Pending: 600, DueAt: day(-120)}, // older
	}, asOf)

	require.Len(t, buckets, 5)
	require.Equal(t, "al dia", buckets[0].Label)
	require.Equal(t, 300.0, buckets[0].Amount)
	require.Equal(t, int64(2), buckets[0].Count)
	require.Equal(t, 300.0, buckets[1].Amount)
	require.Equal(t, 400.0, buckets[2].Amount)
	require.Equal(t, 500.0, buckets[3].Amount)
	require.Equal(t, 600.0, buckets[4].Amount)
}
