package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// Service coordinates dashboard query execution with the cache layer.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Dashboard resolves the headline indicators, fanning the aggregate
// queries out in parallel on a cache miss.
func (s *Service) Dashboard(ctx context.Context) (DashboardSummary, error) {
	loader := func(ctx context.Context) (any, error) {
		now := s.now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		var summary DashboardSummary
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			total, pending, open, overdue, err := s.repo.ReceivableTotals(ctx)
			if err != nil {
				return err
			}
			summary.TotalFacturado = shared.Round2(total)
			summary.TotalPendiente = shared.Round2(pending)
			summary.FacturasAbiertas = open
			summary.FacturasVencidas = overdue
			return nil
		})
		g.Go(func() error {
			collected, err := s.repo.CollectedBetween(ctx, monthStart, now)
			if err != nil {
				return err
			}
			summary.CobradoDelMes = shared.Round2(collected)
			return nil
		})
		g.Go(func() error {
			collected, err := s.repo.CollectedBetween(ctx, now.AddDate(0, 0, -7), now)
			if err != nil {
				return err
			}
			summary.Cobrado7Dias = shared.Round2(collected)
			return nil
		})
		g.Go(func() error {
			collected, err := s.repo.CollectedBetween(ctx, now.AddDate(0, 0, -30), now)
			if err != nil {
				return err
			}
			summary.Cobrado30Dias = shared.Round2(collected)
			return nil
		})
		if err := g.Wait(); err != nil {
			return DashboardSummary{}, err
		}
		return summary, nil
	}

	key, err := s.cache.BuildKey(ctx, "evita", "analytics", "dashboard")
	if err != nil {
		return DashboardSummary{}, err
	}
	var summary DashboardSummary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}

// TopDebtors ranks clients by outstanding balance.
func (s *Service) TopDebtors(ctx context.Context, limit int) ([]Debtor, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	key, err := s.cache.BuildKey(ctx, "evita", "analytics", "deudores")
	if err != nil {
		return nil, err
	}
	var debtors []Debtor
	err = s.cache.FetchJSON(ctx, key, &debtors, func(ctx context.Context) (any, error) {
		return s.repo.TopDebtors(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	for i := range debtors {
		debtors[i].Pendiente = shared.Round2(debtors[i].Pendiente)
	}
	return debtors, nil
}

// Aging buckets the open balances by days past due.
func (s *Service) Aging(ctx context.Context) ([]AgingBucket, error) {
	key, err := s.cache.BuildKey(ctx, "evita", "analytics", "aging", s.now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var buckets []AgingBucket
	err = s.cache.FetchJSON(ctx, key, &buckets, func(ctx context.Context) (any, error) {
		invoices, err := s.repo.OpenInvoices(ctx)
		if err != nil {
			return nil, err
		}
		return BucketByAge(invoices, s.now()), nil
	})
	return buckets, err
}

// Invalidate bumps the cache version after ledger writes.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
