package analytics

import (
	"time"

	"github.com/evita-erp/evita-erp/internal/shared"
)

var agingRanges = []struct {
	label string
	from  int
	to    int
}{
	{"al dia", -1 << 31, 0},
	{"1-30", 1, 30},
	{"31-60", 31, 60},
	{"61-90", 61, 90},
	{"mas de 90", 91, 1 << 31},
}

// BucketByAge distributes open balances into the standard aging
// columns. Invoices not yet due land in "al dia".
func BucketByAge(invoices []OpenInvoice, asOf time.Time) []AgingBucket {
	buckets := make([]AgingBucket, len(agingRanges))
	for i, r := range agingRanges {
		buckets[i] = AgingBucket{Label: r.label}
	}

	for _, inv := range invoices {
		days := daysPastDue(inv.DueAt, asOf)
		for i, r := range agingRanges {
			if days >= r.from && days <= r.to {
				buckets[i].Amount += inv.Pending
				buckets[i].Count++
				break
			}
		}
	}

	for i := range buckets {
		buckets[i].Amount = shared.Round2(buckets[i].Amount)
	}
	return buckets
}

func daysPastDue(dueAt, asOf time.Time) int {
	due := time.Date(dueAt.Year(), dueAt.Month(), dueAt.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(due).Hours() / 24)
}
