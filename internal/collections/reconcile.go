package collections

import (
	"sort"
	"time"

	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// PendingForInvoice computes the outstanding balance of one invoice
// against the full payment ledger. The result is floored at zero and
// uses unrounded accumulation, rounding belongs to the presentation
// layer.
func PendingForInvoice(inv invoicing.Invoice, payments []Payment) float64 {
	var paid float64
	for _, p := range payments {
		if p.InvoiceID == inv.ID {
			paid += p.Amount
		}
	}
	pending := inv.Total - paid
	if pending < 0 {
		return 0
	}
	return pending
}

// AccountStatus derives the account level status. A fully collected
// account is pagado no matter what flags its invoices still carry; on
// an open balance, an invoice flagged vencido anywhere in the account
// forces vencido. Overdue outranks parcial.
func AccountStatus(pending, total float64, hasOverdue bool) invoicing.Status {
	switch {
	case pending <= 0:
		return invoicing.StatusPagado
	case hasOverdue:
		return invoicing.StatusVencido
	case pending < total:
		return invoicing.StatusParcial
	default:
		return invoicing.StatusPendiente
	}
}

// PlanPayment caps the requested amount at the pending balance and
// derives the resulting invoice status. Over-payments are silently
// truncated, never rejected; that matches the collections desk flow
// where the operator types the handed-over cash.
func PlanPayment(pendingBefore, requested float64) PaymentPlan {
	used := requested
	if used > pendingBefore {
		used = pendingBefore
	}
	remaining := pendingBefore - used
	if remaining < 0 {
		remaining = 0
	}
	status := invoicing.StatusParcial
	if remaining <= 0 {
		status = invoicing.StatusPagado
	}
	return PaymentPlan{UsedAmount: used, Remaining: remaining, NewStatus: status}
}

// PartialSuggestion pre-fills a payment form default. When the
// proposed amount is absent or would settle the invoice, suggest half
// of the pending balance, never below one cent.
func PartialSuggestion(pending, proposed float64) float64 {
	if proposed > 0 && proposed < pending {
		return proposed
	}
	half := shared.Round2(pending / 2)
	if half < 0.01 {
		return 0.01
	}
	return half
}

// AggregateAccounts rolls invoices and payments up into per-client
// accounts. Invoices flagged vencido drive the overdue precedence; the
// stored flag is the trigger, due dates are not compared here.
func AggregateAccounts(invoices []invoicing.Invoice, payments []Payment) []Account {
	type rollup struct {
		total      float64
		pending    float64
		overdue    bool
		lastPaid   time.Time
		hasPayment bool
	}
	byClient := make(map[string]*rollup)

	for _, inv := range invoices {
		acc := byClient[inv.Client]
		if acc == nil {
			acc = &rollup{}
			byClient[inv.Client] = acc
		}
		acc.total += inv.Total
		acc.pending += PendingForInvoice(inv, payments)
		if inv.Status == invoicing.StatusVencido {
			acc.overdue = true
		}
	}

	for _, p := range payments {
		acc := byClient[p.Client]
		if acc == nil {
			continue
		}
		if !acc.hasPayment || p.Date.After(acc.lastPaid) {
			acc.lastPaid = p.Date
			acc.hasPayment = true
		}
	}

	accounts := make([]Account, 0, len(byClient))
	for client, acc := range byClient {
		account := Account{
			Client:        client,
			TotalAmount:   acc.total,
			PendingAmount: acc.pending,
			Status:        AccountStatus(acc.pending, acc.total, acc.overdue),
		}
		if acc.hasPayment {
			last := acc.lastPaid
			account.LastPayment = &last
		}
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Client < accounts[j].Client })
	return accounts
}
