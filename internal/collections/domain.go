package collections

import (
	"errors"
	"time"

	"github.com/evita-erp/evita-erp/internal/invoicing"
)

// Method enumerates accepted payment methods.
type Method string

const (
	MethodEfectivo      Method = "efectivo"
	MethodTransferencia Method = "transferencia"
	MethodMercadoPago   Method = "mercado-pago"
	MethodTarjeta       Method = "tarjeta"
	MethodCheque        Method = "cheque"
)

// Valid reports whether the method is one of the accepted values.
func (m Method) Valid() bool {
	switch m {
	case MethodEfectivo, MethodTransferencia, MethodMercadoPago, MethodTarjeta, MethodCheque:
		return true
	}
	return false
}

var (
	// ErrInvalidAmount indicates a non-positive payment amount.
	ErrInvalidAmount = errors.New("collections: amount must be positive")
	// ErrNothingOutstanding indicates a payment attempt against an
	// invoice with zero pending balance.
	ErrNothingOutstanding = errors.New("collections: invoice has no outstanding balance")
)

// Payment is one entry of the append-only payment ledger. Records are
// never mutated or deleted.
type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"factura_id"`
	Client    string    `json:"cliente"`
	Amount    float64   `json:"monto"`
	Method    Method    `json:"metodo"`
	Date      time.Time `json:"fecha"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt is a printable proof of payment. Manual receipts carry no
// ledger link and never influence balances.
type Receipt struct {
	Number    string    `json:"numero"`
	Fecha     time.Time `json:"fecha"`
	Cliente   string    `json:"cliente"`
	FacturaID *string   `json:"factura_id"`
	Metodo    Method    `json:"metodo"`
	Monto     float64   `json:"monto"`
	Saldo     *float64  `json:"saldo"`
	Manual    bool      `json:"manual"`
	Nota      string    `json:"nota,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is the per-client rollup derived from invoices and payments.
// It is never persisted, always recomputed from snapshots.
type Account struct {
	Client        string           `json:"cliente"`
	TotalAmount   float64          `json:"total"`
	PendingAmount float64          `json:"pendiente"`
	Status        invoicing.Status `json:"estado"`
	LastPayment   *time.Time       `json:"ultimo_pago,omitempty"`
}

// PaymentPlan is the outcome of planning a payment against the current
// pending balance.
type PaymentPlan struct {
	UsedAmount float64
	Remaining  float64
	NewStatus  invoicing.Status
}

// RegisterPaymentInput carries a payment registration request.
type RegisterPaymentInput struct {
	InvoiceID string
	Amount    float64
	Method    Method
	Date      time.Time
}

// PaymentResult reports the effect of a registered payment.
type PaymentResult struct {
	Payment    Payment          `json:"pago"`
	UsedAmount float64          `json:"monto_aplicado"`
	Remaining  float64          `json:"saldo"`
	NewStatus  invoicing.Status `json:"estado"`
	Receipt    *Receipt         `json:"recibo,omitempty"`
}

// ManualReceiptInput carries a manual receipt request.
type ManualReceiptInput struct {
	Cliente   string
	FacturaID string
	Metodo    Method
	Fecha     time.Time
	Monto     float64
	Nota      string
}

// InvoiceStatement is the detail view of one invoice with its ledger.
type InvoiceStatement struct {
	Invoice  invoicing.Invoice `json:"factura"`
	Payments []Payment         `json:"pagos"`
	PaidSum  float64           `json:"pagado"`
	Pending  float64           `json:"pendiente"`
}

// ReceiptFilter narrows receipt listings.
type ReceiptFilter struct {
	Cliente string
	Manual  *bool
	Limit   int
}
