package invoicing

import "time"

// Status enumerates invoice lifecycle statuses. The stored status is
// advisory for listings, the authoritative pending amount is always
// recomputed from the payment ledger.
type Status string

const (
	StatusPendiente Status = "pendiente"
	StatusParcial   Status = "parcial"
	StatusPagado    Status = "pagado"
	StatusVencido   Status = "vencido"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPendiente, StatusParcial, StatusPagado, StatusVencido:
		return true
	}
	return false
}

// Invoice model.
type Invoice struct {
	ID        string    `json:"id"`
	Client    string    `json:"cliente"`
	Total     float64   `json:"total"`
	IssuedAt  time.Time `json:"fecha"`
	DueAt     time.Time `json:"vencimiento"`
	Status    Status    `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceInput for creating invoices. ID is optional, a sequential
// number is issued when empty.
type InvoiceInput struct {
	ID       string
	Client   string
	Total    float64
	IssuedAt time.Time
	DueAt    time.Time
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	Client string
	Status Status
	Limit  int
	Offset int
}
