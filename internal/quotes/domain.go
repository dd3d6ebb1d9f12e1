package quotes

import "time"

// QuoteStatus enumerates quote lifecycle states.
type QuoteStatus string

const (
	QuoteBorrador  QuoteStatus = "borrador"
	QuoteEnviado   QuoteStatus = "enviado"
	QuoteAceptado  QuoteStatus = "aceptado"
	QuoteRechazado QuoteStatus = "rechazado"
	QuoteFacturado QuoteStatus = "facturado"
)

// Valid reports whether the status is a known value.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteBorrador, QuoteEnviado, QuoteAceptado, QuoteRechazado, QuoteFacturado:
		return true
	}
	return false
}

// Quote is a sales quotation. Once accepted it can be converted to an
// invoice exactly once; InvoiceID records the result.
type Quote struct {
	ID        string      `json:"id"`
	Client    string      `json:"cliente"`
	IssuedAt  time.Time   `json:"fecha"`
	ValidTo   time.Time   `json:"validez"`
	Status    QuoteStatus `json:"estado"`
	Total     float64     `json:"total"`
	Lines     []QuoteLine `json:"items,omitempty"`
	InvoiceID *string     `json:"factura_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// QuoteLine is one item of a quote.
type QuoteLine struct {
	ID          int64   `json:"id"`
	QuoteID     string  `json:"presupuesto_id"`
	Description string  `json:"descripcion"`
	Quantity    float64 `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario"`
}

// QuoteInput for creating quotes.
type QuoteInput struct {
	Client   string
	IssuedAt time.Time
	ValidTo  time.Time
	Lines    []QuoteLineInput
}

// QuoteLineInput is one requested item.
type QuoteLineInput struct {
	Description string
	Quantity    float64
	UnitPrice   float64
}

// ListFilter narrows quote listings.
type ListFilter struct {
	Client string
	Status QuoteStatus
	Limit  int
}
