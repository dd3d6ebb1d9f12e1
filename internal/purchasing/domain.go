package purchasing

import (
	"errors"
	"time"
)

// OrderStatus enumerates purchase order statuses.
type OrderStatus string

const (
	OrderPendiente OrderStatus = "pendiente"
	OrderRecibida  OrderStatus = "recibida"
	OrderAnulada   OrderStatus = "anulada"
)

// ErrDuplicateReference indicates a supplier quote reference that is
// already booked on another order.
var ErrDuplicateReference = errors.New("purchasing: quote reference already used")

// Order model. The sequential PO number doubles as the identifier.
type Order struct {
	ID         string      `json:"id"`
	SupplierID int64       `json:"proveedor_id"`
	QuoteRef   string      `json:"cotizacion_ref,omitempty"`
	IssuedAt   time.Time   `json:"fecha"`
	DueAt      time.Time   `json:"vencimiento"`
	Status     OrderStatus `json:"estado"`
	Total      float64     `json:"total"`
	Lines      []OrderLine `json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderLine is one item of a purchase order.
type OrderLine struct {
	ID          int64   `json:"id"`
	OrderID     string  `json:"orden_id"`
	ProductID   int64   `json:"producto_id"`
	Description string  `json:"descripcion"`
	Quantity    float64 `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario"`
}

// OrderInput for creating purchase orders.
type OrderInput struct {
	SupplierID int64
	QuoteRef   string
	IssuedAt   time.Time
	Lines      []OrderLineInput
}

// OrderLineInput is one requested item.
type OrderLineInput struct {
	ProductID   int64
	Description string
	Quantity    float64
	UnitPrice   float64
}

// ListFilter narrows order listings.
type ListFilter struct {
	SupplierID int64
	Status     OrderStatus
	Limit      int
}
