package suppliers

import "time"

// Supplier is a vendor the business buys stock from. PaymentTerms is
// free text as entered by the user ("contado", "Net 30", "60 dias").
type Supplier struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	CUIT         string    `json:"cuit"`
	Email        string    `json:"email"`
	Phone        string    `json:"telefono"`
	PaymentTerms string    `json:"condiciones_pago"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SupplierInput carries fields for creating or updating a supplier.
type SupplierInput struct {
	Name         string
	CUIT         string
	Email        string
	Phone        string
	PaymentTerms string
}
