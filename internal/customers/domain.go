package customers

import "time"

// Customer is a client account. The collections ledger references
// customers by name, so Name is unique in practice.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	CUIT      string    `json:"cuit"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefono"`
	Address   string    `json:"direccion"`
	Notes     string    `json:"notas"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerInput carries fields for creating or updating a customer.
type CustomerInput struct {
	Name    string
	CUIT    string
	Email   string
	Phone   string
	Address string
	Notes   string
}
