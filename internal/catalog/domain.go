package catalog

import "time"

// Product is one sellable item. FinalPrice is the list price derived
// from the purchase price and the margin percentage.
type Product struct {
	ID            int64     `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"nombre"`
	SupplierID    int64     `json:"proveedor_id"`
	PurchasePrice float64   `json:"precio_compra"`
	Margin        float64   `json:"margen_ganancia"`
	FinalPrice    float64   `json:"precio_final"`
	Stock         int64     `json:"stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductInput carries fields for creating or updating a product.
type ProductInput struct {
	SKU           string
	Name          string
	SupplierID    int64
	PurchasePrice float64
	Margin        float64
	Stock         int64
}

// ListFilter narrows product listings.
type ListFilter struct {
	SupplierID int64
	Search     string
	Limit      int
	Offset     int
}

// PriceRow is one row of an imported supplier price list. Matching
// tries SKU first, then numeric ID, then exact name.
type PriceRow struct {
	SKU   string  `json:"sku"`
	ID    int64   `json:"id"`
	Name  string  `json:"nombre"`
	Price float64 `json:"precio"`
	Stock float64 `json:"stock"`
}

// ImportSummary reports the outcome of a price list import.
type ImportSummary struct {
	Updated  int      `json:"actualizados"`
	NotFound []string `json:"no_encontrados"`
}
