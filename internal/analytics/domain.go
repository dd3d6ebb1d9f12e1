package analytics

import "time"

// DashboardSummary holds the headline collection indicators.
type DashboardSummary struct {
	TotalFacturado   float64 `json:"total_facturado"`
	TotalPendiente   float64 `json:"total_pendiente"`
	CobradoDelMes    float64 `json:"cobrado_del_mes"`
	Cobrado7Dias     float64 `json:"cobrado_7_dias"`
	Cobrado30Dias    float64 `json:"cobrado_30_dias"`
	FacturasAbiertas int64   `json:"facturas_abiertas"`
	FacturasVencidas int64   `json:"facturas_vencidas"`
}

// Debtor is one row of the top debtors ranking.
type Debtor struct {
	Client    string  `json:"cliente"`
	Pendiente float64 `json:"pendiente"`
}

// OpenInvoice is the minimal invoice view the aging report needs.
type OpenInvoice struct {
	Client  string
	Pending float64
	DueAt   time.Time
}

// AgingBucket is one column of the receivables aging report.
type AgingBucket struct {
	Label  string  `json:"rango"`
	Amount float64 `json:"monto"`
	Count  int64   `json:"cantidad"`
}
