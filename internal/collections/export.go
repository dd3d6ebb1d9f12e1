package collections

import (
	"encoding/csv"
	"io"

	"github.com/evita-erp/evita-erp/internal/shared"
)

// WriteAccountsCSV serialises the per-client rollup to CSV.
func WriteAccountsCSV(w io.Writer, accounts []Account) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Cliente", "Total", "Pendiente", "Estado", "Ultimo Pago"}); err != nil {
		return err
	}
	for _, acc := range accounts {
		lastPayment := ""
		if acc.LastPayment != nil {
			lastPayment = acc.LastPayment.Format("2006-01-02")
		}
		if err := writer.Write([]string{
			acc.Client,
			shared.FormatARS(acc.TotalAmount),
			shared.FormatARS(acc.PendingAmount),
			string(acc.Status),
			lastPayment,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReceiptsCSV serialises receipts to CSV for the reprint listing.
func WriteReceiptsCSV(w io.Writer, receipts []Receipt) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Numero", "Fecha", "Cliente", "Factura", "Metodo", "Monto", "Saldo", "Manual"}); err != nil {
		return err
	}
	for _, rc := range receipts {
		factura := ""
		if rc.FacturaID != nil {
			factura = *rc.FacturaID
		}
		saldo := ""
		if rc.Saldo != nil {
			saldo = shared.FormatARS(*rc.Saldo)
		}
		manual := "no"
		if rc.Manual {
			manual = "si"
		}
		if err := writer.Write([]string{
			rc.Number,
			rc.Fecha.Format("2006-01-02"),
			rc.Cliente,
			factura,
			string(rc.Metodo),
			shared.FormatARS(rc.Monto),
			saldo,
			manual,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
