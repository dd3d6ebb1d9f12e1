package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReceiptTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := receiptTemplate.Execute(&buf, receiptView{
		Numero:  "RC-000042",
		Fecha:   "10/02/2026",
		Cliente: "Corralon El Obrero",
		Factura: "FC-000007",
		Metodo:  "transferencia",
		Monto:   "$ 12.500,00",
		Saldo:   "$ 3.000,00",
	})
	require.NoError(t, err)

	html := buf.String()
	require.True(t, strings.Contains(html, "Recibo RC-000042"))
	require.True(t, strings.Contains(html, "Corralon El Obrero"))
	require.True(t, strings.Contains(html, "FC-000007"))
	require.True(t, strings.Contains(html, "$ 12.500,00"))
	require.True(t, strings.Contains(html, "Saldo pendiente"))
}

func TestReceiptTemplateOmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	err := receiptTemplate.Execute(&buf, receiptView{
		Numero:  "RC-000001",
		Fecha:   "01/03/2026",
		Cliente: "Consumidor Final",
		Metodo:  "efectivo",
		Monto:   "$ 500,00",
	})
	require.NoError(t, err)

	html := buf.String()
	require.False(t, strings.Contains(html, "Factura"))
	require.False(t, strings.Contains(html, "Saldo pendiente"))
}

func TestAccountsTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := accountsTemplate.Execute(&buf, accountsView{
		Fecha: "15/03/2026",
		Cuentas: []accountView{
			{Cliente: "Corralon El Obrero", Total: "$ 10.000,00", Pendiente: "$ 4.000,00", Estado: "parcial", UltimoPago: "10/03/2026"},
			{Cliente: "Obras Anexas SRL", Total: "$ 5.000,00", Pendiente: "$ 5.000,00", Estado: "vencido"},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	require.True(t, strings.Contains(html, "Cuentas corrientes al 15/03/2026"))
	require.True(t, strings.Contains(html, `class="vencido"`))
	require.True(t, strings.Contains(html, "$ 4.000,00"))
}
