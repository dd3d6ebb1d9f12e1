package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := orderTemplate.Execute(&buf, orderView{
		Numero:      "PO-000012",
		Proveedor:   "Distribuidora Belgrano SRL",
		Cotizacion:  "COT-2041",
		Fecha:       "05/03/2026",
		Vencimiento: "04/04/2026",
		Estado:      "pendiente",
		Items: []orderItemView{
			{Descripcion: "Cemento portland 50kg", Cantidad: 40, Precio: "$ 9.100,50", Subtotal: "$ 364.020,00"},
		},
		Total: "$ 364.020,00",
	})
	require.NoError(t, err)

	html := buf.String()
	require.True(t, strings.Contains(html, "Orden de compra PO-000012"))
	require.True(t, strings.Contains(html, "Distribuidora Belgrano SRL"))
	require.True(t, strings.Contains(html, "COT-2041"))
	require.True(t, strings.Contains(html, "$ 364.020,00"))
}

func TestOrderTemplateOmitsEmptyQuoteRef(t *testing.T) {
	var buf bytes.Buffer
	err := orderTemplate.Execute(&buf, orderView{
		Numero:      "PO-000013",
		Proveedor:   "Casa Rivadavia",
		Fecha:       "05/03/2026",
		Vencimiento: "05/03/2026",
		Estado:      "pendiente",
		Total:       "$ 0,00",
	})
	require.NoError(t, err)
	require.False(t, strings.Contains(buf.String(), "Cotizacion<"))
}
