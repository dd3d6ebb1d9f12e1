package report

import (
	"bytes"
	"context"
	"html/template"

	"github.com/evita-erp/evita-erp/internal/purchasing"
	"github.com/evita-erp/evita-erp/internal/shared"
)

var orderTemplate = template.Must(template.New("orden").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
  h1 { font-size: 20px; border-bottom: 2px solid #222; padding-bottom: 8px; }
  table.meta { margin-top: 16px; }
  table.meta td { padding: 4px 12px 4px 0; }
  table.meta td.label { color: #666; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 24px; font-size: 13px; }
  th { text-align: left; border-bottom: 1px solid #999; padding: 6px 4px; }
  td { padding: 6px 4px; border-bottom: 1px solid #eee; }
  td.num { text-align: right; }
  tr.total td { border-top: 2px solid #222; border-bottom: none; font-weight: bold; }
</style>
</head>
<body>
<h1>Orden de compra {{.Numero}}</h1>
<table class="meta">
  <tr><td class="label">Proveedor</td><td>{{.Proveedor}}</td></tr>
  {{if .Cotizacion}}<tr><td class="label">Cotizacion</td><td>{{.Cotizacion}}</td></tr>{{end}}
  <tr><td class="label">Fecha</td><td>{{.Fecha}}</td></tr>
  <tr><td class="label">Vencimiento</td><td>{{.Vencimiento}}</td></tr>
  <tr><td class="label">Estado</td><td>{{.Estado}}</td></tr>
</table>
<table class="items">
  <tr><th>Descripcion</th><th>Cantidad</th><th>Precio unitario</th><th>Subtotal</th></tr>
  {{range .Items}}
  <tr>
    <td>{{.Descripcion}}</td>
    <td class="num">{{.Cantidad}}</td>
    <td class="num">{{.Precio}}</td>
    <td class="num">{{.Subtotal}}</td>
  </tr>
  {{end}}
  <tr class="total"><td colspan="3">Total</td><td class="num">{{.Total}}</td></tr>
</table>
</body>
</html>`))

type orderItemView struct {
	Descripcion string
	Cantidad    float64
	Precio      string
	Subtotal    string
}

type orderView struct {
	Numero      string
	Proveedor   string
	Cotizacion  string
	Fecha       string
	Vencimiento string
	Estado      string
	Items       []orderItemView
	Total       string
}

// RenderOrder renders a purchase order as a PDF.
func (r *Renderer) RenderOrder(ctx context.Context, order purchasing.Order, supplierName string) ([]byte, error) {
	view := orderView{
		Numero:      order.ID,
		Proveedor:   supplierName,
		Cotizacion:  order.QuoteRef,
		Fecha:       order.IssuedAt.Format("02/01/2006"),
		Vencimiento: order.DueAt.Format("02/01/2006"),
		Estado:      string(order.Status),
		Items:       make([]orderItemView, 0, len(order.Lines)),
		Total:       shared.FormatARS(order.Total),
	}
	for _, line := range order.Lines {
		view.Items = append(view.Items, orderItemView{
			Descripcion: line.Description,
			Cantidad:    line.Quantity,
			Precio:      shared.FormatARS(line.UnitPrice),
			Subtotal:    shared.FormatARS(line.Quantity * line.UnitPrice),
		})
	}

	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, buf.String())
}
