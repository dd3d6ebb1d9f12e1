package report

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/evita-erp/evita-erp/internal/collections"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// Renderer turns domain documents into PDFs via Gotenberg. It
// implements collections.ReceiptRenderer and collections.AccountsExporter.
type Renderer struct {
	client *Client
}

// NewRenderer constructs a Renderer on top of a Gotenberg client.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client}
}

var receiptTemplate = template.Must(template.New("recibo").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
  h1 { font-size: 20px; border-bottom: 2px solid #222; padding-bottom: 8px; }
  table { width: 100%; border-collapse: collapse; margin-top: 24px; }
  td { padding: 6px 4px; vertical-align: top; }
  td.label { width: 35%; color: #666; }
  .monto { font-size: 18px; font-weight: bold; }
  .nota { margin-top: 32px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<h1>Recibo {{.Numero}}</h1>
<table>
  <tr><td class="label">Fecha</td><td>{{.Fecha}}</td></tr>
  <tr><td class="label">Cliente</td><td>{{.Cliente}}</td></tr>
  {{if .Factura}}<tr><td class="label">Factura</td><td>{{.Factura}}</td></tr>{{end}}
  <tr><td class="label">Medio de pago</td><td>{{.Metodo}}</td></tr>
  <tr><td class="label">Importe</td><td class="monto">{{.Monto}}</td></tr>
  {{if .Saldo}}<tr><td class="label">Saldo pendiente</td><td>{{.Saldo}}</td></tr>{{end}}
</table>
{{if .Nota}}<p class="nota">{{.Nota}}</p>{{end}}
</body>
</html>`))

var accountsTemplate = template.Must(template.New("cuentas").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
  h1 { font-size: 20px; border-bottom: 2px solid #222; padding-bottom: 8px; }
  table { width: 100%; border-collapse: collapse; margin-top: 24px; font-size: 13px; }
  th { text-align: left; border-bottom: 1px solid #999; padding: 6px 4px; }
  td { padding: 6px 4px; border-bottom: 1px solid #eee; }
  td.num { text-align: right; }
  tr.vencido td { color: #b00020; }
</style>
</head>
<body>
<h1>Cuentas corrientes al {{.Fecha}}</h1>
<table>
  <tr><th>Cliente</th><th>Total</th><th>Pendiente</th><th>Estado</th><th>Ultimo pago</th></tr>
  {{range .Cuentas}}
  <tr class="{{.Estado}}">
    <td>{{.Cliente}}</td>
    <td class="num">{{.Total}}</td>
    <td class="num">{{.Pendiente}}</td>
    <td>{{.Estado}}</td>
    <td>{{.UltimoPago}}</td>
  </tr>
  {{end}}
</table>
</body>
</html>`))

type receiptView struct {
	Numero  string
	Fecha   string
	Cliente string
	Factura string
	Metodo  string
	Monto   string
	Saldo   string
	Nota    string
}

type accountView struct {
	Cliente    string
	Total      string
	Pendiente  string
	Estado     string
	UltimoPago string
}

type accountsView struct {
	Fecha   string
	Cuentas []accountView
}

// RenderReceipt renders one receipt as a PDF.
func (r *Renderer) RenderReceipt(ctx context.Context, receipt collections.Receipt) ([]byte, error) {
	view := receiptView{
		Numero:  receipt.Number,
		Fecha:   receipt.Fecha.Format("02/01/2006"),
		Cliente: receipt.Cliente,
		Metodo:  string(receipt.Metodo),
		Monto:   shared.FormatARS(receipt.Monto),
		Nota:    receipt.Nota,
	}
	if receipt.FacturaID != nil {
		view.Factura = *receipt.FacturaID
	}
	if receipt.Saldo != nil {
		view.Saldo = shared.FormatARS(*receipt.Saldo)
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, buf.String())
}

// AccountsPDF renders the accounts receivable rollup as a PDF.
func (r *Renderer) AccountsPDF(ctx context.Context, accounts []collections.Account) ([]byte, error) {
	view := accountsView{
		Fecha:   time.Now().Format("02/01/2006"),
		Cuentas: make([]accountView, 0, len(accounts)),
	}
	for _, account := range accounts {
		row := accountView{
			Cliente:   account.Client,
			Total:     shared.FormatARS(account.TotalAmount),
			Pendiente: shared.FormatARS(account.PendingAmount),
			Estado:    string(account.Status),
		}
		if account.LastPayment != nil {
			row.UltimoPago = account.LastPayment.Format("02/01/2006")
		}
		view.Cuentas = append(view.Cuentas, row)
	}

	var buf bytes.Buffer
	if err := accountsTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, buf.String())
}
