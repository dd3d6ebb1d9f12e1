package collections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/evita-erp/evita-erp/internal/platform/httpx"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// ReceiptRenderer produces the printable PDF for one receipt.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, rc Receipt) ([]byte, error)
}

// AccountsExporter produces the accounts listing as a PDF document.
type AccountsExporter interface {
	AccountsPDF(ctx context.Context, accounts []Account) ([]byte, error)
}

// Handler manages collections endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer ReceiptRenderer
	exporter AccountsExporter
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer ReceiptRenderer, exporter AccountsExporter) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer, exporter: exporter, validate: validator.New()}
}

// MountRoutes registers collections routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cuentas", h.listAccounts)
	r.Get("/cuentas/export.csv", h.exportAccountsCSV)
	r.Get("/cuentas/export.pdf", h.exportAccountsPDF)
	r.Get("/facturas/{id}", h.getStatement)
	r.Get("/facturas/{id}/sugerencia", h.suggestPartial)
	r.Post("/pagos", h.registerPayment)
	r.Get("/recibos", h.listReceipts)
	r.Post("/recibos", h.createManualReceipt)
	r.Get("/recibos/{numero}", h.getReceipt)
	r.Get("/recibos/{numero}/pdf", h.receiptPDF)
}

type registerPaymentRequest struct {
	FacturaID string  `json:"factura_id" validate:"required"`
	Monto     float64 `json:"monto" validate:"required"`
	Metodo    string  `json:"metodo" validate:"required"`
	Fecha     string  `json:"fecha"`
}

type manualReceiptRequest struct {
	Cliente   string  `json:"cliente" validate:"required"`
	FacturaID string  `json:"factura_id"`
	Metodo    string  `json:"metodo" validate:"required"`
	Monto     float64 `json:"monto" validate:"required"`
	Fecha     string  `json:"fecha"`
	Nota      string  `json:"nota"`
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if accounts == nil {
		accounts = []Account{}
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
	stmt, err := h.service.GetStatement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	// Balances are rounded at the edge only.
	stmt.PaidSum = shared.Round2(stmt.PaidSum)
	stmt.Pending = shared.Round2(stmt.Pending)
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) suggestPartial(w http.ResponseWriter, r *http.Request) {
	proposed, _ := strconv.ParseFloat(r.URL.Query().Get("monto"), 64)
	suggestion, err := h.service.SuggestPartial(r.Context(), chi.URLParam(r, "id"), proposed)
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"sugerencia": suggestion})
}

func (h *Handler) registerPayment(w http.ResponseWriter, r *http.Request) {
	var req registerPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := parseDate(req.Fecha)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fecha invalida")
		return
	}

	result, err := h.service.RegisterPayment(r.Context(), RegisterPaymentInput{
		InvoiceID: req.FacturaID,
		Amount:    req.Monto,
		Method:    Method(req.Metodo),
		Date:      date,
	})
	if err != nil {
		h.logger.Warn("register payment", slog.String("factura", req.FacturaID), slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	result.UsedAmount = shared.Round2(result.UsedAmount)
	result.Remaining = shared.Round2(result.Remaining)
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	filter := ReceiptFilter{Cliente: r.URL.Query().Get("cliente"), Limit: 200}
	if raw := r.URL.Query().Get("manual"); raw != "" {
		manual := raw == "true" || raw == "1"
		filter.Manual = &manual
	}

	receipts, err := h.service.ListReceipts(r.Context(), filter)
	if err != nil {
		h.logger.Error("list receipts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if receipts == nil {
		receipts = []Receipt{}
	}
	httpx.JSON(w, http.StatusOK, receipts)
}

func (h *Handler) createManualReceipt(w http.ResponseWriter, r *http.Request) {
	var req manualReceiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	fecha, err := parseDate(req.Fecha)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fecha invalida")
		return
	}

	receipt, err := h.service.CreateManualReceipt(r.Context(), ManualReceiptInput{
		Cliente:   req.Cliente,
		FacturaID: req.FacturaID,
		Metodo:    Method(req.Metodo),
		Fecha:     fecha,
		Monto:     req.Monto,
		Nota:      req.Nota,
	})
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.GetReceipt(r.Context(), chi.URLParam(r, "numero"))
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) receiptPDF(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "numero")
	receipt, err := h.service.GetReceipt(r.Context(), number)
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	pdf, err := h.renderer.RenderReceipt(r.Context(), *receipt)
	if err != nil {
		h.logger.Error("render receipt pdf", slog.String("numero", number), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "el servicio de PDF no esta disponible")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", number+".pdf"))
	_, _ = w.Write(pdf)
}

func (h *Handler) exportAccountsPDF(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.exporter.AccountsPDF(r.Context(), accounts)
	if err != nil {
		h.logger.Error("export accounts pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "el servicio de PDF no esta disponible")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="cuentas-corrientes.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) exportAccountsCSV(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="cuentas-corrientes.csv"`)
	if err := WriteAccountsCSV(w, accounts); err != nil {
		h.logger.Error("export accounts csv", slog.Any("error", err))
	}
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: factura o recibo", httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNothingOutstanding), errors.Is(err, shared.ErrValidation):
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	default:
		return err
	}
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
