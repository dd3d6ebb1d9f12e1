package invoicing

import (
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

// Handler manages invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listInvoices)
	r.Post("/", h.createInvoice)
	r.Get("/{id}", h.getInvoice)
}

type createInvoiceRequest struct {
	ID          string  `json:"id"`
	Cliente     string  `json:"cliente" validate:"required"`
	Total       float64 `json:"total" validate:"gte=0"`
	Fecha       string  `json:"fecha"`
	Vencimiento string  `json:"vencimiento"`
}

type listInvoicesResponse struct {
	Facturas   []Invoice         `json:"facturas"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Client: r.URL.Query().Get("cliente"),
		Status: Status(r.URL.Query().Get("estado")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "estado desconocido")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	total, err := h.service.CountInvoices(r.Context(), filter)
	if err != nil {
		h.logger.Error("count invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	filter.Limit = pagination.PerPage
	filter.Offset = pagination.Offset()

	invoices, err := h.service.ListInvoices(r.Context(), filter)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, listInvoicesResponse{Facturas: invoices, Pagination: pagination})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	issuedAt, err := parseDate(req.Fecha)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fecha invalida")
		return
	}
	dueAt, err := parseDate(req.Vencimiento)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "vencimiento invalido")
		return
	}

	inv, err := h.service.CreateInvoice(r.Context(), InvoiceInput{
		ID:       req.ID,
		Client:   req.Cliente,
		Total:    req.Total,
		IssuedAt: issuedAt,
		DueAt:    dueAt,
	})
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func mapDomainError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: factura", httpx.ErrNotFound)
	}
	if errors.Is(err, shared.ErrValidation) {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return err
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
