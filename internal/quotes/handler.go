package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/evita-erp/evita-erp/internal/platform/httpx"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// Handler manages quote endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers quote routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listQuotes)
	r.Post("/", h.createQuote)
	r.Get("/{id}", h.getQuote)
	r.Post("/{id}/enviar", h.sendQuote)
	r.Post("/{id}/aceptar", h.acceptQuote)
	r.Post("/{id}/rechazar", h.rejectQuote)
	r.Post("/{id}/facturar", h.convertQuote)
}

type createQuoteRequest struct {
	Cliente string             `json:"cliente" validate:"required"`
	Fecha   string             `json:"fecha"`
	Validez string             `json:"validez"`
	Items   []quoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

type quoteItemRequest struct {
	Descripcion string  `json:"descripcion" validate:"required"`
	Cantidad    float64 `json:"cantidad" validate:"gt=0"`
	Precio      float64 `json:"precio_unitario" validate:"gte=0"`
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Client: r.URL.Query().Get("cliente"),
		Status: QuoteStatus(r.URL.Query().Get("estado")),
		Limit:  200,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "estado desconocido")
		return
	}

	list, err := h.service.ListQuotes(r.Context(), filter)
	if err != nil {
		h.logger.Error("list quotes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Quote{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) createQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
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
	validTo, err := parseDate(req.Validez)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validez invalida")
		return
	}

	lines := make([]QuoteLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, QuoteLineInput{
			Description: item.Descripcion,
			Quantity:    item.Cantidad,
			UnitPrice:   item.Precio,
		})
	}

	quote, err := h.service.CreateQuote(r.Context(), QuoteInput{
		Client:   req.Cliente,
		IssuedAt: issuedAt,
		ValidTo:  validTo,
		Lines:    lines,
	})
	if err != nil {
		h.logger.Error("create quote", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) sendQuote(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.SendQuote)
}

func (h *Handler) acceptQuote(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptQuote)
}

func (h *Handler) rejectQuote(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RejectQuote)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error) {
	if err := fn(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) convertQuote(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.ConvertToInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warn("convert quote", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: presupuesto", httpx.ErrNotFound)
	case errors.Is(err, shared.ErrValidation):
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
