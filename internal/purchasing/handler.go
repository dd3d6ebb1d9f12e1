package purchasing

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

// OrderRenderer produces the printable PDF for one purchase order.
type OrderRenderer interface {
	RenderOrder(ctx context.Context, order Order, supplierName string) ([]byte, error)
}

// Handler manages purchasing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer OrderRenderer
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer OrderRenderer) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer, validate: validator.New()}
}

// MountRoutes registers purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Post("/", h.createOrder)
	r.Get("/{id}", h.getOrder)
	r.Get("/{id}/pdf", h.orderPDF)
	r.Post("/{id}/recibir", h.receiveOrder)
	r.Post("/{id}/anular", h.cancelOrder)
}

type createOrderRequest struct {
	ProveedorID int64              `json:"proveedor_id" validate:"required,gt=0"`
	Cotizacion  string             `json:"cotizacion_ref"`
	Fecha       string             `json:"fecha"`
	Items       []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderItemRequest struct {
	ProductoID  int64   `json:"producto_id"`
	Descripcion string  `json:"descripcion"`
	Cantidad    float64 `json:"cantidad" validate:"gt=0"`
	Precio      float64 `json:"precio_unitario" validate:"gte=0"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("proveedor_id"), 10, 64)
	orders, err := h.service.ListOrders(r.Context(), ListFilter{
		SupplierID: supplierID,
		Status:     OrderStatus(r.URL.Query().Get("estado")),
		Limit:      200,
	})
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var issuedAt time.Time
	if req.Fecha != "" {
		var err error
		issuedAt, err = time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fecha invalida")
			return
		}
	}

	lines := make([]OrderLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, OrderLineInput{
			ProductID:   item.ProductoID,
			Description: item.Descripcion,
			Quantity:    item.Cantidad,
			UnitPrice:   item.Precio,
		})
	}

	order, err := h.service.CreateOrder(r.Context(), OrderInput{
		SupplierID: req.ProveedorID,
		QuoteRef:   req.Cotizacion,
		IssuedAt:   issuedAt,
		Lines:      lines,
	})
	if err != nil {
		h.logger.Warn("create order", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) orderPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	supplierName := ""
	if supplier, err := h.service.SupplierFor(r.Context(), order); err == nil {
		supplierName = supplier.Name
	}
	pdf, err := h.renderer.RenderOrder(r.Context(), *order, supplierName)
	if err != nil {
		h.logger.Error("render order pdf", slog.String("orden", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "el servicio de PDF no esta disponible")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	_, _ = w.Write(pdf)
}

func (h *Handler) receiveOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReceiveOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.NoContent(w)
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: orden o proveedor", httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateReference):
		return fmt.Errorf("%w: %s", httpx.ErrDuplicate, err)
	case errors.Is(err, shared.ErrValidation):
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	default:
		return err
	}
}
