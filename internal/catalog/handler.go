package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/evita-erp/evita-erp/internal/platform/httpx"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// Handler manages product catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Post("/", h.createProduct)
	r.Get("/{id}", h.getProduct)
	r.Put("/{id}", h.updateProduct)
	r.Delete("/{id}", h.deleteProduct)
	r.Post("/importar/{proveedorId}", h.importPrices)
}

// MountPriceRoutes registers the bulk repricing route. The SPA calls
// it with the margin embedded in the path.
func (h *Handler) MountPriceRoutes(r chi.Router) {
	r.Post("/{proveedorId}/{margen}", h.updateSupplierMargin)
}

type productRequest struct {
	SKU         string  `json:"sku"`
	Nombre      string  `json:"nombre" validate:"required"`
	ProveedorID int64   `json:"proveedor_id" validate:"required,gt=0"`
	Compra      float64 `json:"precio_compra" validate:"gte=0"`
	Margen      float64 `json:"margen_ganancia" validate:"gte=0"`
	Stock       int64   `json:"stock" validate:"gte=0"`
}

func (req productRequest) toInput() ProductInput {
	return ProductInput{
		SKU:           req.SKU,
		Name:          req.Nombre,
		SupplierID:    req.ProveedorID,
		PurchasePrice: req.Compra,
		Margin:        req.Margen,
		Stock:         req.Stock,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("proveedor_id"), 10, 64)
	products, err := h.service.ListProducts(r.Context(), ListFilter{
		SupplierID: supplierID,
		Search:     r.URL.Query().Get("q"),
		Limit:      500,
	})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "id invalido")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "id invalido")
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.UpdateProduct(r.Context(), id, req.toInput()); err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "id invalido")
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) updateSupplierMargin(w http.ResponseWriter, r *http.Request) {
	supplierID, err := parseID(r, "proveedorId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "proveedor invalido")
		return
	}
	margin, err := strconv.ParseFloat(chi.URLParam(r, "margen"), 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "margen invalido")
		return
	}

	count, err := h.service.UpdateSupplierMargin(r.Context(), supplierID, margin)
	if err != nil {
		h.logger.Warn("update supplier margin", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"actualizados": count})
}

func (h *Handler) importPrices(w http.ResponseWriter, r *http.Request) {
	supplierID, err := parseID(r, "proveedorId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "proveedor invalido")
		return
	}
	var rows []PriceRow
	if err := httpx.DecodeJSON(r, &rows); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	summary, err := h.service.ImportPrices(r.Context(), supplierID, rows)
	if err != nil {
		h.logger.Error("import prices", slog.Any("error", err))
		httpx.RespondError(w, mapDomainError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: %s", httpx.ErrNotFound, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	default:
		return err
	}
}
