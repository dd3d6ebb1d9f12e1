package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/evita-erp/evita-erp/internal/platform/httpx"
)

// Handler exposes the dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/deudores", h.topDebtors)
	r.Get("/aging", h.aging)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) topDebtors(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	debtors, err := h.service.TopDebtors(r.Context(), limit)
	if err != nil {
		h.logger.Error("top debtors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if debtors == nil {
		debtors = []Debtor{}
	}
	httpx.JSON(w, http.StatusOK, debtors)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.Aging(r.Context())
	if err != nil {
		h.logger.Error("aging", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}
