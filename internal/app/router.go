package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/evita-erp/evita-erp/internal/analytics"
	"github.com/evita-erp/evita-erp/internal/auth"
	"github.com/evita-erp/evita-erp/internal/catalog"
	"github.com/evita-erp/evita-erp/internal/collections"
	"github.com/evita-erp/evita-erp/internal/customers"
	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/observability"
	"github.com/evita-erp/evita-erp/internal/purchasing"
	"github.com/evita-erp/evita-erp/internal/quotes"
	"github.com/evita-erp/evita-erp/internal/suppliers"
	"github.com/evita-erp/evita-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthService        *auth.Service
	AuthHandler        *auth.Handler
	InvoicingHandler   *invoicing.Handler
	CollectionsHandler *collections.Handler
	PurchasingHandler  *purchasing.Handler
	CatalogHandler     *catalog.Handler
	SuppliersHandler   *suppliers.Handler
	CustomersHandler   *customers.Handler
	QuotesHandler      *quotes.Handler
	AnalyticsHandler   *analytics.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with EVITA defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(params.AuthService))
				params.AuthHandler.MountProtectedRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(params.AuthService))

			r.Route("/facturas", params.InvoicingHandler.MountRoutes)
			r.Route("/cobranzas", params.CollectionsHandler.MountRoutes)
			r.Route("/ordenes", params.PurchasingHandler.MountRoutes)
			r.Route("/productos", params.CatalogHandler.MountRoutes)
			r.Route("/actualizar-precios", params.CatalogHandler.MountPriceRoutes)
			r.Route("/proveedores", params.SuppliersHandler.MountRoutes)
			r.Route("/clientes", params.CustomersHandler.MountRoutes)
			r.Route("/presupuestos", params.QuotesHandler.MountRoutes)
			r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
