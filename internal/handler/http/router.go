package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cncideas/storefront/internal/service"
	"github.com/cncideas/storefront/pkg/health"
	"github.com/cncideas/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cartService *service.CartService,
	catalogService *service.CatalogService,
	checkoutService *service.CheckoutService,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger)
	catalogHandler := NewCatalogHandler(catalogService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	contactHandler := NewContactHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(ShopperIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{itemId}", cartHandler.RemoveItem)
		})

		// Catalog writes accept JSON or multipart, so no content-type guard.
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Post("/", catalogHandler.CreateProduct)
			r.Get("/{id}", catalogHandler.GetProduct)
			r.Put("/{id}", catalogHandler.UpdateProduct)
			r.Delete("/{id}", catalogHandler.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCategories)
			r.Post("/", catalogHandler.CreateCategory)
			r.Get("/{id}", catalogHandler.GetCategory)
			r.Put("/{id}", catalogHandler.UpdateCategory)
			r.Delete("/{id}", catalogHandler.DeleteCategory)
		})

		r.Route("/planos", func(r chi.Router) {
			r.Get("/", catalogHandler.ListPlanos)
			r.Post("/", catalogHandler.CreatePlano)
			r.Get("/{id}", catalogHandler.GetPlano)
			r.Put("/{id}", catalogHandler.UpdatePlano)
			r.Delete("/{id}", catalogHandler.DeletePlano)
			r.Get("/{id}/preview", catalogHandler.GetPlanoPreview)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.With(ShopperIDFromHeader).Post("/", checkoutHandler.StartCheckout)
			r.With(ShopperIDFromHeader).Get("/totals", checkoutHandler.GetTotals)

			r.Get("/{sessionId}", checkoutHandler.GetSession)
			r.Put("/{sessionId}/billing", checkoutHandler.SaveBilling)
			r.Put("/{sessionId}/shipping", checkoutHandler.SaveShipping)
			r.Put("/{sessionId}/payment", checkoutHandler.SavePayment)
			r.Put("/{sessionId}/notes", checkoutHandler.SetNotes)
			r.Put("/{sessionId}/step", checkoutHandler.GoToStep)
			r.Post("/{sessionId}/submit", checkoutHandler.SubmitOrder)
		})

		r.With(ContentTypeJSON).Post("/contact", contactHandler.SendContact)
	})

	return r
}
