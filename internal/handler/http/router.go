package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/collections/internal/service"
	"github.com/utafrali/collections/pkg/health"
	"github.com/utafrali/collections/pkg/middleware"
)

// NewRouter creates a chi router with all cart and wishlist routes registered.
func NewRouter(
	cartService *service.CartService,
	wishlistService *service.WishlistService,
	shareService *service.ShareService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("collections"))
	r.Use(middleware.Tracing("collections"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger)
	wishlistHandler := NewWishlistHandler(wishlistService, shareService, logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", cartHandler.AddItem)
		r.Get("/{userId}", cartHandler.ListCart)
		r.Put("/{userId}/{variantId}", cartHandler.SetQuantity)
		r.Delete("/{userId}/{variantId}", cartHandler.RemoveItem)
		r.Delete("/clear/{userId}", cartHandler.ClearCart)
	})

	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", wishlistHandler.AddItem)

		// Share routes come before /{userId} so chi does not treat
		// "share" and "shared" as user ids.
		r.Post("/share/{userId}", wishlistHandler.IssueShare)
		r.Delete("/share/{userId}", wishlistHandler.RevokeShare)
		r.Get("/shared/{shareId}", wishlistHandler.ResolveShare)

		r.Get("/{userId}", wishlistHandler.ListWishlist)
		r.Delete("/{userId}/{variantId}", wishlistHandler.RemoveItem)
		r.Delete("/clear/{userId}", wishlistHandler.ClearWishlist)
	})

	return r
}
