package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/service"
)

// NewRouter wires the cart and checkout-info endpoints behind the shared middleware stack.
func NewRouter(carts *service.CartService, checkout *service.CheckoutInfoService, timeout time.Duration, logger *zap.Logger) http.Handler {
	cartHandler := NewCartHandler(carts, timeout, logger)
	checkoutHandler := NewCheckoutInfoHandler(checkout, timeout, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": carts.Sessions(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout-info", func(r chi.Router) {
			r.Get("/", checkoutHandler.Get)
			r.Put("/", checkoutHandler.Put)
			r.Delete("/", checkoutHandler.Delete)
		})
	})

	return otelhttp.NewHandler(r, "cart-store")
}
