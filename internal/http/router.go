package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/middleware"
)

func NewRouter(h *Handler, logger *log.Logger, allowOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recover(logger))
	r.Use(chimw.Logger)
	r.Use(middleware.CORS(allowOrigins))

	r.Get("/health", h.Health)

	r.Route("/api/kiosk/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.ResetSession)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/accessibility", h.ToggleAccessibility)
			r.Put("/stage", h.SetStage)

			r.Get("/products", h.ListProducts)
			r.Post("/selection", h.SelectProduct)

			r.Get("/trial", h.GetTrial)
			r.Post("/trial/consent", h.Consent)
			r.Post("/trial/scan", h.StartScan)
			r.Post("/trial/items", h.TryItem)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/items", h.AddToCart)
			r.Delete("/cart/items/{productId}", h.RemoveFromCart)

			r.Post("/checkout", h.Checkout)
		})
	})

	r.Route("/api/catalog/products", func(r chi.Router) {
		r.Get("/", h.CatalogProducts)
		r.Get("/{productId}", h.CatalogProduct)
	})

	r.Get("/api/admin/stats", h.AdminStats)

	return r
}
