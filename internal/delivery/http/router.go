package http //nolint:revive // directory-based package name, imported with alias

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 30 * time.Second

func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Post("/payments", h.HandleCreatePayment)
		r.Get("/payments/{id}", h.HandleGetPayment)
		r.Get("/payments/{id}/qr", h.HandleQR)
		r.Post("/payments/{id}/refunds", h.HandleCreateRefund)
		r.Get("/refunds/{id}", h.HandleGetRefund)

		r.Post("/swish/callbacks/payments", h.HandlePaymentCallback)
		r.Post("/swish/callbacks/refunds", h.HandleRefundCallback)
	})

	return r
}
