package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/gym-billing/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.CreateClient)
			r.Get("/", h.ListClients)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}/status", h.SetClientStatus)
			r.Get("/{id}/payment-status", h.ClientPaymentStatus)
			r.Get("/{id}/payments", h.ListClientPayments)
			r.Get("/{id}/memberships", h.ListClientMemberships)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", h.CreatePlan)
			r.Get("/", h.ListPlans)
			r.Get("/{id}", h.GetPlan)
			r.Put("/{id}", h.UpdatePlan)
		})

		r.Route("/memberships", func(r chi.Router) {
			r.Post("/", h.AssignMembership)
			r.Get("/{id}", h.GetMembership)
			r.Post("/{id}/renew", h.RenewMembership)
			r.Post("/{id}/cancel", h.CancelMembership)
			r.Post("/{id}/members", h.ShareMembership)
			r.Delete("/{id}/members/{clientID}", h.UnshareMembership)
			r.Get("/{id}/payment-status", h.MembershipPaymentStatus)
			r.Post("/{id}/payments/preview", h.PreviewPayment)
			r.Post("/{id}/payments", h.RegisterPayment)
		})

		r.Get("/audit-logs", h.ListAuditLogs)
	})

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
