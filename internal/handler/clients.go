package handler

import (
	"net/http"

	"github.com/mmeshcher/gym-billing/internal/model"
	"github.com/mmeshcher/gym-billing/internal/validation"
)

// CreateClient регистрирует клиента.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateClient(r.Context(), model.Client{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Status: model.ClientStatus(req.Status),
	})
	if err != nil {
		h.writeError(w, r, "create client", err)
		return
	}

	respond(w, r, http.StatusCreated, toClientResponse(*c))
}

// ListClients возвращает всех клиентов.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.writeError(w, r, "list clients", err)
		return
	}

	resp := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		resp = append(resp, toClientResponse(c))
	}
	respond(w, r, http.StatusOK, resp)
}

// GetClient возвращает клиента по идентификатору.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get client", err)
		return
	}

	respond(w, r, http.StatusOK, toClientResponse(*c))
}

// SetClientStatus меняет статус клиента.
func (h *Handler) SetClientStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req clientStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.SetClientStatus(r.Context(), id, model.ClientStatus(req.Status)); err != nil {
		h.writeError(w, r, "set client status", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClientPaymentStatus возвращает сводное состояние оплаты клиента.
func (h *Handler) ClientPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	st, err := h.service.ClientPaymentStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "client payment status", err)
		return
	}

	respond(w, r, http.StatusOK, toStatusResponse(st))
}

// ListClientPayments возвращает платежи клиента. Параметр month (YYYY-MM) оставляет
// только платежи, зачтённые в этот период.
func (h *Handler) ListClientPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	q := paymentsQuery{Month: r.URL.Query().Get("month")}
	if err := h.validate.Struct(q); err != nil {
		h.badRequest(w, r, validation.Describe(err))
		return
	}

	payments, err := h.service.ListClientPayments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "list client payments", err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		if q.Month != "" && p.PaymentMonth != q.Month {
			continue
		}
		resp = append(resp, toPaymentResponse(p))
	}
	respond(w, r, http.StatusOK, resp)
}

// ListClientMemberships возвращает абонементы клиента.
func (h *Handler) ListClientMemberships(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	memberships, err := h.service.ListClientMemberships(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "list client memberships", err)
		return
	}

	resp := make([]membershipResponse, 0, len(memberships))
	for _, m := range memberships {
		resp = append(resp, toMembershipResponse(m))
	}
	respond(w, r, http.StatusOK, resp)
}
