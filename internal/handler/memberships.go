package handler

import (
	"net/http"
	"time"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// AssignMembership назначает клиенту абонемент.
func (h *Handler) AssignMembership(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if !h.decode(w, r, &req) {
		return
	}

	var start time.Time
	if req.StartDate != "" {
		var err error
		if start, err = time.Parse(dateLayout, req.StartDate); err != nil {
			h.badRequest(w, r, "start_date must be in format YYYY-MM-DD")
			return
		}
	}

	m, err := h.service.AssignMembership(r.Context(), req.ClientID, req.PlanID, start)
	if err != nil {
		h.writeError(w, r, "assign membership", err)
		return
	}

	respond(w, r, http.StatusCreated, toMembershipResponse(*m))
}

// GetMembership возвращает абонемент.
func (h *Handler) GetMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	m, err := h.service.GetMembership(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get membership", err)
		return
	}

	respond(w, r, http.StatusOK, toMembershipResponse(*m))
}

// RenewMembership продлевает абонемент.
func (h *Handler) RenewMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req renewRequest
	if !h.decode(w, r, &req) {
		return
	}

	m, err := h.service.RenewMembership(r.Context(), id, req.Periods)
	if err != nil {
		h.writeError(w, r, "renew membership", err)
		return
	}

	respond(w, r, http.StatusOK, toMembershipResponse(*m))
}

// CancelMembership отменяет абонемент.
func (h *Handler) CancelMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	m, err := h.service.CancelMembership(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "cancel membership", err)
		return
	}

	respond(w, r, http.StatusOK, toMembershipResponse(*m))
}

// ShareMembership подключает к абонементу ещё одного клиента.
func (h *Handler) ShareMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req memberRequest
	if !h.decode(w, r, &req) {
		return
	}

	m, err := h.service.ShareMembership(r.Context(), id, req.ClientID)
	if err != nil {
		h.writeError(w, r, "share membership", err)
		return
	}

	respond(w, r, http.StatusOK, toMembershipResponse(*m))
}

// UnshareMembership отключает клиента от общего абонемента.
func (h *Handler) UnshareMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	clientID, ok := h.pathParamID(w, r, "clientID")
	if !ok {
		return
	}

	m, err := h.service.UnshareMembership(r.Context(), id, clientID)
	if err != nil {
		h.writeError(w, r, "unshare membership", err)
		return
	}

	respond(w, r, http.StatusOK, toMembershipResponse(*m))
}

// MembershipPaymentStatus возвращает состояние оплаты абонемента.
func (h *Handler) MembershipPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	st, err := h.service.MembershipPaymentStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "membership payment status", err)
		return
	}

	respond(w, r, http.StatusOK, toStatusResponse(st))
}

// PreviewPayment показывает разложение платежа без сохранения.
func (h *Handler) PreviewPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !h.decodePayment(w, r, &req) {
		return
	}

	a, err := h.service.PreviewPayment(r.Context(), id, req.draft())
	if err != nil {
		h.writeError(w, r, "preview payment", err)
		return
	}

	respond(w, r, http.StatusOK, toAllocationResponse(a))
}

// RegisterPayment регистрирует платёж по абонементу.
func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !h.decodePayment(w, r, &req) {
		return
	}

	res, err := h.service.RegisterPayment(r.Context(), id, req.draft())
	if err != nil {
		h.writeError(w, r, "register payment", err)
		return
	}

	resp := registerPaymentResponse{
		Allocation: toAllocationResponse(res.Allocation),
		Payments:   make([]paymentResponse, 0, len(res.Payments)),
	}
	for _, p := range res.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	respond(w, r, http.StatusCreated, resp)
}

func (h *Handler) decodePayment(w http.ResponseWriter, r *http.Request, req *paymentRequest) bool {
	if !h.decode(w, r, req) {
		return false
	}
	if req.Split != nil && req.Method != "" && model.PaymentMethod(req.Method) != model.PaymentMethodMixed {
		respond(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "split is only allowed for mixed payments"})
		return false
	}
	return true
}
