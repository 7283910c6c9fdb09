package handler

import (
	"net/http"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// CreatePlan создаёт тарифный план.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.CreatePlan(r.Context(), model.MembershipPlan{
		Name:       req.Name,
		Price:      req.Price,
		PeriodDays: req.PeriodDays,
	})
	if err != nil {
		h.writeError(w, r, "create plan", err)
		return
	}

	respond(w, r, http.StatusCreated, toPlanResponse(*p))
}

// ListPlans возвращает все тарифные планы.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		h.writeError(w, r, "list plans", err)
		return
	}

	resp := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}
	respond(w, r, http.StatusOK, resp)
}

// GetPlan возвращает тарифный план.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get plan", err)
		return
	}

	respond(w, r, http.StatusOK, toPlanResponse(*p))
}

// UpdatePlan изменяет тарифный план.
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req planRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.UpdatePlan(r.Context(), model.MembershipPlan{
		ID:         id,
		Name:       req.Name,
		Price:      req.Price,
		PeriodDays: req.PeriodDays,
	})
	if err != nil {
		h.writeError(w, r, "update plan", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
