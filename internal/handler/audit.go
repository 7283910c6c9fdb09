package handler

import (
	"net/http"
	"strconv"

	"github.com/mmeshcher/gym-billing/internal/repository"
)

// ListAuditLogs возвращает журнал действий. Фильтры: entity_type, entity_id, limit.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.AuditFilter{EntityType: q.Get("entity_type")}

	if v := q.Get("entity_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			h.badRequest(w, r, "invalid entity_id")
			return
		}
		f.EntityID = id
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			h.badRequest(w, r, "invalid limit")
			return
		}
		f.Limit = limit
	}

	logs, err := h.service.ListAuditLogs(r.Context(), f)
	if err != nil {
		h.writeError(w, r, "list audit logs", err)
		return
	}

	resp := make([]auditLogResponse, 0, len(logs))
	for _, e := range logs {
		resp = append(resp, toAuditLogResponse(e))
	}
	respond(w, r, http.StatusOK, resp)
}
