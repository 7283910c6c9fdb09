// Package handler содержит HTTP-обработчики API сервиса учёта абонементов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/model"
	"github.com/mmeshcher/gym-billing/internal/repository"
	"github.com/mmeshcher/gym-billing/internal/service"
	"github.com/mmeshcher/gym-billing/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateClient(ctx context.Context, c model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	SetClientStatus(ctx context.Context, id int64, status model.ClientStatus) error

	CreatePlan(ctx context.Context, p model.MembershipPlan) (*model.MembershipPlan, error)
	GetPlan(ctx context.Context, id int64) (*model.MembershipPlan, error)
	UpdatePlan(ctx context.Context, p model.MembershipPlan) error
	ListPlans(ctx context.Context) ([]model.MembershipPlan, error)

	AssignMembership(ctx context.Context, clientID, planID int64, start time.Time) (*model.Membership, error)
	GetMembership(ctx context.Context, id int64) (*model.Membership, error)
	ListClientMemberships(ctx context.Context, clientID int64) ([]model.Membership, error)
	RenewMembership(ctx context.Context, id int64, periods int) (*model.Membership, error)
	CancelMembership(ctx context.Context, id int64) (*model.Membership, error)
	ShareMembership(ctx context.Context, membershipID, clientID int64) (*model.Membership, error)
	UnshareMembership(ctx context.Context, membershipID, clientID int64) (*model.Membership, error)

	MembershipPaymentStatus(ctx context.Context, membershipID int64) (billing.PaymentStatus, error)
	ClientPaymentStatus(ctx context.Context, clientID int64) (billing.PaymentStatus, error)
	PreviewPayment(ctx context.Context, membershipID int64, draft billing.PaymentDraft) (billing.Allocation, error)
	RegisterPayment(ctx context.Context, membershipID int64, draft billing.PaymentDraft) (*service.PaymentResult, error)
	ListClientPayments(ctx context.Context, clientID int64) ([]model.Payment, error)

	ListAuditLogs(ctx context.Context, f repository.AuditFilter) ([]model.AuditLog, error)
}

// Handler реализует HTTP-обработчики API сервиса учёта абонементов.
type Handler struct {
	service  Service
	logger   *zap.Logger
	validate *validator.Validate
	metrics  http.Handler
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// metricsHandler может быть nil, тогда /metrics не публикуется.
func NewHandler(s Service, logger *zap.Logger, metricsHandler http.Handler) *Handler {
	return &Handler{
		service:  s,
		logger:   logger,
		validate: validation.New(),
		metrics:  metricsHandler,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError отображает доменные ошибки в HTTP-статусы.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrMembershipNotFound),
		errors.Is(err, repository.ErrNotMembershipClient),
		errors.Is(err, billing.ErrPlanNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, billing.ErrInvalidAmount),
		errors.Is(err, billing.ErrInvalidPeriodCount),
		errors.Is(err, billing.ErrInvalidDraft),
		errors.Is(err, billing.ErrInvalidDateRange),
		errors.Is(err, billing.ErrInvalidPlan):
		status = http.StatusUnprocessableEntity
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" error",
			zap.Error(err),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
		msg = http.StatusText(status)
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: msg})
}

// decode читает JSON-тело и проверяет его валидатором. Возвращает false, если ответ уже записан.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.badRequest(w, r, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: validation.Describe(err)})
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return h.pathParamID(w, r, "id")
}

func (h *Handler) pathParamID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(w, r, "invalid "+param)
		return 0, false
	}
	return id, true
}

func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
