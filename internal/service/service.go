// Package service реализует бизнес-логику сервиса учёта абонементов.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/clock"
	"github.com/mmeshcher/gym-billing/internal/model"
	"github.com/mmeshcher/gym-billing/internal/repository"
)

// ErrValidation возвращается при некорректных входных данных операций сервиса.
var ErrValidation = errors.New("validation failed")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateClient(ctx context.Context, c model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	UpdateClientStatus(ctx context.Context, id int64, status model.ClientStatus) error

	CreatePlan(ctx context.Context, p model.MembershipPlan) (*model.MembershipPlan, error)
	GetPlan(ctx context.Context, id int64) (*model.MembershipPlan, error)
	UpdatePlan(ctx context.Context, p model.MembershipPlan) error
	ListPlans(ctx context.Context) ([]model.MembershipPlan, error)

	CreateMembership(ctx context.Context, m model.Membership) (*model.Membership, error)
	GetMembership(ctx context.Context, id int64) (*model.Membership, error)
	ListMembershipsByClient(ctx context.Context, clientID int64) ([]model.Membership, error)
	UpdateMembershipTerm(ctx context.Context, id int64, endDate time.Time, status model.MembershipStatus) error
	AddMembershipClient(ctx context.Context, membershipID, clientID int64) error
	RemoveMembershipClient(ctx context.Context, membershipID, clientID int64) error
	SweepMembershipStatuses(ctx context.Context, today, upcomingUntil time.Time) (int, int, error)

	ListPaymentsByClient(ctx context.Context, clientID int64) ([]model.Payment, error)
	ListPaymentsByMembership(ctx context.Context, membershipID int64) ([]model.Payment, error)
	RecordPayments(ctx context.Context, membershipID int64, build repository.PaymentBuilder) ([]model.Payment, error)

	CreateAuditLog(ctx context.Context, entry model.AuditLog) error
	ListAuditLogs(ctx context.Context, f repository.AuditFilter) ([]model.AuditLog, error)
}

// Cache описывает кэш справочных данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Metrics описывает счётчики, которые обновляет сервис.
type Metrics interface {
	PaymentRecorded(kind string, amount float64)
	StatusComputed(upToDate bool)
	MembershipsSwept(to string, n int)
}

// Options содержит необязательные зависимости и параметры сервиса.
type Options struct {
	Cache              Cache
	Metrics            Metrics
	Clock              clock.Clock
	Logger             *zap.Logger
	PlanCacheTTL       time.Duration
	SweepInterval      time.Duration
	UpcomingExpiryDays int
}

// Service содержит бизнес-логику сервиса учёта абонементов.
type Service struct {
	repo    Repository
	cache   Cache
	metrics Metrics
	clock   clock.Clock
	logger  *zap.Logger

	planCacheTTL       time.Duration
	sweepInterval      time.Duration
	upcomingExpiryDays int
}

// NewService создаёт сервис поверх репозитория. Незаданные опции заменяются значениями по умолчанию.
func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:               repo,
		cache:              opts.Cache,
		metrics:            opts.Metrics,
		clock:              opts.Clock,
		logger:             opts.Logger,
		planCacheTTL:       opts.PlanCacheTTL,
		sweepInterval:      opts.SweepInterval,
		upcomingExpiryDays: opts.UpcomingExpiryDays,
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.planCacheTTL <= 0 {
		s.planCacheTTL = time.Hour
	}
	if s.sweepInterval <= 0 {
		s.sweepInterval = time.Hour
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// CreateClient регистрирует клиента. Пустой статус означает active.
func (s *Service) CreateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	if c.Status == "" {
		c.Status = model.ClientStatusActive
	}
	if !c.Status.Valid() {
		return nil, fmt.Errorf("%w: client status %q", ErrValidation, c.Status)
	}

	created, err := s.repo.CreateClient(ctx, c)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionCreate,
		EntityType:  EntityClient,
		EntityID:    created.ID,
		Description: fmt.Sprintf("Cliente %q registrado", created.Name),
		Metadata:    map[string]any{"status": string(created.Status)},
	})
	return created, nil
}

// GetClient возвращает клиента.
func (s *Service) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	return s.repo.GetClient(ctx, id)
}

// ListClients возвращает всех клиентов.
func (s *Service) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.repo.ListClients(ctx)
}

// SetClientStatus меняет статус клиента.
func (s *Service) SetClientStatus(ctx context.Context, id int64, status model.ClientStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: client status %q", ErrValidation, status)
	}

	if err := s.repo.UpdateClientStatus(ctx, id, status); err != nil {
		return err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionUpdate,
		EntityType:  EntityClient,
		EntityID:    id,
		Description: fmt.Sprintf("Estado del cliente cambiado a %s", status),
		Metadata:    map[string]any{"status": string(status)},
	})
	return nil
}

// CreatePlan создаёт тарифный план.
func (s *Service) CreatePlan(ctx context.Context, p model.MembershipPlan) (*model.MembershipPlan, error) {
	if err := validatePlan(p); err != nil {
		return nil, err
	}

	created, err := s.repo.CreatePlan(ctx, p)
	if err != nil {
		return nil, err
	}

	s.cachePlan(ctx, created)
	s.audit(ctx, model.AuditLog{
		ActionType:  ActionCreate,
		EntityType:  EntityPlan,
		EntityID:    created.ID,
		Description: fmt.Sprintf("Plan %q creado", created.Name),
		Metadata: map[string]any{
			"price":       created.Price.String(),
			"period_days": created.PeriodDays,
		},
	})
	return created, nil
}

// GetPlan возвращает тарифный план, по возможности из кэша.
func (s *Service) GetPlan(ctx context.Context, id int64) (*model.MembershipPlan, error) {
	key := planCacheKey(id)

	var cached model.MembershipPlan
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("plan cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cachePlan(ctx, p)
	return p, nil
}

// UpdatePlan меняет название, цену или длину периода плана и сбрасывает его кэш.
// Новая цена применяется и к уже прошедшим периодам действующих абонементов.
func (s *Service) UpdatePlan(ctx context.Context, p model.MembershipPlan) error {
	if err := validatePlan(p); err != nil {
		return err
	}

	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return err
	}

	key := planCacheKey(p.ID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.String("key", key), zap.Error(err))
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionUpdate,
		EntityType:  EntityPlan,
		EntityID:    p.ID,
		Description: fmt.Sprintf("Plan %q actualizado", p.Name),
		Metadata: map[string]any{
			"price":       p.Price.String(),
			"period_days": p.PeriodDays,
		},
	})
	return nil
}

// ListPlans возвращает все тарифные планы.
func (s *Service) ListPlans(ctx context.Context) ([]model.MembershipPlan, error) {
	return s.repo.ListPlans(ctx)
}

// validatePlan принимает только неотрицательную цену в целых копейках и положительный период.
func validatePlan(p model.MembershipPlan) error {
	if p.Price.IsNegative() || p.PeriodDays <= 0 {
		return fmt.Errorf("%w: price %s, period %d days", ErrValidation, p.Price, p.PeriodDays)
	}
	if !billing.IsCentPrecise(p.Price) {
		return fmt.Errorf("%w: price %s has more than %d decimals", ErrValidation, p.Price, billing.CentPrecision)
	}
	return nil
}

func (s *Service) cachePlan(ctx context.Context, p *model.MembershipPlan) {
	key := planCacheKey(p.ID)
	if err := s.cache.Set(ctx, key, p, s.planCacheTTL); err != nil {
		s.logger.Warn("plan cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func planCacheKey(id int64) string {
	return "plan:" + strconv.FormatInt(id, 10)
}

// ListAuditLogs возвращает записи журнала действий.
func (s *Service) ListAuditLogs(ctx context.Context, f repository.AuditFilter) ([]model.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, f)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Invalidate(context.Context, string) error { return nil }

type noopMetrics struct{}

func (noopMetrics) PaymentRecorded(string, float64) {}
func (noopMetrics) StatusComputed(bool) {}
func (noopMetrics) MembershipsSwept(string, int) {}
