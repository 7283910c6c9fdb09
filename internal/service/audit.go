package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// Типы действий журнала.
const (
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionPayment     = "payment"
	ActionRenew       = "renew"
	ActionCancel      = "cancel"
	ActionShare       = "share"
	ActionUnshare     = "unshare"
	ActionStatusSweep = "status_sweep"
)

// Типы сущностей журнала.
const (
	EntityClient     = "client"
	EntityPlan       = "plan"
	EntityMembership = "membership"
)

// audit пишет запись в журнал. Ошибка записи не отменяет уже выполненную операцию.
func (s *Service) audit(ctx context.Context, entry model.AuditLog) {
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("action", entry.ActionType),
			zap.String("entity", entry.EntityType),
			zap.Int64("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}
