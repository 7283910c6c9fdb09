package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/model"
)

// StartStatusSweep запускает фоновое обновление статусов абонементов и блокируется до отмены ctx.
func (s *Service) StartStatusSweep(ctx context.Context) {
	s.sweepStatuses(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepStatuses(ctx)
		}
	}
}

func (s *Service) sweepStatuses(ctx context.Context) {
	today := billing.Day(s.clock.Now())
	upcomingUntil := today.AddDate(0, 0, s.upcomingExpiryDays)

	expired, upcoming, err := s.repo.SweepMembershipStatuses(ctx, today, upcomingUntil)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("membership status sweep failed", zap.Error(err))
		}
		return
	}

	s.metrics.MembershipsSwept(string(model.MembershipStatusExpired), expired)
	s.metrics.MembershipsSwept(string(model.MembershipStatusUpcomingExpiry), upcoming)

	if expired == 0 && upcoming == 0 {
		return
	}
	s.logger.Info("membership statuses updated", zap.Int("expired", expired), zap.Int("upcoming_expiry", upcoming))
	s.audit(ctx, model.AuditLog{
		ActionType:  ActionStatusSweep,
		EntityType:  EntityMembership,
		Description: "Estados de membresías actualizados",
		Metadata: map[string]any{
			"expired":         expired,
			"upcoming_expiry": upcoming,
			"date":            today.Format(time.DateOnly),
		},
	})
}
