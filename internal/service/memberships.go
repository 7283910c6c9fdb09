package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/model"
)

// AssignMembership назначает клиенту абонемент по плану на один период начиная с start.
// Нулевой start означает сегодняшний день.
func (s *Service) AssignMembership(ctx context.Context, clientID, planID int64, start time.Time) (*model.Membership, error) {
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.PeriodDays <= 0 {
		return nil, fmt.Errorf("%w: period %d days", billing.ErrInvalidPlan, plan.PeriodDays)
	}

	if start.IsZero() {
		start = s.clock.Now()
	}
	start = billing.Day(start)

	created, err := s.repo.CreateMembership(ctx, model.Membership{
		ClientID:  clientID,
		PlanID:    planID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.PeriodDays),
		Status:    model.MembershipStatusActive,
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionCreate,
		EntityType:  EntityMembership,
		EntityID:    created.ID,
		Description: fmt.Sprintf("Membresía %q asignada", plan.Name),
		Metadata: map[string]any{
			"client_id":  clientID,
			"plan_id":    planID,
			"start_date": created.StartDate.Format(time.DateOnly),
			"end_date":   created.EndDate.Format(time.DateOnly),
		},
	})
	return created, nil
}

// GetMembership возвращает абонемент.
func (s *Service) GetMembership(ctx context.Context, id int64) (*model.Membership, error) {
	return s.repo.GetMembership(ctx, id)
}

// ListClientMemberships возвращает абонементы клиента.
func (s *Service) ListClientMemberships(ctx context.Context, clientID int64) ([]model.Membership, error) {
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListMembershipsByClient(ctx, clientID)
}

// RenewMembership продлевает абонемент на periods периодов. Продление отсчитывается
// от даты окончания, а для уже истёкшего абонемента от сегодняшнего дня.
func (s *Service) RenewMembership(ctx context.Context, id int64, periods int) (*model.Membership, error) {
	if periods <= 0 {
		return nil, fmt.Errorf("%w: renew for %d periods", ErrValidation, periods)
	}

	m, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, m.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.PeriodDays <= 0 {
		return nil, fmt.Errorf("%w: period %d days", billing.ErrInvalidPlan, plan.PeriodDays)
	}

	from := billing.Day(m.EndDate)
	if today := billing.Day(s.clock.Now()); from.Before(today) {
		from = today
	}
	previousEnd := m.EndDate
	m.EndDate = from.AddDate(0, 0, periods*plan.PeriodDays)
	m.Status = model.MembershipStatusActive

	if err := s.repo.UpdateMembershipTerm(ctx, m.ID, m.EndDate, m.Status); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionRenew,
		EntityType:  EntityMembership,
		EntityID:    m.ID,
		Description: fmt.Sprintf("Membresía renovada por %d %s", periods, billing.LabelFor(plan.PeriodDays).For(periods)),
		Metadata: map[string]any{
			"periods":      periods,
			"previous_end": previousEnd.Format(time.DateOnly),
			"end_date":     m.EndDate.Format(time.DateOnly),
		},
	})
	return m, nil
}

// CancelMembership завершает абонемент сегодняшним днём.
func (s *Service) CancelMembership(ctx context.Context, id int64) (*model.Membership, error) {
	m, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}

	today := billing.Day(s.clock.Now())
	if today.Before(billing.Day(m.StartDate)) {
		today = billing.Day(m.StartDate)
	}
	m.EndDate = today
	m.Status = model.MembershipStatusExpired

	if err := s.repo.UpdateMembershipTerm(ctx, m.ID, m.EndDate, m.Status); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionCancel,
		EntityType:  EntityMembership,
		EntityID:    m.ID,
		Description: "Membresía cancelada",
		Metadata:    map[string]any{"end_date": m.EndDate.Format(time.DateOnly)},
	})
	return m, nil
}

// ShareMembership добавляет клиента в участники общего абонемента.
func (s *Service) ShareMembership(ctx context.Context, membershipID, clientID int64) (*model.Membership, error) {
	m, err := s.repo.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.ClientID == clientID {
		return nil, fmt.Errorf("%w: client %d already owns membership %d", ErrValidation, clientID, membershipID)
	}
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	if err := s.repo.AddMembershipClient(ctx, membershipID, clientID); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionShare,
		EntityType:  EntityMembership,
		EntityID:    membershipID,
		Description: "Cliente agregado a la membresía compartida",
		Metadata:    map[string]any{"client_id": clientID},
	})
	return s.repo.GetMembership(ctx, membershipID)
}

// UnshareMembership исключает участника из общего абонемента. Его прошлые платежи остаются за абонементом.
func (s *Service) UnshareMembership(ctx context.Context, membershipID, clientID int64) (*model.Membership, error) {
	if err := s.repo.RemoveMembershipClient(ctx, membershipID, clientID); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditLog{
		ActionType:  ActionUnshare,
		EntityType:  EntityMembership,
		EntityID:    membershipID,
		Description: "Cliente retirado de la membresía compartida",
		Metadata:    map[string]any{"client_id": clientID},
	})
	return s.repo.GetMembership(ctx, membershipID)
}
