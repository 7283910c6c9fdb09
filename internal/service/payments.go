package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/model"
)

// Виды сумм в метриках платежей.
const (
	kindDebt    = "debt"
	kindAdvance = "advance"
)

// PaymentResult содержит разложение платежа и сохранённые записи.
type PaymentResult struct {
	Allocation billing.Allocation `json:"allocation"`
	Payments   []model.Payment    `json:"payments"`
}

// MembershipPaymentStatus рассчитывает состояние оплаты абонемента на текущий момент.
func (s *Service) MembershipPaymentStatus(ctx context.Context, membershipID int64) (billing.PaymentStatus, error) {
	m, err := s.repo.GetMembership(ctx, membershipID)
	if err != nil {
		return billing.PaymentStatus{}, err
	}
	client, err := s.repo.GetClient(ctx, m.ClientID)
	if err != nil {
		return billing.PaymentStatus{}, err
	}
	plan, err := s.GetPlan(ctx, m.PlanID)
	if err != nil {
		return billing.PaymentStatus{}, err
	}
	payments, err := s.repo.ListPaymentsByMembership(ctx, m.ID)
	if err != nil {
		return billing.PaymentStatus{}, err
	}

	status, err := billing.Compute(s.clock.Now(), *client, *m, plan, payments)
	if err != nil {
		return billing.PaymentStatus{}, fmt.Errorf("compute status of membership %d: %w", m.ID, err)
	}
	s.metrics.StatusComputed(status.IsUpToDate)
	return status, nil
}

// ClientPaymentStatus сводит состояния абонементов клиента, включая общие.
// Истёкшие абонементы учитываются, пока по ним остаётся долг.
func (s *Service) ClientPaymentStatus(ctx context.Context, clientID int64) (billing.PaymentStatus, error) {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return billing.PaymentStatus{}, err
	}
	memberships, err := s.repo.ListMembershipsByClient(ctx, clientID)
	if err != nil {
		return billing.PaymentStatus{}, err
	}

	now := s.clock.Now()
	statuses := make([]billing.PaymentStatus, 0, len(memberships))
	for _, m := range memberships {
		plan, err := s.GetPlan(ctx, m.PlanID)
		if err != nil {
			return billing.PaymentStatus{}, err
		}
		// Платежи общего абонемента вносят разные участники, поэтому берутся по абонементу.
		payments, err := s.repo.ListPaymentsByMembership(ctx, m.ID)
		if err != nil {
			return billing.PaymentStatus{}, err
		}
		st, err := billing.Compute(now, *client, m, plan, payments)
		if err != nil {
			return billing.PaymentStatus{}, fmt.Errorf("compute status of membership %d: %w", m.ID, err)
		}
		// Истёкший абонемент без долга в сводке не участвует.
		if m.Status == model.MembershipStatusExpired && st.IsUpToDate {
			continue
		}
		statuses = append(statuses, st)
	}

	res := billing.Aggregate(statuses...)
	if res.CurrentPeriod == "" {
		current := billing.PeriodOf(now)
		res.CurrentPeriod = current.String()
		res.NextPaymentMonth = current.Next().String()
	}
	s.metrics.StatusComputed(res.IsUpToDate)
	return res, nil
}

// PreviewPayment показывает, как будет разложен платёж, ничего не сохраняя.
func (s *Service) PreviewPayment(ctx context.Context, membershipID int64, draft billing.PaymentDraft) (billing.Allocation, error) {
	if err := draft.Validate(); err != nil {
		return billing.Allocation{}, err
	}

	m, err := s.repo.GetMembership(ctx, membershipID)
	if err != nil {
		return billing.Allocation{}, err
	}
	client, err := s.repo.GetClient(ctx, m.ClientID)
	if err != nil {
		return billing.Allocation{}, err
	}
	plan, err := s.GetPlan(ctx, m.PlanID)
	if err != nil {
		return billing.Allocation{}, err
	}
	payments, err := s.repo.ListPaymentsByMembership(ctx, m.ID)
	if err != nil {
		return billing.Allocation{}, err
	}

	status, err := billing.Compute(s.clock.Now(), *client, *m, plan, payments)
	if err != nil {
		return billing.Allocation{}, err
	}
	return billing.Allocate(draft.Amount(), status, plan, draft.PeriodCount())
}

// RegisterPayment раскладывает платёж по долгу и будущим периодам и сохраняет записи.
// Расчёт выполняется в транзакции репозитория по платежам, прочитанным под блокировкой
// абонемента, поэтому параллельные оплаты одного абонемента не гасят один и тот же долг дважды.
func (s *Service) RegisterPayment(ctx context.Context, membershipID int64, draft billing.PaymentDraft) (*PaymentResult, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	m, err := s.repo.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.GetClient(ctx, m.ClientID)
	if err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, m.PlanID)
	if err != nil {
		return nil, err
	}

	payer := draft.Payer()
	if payer == 0 {
		payer = m.ClientID
	}
	if !m.HasClient(payer) {
		return nil, fmt.Errorf("%w: client %d does not use membership %d", ErrValidation, payer, m.ID)
	}

	now := s.clock.Now()
	paidAt := draft.PaymentDate()
	if paidAt.IsZero() {
		paidAt = now
	}

	var allocation billing.Allocation
	saved, err := s.repo.RecordPayments(ctx, membershipID, func(locked model.Membership, payments []model.Payment) ([]model.Payment, error) {
		status, err := billing.Compute(now, *client, locked, plan, payments)
		if err != nil {
			return nil, err
		}
		allocation, err = billing.Allocate(draft.Amount(), status, plan, draft.PeriodCount())
		if err != nil {
			return nil, err
		}
		return buildPayments(locked, payer, allocation, draft, paidAt), nil
	})
	if err != nil {
		return nil, err
	}

	if allocation.DebtPortion.IsPositive() {
		s.metrics.PaymentRecorded(kindDebt, allocation.DebtPortion.InexactFloat64())
	}
	if allocation.AdvancePortion.IsPositive() {
		s.metrics.PaymentRecorded(kindAdvance, allocation.AdvancePortion.InexactFloat64())
	}

	allocationID := ""
	if len(saved) > 0 {
		allocationID = saved[0].AllocationID.String()
	}
	s.audit(ctx, model.AuditLog{
		ActionType:  ActionPayment,
		EntityType:  EntityMembership,
		EntityID:    membershipID,
		Description: fmt.Sprintf("Pago de %s registrado en %d partes", draft.Amount().StringFixed(2), len(saved)),
		Metadata:    paymentAuditMetadata(allocationID, payer, draft, allocation),
	})
	s.logger.Info("payment registered",
		zap.Int64("membership_id", membershipID),
		zap.String("allocation_id", allocationID),
		zap.Int("rows", len(saved)),
	)

	return &PaymentResult{Allocation: allocation, Payments: saved}, nil
}

// ListClientPayments возвращает платежи клиента.
func (s *Service) ListClientPayments(ctx context.Context, clientID int64) ([]model.Payment, error) {
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListPaymentsByClient(ctx, clientID)
}

// buildPayments превращает разложение в строки платежей с общим allocation_id.
func buildPayments(m model.Membership, payer int64, a billing.Allocation, draft billing.PaymentDraft, paidAt time.Time) []model.Payment {
	parts := a.Payments()
	amounts := make([]decimal.Decimal, len(parts))
	for i, p := range parts {
		amounts[i] = p.Amount
	}
	splits := draft.SplitFor(amounts)

	allocationID := uuid.New()
	membershipID := m.ID
	rows := make([]model.Payment, len(parts))
	for i, p := range parts {
		note := p.Note
		if draft.Notes() != "" {
			note += ". " + draft.Notes()
		}
		rows[i] = model.Payment{
			ClientID:     payer,
			MembershipID: &membershipID,
			AllocationID: allocationID,
			Amount:       p.Amount,
			Method:       draft.Method(),
			PaymentDate:  paidAt,
			Status:       model.PaymentStatusCompleted,
			PaymentMonth: p.PeriodKey,
			IsPartial:    p.IsPartial,
			Split:        splits[i],
			Notes:        note,
		}
	}
	return rows
}

func paymentAuditMetadata(allocationID string, payer int64, draft billing.PaymentDraft, a billing.Allocation) map[string]any {
	md := map[string]any{
		"allocation_id":   allocationID,
		"client_id":       payer,
		"method":          string(draft.Method()),
		"debt_portion":    a.DebtPortion.StringFixed(2),
		"advance_portion": a.AdvancePortion.StringFixed(2),
	}
	if split := draft.Split(); split != nil {
		md["split_cash"] = split.Cash.StringFixed(2)
		md["split_transfer"] = split.Transfer.StringFixed(2)
	}
	return md
}
