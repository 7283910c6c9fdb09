package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/gym-billing/internal/model"
)

const paymentColumns = `id, client_id, membership_id, allocation_id, amount, method, payment_date,
	status, payment_month, is_partial, split_cash, split_transfer, notes, created_at`

// PaymentBuilder строит строки платежей по актуальному состоянию абонемента.
// Вызывается внутри транзакции, удерживающей блокировку абонемента.
type PaymentBuilder func(m model.Membership, payments []model.Payment) ([]model.Payment, error)

// ListPaymentsByClient возвращает платежи клиента, новые первыми.
func (r *PostgresRepository) ListPaymentsByClient(ctx context.Context, clientID int64) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments
		 WHERE client_id = $1
		 ORDER BY payment_date DESC, id DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	return collectPayments(rows)
}

// ListPaymentsByMembership возвращает платежи абонемента в порядке записи.
func (r *PostgresRepository) ListPaymentsByMembership(ctx context.Context, membershipID int64) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments
		 WHERE membership_id = $1
		 ORDER BY id`,
		membershipID,
	)
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	return collectPayments(rows)
}

// RecordPayments сохраняет платежи по абонементу. Блокирует строку абонемента, чтобы
// параллельные оплаты не рассчитывались от одного и того же устаревшего долга:
// build получает платежи, прочитанные уже под блокировкой.
func (r *PostgresRepository) RecordPayments(ctx context.Context, membershipID int64, build PaymentBuilder) ([]model.Payment, error) {
	var saved []model.Payment

	err := r.withRetry(ctx, func() error {
		saved = nil

		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		m, err := scanMembership(tx.QueryRow(ctx,
			`SELECT `+membershipColumns+` FROM memberships m WHERE m.id = $1 FOR UPDATE OF m`,
			membershipID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("lock membership for update: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE membership_id = $1 ORDER BY id`,
			membershipID,
		)
		if err != nil {
			return fmt.Errorf("select payments: %w", err)
		}
		existing, err := collectPayments(rows)
		if err != nil {
			return err
		}

		toInsert, err := build(*m, existing)
		if err != nil {
			return err
		}

		for _, p := range toInsert {
			var splitCash, splitTransfer *int64
			if p.Split != nil {
				c, t := toMinor(p.Split.Cash), toMinor(p.Split.Transfer)
				splitCash, splitTransfer = &c, &t
			}
			var month *string
			if p.PaymentMonth != "" {
				month = &p.PaymentMonth
			}

			err := tx.QueryRow(ctx,
				`INSERT INTO payments (client_id, membership_id, allocation_id, amount, method, payment_date,
				                       status, payment_month, is_partial, split_cash, split_transfer, notes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				 RETURNING id, created_at`,
				p.ClientID, p.MembershipID, p.AllocationID, toMinor(p.Amount), string(p.Method), p.PaymentDate,
				string(p.Status), month, p.IsPartial, splitCash, splitTransfer, p.Notes,
			).Scan(&p.ID, &p.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert payment: %w", err)
			}
			saved = append(saved, p)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func collectPayments(rows pgx.Rows) ([]model.Payment, error) {
	defer rows.Close()

	var res []model.Payment
	for rows.Next() {
		var (
			p             model.Payment
			allocationID  uuid.UUID
			amount        int64
			method        string
			status        string
			month         *string
			splitCash     *int64
			splitTransfer *int64
		)
		err := rows.Scan(&p.ID, &p.ClientID, &p.MembershipID, &allocationID, &amount, &method, &p.PaymentDate,
			&status, &month, &p.IsPartial, &splitCash, &splitTransfer, &p.Notes, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}

		p.AllocationID = allocationID
		p.Amount = fromMinor(amount)
		p.Method = model.PaymentMethod(method)
		p.Status = model.PaymentStatus(status)
		if month != nil {
			p.PaymentMonth = *month
		}
		if splitCash != nil && splitTransfer != nil {
			p.Split = &model.SplitPayment{
				Cash:     fromMinor(*splitCash),
				Transfer: fromMinor(*splitTransfer),
			}
		}

		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
