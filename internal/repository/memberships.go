package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/gym-billing/internal/model"
)

const membershipColumns = `m.id, m.client_id,
	COALESCE((SELECT array_agg(mc.client_id ORDER BY mc.client_id)
	          FROM membership_clients mc WHERE mc.membership_id = m.id), '{}'::bigint[]),
	m.plan_id, m.start_date, m.end_date, m.status, m.created_at`

// CreateMembership назначает клиенту абонемент.
func (r *PostgresRepository) CreateMembership(ctx context.Context, m model.Membership) (*model.Membership, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO memberships (client_id, plan_id, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.ClientID, m.PlanID, m.StartDate, m.EndDate, string(m.Status),
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if constraint, ok := foreignKeyViolation(err); ok {
			switch constraint {
			case "memberships_client_fk":
				return nil, ErrClientNotFound
			case "memberships_plan_fk":
				return nil, ErrPlanNotFound
			}
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}
	return &m, nil
}

// GetMembership возвращает абонемент по идентификатору.
func (r *PostgresRepository) GetMembership(ctx context.Context, id int64) (*model.Membership, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships m WHERE m.id = $1`,
		id,
	)

	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// ListMembershipsByClient возвращает абонементы клиента, включая общие, в которых он участник.
// Новые идут первыми.
func (r *PostgresRepository) ListMembershipsByClient(ctx context.Context, clientID int64) ([]model.Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+membershipColumns+`
		 FROM memberships m
		 WHERE m.client_id = $1
		    OR EXISTS (SELECT 1 FROM membership_clients mc
		               WHERE mc.membership_id = m.id AND mc.client_id = $1)
		 ORDER BY m.start_date DESC, m.id DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("select memberships: %w", err)
	}
	defer rows.Close()

	var res []model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		res = append(res, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateMembershipTerm меняет дату окончания и статус абонемента (продление или отмена).
func (r *PostgresRepository) UpdateMembershipTerm(ctx context.Context, id int64, endDate time.Time, status model.MembershipStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE memberships SET end_date = $2, status = $3 WHERE id = $1`,
		id, endDate, string(status),
	)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// AddMembershipClient добавляет клиента в участники общего абонемента. Повторное добавление ничего не меняет.
func (r *PostgresRepository) AddMembershipClient(ctx context.Context, membershipID, clientID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO membership_clients (membership_id, client_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		membershipID, clientID,
	)
	if err != nil {
		if constraint, ok := foreignKeyViolation(err); ok {
			switch constraint {
			case "membership_clients_membership_fk":
				return ErrMembershipNotFound
			case "membership_clients_client_fk":
				return ErrClientNotFound
			}
		}
		return fmt.Errorf("add membership client: %w", err)
	}
	return nil
}

// RemoveMembershipClient исключает клиента из участников общего абонемента.
func (r *PostgresRepository) RemoveMembershipClient(ctx context.Context, membershipID, clientID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM membership_clients WHERE membership_id = $1 AND client_id = $2`,
		membershipID, clientID,
	)
	if err != nil {
		return fmt.Errorf("remove membership client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMembershipClient
	}
	return nil
}

// SweepMembershipStatuses переводит абонементы с истёкшей датой окончания в expired,
// а заканчивающиеся не позже upcomingUntil — в upcoming_expiry.
func (r *PostgresRepository) SweepMembershipStatuses(ctx context.Context, today, upcomingUntil time.Time) (expired, upcoming int, err error) {
	err = r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx,
			`UPDATE memberships SET status = $2 WHERE end_date < $1 AND status <> $2`,
			today, string(model.MembershipStatusExpired),
		)
		if err != nil {
			return fmt.Errorf("expire memberships: %w", err)
		}
		expired = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx,
			`UPDATE memberships SET status = $3
			 WHERE end_date >= $1 AND end_date <= $2 AND status = $4`,
			today, upcomingUntil,
			string(model.MembershipStatusUpcomingExpiry), string(model.MembershipStatusActive),
		)
		if err != nil {
			return fmt.Errorf("flag upcoming expiry: %w", err)
		}
		upcoming = int(tag.RowsAffected())

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	return expired, upcoming, err
}

func scanMembership(row pgx.Row) (*model.Membership, error) {
	var (
		m      model.Membership
		status string
	)
	if err := row.Scan(&m.ID, &m.ClientID, &m.Members, &m.PlanID, &m.StartDate, &m.EndDate, &status, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = model.MembershipStatus(status)
	if len(m.Members) == 0 {
		m.Members = nil
	}
	return &m, nil
}
