package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// CreatePlan создаёт тарифный план.
func (r *PostgresRepository) CreatePlan(ctx context.Context, p model.MembershipPlan) (*model.MembershipPlan, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO membership_plans (name, price, period_days) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.Name, toMinor(p.Price), p.PeriodDays,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return &p, nil
}

// GetPlan возвращает тарифный план по идентификатору.
func (r *PostgresRepository) GetPlan(ctx context.Context, id int64) (*model.MembershipPlan, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, price, period_days, created_at FROM membership_plans WHERE id = $1`,
		id,
	)

	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// ListPlans возвращает все тарифные планы.
func (r *PostgresRepository) ListPlans(ctx context.Context) ([]model.MembershipPlan, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price, period_days, created_at FROM membership_plans ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select plans: %w", err)
	}
	defer rows.Close()

	var res []model.MembershipPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		res = append(res, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func scanPlan(row pgx.Row) (*model.MembershipPlan, error) {
	var (
		p     model.MembershipPlan
		price int64
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.PeriodDays, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Price = fromMinor(price)
	return &p, nil
}

// UpdatePlan обновляет название, цену и длину периода плана.
func (r *PostgresRepository) UpdatePlan(ctx context.Context, p model.MembershipPlan) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE membership_plans SET name = $2, price = $3, period_days = $4 WHERE id = $1`,
		p.ID, p.Name, toMinor(p.Price), p.PeriodDays,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}
