package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// CreateClient создаёт нового клиента.
func (r *PostgresRepository) CreateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, phone, email, status) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.Name, c.Phone, c.Email, string(c.Status),
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &c, nil
}

// GetClient возвращает клиента по идентификатору.
func (r *PostgresRepository) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, status, created_at FROM clients WHERE id = $1`,
		id,
	)

	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ListClients возвращает всех клиентов в порядке регистрации.
func (r *PostgresRepository) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, email, status, created_at FROM clients ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select clients: %w", err)
	}
	defer rows.Close()

	var res []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		res = append(res, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateClientStatus меняет статус клиента.
func (r *PostgresRepository) UpdateClientStatus(ctx context.Context, id int64, status model.ClientStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update client status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var (
		c      model.Client
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &status, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = model.ClientStatus(status)
	return &c, nil
}
