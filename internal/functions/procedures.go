// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package functions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"arenatv/cli/internal/dsn"
)

// PaymentArgs are the arguments of the process_payment procedure.
type PaymentArgs struct {
	UserID        uuid.UUID
	PaymentMethod string
	PaymentID     *string
	Amount        float64
	Currency      string
}

// Procedures are the database procedures the functions call.
type Procedures interface {
	// ProcessPayment records a payment and returns the resulting subscription.
	ProcessPayment(ctx context.Context, args PaymentArgs) (json.RawMessage, error)
	GenerateEventNotifications(ctx context.Context) error
}

// PG calls the procedures over a pgx pool.
type PG struct {
	pool *pgxpool.Pool
}

// OpenPG connects to the database at databaseURL.
func OpenPG(ctx context.Context, databaseURL string) (*PG, error) {
	normalized, err := dsn.Normalize(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 8
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PG{pool: pool}, nil
}

func (p *PG) Close() { p.pool.Close() }

// Ping reports whether the database answers.
func (p *PG) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *PG) ProcessPayment(ctx context.Context, a PaymentArgs) (json.RawMessage, error) {
	const q = `SELECT process_payment(
		p_user_id => $1::uuid,
		p_payment_method => $2::text,
		p_payment_id => $3::text,
		p_amount => $4::numeric,
		p_currency => $5::text
	)::text`
	var out *string
	if err := p.pool.QueryRow(ctx, q, a.UserID.String(), a.PaymentMethod, a.PaymentID, a.Amount, a.Currency).Scan(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(*out), nil
}

func (p *PG) GenerateEventNotifications(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `SELECT generate_event_notifications()`)
	return err
}
