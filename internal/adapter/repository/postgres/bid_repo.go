package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

const bidColumns = `id, task_id, tasker_id, tasker_name, amount, proposal, status, created_at`

// bidRepository implements domain.BidRepository
type bidRepository struct {
	q    queryer
	root *Store
}

func (r *bidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	query := `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		bid.ID,
		bid.TaskID,
		bid.TaskerID,
		bid.TaskerName,
		bid.Amount.String(),
		bid.Proposal,
		string(bid.Status),
		bid.CreatedAt,
	)
	return storeErr("create bid", err)
}

func (r *bidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	bid, err := scanBid(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bid %s: %w", id, domain.ErrNotFound)
		}
		return nil, storeErr("get bid", err)
	}
	return bid, nil
}

func (r *bidRepository) Update(ctx context.Context, bid *domain.Bid) error {
	query := `
		UPDATE bids
		SET tasker_name = $2, amount = $3, proposal = $4, status = $5
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		bid.ID,
		bid.TaskerName,
		bid.Amount.String(),
		bid.Proposal,
		string(bid.Status),
	)
	if err != nil {
		return storeErr("update bid", err)
	}
	return requireRow(res, fmt.Sprintf("bid %s", bid.ID))
}

func (r *bidRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Bid, error) {
	// Lowest offer first so the most competitive bid surfaces on top.
	query := `SELECT ` + bidColumns + ` FROM bids WHERE task_id = $1 ORDER BY amount ASC, created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, storeErr("list bids", err)
	}
	defer rows.Close()

	var out []*domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, storeErr("scan bid", err)
		}
		out = append(out, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list bids", err)
	}
	return out, nil
}

func (r *bidRepository) RejectPending(ctx context.Context, taskID, exceptBidID uuid.UUID) (int, error) {
	query := `
		UPDATE bids
		SET status = $3
		WHERE task_id = $1 AND id <> $2 AND status = $4
	`
	res, err := r.q.ExecContext(ctx, query,
		taskID,
		exceptBidID,
		string(domain.BidStatusRejected),
		string(domain.BidStatusPending),
	)
	if err != nil {
		return 0, storeErr("reject pending bids", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("rows affected", err)
	}
	return int(n), nil
}

func (r *bidRepository) WatchByTask(ctx context.Context, taskID uuid.UUID) (<-chan []*domain.Bid, error) {
	return pollChanges(ctx, r.root.pollInterval, func(ctx context.Context) ([]*domain.Bid, error) {
		return r.root.Bids().ListByTask(ctx, taskID)
	}, bidsEqual)
}

func scanBid(s scanner) (*domain.Bid, error) {
	var bid domain.Bid
	var amountStr, statusStr string

	err := s.Scan(
		&bid.ID,
		&bid.TaskID,
		&bid.TaskerID,
		&bid.TaskerName,
		&amountStr,
		&bid.Proposal,
		&statusStr,
		&bid.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	bid.Amount = amount
	bid.Status = domain.BidStatus(statusStr)
	return &bid, nil
}

func bidsEqual(a, b []*domain.Bid) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Status != b[i].Status {
			return false
		}
	}
	return true
}
