package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

// transactionRepository implements the append-only settlement trail
type transactionRepository struct {
	q queryer
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, task_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		tx.ID,
		tx.TaskID,
		tx.Amount.String(),
		tx.Method,
		string(tx.Status),
		tx.CreatedAt,
	)
	return storeErr("create transaction", err)
}

func (r *transactionRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, task_id, amount, method, status, created_at
		FROM transactions
		WHERE task_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amountStr, statusStr string
		if err := rows.Scan(&tx.ID, &tx.TaskID, &amountStr, &tx.Method, &statusStr, &tx.CreatedAt); err != nil {
			return nil, storeErr("scan transaction", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		tx.Amount = amount
		tx.Status = domain.TransactionStatus(statusStr)
		out = append(out, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list transactions", err)
	}
	return out, nil
}
