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

// walletRepository implements domain.WalletRepository
type walletRepository struct {
	q queryer
}

func (r *walletRepository) GetByTasker(ctx context.Context, taskerID uuid.UUID) (*domain.Wallet, error) {
	query := `
		SELECT tasker_id, balance, lifetime_earnings, completed_jobs
		FROM wallets
		WHERE tasker_id = $1
	`

	var wallet domain.Wallet
	var balanceStr, lifetimeStr string

	err := r.q.QueryRowContext(ctx, query, taskerID).Scan(
		&wallet.TaskerID,
		&balanceStr,
		&lifetimeStr,
		&wallet.CompletedJobs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// never credited yet
			return &domain.Wallet{
				TaskerID:         taskerID,
				Balance:          decimal.Zero,
				LifetimeEarnings: decimal.Zero,
			}, nil
		}
		return nil, storeErr("get wallet", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	wallet.Balance = balance

	lifetime, err := decimal.NewFromString(lifetimeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lifetime_earnings: %w", err)
	}
	wallet.LifetimeEarnings = lifetime

	return &wallet, nil
}

func (r *walletRepository) Credit(ctx context.Context, taskerID uuid.UUID, net decimal.Decimal) error {
	query := `
		INSERT INTO wallets (tasker_id, balance, lifetime_earnings, completed_jobs)
		VALUES ($1, $2, $2, 1)
		ON CONFLICT (tasker_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance,
			lifetime_earnings = wallets.lifetime_earnings + EXCLUDED.lifetime_earnings,
			completed_jobs = wallets.completed_jobs + 1
	`
	_, err := r.q.ExecContext(ctx, query, taskerID, net.String())
	return storeErr("credit wallet", err)
}
