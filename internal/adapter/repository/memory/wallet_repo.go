package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

// walletRepository implements domain.WalletRepository over a memory host
type walletRepository struct {
	h host
}

func (r *walletRepository) GetByTasker(ctx context.Context, taskerID uuid.UUID) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := r.h.view(func(d *dataset) error {
		if w, ok := d.wallets[taskerID]; ok {
			wallet = cloneWallet(w)
			return nil
		}
		wallet = &domain.Wallet{
			TaskerID:         taskerID,
			Balance:          decimal.Zero,
			LifetimeEarnings: decimal.Zero,
		}
		return nil
	})
	return wallet, err
}

func (r *walletRepository) Credit(ctx context.Context, taskerID uuid.UUID, net decimal.Decimal) error {
	return r.h.mutate(func(d *dataset) error {
		w, ok := d.wallets[taskerID]
		if !ok {
			w = &domain.Wallet{
				TaskerID:         taskerID,
				Balance:          decimal.Zero,
				LifetimeEarnings: decimal.Zero,
			}
		} else {
			w = cloneWallet(w)
		}
		w.Credit(net)
		d.wallets[taskerID] = w
		return nil
	})
}
