package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a tasker's accumulated earnings ledger. Balance only
// increases through settlement, by the net payout of one completed task,
// exactly once per task.
type Wallet struct {
	TaskerID         uuid.UUID
	Balance          decimal.Decimal
	LifetimeEarnings decimal.Decimal
	CompletedJobs    int
}

// Credit applies one settlement payout to the wallet
func (w *Wallet) Credit(net decimal.Decimal) {
	w.Balance = w.Balance.Add(net)
	w.LifetimeEarnings = w.LifetimeEarnings.Add(net)
	w.CompletedJobs++
}
