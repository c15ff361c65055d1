package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

// DefaultFeeRate is the platform fee charged on top of the agreed price
var DefaultFeeRate = decimal.RequireFromString("0.05")

// Notifier emits best-effort notifications after a commit
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ domain.NotificationType, relatedID uuid.UUID, title, body string)
}

// Engine executes the atomic pay-and-complete transaction. The client
// is charged the agreed price plus the platform fee; the tasker is
// credited the net agreed price. The Unpaid→Paid transition inside the
// transaction is the idempotency guard: a task settles at most once.
type Engine struct {
	Store    domain.Store
	Notifier Notifier
	FeeRate  decimal.Decimal
}

// NewEngine creates a new settlement Engine instance
func NewEngine(store domain.Store, notifier Notifier, feeRate decimal.Decimal) *Engine {
	return &Engine{Store: store, Notifier: notifier, FeeRate: feeRate}
}

// SettleTask marks the task Completed/Paid, appends the settlement
// audit record, and credits the tasker's wallet, all in one atomic
// transaction. Payment capture is assumed already authorized; this only
// records the ledger effect. Re-invoking on a Paid task fails with an
// invalid-state error and moves no funds.
func (e *Engine) SettleTask(ctx context.Context, taskID, requesterID uuid.UUID, method string) (*domain.Transaction, error) {
	if strings.TrimSpace(method) == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}

	var record *domain.Transaction
	var taskerID uuid.UUID
	var taskTitle string
	var net decimal.Decimal

	err := e.Store.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		task, err := st.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.OwnerID != requesterID {
			return fmt.Errorf("only the task owner may settle it: %w", domain.ErrPermission)
		}
		if task.PaymentStatus == domain.PaymentStatusPaid {
			return fmt.Errorf("task was already settled: %w", domain.ErrInvalidState)
		}
		if task.Status != domain.TaskStatusAssigned && task.Status != domain.TaskStatusInProgress {
			return fmt.Errorf("task is not ready for settlement: %w", domain.ErrInvalidState)
		}
		if task.AssignedTaskerID == nil || task.AgreedPrice == nil {
			return fmt.Errorf("task has no accepted bid to settle against: %w", domain.ErrInvalidState)
		}

		price := *task.AgreedPrice
		fee := price.Mul(e.FeeRate).Round(2)
		total := price.Add(fee)
		now := time.Now()

		task.MarkCompleted(now)
		if err := st.Tasks().Update(ctx, task); err != nil {
			return err
		}

		record = &domain.Transaction{
			ID:        uuid.New(),
			TaskID:    taskID,
			Amount:    total,
			Method:    method,
			Status:    domain.TransactionStatusSuccess,
			CreatedAt: now,
		}
		if err := st.Transactions().Create(ctx, record); err != nil {
			return err
		}

		if err := st.Wallets().Credit(ctx, *task.AssignedTaskerID, price); err != nil {
			return err
		}

		taskerID = *task.AssignedTaskerID
		taskTitle = task.Title
		net = price
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.Notifier.Notify(ctx, taskerID, domain.NotificationTypeJobCompleted, taskID,
		"Job completed and paid",
		fmt.Sprintf("Payment for %q settled; %s was credited to your wallet", taskTitle, net.StringFixed(2)))

	return record, nil
}

// WalletFor retrieves a tasker's wallet for display
func (e *Engine) WalletFor(ctx context.Context, taskerID uuid.UUID) (*domain.Wallet, error) {
	return e.Store.Wallets().GetByTasker(ctx, taskerID)
}

// TransactionsForTask retrieves the settlement audit trail for a task
func (e *Engine) TransactionsForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Transaction, error) {
	return e.Store.Transactions().ListByTask(ctx, taskID)
}
