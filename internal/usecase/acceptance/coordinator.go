package acceptance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// Notifier emits best-effort notifications after a commit
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ domain.NotificationType, relatedID uuid.UUID, title, body string)
}

// Coordinator executes the atomic bid-acceptance transaction. Exactly
// one bid per task can ever be accepted: the preconditions are
// re-checked against the freshest snapshot inside the transaction, so
// of two racing accept calls only the first commit succeeds and the
// second observes the task is no longer Open and fails cleanly.
type Coordinator struct {
	Store    domain.Store
	Notifier Notifier
}

// NewCoordinator creates a new Coordinator instance
func NewCoordinator(store domain.Store, notifier Notifier) *Coordinator {
	return &Coordinator{Store: store, Notifier: notifier}
}

// AcceptBid atomically assigns the task to the bidder: the task becomes
// Assigned with the bid's tasker, name, and amount denormalized onto it,
// the winning bid becomes Accepted, and every sibling Pending bid
// becomes Rejected in the same transaction. The winner is notified
// after commit; notification failure never rolls back the acceptance.
func (c *Coordinator) AcceptBid(ctx context.Context, taskID, bidID, requesterID uuid.UUID) error {
	var winner *domain.Bid
	var taskTitle string

	err := c.Store.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		task, err := st.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.OwnerID != requesterID {
			return fmt.Errorf("only the task owner may accept a bid: %w", domain.ErrPermission)
		}
		if !task.IsOpen() {
			return fmt.Errorf("task is not open for assignment: %w", domain.ErrInvalidState)
		}

		bid, err := st.Bids().GetByID(ctx, bidID)
		if err != nil {
			return err
		}
		if bid.TaskID != taskID {
			return fmt.Errorf("bid does not belong to this task: %w", domain.ErrInvalidState)
		}
		if bid.Status != domain.BidStatusPending {
			return fmt.Errorf("bid is no longer available: %w", domain.ErrInvalidState)
		}

		task.Assign(bid)
		if err := st.Tasks().Update(ctx, task); err != nil {
			return err
		}

		bid.Status = domain.BidStatusAccepted
		if err := st.Bids().Update(ctx, bid); err != nil {
			return err
		}

		if _, err := st.Bids().RejectPending(ctx, taskID, bidID); err != nil {
			return err
		}

		winner = bid
		taskTitle = task.Title
		return nil
	})
	if err != nil {
		return err
	}

	c.Notifier.Notify(ctx, winner.TaskerID, domain.NotificationTypeJobAssigned, taskID,
		"You got the job",
		fmt.Sprintf("Your offer of %s on %q was accepted", winner.Amount.StringFixed(2), taskTitle))

	return nil
}
