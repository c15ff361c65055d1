package bids

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

// Notifier emits best-effort notifications after a commit
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ domain.NotificationType, relatedID uuid.UUID, title, body string)
}

// PlaceBidInput represents the input for bidding on a task
type PlaceBidInput struct {
	TaskID     uuid.UUID
	TaskerID   uuid.UUID
	TaskerName string
	Amount     decimal.Decimal
	Proposal   string
}

// Service owns bid records. A bid may only be created while its task is
// Open; the bid write and the task's bid-count increment commit together.
type Service struct {
	Store    domain.Store
	Notifier Notifier
}

// NewService creates a new bid Service instance
func NewService(store domain.Store, notifier Notifier) *Service {
	return &Service{Store: store, Notifier: notifier}
}

// PlaceBid validates and writes a Pending bid against an Open task,
// incrementing the task's bid count in the same transaction. The task's
// owner gets a BidReceived notification after commit.
func (s *Service) PlaceBid(ctx context.Context, input PlaceBidInput) (*domain.Bid, error) {
	if input.TaskerID == uuid.Nil {
		return nil, fmt.Errorf("%w: bid tasker is required", domain.ErrValidation)
	}

	bid := &domain.Bid{
		ID:         uuid.New(),
		TaskID:     input.TaskID,
		TaskerID:   input.TaskerID,
		TaskerName: input.TaskerName,
		Amount:     input.Amount,
		Proposal:   input.Proposal,
		Status:     domain.BidStatusPending,
		CreatedAt:  time.Now(),
	}
	if err := bid.Validate(); err != nil {
		return nil, err
	}

	var ownerID uuid.UUID
	err := s.Store.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		task, err := st.Tasks().GetByID(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if !task.IsOpen() {
			return fmt.Errorf("task is no longer open for bidding: %w", domain.ErrInvalidState)
		}
		if err := st.Bids().Create(ctx, bid); err != nil {
			return err
		}
		task.BidCount++
		if err := st.Tasks().Update(ctx, task); err != nil {
			return err
		}
		ownerID = task.OwnerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, ownerID, domain.NotificationTypeBidReceived, bid.TaskID,
		"New bid received",
		fmt.Sprintf("%s offered %s on your task", bid.TaskerName, bid.Amount.StringFixed(2)))

	return bid, nil
}

// ListBidsForTask retrieves a task's bids, lowest amount first
func (s *Service) ListBidsForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Bid, error) {
	return s.Store.Bids().ListByTask(ctx, taskID)
}

// WatchBidsForTask streams live snapshots of a task's bid list
func (s *Service) WatchBidsForTask(ctx context.Context, taskID uuid.UUID) (<-chan []*domain.Bid, error) {
	return s.Store.Bids().WatchByTask(ctx, taskID)
}
