package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskRepository defines the interface for task persistence operations.
// Watch methods return a receive-only channel of full result-set
// snapshots that is closed when ctx is cancelled. The watch path is
// strictly read-only and must never trigger write-side logic.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *Task) error

	// GetByID retrieves a task by its ID, ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// Update overwrites a task record
	Update(ctx context.Context, task *Task) error

	// Delete removes a task record along with the bids scoped to it
	Delete(ctx context.Context, id uuid.UUID) error

	// ListOpen retrieves all Open tasks, newest first
	ListOpen(ctx context.Context) ([]*Task, error)

	// ListByOwner retrieves a client's tasks, newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Task, error)

	// ListByAssignee retrieves a tasker's assigned tasks in the given
	// statuses, newest first. Empty statuses means any assigned status.
	ListByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []TaskStatus) ([]*Task, error)

	// WatchOpen streams snapshots of the Open task list
	WatchOpen(ctx context.Context) (<-chan []*Task, error)

	// WatchByOwner streams snapshots of a client's task list
	WatchByOwner(ctx context.Context, ownerID uuid.UUID) (<-chan []*Task, error)

	// WatchByAssignee streams snapshots of a tasker's job list
	WatchByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []TaskStatus) (<-chan []*Task, error)
}

// BidRepository defines the interface for bid persistence operations.
// Bids are scoped to one task and removed only when the task is deleted.
type BidRepository interface {
	// Create creates a new bid
	Create(ctx context.Context, bid *Bid) error

	// GetByID retrieves a bid by its ID, ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Bid, error)

	// Update overwrites a bid record
	Update(ctx context.Context, bid *Bid) error

	// ListByTask retrieves all bids for a task ordered by amount
	// ascending, ties broken by creation time ascending
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Bid, error)

	// RejectPending marks every Pending bid of the task as Rejected,
	// except the given bid. Returns the number of bids rejected.
	RejectPending(ctx context.Context, taskID, exceptBidID uuid.UUID) (int, error)

	// WatchByTask streams snapshots of a task's bid list in ListByTask order
	WatchByTask(ctx context.Context, taskID uuid.UUID) (<-chan []*Bid, error)
}

// TransactionRepository defines the interface for the append-only
// settlement audit trail
type TransactionRepository interface {
	// Create appends a settlement record
	Create(ctx context.Context, tx *Transaction) error

	// ListByTask retrieves settlement records for a task, newest first
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Transaction, error)
}

// WalletRepository defines the interface for tasker wallet persistence
type WalletRepository interface {
	// GetByTasker retrieves a tasker's wallet, returning a zero-valued
	// wallet if the tasker has never been credited
	GetByTasker(ctx context.Context, taskerID uuid.UUID) (*Wallet, error)

	// Credit adds one settlement payout: balance and lifetime earnings
	// grow by net, the completed-job counter by one. Creates the wallet
	// on first credit.
	Credit(ctx context.Context, taskerID uuid.UUID, net decimal.Decimal) error
}

// MessageRepository defines the interface for per-task chat messages.
// Messages are append-only and scoped to one task.
type MessageRepository interface {
	// Create appends a chat message
	Create(ctx context.Context, m *Message) error

	// ListByTask retrieves a task's messages, oldest first
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Message, error)

	// WatchByTask streams snapshots of a task's conversation in ListByTask order
	WatchByTask(ctx context.Context, taskID uuid.UUID) (<-chan []*Message, error)
}

// NotificationRepository defines the interface for advisory notifications
type NotificationRepository interface {
	// Create appends a notification record
	Create(ctx context.Context, n *Notification) error

	// GetByID retrieves a notification by its ID, ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// ListByRecipient retrieves a user's notifications, newest first
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*Notification, error)

	// MarkRead flips the read flag on a notification
	MarkRead(ctx context.Context, id uuid.UUID) error

	// WatchByRecipient streams snapshots of a user's notification list
	WatchByRecipient(ctx context.Context, recipientID uuid.UUID) (<-chan []*Notification, error)
}

// Store is the record-store contract: per-collection repositories plus
// atomic cross-record transactions. WithinTx runs fn against a
// consistent snapshot of the store; all writes made through the Store
// passed to fn commit together or not at all. Implementations retry fn
// on conflicting concurrent commits, so fn must be side-effect free
// apart from its writes.
type Store interface {
	Tasks() TaskRepository
	Bids() BidRepository
	Transactions() TransactionRepository
	Wallets() WalletRepository
	Messages() MessageRepository
	Notifications() NotificationRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
