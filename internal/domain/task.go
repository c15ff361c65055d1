package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "Open"
	TaskStatusAssigned   TaskStatus = "Assigned"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// PaymentStatus represents whether a task has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "Unpaid"
	PaymentStatusPaid   PaymentStatus = "Paid"
)

// Task represents one posted errand with a budget, owned by a client.
// AssignedTaskerName and AgreedPrice are denormalized from the accepted
// bid at assignment time; a stale display name is acceptable.
type Task struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	Title              string
	Description        string
	Category           string
	Location           string
	Budget             decimal.Decimal
	Status             TaskStatus
	AssignedTaskerID   *uuid.UUID
	AssignedTaskerName string
	AgreedPrice        *decimal.Decimal
	BidCount           int
	PaymentStatus      PaymentStatus
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// Validate ensures the task adheres to domain rules before it is written
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: task title is required", ErrValidation)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: task description is required", ErrValidation)
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("%w: task category is required", ErrValidation)
	}
	if strings.TrimSpace(t.Location) == "" {
		return fmt.Errorf("%w: task location is required", ErrValidation)
	}
	if t.Budget.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: task budget must be positive", ErrValidation)
	}
	return nil
}

// IsOpen reports whether the task still accepts bids
func (t *Task) IsOpen() bool {
	return t.Status == TaskStatusOpen
}

// IsTerminal reports whether the task is in a state no transition leaves
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

// Assign applies the acceptance effects of the winning bid.
// Caller must have verified the task is Open and the bid Pending.
func (t *Task) Assign(b *Bid) {
	taskerID := b.TaskerID
	price := b.Amount
	t.Status = TaskStatusAssigned
	t.AssignedTaskerID = &taskerID
	t.AssignedTaskerName = b.TaskerName
	t.AgreedPrice = &price
}

// MarkCompleted applies the settlement effects on the task record
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = TaskStatusCompleted
	t.PaymentStatus = PaymentStatusPaid
	t.CompletedAt = &now
}
