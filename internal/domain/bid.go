package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidStatus represents the state of a bid within its task
type BidStatus string

const (
	BidStatusPending  BidStatus = "Pending"
	BidStatusAccepted BidStatus = "Accepted"
	BidStatusRejected BidStatus = "Rejected"
)

// Bid represents a tasker's competing offer against an Open task.
// TaskerName is a denormalized display cache; a stale name is acceptable.
type Bid struct {
	ID         uuid.UUID
	TaskID     uuid.UUID
	TaskerID   uuid.UUID
	TaskerName string
	Amount     decimal.Decimal
	Proposal   string
	Status     BidStatus
	CreatedAt  time.Time
}

// Validate ensures the bid adheres to domain rules before it is written
func (b *Bid) Validate() error {
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: bid amount must be positive", ErrValidation)
	}
	if strings.TrimSpace(b.Proposal) == "" {
		return fmt.Errorf("%w: bid proposal is required", ErrValidation)
	}
	if strings.TrimSpace(b.TaskerName) == "" {
		return fmt.Errorf("%w: bid tasker name is required", ErrValidation)
	}
	return nil
}
