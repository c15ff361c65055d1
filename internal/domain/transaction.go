package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the outcome recorded for a settlement
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "Success"
	TransactionStatusFailed  TransactionStatus = "Failed"
)

// Transaction is the append-only settlement audit record for one task.
// Amount is the gross total charged to the client (agreed price plus
// platform fee). Never mutated after creation.
type Transaction struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	Amount    decimal.Decimal
	Method    string
	Status    TransactionStatus
	CreatedAt time.Time
}
