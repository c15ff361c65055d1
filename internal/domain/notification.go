package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags the state transition a notification announces
type NotificationType string

const (
	NotificationTypeBidReceived  NotificationType = "BidReceived"
	NotificationTypeJobAssigned  NotificationType = "JobAssigned"
	NotificationTypeJobCompleted NotificationType = "JobCompleted"
	NotificationTypeAlert        NotificationType = "Alert"
)

// Notification is a best-effort advisory record emitted on state
// transitions. It is never required for correctness of the core state
// machine; only the recipient may mark it read.
type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Type        NotificationType
	Title       string
	Body        string
	RelatedID   uuid.UUID
	Read        bool
	CreatedAt   time.Time
}
