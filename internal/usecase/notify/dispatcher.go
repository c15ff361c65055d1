package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/errandly/errandly-backend/internal/domain"
)

// Publisher forwards a notification to external delivery infrastructure
// (in-app push, device alerts). Delivery is best-effort; the core never
// depends on it succeeding.
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// Dispatcher appends advisory notification records on state transitions.
// It is fire-and-forget: failures are logged and swallowed so they can
// never fail or roll back the calling operation.
type Dispatcher struct {
	Store     domain.Store
	Publisher Publisher // optional
	Logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher instance. publisher may be nil
// when no external delivery transport is configured.
func NewDispatcher(store domain.Store, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
	}
}

// Notify appends a notification record and forwards it to the delivery
// transport. Never blocks the caller on failure and returns nothing.
func (d *Dispatcher) Notify(ctx context.Context, recipientID uuid.UUID, typ domain.NotificationType, relatedID uuid.UUID, title, body string) {
	n := &domain.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Body:        body,
		RelatedID:   relatedID,
		CreatedAt:   time.Now(),
	}

	if err := d.Store.Notifications().Create(ctx, n); err != nil {
		d.Logger.Warn("notification write failed",
			zap.String("recipient_id", recipientID.String()),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
		return
	}

	if d.Publisher == nil {
		return
	}
	if err := d.Publisher.Publish(ctx, n); err != nil {
		d.Logger.Warn("notification publish failed",
			zap.String("notification_id", n.ID.String()),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}
}

// Inbox retrieves a user's notifications, newest first
func (d *Dispatcher) Inbox(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	return d.Store.Notifications().ListByRecipient(ctx, recipientID)
}

// WatchInbox streams snapshots of a user's notification list
func (d *Dispatcher) WatchInbox(ctx context.Context, recipientID uuid.UUID) (<-chan []*domain.Notification, error) {
	return d.Store.Notifications().WatchByRecipient(ctx, recipientID)
}

// MarkRead flips the read flag; only the recipient may do so
func (d *Dispatcher) MarkRead(ctx context.Context, id, requesterID uuid.UUID) error {
	n, err := d.Store.Notifications().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != requesterID {
		return fmt.Errorf("only the recipient may mark a notification read: %w", domain.ErrPermission)
	}
	return d.Store.Notifications().MarkRead(ctx, id)
}
