package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// notificationRepository implements domain.NotificationRepository
type notificationRepository struct {
	h host
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.h.mutate(func(d *dataset) error {
		d.notifications[n.ID] = cloneNotification(n)
		return nil
	})
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var n *domain.Notification
	err := r.h.view(func(d *dataset) error {
		found, ok := d.notifications[id]
		if !ok {
			return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		n = cloneNotification(found)
		return nil
	})
	return n, err
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	var out []*domain.Notification
	err := r.h.view(func(d *dataset) error {
		out = notificationsByRecipient(d, recipientID)
		return nil
	})
	return out, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.h.mutate(func(d *dataset) error {
		n, ok := d.notifications[id]
		if !ok {
			return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		c := cloneNotification(n)
		c.Read = true
		d.notifications[id] = c
		return nil
	})
}

func (r *notificationRepository) WatchByRecipient(ctx context.Context, recipientID uuid.UUID) (<-chan []*domain.Notification, error) {
	return watchNotifications(ctx, r.h, func(d *dataset) []*domain.Notification {
		return notificationsByRecipient(d, recipientID)
	})
}
