package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// notificationRepository implements domain.NotificationRepository
type notificationRepository struct {
	q    queryer
	root *Store
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, type, title, body, related_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.RecipientID,
		string(n.Type),
		n.Title,
		n.Body,
		n.RelatedID,
		n.Read,
		n.CreatedAt,
	)
	return storeErr("create notification", err)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, type, title, body, related_id, read, created_at
		FROM notifications
		WHERE id = $1
	`

	n, err := scanNotification(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		return nil, storeErr("get notification", err)
	}
	return n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, type, title, body, related_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.q.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, storeErr("scan notification", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list notifications", err)
	}
	return out, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return storeErr("mark notification read", err)
	}
	return requireRow(res, fmt.Sprintf("notification %s", id))
}

func (r *notificationRepository) WatchByRecipient(ctx context.Context, recipientID uuid.UUID) (<-chan []*domain.Notification, error) {
	return pollChanges(ctx, r.root.pollInterval, func(ctx context.Context) ([]*domain.Notification, error) {
		return r.root.Notifications().ListByRecipient(ctx, recipientID)
	}, notificationsEqual)
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var typeStr string
	err := s.Scan(
		&n.ID,
		&n.RecipientID,
		&typeStr,
		&n.Title,
		&n.Body,
		&n.RelatedID,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typeStr)
	return &n, nil
}

func notificationsEqual(a, b []*domain.Notification) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Read != b[i].Read {
			return false
		}
	}
	return true
}
