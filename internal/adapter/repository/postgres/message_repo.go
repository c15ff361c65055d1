package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// messageRepository implements the append-only per-task chat log
type messageRepository struct {
	q    queryer
	root *Store
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, task_id, sender_id, sender_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		m.ID,
		m.TaskID,
		m.SenderID,
		m.SenderName,
		m.Body,
		m.CreatedAt,
	)
	return storeErr("create message", err)
}

func (r *messageRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Message, error) {
	// Chat order: oldest first.
	query := `
		SELECT id, task_id, sender_id, sender_name, body, created_at
		FROM messages
		WHERE task_id = $1
		ORDER BY created_at ASC, id
	`
	rows, err := r.q.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.TaskID, &m.SenderID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
			return nil, storeErr("scan message", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list messages", err)
	}
	return out, nil
}

func (r *messageRepository) WatchByTask(ctx context.Context, taskID uuid.UUID) (<-chan []*domain.Message, error) {
	return pollChanges(ctx, r.root.pollInterval, func(ctx context.Context) ([]*domain.Message, error) {
		return r.root.Messages().ListByTask(ctx, taskID)
	}, messagesEqual)
}

func messagesEqual(a, b []*domain.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
