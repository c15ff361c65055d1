package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// messageRepository implements domain.MessageRepository over a memory host
type messageRepository struct {
	h host
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.h.mutate(func(d *dataset) error {
		if _, ok := d.messages[m.ID]; ok {
			return fmt.Errorf("message %s already exists: %w", m.ID, domain.ErrInvalidState)
		}
		d.messages[m.ID] = cloneMessage(m)
		return nil
	})
}

func (r *messageRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Message, error) {
	var out []*domain.Message
	err := r.h.view(func(d *dataset) error {
		out = messagesByTask(d, taskID)
		return nil
	})
	return out, err
}

func (r *messageRepository) WatchByTask(ctx context.Context, taskID uuid.UUID) (<-chan []*domain.Message, error) {
	return watchMessages(ctx, r.h, func(d *dataset) []*domain.Message {
		return messagesByTask(d, taskID)
	})
}
