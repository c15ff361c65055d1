package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// taskRepository implements domain.TaskRepository over a memory host
type taskRepository struct {
	h host
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.h.mutate(func(d *dataset) error {
		if _, ok := d.tasks[task.ID]; ok {
			return fmt.Errorf("task %s already exists: %w", task.ID, domain.ErrInvalidState)
		}
		d.tasks[task.ID] = cloneTask(task)
		return nil
	})
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := r.h.view(func(d *dataset) error {
		t, ok := d.tasks[id]
		if !ok {
			return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		task = cloneTask(t)
		return nil
	})
	return task, err
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.h.mutate(func(d *dataset) error {
		if _, ok := d.tasks[task.ID]; !ok {
			return fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
		}
		d.tasks[task.ID] = cloneTask(task)
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.mutate(func(d *dataset) error {
		if _, ok := d.tasks[id]; !ok {
			return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		delete(d.tasks, id)
		for bidID, b := range d.bids {
			if b.TaskID == id {
				delete(d.bids, bidID)
			}
		}
		for msgID, m := range d.messages {
			if m.TaskID == id {
				delete(d.messages, msgID)
			}
		}
		return nil
	})
}

func (r *taskRepository) ListOpen(ctx context.Context) ([]*domain.Task, error) {
	var out []*domain.Task
	err := r.h.view(func(d *dataset) error {
		out = openTasks(d)
		return nil
	})
	return out, err
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	err := r.h.view(func(d *dataset) error {
		out = tasksByOwner(d, ownerID)
		return nil
	})
	return out, err
}

func (r *taskRepository) ListByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []domain.TaskStatus) ([]*domain.Task, error) {
	var out []*domain.Task
	err := r.h.view(func(d *dataset) error {
		out = tasksByAssignee(d, taskerID, statuses)
		return nil
	})
	return out, err
}

func (r *taskRepository) WatchOpen(ctx context.Context) (<-chan []*domain.Task, error) {
	return watchTasks(ctx, r.h, openTasks)
}

func (r *taskRepository) WatchByOwner(ctx context.Context, ownerID uuid.UUID) (<-chan []*domain.Task, error) {
	return watchTasks(ctx, r.h, func(d *dataset) []*domain.Task {
		return tasksByOwner(d, ownerID)
	})
}

func (r *taskRepository) WatchByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []domain.TaskStatus) (<-chan []*domain.Task, error) {
	return watchTasks(ctx, r.h, func(d *dataset) []*domain.Task {
		return tasksByAssignee(d, taskerID, statuses)
	})
}
