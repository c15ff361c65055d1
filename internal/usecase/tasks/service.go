package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

// CreateTaskInput represents the input for posting a new task
type CreateTaskInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Category    string
	Location    string
	Budget      decimal.Decimal
}

// Service owns task records and their state-machine transitions.
// Tasks are created Open, assigned through the acceptance coordinator,
// completed through the settlement engine, and deletable by their owner
// only while still Open.
type Service struct {
	Store domain.Store
}

// NewService creates a new task Service instance
func NewService(store domain.Store) *Service {
	return &Service{Store: store}
}

// CreateTask validates and writes a new Open task
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	if input.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: task owner is required", domain.ErrValidation)
	}

	task := &domain.Task{
		ID:            uuid.New(),
		OwnerID:       input.OwnerID,
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Location:      input.Location,
		Budget:        input.Budget,
		Status:        domain.TaskStatusOpen,
		PaymentStatus: domain.PaymentStatusUnpaid,
		CreatedAt:     time.Now(),
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.Store.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task by ID
func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.Store.Tasks().GetByID(ctx, id)
}

// DeleteTask cancels an Open task. Only the owner may delete, and only
// while the task is Open, so in-flight bids and assignments are never
// orphaned.
func (s *Service) DeleteTask(ctx context.Context, taskID, requesterID uuid.UUID) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		task, err := st.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.OwnerID != requesterID {
			return fmt.Errorf("only the task owner may delete it: %w", domain.ErrPermission)
		}
		if !task.IsOpen() {
			return fmt.Errorf("task is no longer open and cannot be deleted: %w", domain.ErrInvalidState)
		}
		return st.Tasks().Delete(ctx, taskID)
	})
}

// StartTask moves an Assigned task to In Progress. Only the assigned
// tasker may start work; the state carries no further invariants.
func (s *Service) StartTask(ctx context.Context, taskID, requesterID uuid.UUID) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		task, err := st.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.AssignedTaskerID == nil || *task.AssignedTaskerID != requesterID {
			return fmt.Errorf("only the assigned tasker may start this job: %w", domain.ErrPermission)
		}
		if task.Status != domain.TaskStatusAssigned {
			return fmt.Errorf("job is not in an assignable state to start: %w", domain.ErrInvalidState)
		}
		task.Status = domain.TaskStatusInProgress
		return st.Tasks().Update(ctx, task)
	})
}

// ListOpenTasks retrieves all Open tasks, newest first
func (s *Service) ListOpenTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.Store.Tasks().ListOpen(ctx)
}

// ListTasksByOwner retrieves a client's tasks, newest first
func (s *Service) ListTasksByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	return s.Store.Tasks().ListByOwner(ctx, ownerID)
}

// ListTasksByAssignee retrieves a tasker's jobs in the given statuses
func (s *Service) ListTasksByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []domain.TaskStatus) ([]*domain.Task, error) {
	return s.Store.Tasks().ListByAssignee(ctx, taskerID, statuses)
}

// WatchOpenTasks streams live snapshots of the Open task board
func (s *Service) WatchOpenTasks(ctx context.Context) (<-chan []*domain.Task, error) {
	return s.Store.Tasks().WatchOpen(ctx)
}

// WatchTasksByOwner streams live snapshots of a client's task list
func (s *Service) WatchTasksByOwner(ctx context.Context, ownerID uuid.UUID) (<-chan []*domain.Task, error) {
	return s.Store.Tasks().WatchByOwner(ctx, ownerID)
}

// WatchTasksByAssignee streams live snapshots of a tasker's job list
func (s *Service) WatchTasksByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []domain.TaskStatus) (<-chan []*domain.Task, error) {
	return s.Store.Tasks().WatchByAssignee(ctx, taskerID, statuses)
}
