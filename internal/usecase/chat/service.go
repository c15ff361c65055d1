package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// SendMessageInput represents the input for posting a chat message
type SendMessageInput struct {
	TaskID     uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Body       string
}

// Service owns the per-task conversation between the client and the
// tasker. The task is the chat room; only its owner and its assigned
// tasker may read or post, and messages are append-only.
type Service struct {
	Store domain.Store
}

// NewService creates a new chat Service instance
func NewService(store domain.Store) *Service {
	return &Service{Store: store}
}

// SendMessage validates and appends a message to the task's conversation
func (s *Service) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	if input.SenderID == uuid.Nil {
		return nil, fmt.Errorf("%w: message sender is required", domain.ErrValidation)
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		TaskID:     input.TaskID,
		SenderID:   input.SenderID,
		SenderName: input.SenderName,
		Body:       input.Body,
		CreatedAt:  time.Now(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		task, err := st.Tasks().GetByID(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if err := requireParticipant(task, input.SenderID); err != nil {
			return err
		}
		return st.Messages().Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MessagesForTask retrieves a task's conversation, oldest first
func (s *Service) MessagesForTask(ctx context.Context, taskID, requesterID uuid.UUID) ([]*domain.Message, error) {
	if err := s.authorize(ctx, taskID, requesterID); err != nil {
		return nil, err
	}
	return s.Store.Messages().ListByTask(ctx, taskID)
}

// WatchMessagesForTask streams live snapshots of a task's conversation
func (s *Service) WatchMessagesForTask(ctx context.Context, taskID, requesterID uuid.UUID) (<-chan []*domain.Message, error) {
	if err := s.authorize(ctx, taskID, requesterID); err != nil {
		return nil, err
	}
	return s.Store.Messages().WatchByTask(ctx, taskID)
}

func (s *Service) authorize(ctx context.Context, taskID, requesterID uuid.UUID) error {
	task, err := s.Store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	return requireParticipant(task, requesterID)
}

func requireParticipant(task *domain.Task, userID uuid.UUID) error {
	if task.OwnerID == userID {
		return nil
	}
	if task.AssignedTaskerID != nil && *task.AssignedTaskerID == userID {
		return nil
	}
	return fmt.Errorf("only the task owner and the assigned tasker may use the chat: %w", domain.ErrPermission)
}
