package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errandly/errandly-backend/internal/adapter/repository/memory"
	"github.com/errandly/errandly-backend/internal/domain"
)

func validInput(ownerID uuid.UUID) CreateTaskInput {
	return CreateTaskInput{
		OwnerID:     ownerID,
		Title:       "Grocery run",
		Description: "Pick up the weekly groceries",
		Category:    "Errands",
		Location:    "Lekki Phase 1",
		Budget:      decimal.NewFromInt(5000),
	}
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	service := NewService(memory.NewStore())
	ownerID := uuid.New()

	task, err := service.CreateTask(ctx, validInput(ownerID))

	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOpen, task.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, task.PaymentStatus)
	assert.Equal(t, 0, task.BidCount)
	assert.Nil(t, task.AssignedTaskerID)
	assert.Nil(t, task.AgreedPrice)

	stored, err := service.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, stored.ID)
	assert.Equal(t, ownerID, stored.OwnerID)
}

func TestCreateTask_ValidationFail(t *testing.T) {
	ctx := context.Background()
	service := NewService(memory.NewStore())

	input := validInput(uuid.New())
	input.Budget = decimal.Zero
	_, err := service.CreateTask(ctx, input)
	assert.ErrorIs(t, err, domain.ErrValidation)

	input = validInput(uuid.New())
	input.Title = "  "
	_, err = service.CreateTask(ctx, input)
	assert.ErrorIs(t, err, domain.ErrValidation)

	input = validInput(uuid.Nil)
	_, err = service.CreateTask(ctx, input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetTask_NotFound(t *testing.T) {
	ctx := context.Background()
	service := NewService(memory.NewStore())

	_, err := service.GetTask(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	service := NewService(memory.NewStore())
	ownerID := uuid.New()

	task, err := service.CreateTask(ctx, validInput(ownerID))
	require.NoError(t, err)

	require.NoError(t, service.DeleteTask(ctx, task.ID, ownerID))

	_, err = service.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTask_OpenWithPendingBids(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store)
	ownerID := uuid.New()

	task, err := service.CreateTask(ctx, validInput(ownerID))
	require.NoError(t, err)

	// pending bids must not block deletion of an Open task
	bid := &domain.Bid{
		ID:         uuid.New(),
		TaskID:     task.ID,
		TaskerID:   uuid.New(),
		TaskerName: "Ada O.",
		Amount:     decimal.NewFromInt(4500),
		Proposal:   "I can do this today",
		Status:     domain.BidStatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.Bids().Create(ctx, bid))

	require.NoError(t, service.DeleteTask(ctx, task.ID, ownerID))

	_, err = service.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the bids went with it
	remaining, err := store.Bids().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteTask_NotOwner(t *testing.T) {
	ctx := context.Background()
	service := NewService(memory.NewStore())

	task, err := service.CreateTask(ctx, validInput(uuid.New()))
	require.NoError(t, err)

	err = service.DeleteTask(ctx, task.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPermission)

	// still there
	_, err = service.GetTask(ctx, task.ID)
	assert.NoError(t, err)
}

func TestDeleteTask_NotOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store)
	ownerID := uuid.New()

	task, err := service.CreateTask(ctx, validInput(ownerID))
	require.NoError(t, err)

	// Simulate an assignment
	taskerID := uuid.New()
	task.Assign(&domain.Bid{TaskerID: taskerID, TaskerName: "Ada O.", Amount: decimal.NewFromInt(4500)})
	require.NoError(t, store.Tasks().Update(ctx, task))

	err = service.DeleteTask(ctx, task.ID, ownerID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestStartTask(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store)
	ownerID := uuid.New()
	taskerID := uuid.New()

	task, err := service.CreateTask(ctx, validInput(ownerID))
	require.NoError(t, err)
	task.Assign(&domain.Bid{TaskerID: taskerID, TaskerName: "Ada O.", Amount: decimal.NewFromInt(4500)})
	require.NoError(t, store.Tasks().Update(ctx, task))

	require.NoError(t, service.StartTask(ctx, task.ID, taskerID))

	updated, err := service.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, updated.Status)

	// starting twice is an invalid transition
	err = service.StartTask(ctx, task.ID, taskerID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestStartTask_NotAssignee(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store)

	task, err := service.CreateTask(ctx, validInput(uuid.New()))
	require.NoError(t, err)
	task.Assign(&domain.Bid{TaskerID: uuid.New(), TaskerName: "Ada O.", Amount: decimal.NewFromInt(4500)})
	require.NoError(t, store.Tasks().Update(ctx, task))

	err = service.StartTask(ctx, task.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestListOpenTasks_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store)

	older := validInput(uuid.New())
	first, err := service.CreateTask(ctx, older)
	require.NoError(t, err)
	// Force distinct timestamps
	first.CreatedAt = first.CreatedAt.Add(-time.Minute)
	require.NoError(t, store.Tasks().Update(ctx, first))

	second, err := service.CreateTask(ctx, validInput(uuid.New()))
	require.NoError(t, err)

	open, err := service.ListOpenTasks(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, second.ID, open[0].ID)
	assert.Equal(t, first.ID, open[1].ID)
}

func TestWatchOpenTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.NewStore()
	service := NewService(store)

	ch, err := service.WatchOpenTasks(ctx)
	require.NoError(t, err)

	// initial snapshot is empty
	snap := <-ch
	assert.Empty(t, snap)

	task, err := service.CreateTask(ctx, validInput(uuid.New()))
	require.NoError(t, err)

	snap = <-ch
	require.Len(t, snap, 1)
	assert.Equal(t, task.ID, snap[0].ID)

	require.NoError(t, service.DeleteTask(ctx, task.ID, task.OwnerID))
	snap = <-ch
	assert.Empty(t, snap)
}
