package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTask() *Task {
	return &Task{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		Title:         "Grocery run",
		Description:   "Pick up the weekly groceries from the market",
		Category:      "Errands",
		Location:      "Lekki Phase 1",
		Budget:        decimal.NewFromInt(5000),
		Status:        TaskStatusOpen,
		PaymentStatus: PaymentStatusUnpaid,
		CreatedAt:     time.Now(),
	}
}

func TestTaskValidate(t *testing.T) {
	task := validTask()
	assert.NoError(t, task.Validate())
}

func TestTaskValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Task)
	}{
		{"empty title", func(task *Task) { task.Title = "  " }},
		{"empty description", func(task *Task) { task.Description = "" }},
		{"empty category", func(task *Task) { task.Category = "" }},
		{"empty location", func(task *Task) { task.Location = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask()
			tc.mutate(task)
			err := task.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTaskValidate_NonPositiveBudget(t *testing.T) {
	task := validTask()
	task.Budget = decimal.Zero
	assert.ErrorIs(t, task.Validate(), ErrValidation)

	task.Budget = decimal.NewFromInt(-100)
	assert.ErrorIs(t, task.Validate(), ErrValidation)
}

func TestTaskAssign(t *testing.T) {
	task := validTask()
	bid := &Bid{
		ID:         uuid.New(),
		TaskID:     task.ID,
		TaskerID:   uuid.New(),
		TaskerName: "Ada O.",
		Amount:     decimal.NewFromInt(4500),
		Proposal:   "I can do this today",
		Status:     BidStatusPending,
	}

	task.Assign(bid)

	assert.Equal(t, TaskStatusAssigned, task.Status)
	assert.Equal(t, bid.TaskerID, *task.AssignedTaskerID)
	assert.Equal(t, "Ada O.", task.AssignedTaskerName)
	assert.True(t, task.AgreedPrice.Equal(decimal.NewFromInt(4500)))
}

func TestTaskMarkCompleted(t *testing.T) {
	task := validTask()
	bid := &Bid{TaskerID: uuid.New(), TaskerName: "Ada O.", Amount: decimal.NewFromInt(4500)}
	task.Assign(bid)

	now := time.Now()
	task.MarkCompleted(now)

	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, PaymentStatusPaid, task.PaymentStatus)
	assert.Equal(t, now, *task.CompletedAt)
	assert.True(t, task.IsTerminal())
}

func TestTaskIsOpen(t *testing.T) {
	task := validTask()
	assert.True(t, task.IsOpen())

	task.Status = TaskStatusAssigned
	assert.False(t, task.IsOpen())
	assert.False(t, task.IsTerminal())

	task.Status = TaskStatusCancelled
	assert.True(t, task.IsTerminal())
}
