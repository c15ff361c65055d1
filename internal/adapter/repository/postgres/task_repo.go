package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/errandly/errandly-backend/internal/domain"
)

const taskColumns = `id, owner_id, title, description, category, location, budget, status,
	assigned_tasker_id, assigned_tasker_name, agreed_price, bid_count, payment_status,
	created_at, completed_at`

// taskRepository implements domain.TaskRepository
type taskRepository struct {
	q    queryer
	root *Store
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	var agreedPrice interface{}
	if task.AgreedPrice != nil {
		agreedPrice = task.AgreedPrice.String()
	}

	_, err := r.q.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Category,
		task.Location,
		task.Budget.String(),
		string(task.Status),
		task.AssignedTaskerID,
		nullString(task.AssignedTaskerName),
		agreedPrice,
		task.BidCount,
		string(task.PaymentStatus),
		task.CreatedAt,
		task.CompletedAt,
	)
	return storeErr("create task", err)
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, storeErr("get task", err)
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, category = $4, location = $5, budget = $6,
			status = $7, assigned_tasker_id = $8, assigned_tasker_name = $9,
			agreed_price = $10, bid_count = $11, payment_status = $12, completed_at = $13
		WHERE id = $1
	`

	var agreedPrice interface{}
	if task.AgreedPrice != nil {
		agreedPrice = task.AgreedPrice.String()
	}

	res, err := r.q.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.Location,
		task.Budget.String(),
		string(task.Status),
		task.AssignedTaskerID,
		nullString(task.AssignedTaskerName),
		agreedPrice,
		task.BidCount,
		string(task.PaymentStatus),
		task.CompletedAt,
	)
	if err != nil {
		return storeErr("update task", err)
	}
	return requireRow(res, fmt.Sprintf("task %s", task.ID))
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete task", err)
	}
	return requireRow(res, fmt.Sprintf("task %s", id))
}

func (r *taskRepository) ListOpen(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, query, string(domain.TaskStatusOpen))
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, query, ownerID)
}

func (r *taskRepository) ListByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []domain.TaskStatus) ([]*domain.Task, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_tasker_id = $1 ORDER BY created_at DESC, id`
		return r.list(ctx, query, taskerID)
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_tasker_id = $1 AND status = ANY($2) ORDER BY created_at DESC, id`
	return r.list(ctx, query, taskerID, pq.Array(names))
}

func (r *taskRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Task, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storeErr("scan task", err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list tasks", err)
	}
	return out, nil
}

func (r *taskRepository) WatchOpen(ctx context.Context) (<-chan []*domain.Task, error) {
	return pollChanges(ctx, r.root.pollInterval, func(ctx context.Context) ([]*domain.Task, error) {
		return r.root.Tasks().ListOpen(ctx)
	}, tasksEqual)
}

func (r *taskRepository) WatchByOwner(ctx context.Context, ownerID uuid.UUID) (<-chan []*domain.Task, error) {
	return pollChanges(ctx, r.root.pollInterval, func(ctx context.Context) ([]*domain.Task, error) {
		return r.root.Tasks().ListByOwner(ctx, ownerID)
	}, tasksEqual)
}

func (r *taskRepository) WatchByAssignee(ctx context.Context, taskerID uuid.UUID, statuses []domain.TaskStatus) (<-chan []*domain.Task, error) {
	return pollChanges(ctx, r.root.pollInterval, func(ctx context.Context) ([]*domain.Task, error) {
		return r.root.Tasks().ListByAssignee(ctx, taskerID, statuses)
	}, tasksEqual)
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(s scanner) (*domain.Task, error) {
	var task domain.Task
	var budgetStr string
	var assignedID sql.NullString
	var assignedName sql.NullString
	var agreedPriceStr sql.NullString
	var statusStr, paymentStr string
	var completedAt sql.NullTime

	err := s.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Location,
		&budgetStr,
		&statusStr,
		&assignedID,
		&assignedName,
		&agreedPriceStr,
		&task.BidCount,
		&paymentStr,
		&task.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(statusStr)
	task.PaymentStatus = domain.PaymentStatus(paymentStr)

	budget, err := decimal.NewFromString(budgetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	task.Budget = budget

	if assignedID.Valid {
		id, err := uuid.Parse(assignedID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse assigned_tasker_id: %w", err)
		}
		task.AssignedTaskerID = &id
	}
	if assignedName.Valid {
		task.AssignedTaskerName = assignedName.String
	}
	if agreedPriceStr.Valid {
		price, err := decimal.NewFromString(agreedPriceStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse agreed_price: %w", err)
		}
		task.AgreedPrice = &price
	}
	if completedAt.Valid {
		ts := completedAt.Time
		task.CompletedAt = &ts
	}
	return &task, nil
}

func tasksEqual(a, b []*domain.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !taskEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func taskEqual(a, b *domain.Task) bool {
	if a.ID != b.ID || a.Status != b.Status || a.PaymentStatus != b.PaymentStatus ||
		a.BidCount != b.BidCount || a.AssignedTaskerName != b.AssignedTaskerName {
		return false
	}
	if (a.AssignedTaskerID == nil) != (b.AssignedTaskerID == nil) {
		return false
	}
	if a.AssignedTaskerID != nil && *a.AssignedTaskerID != *b.AssignedTaskerID {
		return false
	}
	if (a.AgreedPrice == nil) != (b.AgreedPrice == nil) {
		return false
	}
	if a.AgreedPrice != nil && !a.AgreedPrice.Equal(*b.AgreedPrice) {
		return false
	}
	return true
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
