package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// Query helpers shared by the list and watch paths. Each returns cloned
// records so callers can never mutate the store through a read.

func openTasks(d *dataset) []*domain.Task {
	var out []*domain.Task
	for _, t := range d.tasks {
		if t.Status == domain.TaskStatusOpen {
			out = append(out, cloneTask(t))
		}
	}
	sortTasksNewestFirst(out)
	return out
}

func tasksByOwner(d *dataset, ownerID uuid.UUID) []*domain.Task {
	var out []*domain.Task
	for _, t := range d.tasks {
		if t.OwnerID == ownerID {
			out = append(out, cloneTask(t))
		}
	}
	sortTasksNewestFirst(out)
	return out
}

func tasksByAssignee(d *dataset, taskerID uuid.UUID, statuses []domain.TaskStatus) []*domain.Task {
	var out []*domain.Task
	for _, t := range d.tasks {
		if t.AssignedTaskerID == nil || *t.AssignedTaskerID != taskerID {
			continue
		}
		if len(statuses) > 0 && !statusIn(t.Status, statuses) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sortTasksNewestFirst(out)
	return out
}

func bidsByTask(d *dataset, taskID uuid.UUID) []*domain.Bid {
	var out []*domain.Bid
	for _, b := range d.bids {
		if b.TaskID == taskID {
			out = append(out, cloneBid(b))
		}
	}
	// Lowest offer first so the most competitive bid surfaces on top.
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func messagesByTask(d *dataset, taskID uuid.UUID) []*domain.Message {
	var out []*domain.Message
	for _, m := range d.messages {
		if m.TaskID == taskID {
			out = append(out, cloneMessage(m))
		}
	}
	// Chat order: oldest first.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func notificationsByRecipient(d *dataset, recipientID uuid.UUID) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range d.notifications {
		if n.RecipientID == recipientID {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func sortTasksNewestFirst(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
}

func statusIn(status domain.TaskStatus, statuses []domain.TaskStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
