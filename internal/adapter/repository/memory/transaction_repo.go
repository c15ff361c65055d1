package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// transactionRepository implements the append-only settlement trail
type transactionRepository struct {
	h host
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.h.mutate(func(d *dataset) error {
		d.transactions = append(d.transactions, cloneTransaction(tx))
		return nil
	})
}

func (r *transactionRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := r.h.view(func(d *dataset) error {
		for _, tx := range d.transactions {
			if tx.TaskID == taskID {
				out = append(out, cloneTransaction(tx))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}
