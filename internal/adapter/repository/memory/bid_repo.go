package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// bidRepository implements domain.BidRepository over a memory host
type bidRepository struct {
	h host
}

func (r *bidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	return r.h.mutate(func(d *dataset) error {
		if _, ok := d.bids[bid.ID]; ok {
			return fmt.Errorf("bid %s already exists: %w", bid.ID, domain.ErrInvalidState)
		}
		d.bids[bid.ID] = cloneBid(bid)
		return nil
	})
}

func (r *bidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	var bid *domain.Bid
	err := r.h.view(func(d *dataset) error {
		b, ok := d.bids[id]
		if !ok {
			return fmt.Errorf("bid %s: %w", id, domain.ErrNotFound)
		}
		bid = cloneBid(b)
		return nil
	})
	return bid, err
}

func (r *bidRepository) Update(ctx context.Context, bid *domain.Bid) error {
	return r.h.mutate(func(d *dataset) error {
		if _, ok := d.bids[bid.ID]; !ok {
			return fmt.Errorf("bid %s: %w", bid.ID, domain.ErrNotFound)
		}
		d.bids[bid.ID] = cloneBid(bid)
		return nil
	})
}

func (r *bidRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Bid, error) {
	var out []*domain.Bid
	err := r.h.view(func(d *dataset) error {
		out = bidsByTask(d, taskID)
		return nil
	})
	return out, err
}

func (r *bidRepository) RejectPending(ctx context.Context, taskID, exceptBidID uuid.UUID) (int, error) {
	rejected := 0
	err := r.h.mutate(func(d *dataset) error {
		for id, b := range d.bids {
			if b.TaskID != taskID || b.ID == exceptBidID || b.Status != domain.BidStatusPending {
				continue
			}
			c := cloneBid(b)
			c.Status = domain.BidStatusRejected
			d.bids[id] = c
			rejected++
		}
		return nil
	})
	return rejected, err
}

func (r *bidRepository) WatchByTask(ctx context.Context, taskID uuid.UUID) (<-chan []*domain.Bid, error) {
	return watchBids(ctx, r.h, func(d *dataset) []*domain.Bid {
		return bidsByTask(d, taskID)
	})
}
