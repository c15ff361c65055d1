package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errandly/errandly-backend/internal/domain"
)

func newTask(ownerID uuid.UUID) *domain.Task {
	return &domain.Task{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         "Pick up dry cleaning",
		Description:   "Two suits from the cleaners on 5th",
		Category:      "Errands",
		Location:      "Yaba",
		Budget:        decimal.RequireFromString("3000"),
		Status:        domain.TaskStatusOpen,
		PaymentStatus: domain.PaymentStatusUnpaid,
		CreatedAt:     time.Now(),
	}
}

func newBid(taskID uuid.UUID) *domain.Bid {
	return &domain.Bid{
		ID:         uuid.New(),
		TaskID:     taskID,
		TaskerID:   uuid.New(),
		TaskerName: "Ada",
		Amount:     decimal.RequireFromString("2500"),
		Proposal:   "Can do it this afternoon",
		Status:     domain.BidStatusPending,
		CreatedAt:  time.Now(),
	}
}

func TestTaskRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())

	require.NoError(t, s.Tasks().Create(ctx, task))

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.True(t, got.Budget.Equal(task.Budget))

	_, err = s.Tasks().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordsAreIsolatedFromCallerMutation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())
	require.NoError(t, s.Tasks().Create(ctx, task))

	// mutating the record we passed in must not leak into the store
	task.Title = "changed after create"

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pick up dry cleaning", got.Title)

	// and mutating what we read back must not either
	got.Status = domain.TaskStatusCancelled
	again, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOpen, again.Status)
}

func TestDeleteTaskRemovesItsBids(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())
	other := newTask(uuid.New())
	require.NoError(t, s.Tasks().Create(ctx, task))
	require.NoError(t, s.Tasks().Create(ctx, other))

	doomed := newBid(task.ID)
	kept := newBid(other.ID)
	require.NoError(t, s.Bids().Create(ctx, doomed))
	require.NoError(t, s.Bids().Create(ctx, kept))

	require.NoError(t, s.Tasks().Delete(ctx, task.ID))

	_, err := s.Bids().GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// bids on other tasks are untouched
	_, err = s.Bids().GetByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestWithinTxRollsBackEverything(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())
	require.NoError(t, s.Tasks().Create(ctx, task))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		if err := st.Bids().Create(ctx, newBid(task.ID)); err != nil {
			return err
		}
		staged, err := st.Tasks().GetByID(ctx, task.ID)
		if err != nil {
			return err
		}
		staged.BidCount++
		if err := st.Tasks().Update(ctx, staged); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.BidCount)

	bids, err := s.Bids().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestWithinTxCommitsAtomically(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())
	require.NoError(t, s.Tasks().Create(ctx, task))
	bid := newBid(task.ID)

	err := s.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		if err := st.Bids().Create(ctx, bid); err != nil {
			return err
		}
		staged, err := st.Tasks().GetByID(ctx, task.ID)
		if err != nil {
			return err
		}
		staged.BidCount++
		return st.Tasks().Update(ctx, staged)
	})
	require.NoError(t, err)

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BidCount)

	bids, err := s.Bids().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestNestedTxJoinsEnclosing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())

	err := s.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		return st.WithinTx(ctx, func(ctx context.Context, inner domain.Store) error {
			return inner.Tasks().Create(ctx, task)
		})
	})
	require.NoError(t, err)

	_, err = s.Tasks().GetByID(ctx, task.ID)
	assert.NoError(t, err)
}

func TestRejectPendingSparesWinner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	task := newTask(uuid.New())
	require.NoError(t, s.Tasks().Create(ctx, task))

	winner := newBid(task.ID)
	other1 := newBid(task.ID)
	other2 := newBid(task.ID)
	for _, b := range []*domain.Bid{winner, other1, other2} {
		require.NoError(t, s.Bids().Create(ctx, b))
	}

	n, err := s.Bids().RejectPending(ctx, task.ID, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Bids().GetByID(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusPending, got.Status)

	got, err = s.Bids().GetByID(ctx, other1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusRejected, got.Status)
}

func TestWalletCreditUpserts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	taskerID := uuid.New()

	w, err := s.Wallets().GetByTasker(ctx, taskerID)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())
	assert.Equal(t, 0, w.CompletedJobs)

	require.NoError(t, s.Wallets().Credit(ctx, taskerID, decimal.RequireFromString("4500")))
	require.NoError(t, s.Wallets().Credit(ctx, taskerID, decimal.RequireFromString("1000")))

	w, err = s.Wallets().GetByTasker(ctx, taskerID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("5500")))
	assert.True(t, w.LifetimeEarnings.Equal(decimal.RequireFromString("5500")))
	assert.Equal(t, 2, w.CompletedJobs)
}

func TestWatchOpenTasksPushesOnCommit(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Tasks().WatchOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, <-ch)

	task := newTask(uuid.New())
	require.NoError(t, s.Tasks().Create(ctx, task))

	snap := <-ch
	require.Len(t, snap, 1)
	assert.Equal(t, task.ID, snap[0].ID)

	// leaving the Open state removes it from the board snapshot
	task.Status = domain.TaskStatusCancelled
	require.NoError(t, s.Tasks().Update(ctx, task))
	assert.Empty(t, <-ch)
}

func TestWatchClosedOnCancel(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := s.Tasks().WatchOpen(ctx)
	require.NoError(t, err)
	<-ch

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("watch channel was not closed after cancel")
		}
	}
}

func TestFailedTxDoesNotNotifyWatchers(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Tasks().WatchOpen(ctx)
	require.NoError(t, err)
	<-ch

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context, st domain.Store) error {
		if err := st.Tasks().Create(ctx, newTask(uuid.New())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot after rollback: %v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}
