package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/errandly/errandly-backend/internal/domain"
)

const (
	maxTxAttempts       = 3
	defaultPollInterval = 2 * time.Second
)

// queryer is satisfied by both *sql.DB and *sql.Tx so the same
// repository code serves direct access and transactional access.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements domain.Store over PostgreSQL. WithinTx runs the
// closure in a SERIALIZABLE transaction and retries a bounded number of
// times when the snapshot went stale before commit.
type Store struct {
	db           *DB
	pollInterval time.Duration
}

// NewStore creates a new PostgreSQL-backed store. Watch queries poll at
// pollInterval; zero means the default.
func NewStore(db *DB, pollInterval time.Duration) *Store {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Store{db: db, pollInterval: pollInterval}
}

func (s *Store) Tasks() domain.TaskRepository { return &taskRepository{q: s.db, root: s} }
func (s *Store) Bids() domain.BidRepository   { return &bidRepository{q: s.db, root: s} }
func (s *Store) Transactions() domain.TransactionRepository {
	return &transactionRepository{q: s.db}
}
func (s *Store) Wallets() domain.WalletRepository { return &walletRepository{q: s.db} }
func (s *Store) Messages() domain.MessageRepository {
	return &messageRepository{q: s.db, root: s}
}
func (s *Store) Notifications() domain.NotificationRepository {
	return &notificationRepository{q: s.db, root: s}
}

// WithinTx runs fn against a serializable snapshot. All writes commit
// together or not at all; a conflicting concurrent commit aborts the
// attempt and fn is re-run against a fresh snapshot.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, st domain.Store) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			// small jittered backoff before retrying the snapshot
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(rand.Intn(50)+10) * time.Millisecond):
			}
		}
		err = s.runTx(ctx, fn)
		if !errors.Is(err, errSerialization) {
			return err
		}
	}
	return fmt.Errorf("transaction conflicted %d times: %w", maxTxAttempts, domain.ErrTransientStore)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, st domain.Store) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &txStore{tx: tx, root: s}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// txStore is the Store view handed to WithinTx closures
type txStore struct {
	tx   *sql.Tx
	root *Store
}

func (t *txStore) Tasks() domain.TaskRepository { return &taskRepository{q: t.tx, root: t.root} }
func (t *txStore) Bids() domain.BidRepository   { return &bidRepository{q: t.tx, root: t.root} }
func (t *txStore) Transactions() domain.TransactionRepository {
	return &transactionRepository{q: t.tx}
}
func (t *txStore) Wallets() domain.WalletRepository { return &walletRepository{q: t.tx} }
func (t *txStore) Messages() domain.MessageRepository {
	return &messageRepository{q: t.tx, root: t.root}
}
func (t *txStore) Notifications() domain.NotificationRepository {
	return &notificationRepository{q: t.tx, root: t.root}
}

// Nested transactions join the enclosing one.
func (t *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, st domain.Store) error) error {
	return fn(ctx, t)
}
