package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

// dataset holds one consistent snapshot of every collection. Records are
// never mutated in place: repositories store and return clones, so two
// datasets may safely share record pointers.
type dataset struct {
	tasks         map[uuid.UUID]*domain.Task
	bids          map[uuid.UUID]*domain.Bid
	transactions  []*domain.Transaction
	wallets       map[uuid.UUID]*domain.Wallet
	messages      map[uuid.UUID]*domain.Message
	notifications map[uuid.UUID]*domain.Notification
}

func newDataset() *dataset {
	return &dataset{
		tasks:         make(map[uuid.UUID]*domain.Task),
		bids:          make(map[uuid.UUID]*domain.Bid),
		wallets:       make(map[uuid.UUID]*domain.Wallet),
		messages:      make(map[uuid.UUID]*domain.Message),
		notifications: make(map[uuid.UUID]*domain.Notification),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		tasks:         make(map[uuid.UUID]*domain.Task, len(d.tasks)),
		bids:          make(map[uuid.UUID]*domain.Bid, len(d.bids)),
		transactions:  make([]*domain.Transaction, len(d.transactions)),
		wallets:       make(map[uuid.UUID]*domain.Wallet, len(d.wallets)),
		messages:      make(map[uuid.UUID]*domain.Message, len(d.messages)),
		notifications: make(map[uuid.UUID]*domain.Notification, len(d.notifications)),
	}
	for id, t := range d.tasks {
		c.tasks[id] = t
	}
	for id, b := range d.bids {
		c.bids[id] = b
	}
	copy(c.transactions, d.transactions)
	for id, w := range d.wallets {
		c.wallets[id] = w
	}
	for id, m := range d.messages {
		c.messages[id] = m
	}
	for id, n := range d.notifications {
		c.notifications[id] = n
	}
	return c
}

// Store is the in-memory record store: per-collection repositories,
// atomic cross-record transactions, and push-based query subscriptions.
// A single mutex serializes commits, so WithinTx closures never observe
// a stale snapshot and never need conflict retries.
type Store struct {
	mu            sync.Mutex
	data          *dataset
	taskWatchers  map[*taskWatcher]struct{}
	bidWatchers   map[*bidWatcher]struct{}
	msgWatchers   map[*msgWatcher]struct{}
	notifWatchers map[*notifWatcher]struct{}
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		data:          newDataset(),
		taskWatchers:  make(map[*taskWatcher]struct{}),
		bidWatchers:   make(map[*bidWatcher]struct{}),
		msgWatchers:   make(map[*msgWatcher]struct{}),
		notifWatchers: make(map[*notifWatcher]struct{}),
	}
}

func (s *Store) Tasks() domain.TaskRepository { return &taskRepository{h: s} }
func (s *Store) Bids() domain.BidRepository   { return &bidRepository{h: s} }
func (s *Store) Transactions() domain.TransactionRepository {
	return &transactionRepository{h: s}
}
func (s *Store) Wallets() domain.WalletRepository   { return &walletRepository{h: s} }
func (s *Store) Messages() domain.MessageRepository { return &messageRepository{h: s} }
func (s *Store) Notifications() domain.NotificationRepository {
	return &notificationRepository{h: s}
}

// WithinTx runs fn against a staged copy of the store. All writes made
// through the Store passed to fn are committed together when fn returns
// nil, and discarded entirely when it returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, st domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	tx := &txStore{root: s, data: staged}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.data = staged
	s.notifyLocked()
	return nil
}

// host gives repositories locked access to the live dataset. The Store
// locks around each operation; a txStore runs with the lock already held
// and defers watcher notification to commit time.
type host interface {
	view(fn func(d *dataset) error) error
	mutate(fn func(d *dataset) error) error
	store() *Store
	locked() bool
}

func (s *Store) view(fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) mutate(fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.data); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

func (s *Store) store() *Store { return s }
func (s *Store) locked() bool  { return false }

// txStore is the Store view handed to WithinTx closures. Operations work
// on the staged dataset without further locking.
type txStore struct {
	root *Store
	data *dataset
}

func (t *txStore) Tasks() domain.TaskRepository { return &taskRepository{h: t} }
func (t *txStore) Bids() domain.BidRepository   { return &bidRepository{h: t} }
func (t *txStore) Transactions() domain.TransactionRepository {
	return &transactionRepository{h: t}
}
func (t *txStore) Wallets() domain.WalletRepository   { return &walletRepository{h: t} }
func (t *txStore) Messages() domain.MessageRepository { return &messageRepository{h: t} }
func (t *txStore) Notifications() domain.NotificationRepository {
	return &notificationRepository{h: t}
}

// Nested transactions join the enclosing one.
func (t *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, st domain.Store) error) error {
	return fn(ctx, t)
}

func (t *txStore) view(fn func(d *dataset) error) error   { return fn(t.data) }
func (t *txStore) mutate(fn func(d *dataset) error) error { return fn(t.data) }
func (t *txStore) store() *Store                          { return t.root }
func (t *txStore) locked() bool                           { return true }
