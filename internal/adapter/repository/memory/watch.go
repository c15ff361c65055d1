package memory

import (
	"context"

	"github.com/errandly/errandly-backend/internal/domain"
)

// Subscribers that fall behind miss intermediate snapshots but always
// receive a fresh one on the next commit.
const watchBuffer = 16

type taskWatcher struct {
	ch    chan []*domain.Task
	query func(d *dataset) []*domain.Task
}

type bidWatcher struct {
	ch    chan []*domain.Bid
	query func(d *dataset) []*domain.Bid
}

type msgWatcher struct {
	ch    chan []*domain.Message
	query func(d *dataset) []*domain.Message
}

type notifWatcher struct {
	ch    chan []*domain.Notification
	query func(d *dataset) []*domain.Notification
}

// notifyLocked recomputes every subscriber's snapshot after a commit and
// fans it out without blocking, dropping for subscribers that are behind.
func (s *Store) notifyLocked() {
	for w := range s.taskWatchers {
		select {
		case w.ch <- w.query(s.data):
		default:
		}
	}
	for w := range s.bidWatchers {
		select {
		case w.ch <- w.query(s.data):
		default:
		}
	}
	for w := range s.msgWatchers {
		select {
		case w.ch <- w.query(s.data):
		default:
		}
	}
	for w := range s.notifWatchers {
		select {
		case w.ch <- w.query(s.data):
		default:
		}
	}
}

func watchTasks(ctx context.Context, h host, query func(d *dataset) []*domain.Task) (<-chan []*domain.Task, error) {
	s := h.store()
	w := &taskWatcher{ch: make(chan []*domain.Task, watchBuffer), query: query}
	register := func() {
		w.ch <- query(s.data)
		s.taskWatchers[w] = struct{}{}
	}
	if h.locked() {
		register()
	} else {
		s.mu.Lock()
		register()
		s.mu.Unlock()
	}
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.taskWatchers[w]; ok {
			delete(s.taskWatchers, w)
			close(w.ch)
		}
		s.mu.Unlock()
	}()
	return w.ch, nil
}

func watchBids(ctx context.Context, h host, query func(d *dataset) []*domain.Bid) (<-chan []*domain.Bid, error) {
	s := h.store()
	w := &bidWatcher{ch: make(chan []*domain.Bid, watchBuffer), query: query}
	register := func() {
		w.ch <- query(s.data)
		s.bidWatchers[w] = struct{}{}
	}
	if h.locked() {
		register()
	} else {
		s.mu.Lock()
		register()
		s.mu.Unlock()
	}
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.bidWatchers[w]; ok {
			delete(s.bidWatchers, w)
			close(w.ch)
		}
		s.mu.Unlock()
	}()
	return w.ch, nil
}

func watchMessages(ctx context.Context, h host, query func(d *dataset) []*domain.Message) (<-chan []*domain.Message, error) {
	s := h.store()
	w := &msgWatcher{ch: make(chan []*domain.Message, watchBuffer), query: query}
	register := func() {
		w.ch <- query(s.data)
		s.msgWatchers[w] = struct{}{}
	}
	if h.locked() {
		register()
	} else {
		s.mu.Lock()
		register()
		s.mu.Unlock()
	}
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.msgWatchers[w]; ok {
			delete(s.msgWatchers, w)
			close(w.ch)
		}
		s.mu.Unlock()
	}()
	return w.ch, nil
}

func watchNotifications(ctx context.Context, h host, query func(d *dataset) []*domain.Notification) (<-chan []*domain.Notification, error) {
	s := h.store()
	w := &notifWatcher{ch: make(chan []*domain.Notification, watchBuffer), query: query}
	register := func() {
		w.ch <- query(s.data)
		s.notifWatchers[w] = struct{}{}
	}
	if h.locked() {
		register()
	} else {
		s.mu.Lock()
		register()
		s.mu.Unlock()
	}
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.notifWatchers[w]; ok {
			delete(s.notifWatchers, w)
			close(w.ch)
		}
		s.mu.Unlock()
	}()
	return w.ch, nil
}
