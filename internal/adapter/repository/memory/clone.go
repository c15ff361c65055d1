package memory

import "github.com/errandly/errandly-backend/internal/domain"

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.AssignedTaskerID != nil {
		id := *t.AssignedTaskerID
		c.AssignedTaskerID = &id
	}
	if t.AgreedPrice != nil {
		p := *t.AgreedPrice
		c.AgreedPrice = &p
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}

func cloneBid(b *domain.Bid) *domain.Bid {
	c := *b
	return &c
}

func cloneTransaction(tx *domain.Transaction) *domain.Transaction {
	c := *tx
	return &c
}

func cloneWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	return &c
}

func cloneMessage(m *domain.Message) *domain.Message {
	c := *m
	return &c
}

func cloneNotification(n *domain.Notification) *domain.Notification {
	c := *n
	return &c
}
