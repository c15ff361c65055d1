package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one chat entry in a task's conversation between the client
// and a tasker. The task acts as the chat room; SenderName is a
// denormalized display cache like the one on Bid.
type Message struct {
	ID         uuid.UUID
	TaskID     uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Body       string
	CreatedAt  time.Time
}

// Validate ensures the message adheres to domain rules before it is written
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: message body is required", ErrValidation)
	}
	if strings.TrimSpace(m.SenderName) == "" {
		return fmt.Errorf("%w: message sender name is required", ErrValidation)
	}
	return nil
}
