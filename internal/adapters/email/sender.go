// Package email delivers outbound mail such as the monthly birthday digest.
package email

import (
	"context"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      []string
	From    string // falls back to the sender's default when empty
	Subject string
	HTML    string
	// Text is the plain-text alternative. Optional.
	Text string
}

// Receipt is the provider's acknowledgement of a Message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages through a mail provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
