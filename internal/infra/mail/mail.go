// Package mail delivers appointment notifications.
package mail

import "context"

// Message is one outbound email with both renderings.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message and returns the id assigned to the delivery.
// Callers treat every error as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
