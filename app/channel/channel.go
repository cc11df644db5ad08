package channel

import "context"

// Destination resolved contact info for one recipient
type Destination struct {
	AccountID int
	Name      string
	Phone     string
	Email     string
}

// Message the rendered payload handed to a channel
type Message struct {
	Title string
	Body  string
}

// Channel one external delivery mechanism. Send returns the provider's
// message id on success; any error is a per-attempt failure that the
// dispatcher records and never propagates.
type Channel interface {
	Name() string
	Send(ctx context.Context, dest Destination, msg Message) (string, error)
}
