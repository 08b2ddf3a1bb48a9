package application

import "context"

// Mailer delivers one rendered message. Implementations may fail on transient
// provider issues; the sink retries a bounded number of times and then drops
// the message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
