package notification

import "context"

// Transport delivers a notification to an opaque target address.
type Transport interface {
	Send(ctx context.Context, target, title, body string, priority Priority) error
}
