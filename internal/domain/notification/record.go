package notification

import "time"

// Priority is passed through to the transport.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// SentRecord is an append-only entry in the notification history.
type SentRecord struct {
	Target   string
	Title    string
	Body     string
	Priority Priority
	SentAt   time.Time
}

// Matches compares content only; SentAt and Priority are ignored.
func (r SentRecord) Matches(target, title, body string) bool {
	return r.Target == target && r.Title == title && r.Body == body
}
