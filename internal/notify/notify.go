// Package notify buffers user-facing notifications for the editor UI.
package notify

import (
	"sync"
	"time"
)

// Severity constants
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
	SeverityInfo    = "info"
)

type Notification struct {
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Stream is a bounded in-memory notification buffer. Oldest entries are
// dropped once the buffer is full; the UI polls Drain.
type Stream struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

func NewStream(max int) *Stream {
	if max <= 0 {
		max = 100
	}
	return &Stream{max: max}
}

func (s *Stream) Success(msg string) { s.push(SeveritySuccess, msg) }
func (s *Stream) Error(msg string)   { s.push(SeverityError, msg) }
func (s *Stream) Info(msg string)    { s.push(SeverityInfo, msg) }

func (s *Stream) push(severity, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= s.max {
		s.items = s.items[1:]
	}
	s.items = append(s.items, Notification{
		Severity: severity,
		Message:  msg,
		At:       time.Now(),
	})
}

// Drain returns and clears all pending notifications.
func (s *Stream) Drain() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items
	s.items = nil
	return out
}

// Pending reports how many notifications are waiting.
func (s *Stream) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
