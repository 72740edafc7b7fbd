package engine

import (
	"sync"
	"time"
)

// Severity classifies a notification for the presentation layer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Notification is an ephemeral, human-readable event. Notifications are
// memory-resident only and are discarded after a fixed TTL regardless of
// read state.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      Severity  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// NotificationBus is the TTL-based queue every component publishes into.
type NotificationBus struct {
	mu     sync.Mutex
	ttl    time.Duration
	nextID int64
	items  []Notification
	timers map[int64]*time.Timer
	sinks  []func(Notification)
	closed bool
}

// NewNotificationBus creates a bus whose entries expire after ttl.
func NewNotificationBus(ttl time.Duration) *NotificationBus {
	return &NotificationBus{
		ttl:    ttl,
		nextID: time.Now().UnixMilli(),
		timers: make(map[int64]*time.Timer),
	}
}

// Subscribe registers a sink invoked for every published notification.
// Sinks must not block; they run on the publisher's goroutine.
func (b *NotificationBus) Subscribe(sink func(Notification)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Publish creates a notification and schedules its expiry.
func (b *NotificationBus) Publish(message string, severity Severity) Notification {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Notification{}
	}

	b.nextID++
	n := Notification{
		ID:        b.nextID,
		Message:   message,
		Type:      severity,
		Timestamp: time.Now(),
	}
	// Newest first, matching the store UI.
	b.items = append([]Notification{n}, b.items...)
	b.timers[n.ID] = time.AfterFunc(b.ttl, func() { b.expire(n.ID) })
	sinks := b.sinks
	b.mu.Unlock()

	for _, sink := range sinks {
		sink(n)
	}
	return n
}

// expire removes a notification once its TTL elapses. Removing an id that
// is already gone is a no-op.
func (b *NotificationBus) expire(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.timers, id)
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// List returns the live notifications, newest first.
func (b *NotificationBus) List() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}

// MarkAllRead flags every live notification as read.
func (b *NotificationBus) MarkAllRead() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		b.items[i].Read = true
	}
}

// Close cancels every pending expiry timer. The bus accepts no publishes
// afterwards.
func (b *NotificationBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
}
