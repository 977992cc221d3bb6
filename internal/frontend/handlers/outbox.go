package handlers

import (
	"fmt"
	"sync"
)

// Outbox queues table messages for one connection. The hub pushes while
// holding no session lock; the connection's writer goroutine drains Events.
type Outbox struct {
	connID string
	actor  string
	table  string
	events chan string
	mu     sync.Mutex
	closed bool
}

// NewOutbox creates an Outbox for actor seated at table.
//
// Precondition: connID, actor and table must be non-empty.
func NewOutbox(connID, actor, table string, bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Outbox{
		connID: connID,
		actor:  actor,
		table:  table,
		events: make(chan string, bufferSize),
	}
}

// ConnID returns the id of the owning connection.
func (o *Outbox) ConnID() string { return o.connID }

// Actor returns the actor id of the connected player.
func (o *Outbox) Actor() string { return o.actor }

// Table returns the table the player sits at.
func (o *Outbox) Table() string { return o.table }

// Push enqueues text without blocking.
//
// Postcondition: Returns an error if the outbox is closed or full; the
// message is dropped in both cases.
func (o *Outbox) Push(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox %s is closed", o.connID)
	}
	select {
	case o.events <- text:
		return nil
	default:
		return fmt.Errorf("outbox %s is full", o.connID)
	}
}

// Events returns the channel the writer drains. It is closed by Close.
func (o *Outbox) Events() <-chan string {
	return o.events
}

// Close closes the events channel. It is safe to call more than once.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.events)
	}
}

// IsClosed reports whether Close has been called.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
