package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// ConnState is the lifecycle state of the store's database connection.
type ConnState string

// Connection states.
const (
	StateUnconnected  ConnState = "unconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateFailed       ConnState = "failed"
	StateDegraded     ConnState = "degraded"
	StateDisconnected ConnState = "disconnected"
)

// ConnectionStatus is a point-in-time copy of a ConnectionState.
type ConnectionStatus struct {
	State     ConnState
	Attempts  int
	LastError error
	Since     time.Time
}

// ConnectionState is the single source of truth for whether the database
// can be used. Readers never block each other; transitions are serialized.
type ConnectionState struct {
	mu       sync.RWMutex
	state    ConnState
	db       *sql.DB
	attempts int
	lastErr  error
	since    time.Time
	now      func() time.Time
}

// NewConnectionState returns a state that starts out unconnected.
func NewConnectionState() *ConnectionState {
	return &ConnectionState{
		state: StateUnconnected,
		since: time.Now().UTC(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// State returns the current connection state.
func (c *ConnectionState) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status returns a snapshot of the state and the bookkeeping around it.
func (c *ConnectionState) Status() ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConnectionStatus{
		State:     c.state,
		Attempts:  c.attempts,
		LastError: c.lastErr,
		Since:     c.since,
	}
}

// DB returns the live handle, or an error wrapping ErrStoreUnavailable
// when the state is anything other than connected.
func (c *ConnectionState) DB() (*sql.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateConnected || c.db == nil {
		return nil, fmt.Errorf("%w: database is %s", ErrStoreUnavailable, c.state)
	}
	return c.db, nil
}

// Handle returns the last handle installed by MarkConnected regardless of
// state. The connection monitor uses it to probe a dropped connection.
func (c *ConnectionState) Handle() *sql.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// MarkConnecting records the start of connection attempt number attempt.
func (c *ConnectionState) MarkConnecting(attempt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = attempt
	c.set(StateConnecting)
}

// MarkConnected installs db as the live handle.
func (c *ConnectionState) MarkConnected(db *sql.DB) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	c.lastErr = nil
	c.set(StateConnected)
}

// MarkFailed records a failed attempt. More attempts may follow.
func (c *ConnectionState) MarkFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	c.set(StateFailed)
}

// MarkDegraded records that every attempt failed and the service is
// running without a store.
func (c *ConnectionState) MarkDegraded(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
	}
	c.set(StateDegraded)
}

// MarkDisconnected records that an established connection was lost.
// It is a no-op unless the state is connected.
func (c *ConnectionState) MarkDisconnected(err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return false
	}
	c.lastErr = err
	c.set(StateDisconnected)
	return true
}

// MarkReconnected moves a disconnected state back to connected.
// It is a no-op in any other state.
func (c *ConnectionState) MarkReconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisconnected || c.db == nil {
		return false
	}
	c.lastErr = nil
	c.set(StateConnected)
	return true
}

// Detach drops the handle and returns it so the caller can close it.
func (c *ConnectionState) Detach() *sql.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	db := c.db
	c.db = nil
	c.set(StateUnconnected)
	return db
}

func (c *ConnectionState) set(s ConnState) {
	if c.state != s {
		c.since = c.now()
	}
	c.state = s
}
