package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is a dispatch frame handed to a handler.
type Event struct {
	Name     string
	Sequence int64
	Shard    int
	Data     json.RawMessage
}

// HandlerFunc decodes one event, updates whatever cache it draws from and
// emits the resulting notifications before returning.
type HandlerFunc func(ctx context.Context, ev Event) error

// DispatchTable maps event names to handlers. Register every handler before
// the table is handed to a Gateway; Route is safe for concurrent use after
// that.
type DispatchTable struct {
	handlers map[string]HandlerFunc
	timeout  time.Duration
}

// NewDispatchTable returns an empty table. Each routed handler runs under a
// deadline of timeout; zero means no deadline.
func NewDispatchTable(timeout time.Duration) *DispatchTable {
	return &DispatchTable{
		handlers: make(map[string]HandlerFunc),
		timeout:  timeout,
	}
}

func (t *DispatchTable) Register(name string, h HandlerFunc) {
	t.handlers[name] = h
}

func (t *DispatchTable) Has(name string) bool {
	_, ok := t.handlers[name]
	return ok
}

// Route runs the handler registered for env.T. Events with no handler are
// ignored. The handler keeps running if ctx is cancelled mid-call, bounded
// only by the table timeout.
func (t *DispatchTable) Route(ctx context.Context, env Envelope, shard int) error {
	h, ok := t.handlers[env.T]
	if !ok {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var seq int64
	if env.S != nil {
		seq = *env.S
	}
	if err := h(ctx, Event{Name: env.T, Sequence: seq, Shard: shard, Data: env.D}); err != nil {
		return fmt.Errorf("dispatch %s: %w", env.T, err)
	}
	return nil
}
