package gateway

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"
)

// Clock returns a channel that fires once after d.
type Clock func(d time.Duration) <-chan time.Time

// Jitter returns a fraction in (0, 1].
type Jitter func() float64

func defaultJitter() float64 {
	return 1 - rand.Float64()
}

// heartbeat keeps one physical connection alive. It is created per
// connection and only touches its own state and the send function.
type heartbeat struct {
	interval time.Duration
	send     func(ctx context.Context) error
	after    Clock
	jitter   Jitter
	logger   *slog.Logger

	acknowledged atomic.Bool
	lastSent     atomic.Int64 // unix nanoseconds
	rtt          atomic.Int64
}

func newHeartbeat(interval time.Duration, send func(ctx context.Context) error, after Clock, jitter Jitter, logger *slog.Logger) *heartbeat {
	h := &heartbeat{
		interval: interval,
		send:     send,
		after:    after,
		jitter:   jitter,
		logger:   logger,
	}
	h.acknowledged.Store(true)
	return h
}

// firstDelay spreads the first beat of many sessions over one interval.
func (h *heartbeat) firstDelay() time.Duration {
	j := h.jitter()
	if j <= 0 || j > 1 {
		j = 1
	}
	d := time.Duration(float64(h.interval) * j)
	if d <= 0 {
		d = 1
	}
	return d
}

// run beats until ctx ends, returning nil, or until a beat goes
// unacknowledged for a whole interval, returning ErrHeartbeatTimeout.
func (h *heartbeat) run(ctx context.Context) error {
	wait := h.firstDelay()
	h.logger.Debug("heartbeat started", "interval", h.interval, "first", wait)

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("heartbeat stopped")
			return nil
		case <-h.after(wait):
		}

		if !h.acknowledged.Load() {
			h.logger.Warn("heartbeat not acknowledged", "interval", h.interval)
			return ErrHeartbeatTimeout
		}
		if err := h.beat(ctx); err != nil {
			return err
		}
		wait = h.interval
	}
}

// beat sends one heartbeat immediately. It is also used when the peer asks
// for a heartbeat with opcode 1.
func (h *heartbeat) beat(ctx context.Context) error {
	h.acknowledged.Store(false)
	h.lastSent.Store(time.Now().UnixNano())
	if err := h.send(ctx); err != nil {
		return err
	}
	h.logger.Debug("sent heartbeat")
	return nil
}

func (h *heartbeat) ack() {
	h.acknowledged.Store(true)
	if sent := h.lastSent.Load(); sent > 0 {
		h.rtt.Store(time.Now().UnixNano() - sent)
	}
}

// latency is the round trip of the last acknowledged heartbeat, or zero.
func (h *heartbeat) latency() time.Duration {
	return time.Duration(h.rtt.Load())
}
