package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"personal/discord_go/src/opcodes"
)

// APIVersion is the gateway version requested on every connection.
const APIVersion = "10"

const (
	defaultMaxReconnectAttempts = 5
	defaultBackoffInitial       = time.Second
	defaultBackoffMax           = 2 * time.Minute
	helloTimeout                = 30 * time.Second

	// Closing with anything but 1000/1001 keeps the session resumable.
	closeCodeResume = opcodes.CloseUnknownError
)

type Config struct {
	Token   string
	URL     string
	Intents int

	ShardID    int
	ShardCount int

	LargeThreshold int
	Properties     IdentifyProperties
	Presence       *Presence

	// MaxReconnectAttempts caps consecutive connection attempts that fail
	// before reaching READY or RESUMED.
	MaxReconnectAttempts int
	BackoffInitial       time.Duration
	BackoffMax           time.Duration
}

func (c *Config) setDefaults() {
	if c.ShardCount <= 0 {
		c.ShardCount = 1
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = defaultBackoffInitial
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = defaultBackoffMax
	}
	if c.Properties == (IdentifyProperties{}) {
		c.Properties = IdentifyProperties{
			Os:      runtime.GOOS,
			Browser: "discord_go",
			Device:  "discord_go",
		}
	}
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithClock replaces the timer used to schedule heartbeats.
func WithClock(after Clock) Option {
	return func(g *Gateway) { g.after = after }
}

// WithJitter replaces the source of the first-heartbeat jitter.
func WithJitter(jitter Jitter) Option {
	return func(g *Gateway) { g.jitter = jitter }
}

// Gateway owns one shard's session over a sequence of physical connections.
type Gateway struct {
	cfg    Config
	dialer Dialer
	table  *DispatchTable
	logger *slog.Logger
	after  Clock
	jitter Jitter

	session   *Session
	state     atomic.Int32
	heartbeat atomic.Pointer[heartbeat]
	closing   atomic.Bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	// Set by a Close that arrives while Run is not active; the next Run
	// returns nil without connecting.
	closeRequested bool
}

func New(cfg Config, dialer Dialer, table *DispatchTable, opts ...Option) *Gateway {
	cfg.setDefaults()
	g := &Gateway{
		cfg:     cfg,
		dialer:  dialer,
		table:   table,
		logger:  slog.Default(),
		after:   time.After,
		jitter:  defaultJitter,
		session: newSession(),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(g)
	}
	g.logger = g.logger.With("shard", cfg.ShardID)
	close(g.done)
	return g
}

func (g *Gateway) State() State { return State(g.state.Load()) }

func (g *Gateway) Session() *Session { return g.session }

func (g *Gateway) Shard() int { return g.cfg.ShardID }

// Latency is the round trip of the last acknowledged heartbeat.
func (g *Gateway) Latency() time.Duration {
	if hb := g.heartbeat.Load(); hb != nil {
		return hb.latency()
	}
	return 0
}

// Done is closed whenever the gateway is not running.
func (g *Gateway) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

func (g *Gateway) setState(s State) {
	if old := State(g.state.Swap(int32(s))); old != s {
		g.logger.Debug("state changed", "from", old.String(), "to", s.String())
	}
}

// Run connects and keeps the session alive until Close is called, ctx ends,
// or a terminal failure occurs. It returns nil after Close, ctx.Err() when
// ctx ends, and otherwise an error matching ErrAuthFailure,
// ErrSessionRejected or ErrBackoffExhausted.
func (g *Gateway) Run(ctx context.Context) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return errors.New("gateway: already running")
	}
	if g.closeRequested {
		g.closeRequested = false
		g.mu.Unlock()
		g.logger.Info("closed before connecting")
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	g.running = true
	g.cancel = cancel
	g.done = make(chan struct{})
	done := g.done
	g.closing.Store(false)
	g.mu.Unlock()

	defer func() {
		cancel()
		g.heartbeat.Store(nil)
		g.setState(StateDisconnected)
		g.mu.Lock()
		g.running = false
		g.cancel = nil
		close(done)
		g.mu.Unlock()
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.cfg.BackoffInitial
	bo.MaxInterval = g.cfg.BackoffMax
	bo.Reset()

	failures := 0
	for {
		established, err := g.runConn(ctx)
		if ctx.Err() != nil {
			return g.stopped(ctx)
		}
		if established {
			failures = 0
			bo.Reset()
		}

		switch action := classify(err); action {
		case opcodes.CloseActionTerminate:
			g.session.reset()
			g.logger.Error("session terminated", "error", err)
			return err
		case opcodes.CloseActionReidentify:
			g.session.reset()
			g.logger.Warn("session invalidated, identifying again", "error", err)
		default:
			g.logger.Warn("connection lost, resuming", "error", err, "resumable", g.session.Resumable())
		}

		if !established {
			failures++
			if failures >= g.cfg.MaxReconnectAttempts {
				g.session.reset()
				g.logger.Error("giving up reconnecting", "attempts", failures, "error", err)
				return fmt.Errorf("%w after %d attempts: %w", ErrBackoffExhausted, failures, err)
			}
		}

		wait := bo.NextBackOff()
		if wait < 0 {
			wait = g.cfg.BackoffMax
		}
		g.logger.Info("reconnecting", "in", wait, "attempt", failures+1)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return g.stopped(ctx)
		case <-timer.C:
		}
	}
}

func (g *Gateway) stopped(ctx context.Context) error {
	g.session.reset()
	if g.closing.Load() {
		g.logger.Info("disconnected")
		return nil
	}
	return ctx.Err()
}

// Close stops the heartbeat, closes the connection with a normal closure and
// discards the session. A handler already running completes; no further
// frames are processed. Close does not wait; use Done for that. A Close
// before Run makes that Run return nil without connecting.
func (g *Gateway) Close() error {
	g.mu.Lock()
	cancel := g.cancel
	if cancel == nil {
		g.closeRequested = true
	}
	g.mu.Unlock()
	if cancel == nil {
		return nil
	}
	g.closing.Store(true)
	g.setState(StateClosing)
	cancel()
	return nil
}

// runConn drives one physical connection. established reports whether the
// connection reached READY or RESUMED before it ended.
func (g *Gateway) runConn(ctx context.Context) (bool, error) {
	g.setState(StateConnecting)

	url := g.cfg.URL
	if g.session.Resumable() && g.session.ResumeURL() != "" {
		url = g.session.ResumeURL()
	}

	g.logger.Debug("dialing gateway", "url", url)
	conn, err := g.dialer.Dial(ctx, url)
	if err != nil {
		return false, err
	}

	interval, err := g.awaitHello(ctx, conn)
	if err != nil {
		_ = conn.Close(closeCodeResume)
		return false, err
	}

	hb := newHeartbeat(interval, func(ctx context.Context) error {
		seq, ok := g.session.Sequence()
		return conn.Send(ctx, heartbeatFrame(seq, ok))
	}, g.after, g.jitter, g.logger)
	g.heartbeat.Store(hb)

	var established atomic.Bool
	frames := make(chan []byte)
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error { return hb.run(egCtx) })
	eg.Go(func() error { return g.readLoop(egCtx, conn, frames) })
	eg.Go(func() error { return g.processLoop(egCtx, conn, hb, frames, &established) })
	eg.Go(func() error {
		<-egCtx.Done()
		code := closeCodeResume
		if g.closing.Load() {
			code = websocket.CloseNormalClosure
		}
		g.setState(StateClosing)
		if err := conn.Close(code); err != nil {
			g.logger.Debug("could not close connection cleanly", "error", err)
		}
		return nil
	})

	err = eg.Wait()
	return established.Load(), err
}

func (g *Gateway) awaitHello(ctx context.Context, conn Conn) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close(closeCodeResume) })
	defer stop()

	raw, err := conn.Recv()
	if err != nil {
		if ctx.Err() != nil {
			return 0, &TransportError{Op: "hello", Err: ctx.Err()}
		}
		return 0, err
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return 0, err
	}
	if env.Op != opcodes.Hello {
		return 0, fmt.Errorf("%w: invalid handshake: expected Hello (opcode %d), got %d", ErrProtocolViolation, opcodes.Hello, env.Op)
	}

	var hello HelloData
	if err := json.Unmarshal(env.D, &hello); err != nil {
		return 0, fmt.Errorf("%w: could not unmarshal hello message: %v", ErrProtocolViolation, err)
	}
	if hello.HeartbeatInterval <= 0 {
		return 0, fmt.Errorf("%w: hello without heartbeat interval", ErrProtocolViolation)
	}

	interval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
	g.logger.Debug("received hello", "heartbeat_interval", interval)
	return interval, nil
}

func (g *Gateway) readLoop(ctx context.Context, conn Conn, frames chan<- []byte) error {
	for {
		raw, err := conn.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &TransportError{Op: "read", Err: err}
			}
			return err
		}
		select {
		case frames <- raw:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (g *Gateway) processLoop(ctx context.Context, conn Conn, hb *heartbeat, frames <-chan []byte, established *atomic.Bool) error {
	if err := g.handshake(ctx, conn); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw := <-frames:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := g.handleFrame(ctx, hb, raw, established); err != nil {
				return err
			}
		}
	}
}

// handshake sends resume when the session can be resumed and identify
// otherwise. A fresh identify starts a new session.
func (g *Gateway) handshake(ctx context.Context, conn Conn) error {
	if g.session.Resumable() {
		seq, _ := g.session.Sequence()
		g.setState(StateResuming)
		g.logger.Info("resuming session", "session_id", g.session.ID(), "seq", seq)
		return conn.Send(ctx, Frame{
			Op: opcodes.Resume,
			D: ResumeData{
				Token:     g.cfg.Token,
				SessionID: g.session.ID(),
				Sequence:  seq,
			},
		})
	}

	g.session.reset()
	g.setState(StateIdentifying)
	g.logger.Info("identifying", "shard_count", g.cfg.ShardCount)
	return conn.Send(ctx, Frame{
		Op: opcodes.Identify,
		D: IdentifyData{
			Token:          g.cfg.Token,
			Properties:     g.cfg.Properties,
			LargeThreshold: g.cfg.LargeThreshold,
			Shard:          [2]int{g.cfg.ShardID, g.cfg.ShardCount},
			Presence:       g.cfg.Presence,
			Intents:        g.cfg.Intents,
		},
	})
}

// handleFrame returns an error only when the connection has to end.
func (g *Gateway) handleFrame(ctx context.Context, hb *heartbeat, raw []byte, established *atomic.Bool) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		g.logger.Warn("dropping frame", "error", err)
		return nil
	}

	switch env.Op {
	case opcodes.Dispatch:
		g.handleDispatch(ctx, env, established)
		return nil

	case opcodes.Heartbeat:
		return hb.beat(ctx)

	case opcodes.HeartbeatACK:
		hb.ack()
		return nil

	case opcodes.Reconnect:
		return ErrReconnectRequested

	case opcodes.InvalidSession:
		var resumable bool
		if err := json.Unmarshal(env.D, &resumable); err != nil {
			g.logger.Warn("could not unmarshal invalid session data", "error", err)
		}
		return &InvalidSessionError{Resumable: resumable}

	default:
		g.logger.Debug("ignoring frame", "op", env.Op, "name", opcodes.Name(env.Op))
		return nil
	}
}

func (g *Gateway) handleDispatch(ctx context.Context, env Envelope, established *atomic.Bool) {
	seq := *env.S
	if !g.session.advance(seq) {
		last, _ := g.session.Sequence()
		g.logger.Warn("dropping dispatch",
			"error", ErrProtocolViolation,
			"event", env.T,
			"seq", seq,
			"last_seq", last,
		)
		return
	}

	switch env.T {
	case "READY":
		var ready ReadyData
		if err := json.Unmarshal(env.D, &ready); err != nil || ready.SessionID == "" {
			g.logger.Warn("READY without session id", "error", ErrProtocolViolation)
		} else {
			g.session.establish(ready.SessionID, ready.ResumeURL)
		}
		established.Store(true)
		g.setState(StateReady)
		g.logger.Info("session ready", "session_id", ready.SessionID)

	case "RESUMED":
		established.Store(true)
		g.setState(StateDispatching)
		g.logger.Info("session resumed", "session_id", g.session.ID(), "seq", seq)

	default:
		if g.State() == StateReady {
			g.setState(StateDispatching)
		}
	}

	if err := g.table.Route(ctx, env, g.cfg.ShardID); err != nil {
		g.logger.Warn("dropping event", "event", env.T, "seq", seq, "error", err)
	}
}
