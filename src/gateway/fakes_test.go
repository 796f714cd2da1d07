package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const waitFor = 2 * time.Second

type sentFrame struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type recvResult struct {
	raw []byte
	err error
}

type fakeConn struct {
	in     chan recvResult
	sent   chan sentFrame
	closed chan struct{}
	once   sync.Once
	code   atomic.Int64
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan recvResult, 16),
		sent:   make(chan sentFrame, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Recv() ([]byte, error) {
	select {
	case r := <-c.in:
		return r.raw, r.err
	case <-c.closed:
		return nil, &TransportError{Op: "read", Err: net.ErrClosed}
	}
}

func (c *fakeConn) Send(_ context.Context, v any) error {
	select {
	case <-c.closed:
		return &TransportError{Op: "write", Err: net.ErrClosed}
	default:
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var f sentFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return err
	}
	c.sent <- f
	return nil
}

func (c *fakeConn) Close(code int) error {
	c.once.Do(func() {
		c.code.Store(int64(code))
		close(c.closed)
	})
	return nil
}

func (c *fakeConn) push(raw string) { c.in <- recvResult{raw: []byte(raw)} }

func (c *fakeConn) drop(err error) { c.in <- recvResult{err: err} }

// expect returns the next sent frame with op, skipping any others.
func (c *fakeConn) expect(t *testing.T, op int) sentFrame {
	t.Helper()
	timeout := time.After(waitFor)
	for {
		select {
		case f := <-c.sent:
			if f.Op == op {
				return f
			}
		case <-timeout:
			t.Fatalf("no frame with op %d was sent", op)
			return sentFrame{}
		}
	}
}

func (c *fakeConn) waitClosed(t *testing.T) int {
	t.Helper()
	select {
	case <-c.closed:
		return int(c.code.Load())
	case <-time.After(waitFor):
		t.Fatal("connection was not closed")
		return 0
	}
}

type dialResult struct {
	conn *fakeConn
	err  error
}

type fakeDialer struct {
	results chan dialResult

	mu   sync.Mutex
	urls []string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{results: make(chan dialResult, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, gatewayURL string) (Conn, error) {
	d.mu.Lock()
	d.urls = append(d.urls, gatewayURL)
	d.mu.Unlock()

	select {
	case r := <-d.results:
		if r.err != nil {
			return nil, r.err
		}
		return r.conn, nil
	case <-ctx.Done():
		return nil, &TransportError{Op: "dial", Err: ctx.Err()}
	}
}

// conn queues a connection for the next dial.
func (d *fakeDialer) conn() *fakeConn {
	c := newFakeConn()
	d.results <- dialResult{conn: c}
	return c
}

func (d *fakeDialer) fail(err error) { d.results <- dialResult{err: err} }

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}

type tick struct {
	d    time.Duration
	fire chan time.Time
}

func (tk tick) trigger() { tk.fire <- time.Now() }

// manualClock hands every heartbeat timer to the test.
type manualClock struct {
	ticks chan tick
}

func newManualClock() *manualClock {
	return &manualClock{ticks: make(chan tick, 64)}
}

func (m *manualClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.ticks <- tick{d: d, fire: ch}
	return ch
}

func (m *manualClock) next(t *testing.T) tick {
	t.Helper()
	select {
	case tk := <-m.ticks:
		return tk
	case <-time.After(waitFor):
		t.Fatal("no heartbeat timer was scheduled")
		return tick{}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func helloFrame(ms int) string {
	return fmt.Sprintf(`{"op":10,"d":{"heartbeat_interval":%d}}`, ms)
}

func dispatchFrame(name string, seq int64, data string) string {
	return fmt.Sprintf(`{"op":0,"t":%q,"s":%d,"d":%s}`, name, seq, data)
}

const readyData = `{"session_id":"abc","resume_gateway_url":"wss://resume.test"}`

type harness struct {
	gw     *Gateway
	dialer *fakeDialer
	clock  *manualClock
	errc   chan error
	cancel context.CancelFunc
}

func newHarness(t *testing.T, table *DispatchTable, mutate ...func(*Config)) *harness {
	t.Helper()
	cfg := Config{
		Token:          "token",
		URL:            "wss://gateway.test",
		Intents:        513,
		ShardCount:     1,
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	if table == nil {
		table = NewDispatchTable(time.Second)
	}

	h := &harness{
		dialer: newFakeDialer(),
		clock:  newManualClock(),
		errc:   make(chan error, 1),
	}
	h.gw = New(cfg, h.dialer, table,
		WithClock(h.clock.After),
		WithJitter(func() float64 { return 0.5 }),
		WithLogger(discardLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	t.Cleanup(cancel)
	go func() { h.errc <- h.gw.Run(ctx) }()
	return h
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.errc:
		return err
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
		return nil
	}
}

// ready dials, identifies and delivers READY with sequence 1.
func (h *harness) ready(t *testing.T) *fakeConn {
	t.Helper()
	c := h.dialer.conn()
	c.push(helloFrame(41250))
	c.expect(t, 2)
	c.push(dispatchFrame("READY", 1, readyData))
	waitState(t, h.gw, StateReady)
	return c
}

func waitState(t *testing.T, gw *Gateway, want State) {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for gw.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state is %s, want %s", gw.State(), want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func waitSequence(t *testing.T, s *Session, want int64) {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for {
		if seq, ok := s.Sequence(); ok && seq == want {
			return
		}
		if time.Now().After(deadline) {
			seq, _ := s.Sequence()
			t.Fatalf("sequence is %d, want %d", seq, want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
