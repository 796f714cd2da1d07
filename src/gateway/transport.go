package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Discord drops connections that send more than 120 frames per minute.
	sendBurst    = 120
	sendInterval = time.Minute / sendBurst

	writeTimeout      = 10 * time.Second
	closeWriteTimeout = time.Second
)

// Conn is one physical gateway connection.
type Conn interface {
	// Recv blocks for the next text frame. A peer close is reported as a
	// *CloseError, anything else as a *TransportError.
	Recv() ([]byte, error)
	// Send writes v as a JSON text frame. It is safe for concurrent use.
	Send(ctx context.Context, v any) error
	// Close sends a close frame with code and tears the connection down.
	// It is idempotent.
	Close(code int) error
}

type Dialer interface {
	Dial(ctx context.Context, gatewayURL string) (Conn, error)
}

// WebsocketDialer dials the gateway with gorilla/websocket.
type WebsocketDialer struct {
	Dialer *websocket.Dialer
	Header http.Header
}

func (d WebsocketDialer) Dial(ctx context.Context, gatewayURL string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	header := d.Header
	if header == nil {
		header = http.Header{}
	}

	u, err := withQuery(gatewayURL)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	conn, res, err := dialer.DialContext(ctx, u, header)
	if err != nil {
		if res != nil {
			err = fmt.Errorf("%w (status %s)", err, res.Status)
		}
		return nil, &TransportError{Op: "dial", Err: err}
	}

	return &wsConn{
		conn:    conn,
		limiter: rate.NewLimiter(rate.Every(sendInterval), sendBurst),
	}, nil
}

// withQuery pins the API version and encoding unless the URL already does.
func withQuery(gatewayURL string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", fmt.Errorf("could not parse gateway URL: %w", err)
	}
	q := u.Query()
	if q.Get("v") == "" {
		q.Set("v", APIVersion)
	}
	if q.Get("encoding") == "" {
		q.Set("encoding", "json")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type wsConn struct {
	conn    *websocket.Conn
	limiter *rate.Limiter

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) Recv() ([]byte, error) {
	for {
		kind, body, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return nil, &CloseError{Code: closeErr.Code, Reason: closeErr.Text}
			}
			return nil, &TransportError{Op: "read", Err: err}
		}
		if kind != websocket.TextMessage {
			continue
		}
		return body, nil
	}
}

func (c *wsConn) Send(ctx context.Context, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: "write", Err: err}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if err := c.conn.WriteJSON(v); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (c *wsConn) Close(code int) error {
	c.closeOnce.Do(func() {
		// WriteControl may run concurrently with a pending Send.
		err := c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, ""),
			time.Now().Add(closeWriteTimeout),
		)
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.closeErr = &TransportError{Op: "close", Err: err}
		}
		if err := c.conn.Close(); err != nil && c.closeErr == nil {
			c.closeErr = &TransportError{Op: "close", Err: err}
		}
	})
	return c.closeErr
}
