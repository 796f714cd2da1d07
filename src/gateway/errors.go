package gateway

import (
	"errors"
	"fmt"

	"personal/discord_go/src/opcodes"
)

var (
	// ErrProtocolViolation marks a frame that broke the gateway contract
	// (malformed envelope, non-increasing sequence). The frame is dropped.
	ErrProtocolViolation = errors.New("gateway: protocol violation")
	// ErrAuthFailure is terminal: the peer rejected the token.
	ErrAuthFailure = errors.New("gateway: authentication failed")
	// ErrSessionRejected is terminal: the peer rejected the identify
	// parameters (shard, intents, API version).
	ErrSessionRejected = errors.New("gateway: session rejected")
	// ErrHeartbeatTimeout means the previous heartbeat was never acknowledged.
	ErrHeartbeatTimeout = errors.New("gateway: heartbeat not acknowledged")
	// ErrReconnectRequested is returned when the peer sends opcode 7.
	ErrReconnectRequested = errors.New("gateway: reconnect requested")
	// ErrBackoffExhausted wraps the last transport error once the reconnect
	// attempt budget is spent.
	ErrBackoffExhausted = errors.New("gateway: reconnect attempts exhausted")
	// ErrAuxiliaryLookup is wrapped by dispatch handlers when resolving a
	// cross-referenced entity failed or timed out.
	ErrAuxiliaryLookup = errors.New("gateway: auxiliary lookup failed")
)

// TransportError is a failure of the physical connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CloseError is returned when the peer closed the connection with a close frame.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("gateway: closed by peer with code %d", e.Code)
	}
	return fmt.Sprintf("gateway: closed by peer with code %d: %s", e.Code, e.Reason)
}

// Action reports how the session has to recover from this close.
func (e *CloseError) Action() opcodes.CloseAction { return opcodes.ClassifyClose(e.Code) }

func (e *CloseError) Unwrap() error {
	switch {
	case e.Code == opcodes.CloseAuthenticationFailed:
		return ErrAuthFailure
	case e.Action() == opcodes.CloseActionTerminate:
		return ErrSessionRejected
	default:
		return nil
	}
}

// InvalidSessionError is returned when the peer sends opcode 9.
type InvalidSessionError struct {
	Resumable bool
}

func (e *InvalidSessionError) Error() string {
	if e.Resumable {
		return "gateway: invalid session (resumable)"
	}
	return "gateway: invalid session (not resumable)"
}

// classify decides how Run recovers from the error that ended a connection.
func classify(err error) opcodes.CloseAction {
	var closeErr *CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Action()
	}
	var invalid *InvalidSessionError
	if errors.As(err, &invalid) {
		if invalid.Resumable {
			return opcodes.CloseActionResume
		}
		return opcodes.CloseActionReidentify
	}
	return opcodes.CloseActionResume
}
