package gateway

import (
	"encoding/json"
	"fmt"

	"personal/discord_go/src/opcodes"
)

// Envelope is one decoded inbound frame. S and T are only set on dispatch
// frames.
type Envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  string          `json:"t"`
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: could not unmarshal frame: %v", ErrProtocolViolation, err)
	}
	if env.Op == opcodes.Dispatch && (env.S == nil || env.T == "") {
		return Envelope{}, fmt.Errorf("%w: dispatch frame without sequence or event name", ErrProtocolViolation)
	}
	return env, nil
}

// Frame is an outbound frame.
type Frame struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type IdentifyProperties struct {
	Os      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type IdentifyData struct {
	Token          string             `json:"token"`
	Properties     IdentifyProperties `json:"properties"`
	LargeThreshold int                `json:"large_threshold,omitempty"`
	Shard          [2]int             `json:"shard"`
	Presence       *Presence          `json:"presence,omitempty"`
	Intents        int                `json:"intents"`
}

// Activity types.
const (
	ActivityPlaying   = 0
	ActivityStreaming = 1
	ActivityListening = 2
	ActivityWatching  = 3
	ActivityCustom    = 4
	ActivityCompeting = 5
)

type Activity struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	State string `json:"state,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Presence is sent with Identify. Status is one of online, dnd, idle,
// invisible or offline.
type Presence struct {
	Since      *int64     `json:"since"`
	Activities []Activity `json:"activities"`
	Status     string     `json:"status"`
	AFK        bool       `json:"afk"`
}

type ResumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Sequence  int64  `json:"seq"`
}

// ReadyData holds the READY fields the session itself needs. Handlers decode
// the rest of the payload on their own.
type ReadyData struct {
	SessionID string `json:"session_id"`
	ResumeURL string `json:"resume_gateway_url"`
}

func heartbeatFrame(seq int64, ok bool) Frame {
	if !ok {
		return Frame{Op: opcodes.Heartbeat, D: nil}
	}
	return Frame{Op: opcodes.Heartbeat, D: seq}
}
