package gateway

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeat_FirstDelayWithinInterval(t *testing.T) {
	interval := 41250 * time.Millisecond
	hb := newHeartbeat(interval, nil, time.After, defaultJitter, discardLogger())

	for i := 0; i < 1000; i++ {
		d := hb.firstDelay()
		require.Greater(t, d, time.Duration(0))
		require.LessOrEqual(t, d, interval)
	}
}

func TestHeartbeat_FirstDelayClampsJitter(t *testing.T) {
	tests := []struct {
		name   string
		jitter float64
		want   time.Duration
	}{
		{name: "full interval", jitter: 1, want: time.Second},
		{name: "half", jitter: 0.5, want: 500 * time.Millisecond},
		{name: "zero is clamped", jitter: 0, want: time.Second},
		{name: "above one is clamped", jitter: 1.5, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hb := newHeartbeat(time.Second, nil, time.After, func() float64 { return tt.jitter }, discardLogger())
			assert.Equal(t, tt.want, hb.firstDelay())
		})
	}
}

func TestHeartbeat_TimesOutWithoutAck(t *testing.T) {
	clock := newManualClock()
	var sent atomic.Int32
	hb := newHeartbeat(time.Second, func(context.Context) error {
		sent.Add(1)
		return nil
	}, clock.After, func() float64 { return 1 }, discardLogger())

	errc := make(chan error, 1)
	go func() { errc <- hb.run(context.Background()) }()

	clock.next(t).trigger()
	clock.next(t).trigger()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrHeartbeatTimeout)
	case <-time.After(waitFor):
		t.Fatal("heartbeat did not time out")
	}
	assert.Equal(t, int32(1), sent.Load())
}

func TestHeartbeat_KeepsBeatingWhenAcked(t *testing.T) {
	clock := newManualClock()
	beats := make(chan struct{}, 8)
	hb := newHeartbeat(time.Second, func(context.Context) error {
		beats <- struct{}{}
		return nil
	}, clock.After, func() float64 { return 1 }, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- hb.run(ctx) }()

	for i := 0; i < 3; i++ {
		tk := clock.next(t)
		assert.Equal(t, time.Second, tk.d)
		tk.trigger()
		<-beats
		hb.ack()
	}

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("heartbeat did not stop")
	}
}

func TestHeartbeat_SendErrorStops(t *testing.T) {
	clock := newManualClock()
	boom := errors.New("boom")
	hb := newHeartbeat(time.Second, func(context.Context) error { return boom }, clock.After, func() float64 { return 1 }, discardLogger())

	errc := make(chan error, 1)
	go func() { errc <- hb.run(context.Background()) }()
	clock.next(t).trigger()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, boom)
	case <-time.After(waitFor):
		t.Fatal("heartbeat did not stop")
	}
}

func TestHeartbeat_Latency(t *testing.T) {
	hb := newHeartbeat(time.Second, func(context.Context) error { return nil }, time.After, defaultJitter, discardLogger())
	assert.Equal(t, time.Duration(0), hb.latency())

	require.NoError(t, hb.beat(context.Background()))
	time.Sleep(time.Millisecond)
	hb.ack()
	assert.GreaterOrEqual(t, hb.latency(), time.Millisecond)
}
