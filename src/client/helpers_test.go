package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"personal/discord_go/src/config"
	"personal/discord_go/src/gateway"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI serves canned JSON per "METHOD /path" and records every request.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	responses map[string]response
	requests  []recordedRequest
}

type response struct {
	status int
	body   string
}

type recordedRequest struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{t: t, responses: make(map[string]response)}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	a.mu.Lock()
	a.requests = append(a.requests, recordedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: body})
	res, ok := a.responses[key]
	a.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"Unknown"}`, http.StatusNotFound)
		return
	}
	if res.status == http.StatusNoContent {
		w.WriteHeader(res.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.status)
	_, _ = io.WriteString(w, res.body)
}

func (a *fakeAPI) on(method, path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[method+" "+path] = response{status: status, body: body}
}

func (a *fakeAPI) calls(method, path string) []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []recordedRequest
	for _, r := range a.requests {
		if r.method == method && r.path == path {
			out = append(out, r)
		}
	}
	return out
}

func testConfig(apiURL string) *config.Config {
	cfg := config.Defaults()
	cfg.Token = "token"
	cfg.APIURL = apiURL
	cfg.Gateway.LookupTimeout = time.Second
	cfg.Gateway.BackoffInitial = time.Millisecond
	cfg.Gateway.BackoffMax = 5 * time.Millisecond
	cfg.REST.BreakerFailures = 2
	cfg.REST.BreakerTimeout = time.Minute
	return cfg
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	c, err := New(testConfig(api.srv.URL), discardLogger(), opts...)
	require.NoError(t, err)
	return c
}

func route(c *Client, name string, seq int64, data string) error {
	env := gateway.Envelope{Op: 0, T: name, S: &seq, D: json.RawMessage(data)}
	return c.table.Route(context.Background(), env, 0)
}

func collect(t *testing.T, c *Client) <-chan Notification {
	t.Helper()
	ch, stop := c.Subscribe(32)
	t.Cleanup(stop)
	return ch
}

func next(t *testing.T, ch <-chan Notification) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
		return Notification{}
	}
}

const (
	guildJSON       = `{"id":"g1","name":"Gophers","owner_id":"u9","icon":null}`
	textChannelJSON = `{"id":"c1","type":0,"guild_id":"g1","name":"general","topic":"hi","position":1}`
	dmChannelJSON   = `{"id":"d1","type":1,"recipients":[{"id":"u2","username":"ada"}]}`
)
