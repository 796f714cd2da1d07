package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal/discord_go/src/opcodes"
)

func TestWithQuery(t *testing.T) {
	u, err := withQuery("wss://gateway.discord.gg")
	require.NoError(t, err)
	assert.Equal(t, "wss://gateway.discord.gg?encoding=json&v=10", u)

	u, err = withQuery("wss://gateway.discord.gg/?v=9")
	require.NoError(t, err)
	assert.Equal(t, "wss://gateway.discord.gg/?encoding=json&v=9", u)
}

func TestWebsocketDialer(t *testing.T) {
	received := make(chan sentFrame, 1)
	query := make(chan string, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query <- r.URL.RawQuery
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x1})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame(41250)))

		var f sentFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		received <- f

		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(opcodes.CloseAuthenticationFailed, "Authentication failed."))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := WebsocketDialer{}.Dial(context.Background(), url)
	require.NoError(t, err)
	defer conn.Close(websocket.CloseNormalClosure)

	assert.Equal(t, "encoding=json&v=10", <-query)

	raw, err := conn.Recv()
	require.NoError(t, err)
	assert.JSONEq(t, helloFrame(41250), string(raw))

	require.NoError(t, conn.Send(context.Background(), heartbeatFrame(3, true)))
	f := <-received
	assert.Equal(t, opcodes.Heartbeat, f.Op)
	assert.Equal(t, "3", string(f.D))

	_, err = conn.Recv()
	var closeErr *CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, opcodes.CloseAuthenticationFailed, closeErr.Code)
	assert.Equal(t, "Authentication failed.", closeErr.Reason)
	assert.ErrorIs(t, err, ErrAuthFailure)
}

func TestWebsocketDialer_Refused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, err := WebsocketDialer{}.Dial(context.Background(), url)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "dial", transportErr.Op)
	assert.Contains(t, err.Error(), "404")
}
