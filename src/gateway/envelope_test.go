package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal/discord_go/src/opcodes"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := decodeEnvelope([]byte(`{"op":0,"s":42,"t":"MESSAGE_CREATE","d":{"id":"1"}}`))
	require.NoError(t, err)
	assert.Equal(t, opcodes.Dispatch, env.Op)
	assert.Equal(t, "MESSAGE_CREATE", env.T)
	require.NotNil(t, env.S)
	assert.Equal(t, int64(42), *env.S)

	env, err = decodeEnvelope([]byte(`{"op":11,"s":null,"t":null,"d":null}`))
	require.NoError(t, err)
	assert.Equal(t, opcodes.HeartbeatACK, env.Op)
	assert.Nil(t, env.S)
}

func TestDecodeEnvelope_Violations(t *testing.T) {
	for _, raw := range []string{
		`{"op":`,
		`[]`,
		`{"op":0,"t":"MESSAGE_CREATE","d":{}}`,
		`{"op":0,"s":1,"d":{}}`,
	} {
		_, err := decodeEnvelope([]byte(raw))
		assert.ErrorIs(t, err, ErrProtocolViolation, raw)
	}
}

func TestHeartbeatFrame(t *testing.T) {
	raw, err := json.Marshal(heartbeatFrame(0, false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":1,"d":null}`, string(raw))

	raw, err = json.Marshal(heartbeatFrame(251, true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":1,"d":251}`, string(raw))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, opcodes.CloseActionResume, classify(ErrHeartbeatTimeout))
	assert.Equal(t, opcodes.CloseActionResume, classify(&TransportError{Op: "read"}))
	assert.Equal(t, opcodes.CloseActionResume, classify(&InvalidSessionError{Resumable: true}))
	assert.Equal(t, opcodes.CloseActionReidentify, classify(&InvalidSessionError{}))
	assert.Equal(t, opcodes.CloseActionReidentify, classify(&CloseError{Code: opcodes.CloseSessionTimedOut}))
	assert.Equal(t, opcodes.CloseActionTerminate, classify(&CloseError{Code: opcodes.CloseAuthenticationFailed}))
	assert.ErrorIs(t, &CloseError{Code: opcodes.CloseAuthenticationFailed}, ErrAuthFailure)
	assert.ErrorIs(t, &CloseError{Code: opcodes.CloseInvalidIntents}, ErrSessionRejected)
	assert.NotErrorIs(t, &CloseError{Code: opcodes.CloseUnknownError}, ErrSessionRejected)
}
