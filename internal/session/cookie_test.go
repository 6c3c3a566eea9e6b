package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieCodec_SessionRoundTrip(t *testing.T) {
	codec := NewCookieCodec("test-secret")

	value, err := codec.IssueSession("sess-42")
	require.NoError(t, err)

	id, err := codec.ParseSession(value)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", id)
}

func TestCookieCodec_RejectsWrongKey(t *testing.T) {
	value, err := NewCookieCodec("key-a").IssueSession("sess-42")
	require.NoError(t, err)

	_, err = NewCookieCodec("key-b").ParseSession(value)
	assert.Error(t, err, "a cookie signed with another key must not verify")
}

func TestCookieCodec_RejectsGarbage(t *testing.T) {
	codec := NewCookieCodec("test-secret")

	_, err := codec.ParseSession("not-a-token")
	assert.Error(t, err)
}

func TestCookieCodec_StateRoundTrip(t *testing.T) {
	codec := NewCookieCodec("test-secret")

	state, err := codec.IssueState("nonce-1")
	require.NoError(t, err)

	nonce, err := codec.ParseState(state)
	require.NoError(t, err)
	assert.Equal(t, "nonce-1", nonce)

	// A session cookie must not pass as a state token.
	sessionValue, err := codec.IssueSession("sess-1")
	require.NoError(t, err)
	_, err = codec.ParseState(sessionValue)
	assert.Error(t, err)
}
