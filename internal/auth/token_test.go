package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dashpilot/s3-universal-backend/internal/clock"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("super-secret", nil)

	tok, err := codec.Issue("alice")
	require.NoError(t, err)

	username, ok := codec.Verify(tok)
	require.True(t, ok)
	require.Equal(t, "alice", username)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenCodec("right-secret", nil).Issue("alice")
	require.NoError(t, err)

	_, ok := NewTokenCodec("wrong-secret", nil).Verify(tok)
	require.False(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("secret", nil)
	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		_, ok := codec.Verify(tok)
		require.False(t, ok, "token %q should not verify", tok)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	codec := NewTokenCodec("secret", clk)

	tok, err := codec.Issue("alice")
	require.NoError(t, err)

	// One second before expiry the token is still good.
	clk.Set(start.Add(TokenValidity - time.Second))
	username, ok := codec.Verify(tok)
	require.True(t, ok)
	require.Equal(t, "alice", username)

	// Past expiry it is rejected.
	clk.Set(start.Add(TokenValidity + time.Second))
	_, ok = codec.Verify(tok)
	require.False(t, ok)
}
