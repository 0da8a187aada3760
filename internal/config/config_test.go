package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionExpiry(t *testing.T) {
	expiry, err := ParseSessionExpiry("never")
	require.NoError(t, err)
	assert.Equal(t, ExpiryNever, expiry.Kind)

	expiry, err = ParseSessionExpiry("Session")
	require.NoError(t, err)
	assert.Equal(t, ExpirySession, expiry.Kind)

	expiry, err = ParseSessionExpiry("36h")
	require.NoError(t, err)
	assert.Equal(t, ExpiryDuration, expiry.Kind)
	assert.Equal(t, 36*time.Hour, expiry.Duration)

	for _, s := range []string{"", "4 weeks", "-1h", "0s", "soon"} {
		_, err = ParseSessionExpiry(s)
		assert.Error(t, err, "expected %q to be rejected", s)
	}
}

func TestSessionExpiryRoundTrip(t *testing.T) {
	for _, s := range []string{"never", "session", "672h0m0s"} {
		expiry, err := ParseSessionExpiry(s)
		require.NoError(t, err)
		assert.Equal(t, s, expiry.String())
	}
}

func TestSessionExpirySetFromFlag(t *testing.T) {
	expiry := DefaultSessionExpiry
	require.NoError(t, expiry.Set("never"))
	assert.Equal(t, ExpiryNever, expiry.Kind)
	assert.Error(t, expiry.Set("bogus"))
}

func TestValidatePublicPath(t *testing.T) {
	for _, s := range []string{"/", "/auth", "/some/base"} {
		assert.NoError(t, ValidatePublicPath(s), "path %q", s)
	}
	for _, s := range []string{"", "auth", "/auth/", "//auth", "/a..b", "/a{b}", "/a*b"} {
		assert.Error(t, ValidatePublicPath(s), "path %q", s)
	}
}
