// Package config holds the operator-supplied configuration shared by the
// auth methods, the session manager and the datastore factory. A Config is
// built once at startup and never mutated afterwards.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/andrebq/dumbauth/internal/password"
)

const (
	DefaultBindAddr          = "0.0.0.0:3862"
	DefaultPublicPath        = "/auth"
	DefaultSessionCookieName = "dumb-auth-session"
)

// DefaultSessionExpiry is four weeks, counted from session creation.
var DefaultSessionExpiry = SessionExpiry{Kind: ExpiryDuration, Duration: 28 * 24 * time.Hour}

type (
	// AuthConfig controls which auth methods are accepted and how
	// interactive sessions behave.
	AuthConfig struct {
		Password password.Password

		AllowBasic   bool
		AllowBearer  bool
		AllowSession bool

		SessionCookieName   string
		SessionCookieDomain string
		SessionExpiry       SessionExpiry
	}

	// AppConfig is the full configuration of a running instance.
	AppConfig struct {
		BindAddr   string
		PublicPath string
		Datastore  string

		Auth AuthConfig
	}

	ExpiryKind int

	// SessionExpiry describes when an interactive session stops being
	// valid. ExpirySession is enforced purely by cookie attributes,
	// the server keeps the record until it is deleted.
	SessionExpiry struct {
		Kind     ExpiryKind
		Duration time.Duration
	}
)

const (
	ExpiryNever ExpiryKind = iota
	ExpirySession
	ExpiryDuration
)

// ParseSessionExpiry accepts "never", "session" or any duration understood
// by time.ParseDuration (e.g. "672h", "30m").
func ParseSessionExpiry(s string) (SessionExpiry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "never":
		return SessionExpiry{Kind: ExpiryNever}, nil
	case "session":
		return SessionExpiry{Kind: ExpirySession}, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return SessionExpiry{}, fmt.Errorf("unable to parse session expiry %q, cause %w", s, err)
	}
	if d <= 0 {
		return SessionExpiry{}, fmt.Errorf("session expiry must be positive, got %q", s)
	}
	return SessionExpiry{Kind: ExpiryDuration, Duration: d}, nil
}

func (e SessionExpiry) String() string {
	switch e.Kind {
	case ExpiryNever:
		return "never"
	case ExpirySession:
		return "session"
	default:
		return e.Duration.String()
	}
}

// UnmarshalText lets SessionExpiry be used directly as a CLI flag value.
func (e *SessionExpiry) UnmarshalText(text []byte) error {
	parsed, err := ParseSessionExpiry(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e SessionExpiry) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Set implements the flag value contract on top of ParseSessionExpiry.
func (e *SessionExpiry) Set(s string) error {
	return e.UnmarshalText([]byte(s))
}
