// Package password verifies a presented credential against the single
// operator-configured secret. The secret is either a plain string or an
// argon2id hash in PHC string format; in the latter case successful
// verifications are cached so the expensive key derivation runs at most
// once per configured hash.
package password

import (
	"crypto/subtle"
	"fmt"
)

type (
	// Password is the configured credential. Exactly one of plain or
	// hash is set; use Plain or ParseHash to build one.
	Password struct {
		plain string
		hash  *Hash
	}
)

// Plain wraps a plain-text configured password.
func Plain(secret string) Password {
	return Password{plain: secret}
}

// ParseHash builds a Password from an argon2id PHC hash string, as
// produced by HashPassword or the passwd subcommand.
func ParseHash(s string) (Password, error) {
	h, err := parsePHC(s)
	if err != nil {
		return Password{}, fmt.Errorf("unable to parse password hash, cause %w", err)
	}
	return Password{hash: h}, nil
}

// IsHash reports whether the configured password is a hash.
func (p Password) IsHash() bool { return p.hash != nil }

func constantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
