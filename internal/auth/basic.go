package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/password"
)

const basicChallenge = `Basic realm="dumb-auth"`

type (
	// Basic checks the password field of an HTTP Basic authorization
	// header. The username is ignored.
	Basic struct {
		checker *password.Checker
	}
)

func NewBasic(checker *password.Checker) *Basic {
	return &Basic{checker: checker}
}

func (b *Basic) Allowed(cfg *config.AuthConfig) bool {
	return cfg.AllowBasic
}

func (b *Basic) Verify(ctx context.Context, cfg *config.AuthConfig, originalURI string, headers http.Header) (Result, error) {
	if pass, ok := basicPassword(headers.Get("Authorization")); ok {
		if b.checker.Check(pass, cfg.Password) {
			return valid(), nil
		}
	}
	return invalid().withHeader("WWW-Authenticate", basicChallenge), nil
}

func basicPassword(authorization string) (string, bool) {
	const prefix = "Basic "
	if len(authorization) < len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(authorization[len(prefix):]))
	if err != nil {
		return "", false
	}
	_, pass, ok := strings.Cut(string(decoded), ":")
	return pass, ok
}
