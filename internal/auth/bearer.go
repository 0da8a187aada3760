package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/password"
)

const (
	bearerChallenge        = `Bearer realm="dumb-auth"`
	bearerInvalidChallenge = `Bearer realm="dumb-auth", error="invalid_token"`
)

type (
	// Bearer accepts the configured password as an HTTP Bearer token.
	Bearer struct {
		checker *password.Checker
	}
)

func NewBearer(checker *password.Checker) *Bearer {
	return &Bearer{checker: checker}
}

func (b *Bearer) Allowed(cfg *config.AuthConfig) bool {
	return cfg.AllowBearer
}

func (b *Bearer) Verify(ctx context.Context, cfg *config.AuthConfig, originalURI string, headers http.Header) (Result, error) {
	token, ok := bearerToken(headers.Get("Authorization"))
	if !ok {
		return invalid().withHeader("WWW-Authenticate", bearerChallenge), nil
	}
	if !b.checker.Check(token, cfg.Password) {
		return invalid().withHeader("WWW-Authenticate", bearerInvalidChallenge), nil
	}
	return valid(), nil
}

func bearerToken(authorization string) (string, bool) {
	const prefix = "Bearer "
	if len(authorization) < len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(authorization[len(prefix):]), true
}
