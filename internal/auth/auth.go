// Package auth decides whether a proxied request is authenticated. Three
// independent methods (HTTP Basic, HTTP Bearer, cookie-backed sessions)
// hide behind one Method contract; the Authenticator runs the enabled ones
// in a fixed precedence order.
package auth

import (
	"context"
	"net/http"

	"github.com/andrebq/dumbauth/internal/config"
)

type (
	// Result is the verdict for one request. Headers carries challenge
	// or redirect headers the proxy should attach to a denial.
	Result struct {
		Valid   bool
		Headers http.Header
	}

	// Method is one way of proving possession of the configured
	// password. Verify never reports transport or storage failures as
	// an invalid result; those come back as errors.
	Method interface {
		Allowed(cfg *config.AuthConfig) bool
		Verify(ctx context.Context, cfg *config.AuthConfig, originalURI string, headers http.Header) (Result, error)
	}
)

func valid() Result {
	return Result{Valid: true}
}

func invalid() Result {
	return Result{}
}

func (r Result) withHeader(key, value string) Result {
	if r.Headers == nil {
		r.Headers = make(http.Header, 1)
	}
	r.Headers.Add(key, value)
	return r
}
