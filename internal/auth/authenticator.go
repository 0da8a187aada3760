package auth

import (
	"context"
	"net/http"

	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/password"
	"github.com/andrebq/dumbauth/internal/session"
)

type (
	// Authenticator composes the three methods. Precedence is fixed:
	// basic, then bearer, then session.
	Authenticator struct {
		methods []Method
	}
)

func NewAuthenticator(publicPath string, checker *password.Checker, sessions *session.Manager) *Authenticator {
	return &Authenticator{
		methods: []Method{
			NewBasic(checker),
			NewBearer(checker),
			NewSession(publicPath, sessions),
		},
	}
}

// Authenticate runs the enabled methods in order, returning the first
// valid result as-is. Headers from failed methods accumulate in evaluation
// order so a client can see every challenge it could answer. Any method
// error aborts the whole decision; the caller must not read it as an
// authentication failure.
func (a *Authenticator) Authenticate(ctx context.Context, cfg *config.AuthConfig, originalURI string, headers http.Header) (Result, error) {
	var accumulated http.Header

	for _, method := range a.methods {
		if !method.Allowed(cfg) {
			continue
		}
		result, err := method.Verify(ctx, cfg, originalURI, headers)
		if err != nil {
			return Result{}, err
		}
		if result.Valid {
			return result, nil
		}
		accumulated = mergeHeaders(accumulated, result.Headers)
	}

	return Result{Valid: false, Headers: accumulated}, nil
}

func mergeHeaders(into, from http.Header) http.Header {
	if len(from) == 0 {
		return into
	}
	if into == nil {
		into = make(http.Header, len(from))
	}
	for key, values := range from {
		into[key] = append(into[key], values...)
	}
	return into
}
