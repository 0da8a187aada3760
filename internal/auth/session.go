package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/logutil"
	"github.com/andrebq/dumbauth/internal/session"
)

type (
	// Session checks the configured session cookie. When a browser is on
	// the other end of a failed check it also points the proxy at the
	// login page, carrying the original URI so the user lands back where
	// they started.
	Session struct {
		publicPath string
		sessions   *session.Manager
	}
)

func NewSession(publicPath string, sessions *session.Manager) *Session {
	return &Session{publicPath: publicPath, sessions: sessions}
}

func (s *Session) Allowed(cfg *config.AuthConfig) bool {
	return cfg.AllowSession
}

func (s *Session) Verify(ctx context.Context, cfg *config.AuthConfig, originalURI string, headers http.Header) (Result, error) {
	if token, ok := cookieValue(headers, cfg.SessionCookieName); ok {
		live, err := s.sessions.Check(ctx, token)
		if err != nil {
			return Result{}, err
		}
		if live {
			return valid(), nil
		}
	}

	if wantsHTML(headers.Get("Accept")) {
		if location, ok := s.loginLocation(ctx, originalURI); ok {
			return invalid().withHeader("Location", location), nil
		}
	}
	return invalid(), nil
}

func (s *Session) loginLocation(ctx context.Context, originalURI string) (string, bool) {
	query := url.Values{"redirect_to": {originalURI}}
	location := s.publicPath + "/login?" + query.Encode()
	if validHeaderValue(location) {
		return location, true
	}
	logger := logutil.GetOrDefault(ctx)
	logger.Warn().Msg("Unable to encode login location with original URI")
	location = s.publicPath + "/login"
	if validHeaderValue(location) {
		return location, true
	}
	logger.Error().Msg("Unable to encode login location")
	return "", false
}

// wantsHTML reports whether the Accept header lists text/html among its
// media types, ignoring parameters and case.
func wantsHTML(accept string) bool {
	for _, directive := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(directive, ";")
		if strings.EqualFold(strings.TrimSpace(mediaType), "text/html") {
			return true
		}
	}
	return false
}

func cookieValue(headers http.Header, name string) (string, bool) {
	// http.Request.Cookie without fabricating a request.
	r := http.Request{Header: headers}
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 || v[i] == 0x7f {
			return false
		}
	}
	return true
}
