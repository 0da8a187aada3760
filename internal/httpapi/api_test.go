package httpapi

import (
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/datastore"
	"github.com/andrebq/dumbauth/internal/password"
	"github.com/andrebq/dumbauth/internal/session"
)

const (
	originalURI        = "/original?uri&query=param"
	originalURIEncoded = "%2Foriginal%3Furi%26query%3Dparam"
)

func testHandler(t *testing.T, mutate func(*config.AuthConfig)) http.Handler {
	cfg := &config.AppConfig{
		BindAddr:   config.DefaultBindAddr,
		PublicPath: config.DefaultPublicPath,
		Auth: config.AuthConfig{
			Password:          password.Plain("hunter2"),
			AllowSession:      true,
			SessionCookieName: config.DefaultSessionCookieName,
			SessionExpiry:     config.DefaultSessionExpiry,
		},
	}
	if mutate != nil {
		mutate(&cfg.Auth)
	}
	store := datastore.NewMemory()
	t.Cleanup(func() { store.Close() })
	sessions := session.NewManager(cfg.Auth.SessionExpiry, store)
	return AsHandler(cfg, password.NewChecker(), sessions)
}

func TestAuthRequestRequiresOriginalURI(t *testing.T) {
	apitest.New().
		Handler(testHandler(t, nil)).
		Get("/auth_request").
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestAuthRequestRedirectsBrowsersToLogin(t *testing.T) {
	apitest.New().
		Handler(testHandler(t, nil)).
		Get("/auth_request").
		Header("Accept", "text/html").
		Header("X-Original-URI", originalURI).
		Expect(t).
		Status(http.StatusUnauthorized).
		Header("Location", "/auth/login?redirect_to="+originalURIEncoded).
		End()
}

func TestAuthRequestReturns401ForNonBrowsers(t *testing.T) {
	result := apitest.New().
		Handler(testHandler(t, nil)).
		Get("/auth_request").
		Header("X-Original-URI", originalURI).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	assert.Empty(t, result.Response.Header.Get("Location"))
	assert.Empty(t, result.Response.Header.Get("Www-Authenticate"))
}

func TestAuthRequestAccumulatesChallenges(t *testing.T) {
	handler := testHandler(t, func(cfg *config.AuthConfig) {
		cfg.AllowBasic = true
		cfg.AllowBearer = true
		cfg.AllowSession = false
	})

	result := apitest.New().
		Handler(handler).
		Get("/auth_request").
		Header("X-Original-URI", originalURI).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	assert.Equal(t,
		[]string{`Basic realm="dumb-auth"`, `Bearer realm="dumb-auth"`},
		result.Response.Header.Values("Www-Authenticate"))
}

func TestAuthRequestAcceptsAnyMethod(t *testing.T) {
	handler := testHandler(t, nil)
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		apitest.New().
			Handler(handler).
			Method(method).
			URL("/auth_request").
			Header("X-Original-URI", originalURI).
			Expect(t).
			Status(http.StatusUnauthorized).
			End()
	}
}

func TestGetLoginServesPage(t *testing.T) {
	result := apitest.New().
		Handler(testHandler(t, nil)).
		Get("/auth/login").
		Expect(t).
		Status(http.StatusOK).
		End()
	assert.Contains(t, result.Response.Header.Get("Content-Type"), "text/html")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	result := apitest.New().
		Handler(testHandler(t, nil)).
		Post("/auth/login").
		JSON(`{"password":"wrong"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	assert.Empty(t, result.Response.Cookies())
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	apitest.New().
		Handler(testHandler(t, nil)).
		Post("/auth/login").
		Body("not json").
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestLoginThenAuthRequest(t *testing.T) {
	handler := testHandler(t, nil)

	result := apitest.New().
		Handler(handler).
		Post("/auth/login").
		JSON(`{"password":"hunter2"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	cookies := result.Response.Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, config.DefaultSessionCookieName, cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(config.DefaultSessionExpiry.Duration.Seconds()), cookie.MaxAge)

	check := apitest.New().
		Handler(handler).
		Get("/auth_request").
		Header("X-Original-URI", originalURI).
		Cookie(cookie.Name, cookie.Value).
		Expect(t).
		Status(http.StatusOK).
		End()
	assert.Empty(t, check.Response.Header.Get("Location"))
}

func TestSessionScopedExpirySetsNoMaxAge(t *testing.T) {
	handler := testHandler(t, func(cfg *config.AuthConfig) {
		cfg.SessionExpiry = config.SessionExpiry{Kind: config.ExpirySession}
	})

	result := apitest.New().
		Handler(handler).
		Post("/auth/login").
		JSON(`{"password":"hunter2"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	cookies := result.Response.Cookies()
	require.Len(t, cookies, 1)
	assert.Zero(t, cookies[0].MaxAge)
}
