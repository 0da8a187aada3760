// Package httpapi exposes the auth decision and the interactive login
// flow over HTTP. The auth_request endpoint is what the reverse proxy
// calls on every request it wants vetted.
package httpapi

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/andrebq/dumbauth/internal/auth"
	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/logutil"
	"github.com/andrebq/dumbauth/internal/password"
	"github.com/andrebq/dumbauth/internal/session"
)

const originalURIHeader = "X-Original-URI"

//go:embed login.html
var loginPage []byte

var anyMethod = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

type (
	handler struct {
		cfg           *config.AppConfig
		authenticator *auth.Authenticator
		checker       *password.Checker
		sessions      *session.Manager
	}

	loginForm struct {
		Password string `json:"password"`
	}
)

// AsHandler wires the auth_request and login routes for the given
// configuration.
func AsHandler(cfg *config.AppConfig, checker *password.Checker, sessions *session.Manager) http.Handler {
	h := &handler{
		cfg:           cfg,
		authenticator: auth.NewAuthenticator(cfg.PublicPath, checker, sessions),
		checker:       checker,
		sessions:      sessions,
	}

	router := httprouter.New()
	for _, method := range anyMethod {
		router.HandlerFunc(method, "/auth_request", h.authRequest)
	}
	router.HandlerFunc(http.MethodGet, cfg.PublicPath+"/login", h.getLogin)
	router.HandlerFunc(http.MethodPost, cfg.PublicPath+"/login", h.postLogin)
	return router
}

func (h *handler) authRequest(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())

	originalURI := r.Header.Get(originalURIHeader)
	if originalURI == "" {
		log.Error().Msgf("Request missing %v header", originalURIHeader)
		http.Error(w, "missing "+originalURIHeader+" header", http.StatusBadRequest)
		return
	}

	result, err := h.authenticator.Authenticate(r.Context(), &h.cfg.Auth, originalURI, r.Header)
	if err != nil {
		log.Error().Err(err).Msg("Unable to authenticate request")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	for key, values := range result.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	if result.Valid {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func (h *handler) getLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(loginPage)
}

func (h *handler) postLogin(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())

	var form loginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "malformed login request", http.StatusBadRequest)
		return
	}

	if !h.checker.Check(form.Password, h.cfg.Auth.Password) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, err := h.sessions.Create(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Unable to create session")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, h.sessionCookie(token))
	w.WriteHeader(http.StatusOK)
}

func (h *handler) sessionCookie(token string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cfg.Auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cfg.Auth.SessionCookieDomain,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   true,
	}
	if h.cfg.Auth.SessionExpiry.Kind == config.ExpiryDuration {
		cookie.MaxAge = int(h.cfg.Auth.SessionExpiry.Duration.Seconds())
	}
	return cookie
}
