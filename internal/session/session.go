// Package session issues and validates the opaque tokens backing
// interactive logins. A token is the only proof of a session: it carries
// the record id plus a 256-bit secret that must match the stored record
// byte for byte.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/andrebq/dumbauth/internal/config"
	"github.com/andrebq/dumbauth/internal/datastore"
)

// createAttempts bounds the retry loop for backends that pick session ids
// at random and may report a collision.
const createAttempts = 8

type (
	// Manager owns the expiry policy and delegates persistence to a
	// Datastore.
	Manager struct {
		expiry config.SessionExpiry
		store  datastore.Datastore
	}
)

func NewManager(expiry config.SessionExpiry, store datastore.Datastore) *Manager {
	return &Manager{expiry: expiry, store: store}
}

// Create generates a fresh session and returns its encoded token.
func (m *Manager) Create(ctx context.Context) (string, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		data := datastore.SessionData{Created: time.Now()}
		if _, err := rand.Read(data.Secret[:]); err != nil {
			return "", fmt.Errorf("unable to generate session secret, cause %w", err)
		}
		id, err := m.store.CreateSession(ctx, data)
		if errors.Is(err, datastore.ErrAlreadyExists) {
			continue
		} else if err != nil {
			return "", err
		}
		return encodeToken(id, data.Secret), nil
	}
	return "", fmt.Errorf("unable to create session after %v attempts", createAttempts)
}

// Check reports whether token identifies a live session. Malformed tokens
// are invalid, not errors; only datastore failures surface as errors. A
// session past its fixed expiry is deleted on this read.
func (m *Manager) Check(ctx context.Context, token string) (bool, error) {
	id, secret, ok := decodeToken(token)
	if !ok {
		return false, nil
	}
	data, err := m.store.ReadSession(ctx, id)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if subtle.ConstantTimeCompare(secret[:], data.Secret[:]) != 1 {
		return false, nil
	}
	if m.expiry.Kind == config.ExpiryDuration && time.Since(data.Created) >= m.expiry.Duration {
		if _, err := m.store.DeleteSession(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
