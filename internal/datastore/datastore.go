// Package datastore persists session records behind a uniform contract.
//
// Four interchangeable backends exist: a process-local map, an embedded
// transactional bolt file, a sqlite table and a redis instance. Callers
// pick one at startup via Open and never look behind the interface again.
package datastore

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"
)

type (
	// SessionID identifies a stored session. Backends that own an id
	// counter never issue the same id twice for the lifetime of a store.
	SessionID uint64

	// SessionData is the persisted record backing one session. The
	// secret never leaves the datastore except inside the session token
	// handed to the client that created it.
	SessionData struct {
		Secret  [SecretLen]byte
		Created time.Time
	}

	// Datastore is the storage contract shared by every backend. All
	// three operations are safe for concurrent use. CreateSession
	// allocates an id and persists the record as one atomic unit; it
	// never returns an id without the data being durable, nor the
	// reverse.
	Datastore interface {
		CreateSession(ctx context.Context, data SessionData) (SessionID, error)
		// ReadSession returns (nil, nil) when no record exists.
		ReadSession(ctx context.Context, id SessionID) (*SessionData, error)
		// DeleteSession reports whether a record existed.
		DeleteSession(ctx context.Context, id SessionID) (bool, error)
		Close() error
	}
)

// SecretLen is the size of a session secret in bytes.
const SecretLen = 32

func (id SessionID) key() []byte {
	// Big-endian so key order matches id order for range scans.
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

// encodeSessionData serializes a record as secret || created-unix-seconds,
// the on-disk value format of the bolt and redis backends.
func encodeSessionData(data SessionData) []byte {
	buf := make([]byte, SecretLen+8)
	copy(buf, data.Secret[:])
	binary.BigEndian.PutUint64(buf[SecretLen:], uint64(data.Created.Unix()))
	return buf
}

func decodeSessionData(buf []byte) (SessionData, error) {
	if len(buf) != SecretLen+8 {
		return SessionData{}, fmt.Errorf("session record has %v bytes, want %v", len(buf), SecretLen+8)
	}
	var data SessionData
	copy(data.Secret[:], buf[:SecretLen])
	data.Created = time.Unix(int64(binary.BigEndian.Uint64(buf[SecretLen:])), 0)
	return data, nil
}
