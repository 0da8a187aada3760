package datastore

import (
	"context"
	"sync"
)

type (
	// Memory keeps sessions in a guarded map. Nothing survives a
	// restart; this is the default when no datastore path is given.
	Memory struct {
		mu       sync.RWMutex
		nextID   SessionID
		sessions map[SessionID]SessionData
	}
)

// NewMemory returns an empty in-memory datastore.
func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		sessions: make(map[SessionID]SessionData),
	}
}

func (m *Memory) CreateSession(ctx context.Context, data SessionData) (SessionID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.sessions[id] = data
	return id, nil
}

func (m *Memory) ReadSession(ctx context.Context, id SessionID) (*SessionData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

func (m *Memory) DeleteSession(ctx context.Context, id SessionID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok, nil
}

func (m *Memory) Close() error { return nil }
