package datastore

import (
	"context"
	"fmt"
	"sync"
)

// ReadMode and WriteMode pick which goroutine runs a bolt transaction.
// Sync runs on the caller. Async dispatches each call to a fresh goroutine
// so a slow disk never parks the calling request for longer than needed.
// WriteThread funnels every write through one dedicated goroutine via a
// bounded channel, matching the engine's one-writer-at-a-time rule.
type (
	ReadMode  int
	WriteMode int
)

const (
	ReadSync ReadMode = iota
	ReadAsync
)

const (
	WriteSync WriteMode = iota
	WriteAsync
	WriteThread
)

func ParseReadMode(s string) (ReadMode, error) {
	switch s {
	case "sync":
		return ReadSync, nil
	case "async":
		return ReadAsync, nil
	}
	return 0, fmt.Errorf("unknown read mode %q, want sync or async", s)
}

func ParseWriteMode(s string) (WriteMode, error) {
	switch s {
	case "sync":
		return WriteSync, nil
	case "async":
		return WriteAsync, nil
	case "thread":
		return WriteThread, nil
	}
	return 0, fmt.Errorf("unknown write mode %q, want sync, async or thread", s)
}

func (m ReadMode) String() string {
	if m == ReadAsync {
		return "async"
	}
	return "sync"
}

func (m WriteMode) String() string {
	switch m {
	case WriteAsync:
		return "async"
	case WriteThread:
		return "thread"
	}
	return "sync"
}

type (
	reader struct {
		schema *boltSchema
		mode   ReadMode
	}

	writer struct {
		schema *boltSchema
		mode   WriteMode

		ops      chan func()
		stopOnce sync.Once
	}
)

func newReader(schema *boltSchema, mode ReadMode) *reader {
	return &reader{schema: schema, mode: mode}
}

func (r *reader) readSession(ctx context.Context, id SessionID) (*SessionData, error) {
	if r.mode == ReadSync {
		return r.schema.readSession(id)
	}
	return await(ctx, func() (*SessionData, error) {
		return r.schema.readSession(id)
	})
}

func newWriter(schema *boltSchema, mode WriteMode) *writer {
	w := &writer{schema: schema, mode: mode}
	if mode == WriteThread {
		w.ops = make(chan func(), 1)
		go w.loop()
	}
	return w
}

func (w *writer) loop() {
	for op := range w.ops {
		op()
	}
}

func (w *writer) stop() {
	w.stopOnce.Do(func() {
		if w.ops != nil {
			close(w.ops)
		}
	})
}

func (w *writer) createSession(ctx context.Context, data SessionData) (SessionID, error) {
	switch w.mode {
	case WriteSync:
		return w.schema.createSession(data)
	case WriteAsync:
		return await(ctx, func() (SessionID, error) {
			return w.schema.createSession(data)
		})
	default:
		return dispatch(ctx, w.ops, func() (SessionID, error) {
			return w.schema.createSession(data)
		})
	}
}

func (w *writer) deleteSession(ctx context.Context, id SessionID) (bool, error) {
	switch w.mode {
	case WriteSync:
		return w.schema.deleteSession(id)
	case WriteAsync:
		return await(ctx, func() (bool, error) {
			return w.schema.deleteSession(id)
		})
	default:
		return dispatch(ctx, w.ops, func() (bool, error) {
			return w.schema.deleteSession(id)
		})
	}
}

type result[T any] struct {
	value T
	err   error
}

// await runs f on its own goroutine and waits for the outcome. When the
// context dies first the operation is abandoned, not interrupted; writes
// are transactional so an abandoned commit still completes or not at all.
func await[T any](ctx context.Context, f func() (T, error)) (T, error) {
	out := make(chan result[T], 1)
	go func() {
		v, err := f()
		out <- result[T]{value: v, err: err}
	}()
	select {
	case r := <-out:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// dispatch hands f to the dedicated writer goroutine and waits for the
// reply on a per-call channel.
func dispatch[T any](ctx context.Context, ops chan<- func(), f func() (T, error)) (T, error) {
	out := make(chan result[T], 1)
	op := func() {
		v, err := f()
		out <- result[T]{value: v, err: err}
	}
	select {
	case ops <- op:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	select {
	case r := <-out:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
