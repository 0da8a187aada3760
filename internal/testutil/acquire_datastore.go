// Package testutil hands tests short-lived datastores with automatic
// cleanup, one helper per backend.
package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"

	"github.com/andrebq/dumbauth/internal/datastore"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireBolt opens a fresh embedded datastore in a temp dir.
func AcquireBolt(t TestLog, readMode datastore.ReadMode, writeMode datastore.WriteMode) (*datastore.Bolt, func()) {
	dir, err := os.MkdirTemp("", "dumbauth-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := datastore.OpenBolt(filepath.Join(dir, "sessions.db"), readMode, writeMode)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			t.Log("unable to close datastore", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireSqlite opens a fresh relational datastore in a temp dir.
func AcquireSqlite(ctx context.Context, t TestLog) (*datastore.Sqlite, func()) {
	dir, err := os.MkdirTemp("", "dumbauth-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := datastore.OpenSqlite(ctx, filepath.Join(dir, "sessions.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			t.Log("unable to close datastore", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireRedis connects a redis datastore to an in-process miniredis.
func AcquireRedis(ctx context.Context, t TestLog) (*datastore.Redis, func()) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	store, err := datastore.OpenRedis(ctx, "redis://"+srv.Addr())
	if err != nil {
		srv.Close()
		t.Fatal(err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			t.Log("unable to close datastore", err)
		}
		srv.Close()
	}
}
