package datastore

import (
	"context"
	"strings"
)

type (
	// Options carries the backend tuning knobs that only apply to some
	// backends; zero values mean the defaults.
	Options struct {
		ReadMode  ReadMode
		WriteMode WriteMode
	}
)

// Open picks a backend from the datastore spec: empty keeps sessions in
// memory, redis:// connects to redis, sqlite:// opens a relational table
// and anything else is treated as the path of an embedded bolt file.
func Open(ctx context.Context, spec string, opts Options) (Datastore, error) {
	switch {
	case spec == "":
		return NewMemory(), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		return OpenRedis(ctx, spec)
	case strings.HasPrefix(spec, "sqlite://"):
		return OpenSqlite(ctx, strings.TrimPrefix(spec, "sqlite://"))
	default:
		return OpenBolt(spec, opts.ReadMode, opts.WriteMode)
	}
}
