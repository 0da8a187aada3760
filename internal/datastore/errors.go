package datastore

import (
	"errors"
	"fmt"
)

type (
	// UnknownVersionError is returned when a datastore file carries the
	// right marker but a format version this build does not support.
	UnknownVersionError struct {
		Version uint64
	}
)

var (
	// ErrAlreadyExists reports an id collision on CreateSession. Only
	// backends that pick ids at random can return it; callers recover
	// by retrying with a fresh session.
	ErrAlreadyExists = errors.New("session already exists")

	// ErrUnrecognizedFormat means the file exists but its marker is
	// absent or wrong, i.e. it is not a dumbauth datastore at all.
	ErrUnrecognizedFormat = errors.New("unrecognized datastore format")

	// ErrCorrupt means the marker checked out but required metadata is
	// missing.
	ErrCorrupt = errors.New("corrupt datastore")
)

func (e UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown datastore version %v", e.Version)
}
