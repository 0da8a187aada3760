package datastore

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// On-disk layout: a meta bucket holding the marker, the format version and
// the session-id counter, plus a sessions bucket mapping big-endian ids to
// encoded records. The marker spells "dumbauth" in ASCII.
const (
	boltMetaBucket     = "meta"
	boltSessionsBucket = "sessions"

	boltMarkerKey  = "dumbauth-datastore"
	boltMarker     = uint64(0x64756d6261757468)
	boltVersionKey = "version"
	boltVersion    = uint64(1)
	boltCounterKey = "session-id-counter"

	boltMmapSize = 4 * 1024 * 1024
)

type (
	// Bolt stores sessions in a single memory-mapped bbolt file. The
	// engine allows exactly one write transaction at a time and gives
	// readers a consistent snapshot, so id allocation and record insert
	// share one transaction and readers never observe half a create.
	Bolt struct {
		db     *bolt.DB
		reader *reader
		writer *writer
	}

	// boltSchema runs the raw transactions. The reader and writer
	// components decide on which goroutine they run.
	boltSchema struct {
		db *bolt.DB
	}
)

// OpenBolt opens or creates a datastore file. A fresh file is initialized
// inside a single write transaction; an existing one is verified before
// any other use and fails fast on marker or version mismatch.
func OpenBolt(path string, readMode ReadMode, writeMode WriteMode) (*Bolt, error) {
	isNew, err := isNewFile(path)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout:         time.Second,
		InitialMmapSize: boltMmapSize,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open datastore %v, cause %w", path, err)
	}

	schema := &boltSchema{db: db}
	if isNew {
		err = schema.init()
	} else {
		err = schema.check()
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{
		db:     db,
		reader: newReader(schema, readMode),
		writer: newWriter(schema, writeMode),
	}, nil
}

func isNewFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to stat datastore %v, cause %w", path, err)
	}
	return fi.Size() == 0, nil
}

func (b *Bolt) CreateSession(ctx context.Context, data SessionData) (SessionID, error) {
	return b.writer.createSession(ctx, data)
}

func (b *Bolt) ReadSession(ctx context.Context, id SessionID) (*SessionData, error) {
	return b.reader.readSession(ctx, id)
}

func (b *Bolt) DeleteSession(ctx context.Context, id SessionID) (bool, error) {
	return b.writer.deleteSession(ctx, id)
}

func (b *Bolt) Close() error {
	b.writer.stop()
	return b.db.Close()
}

func (s *boltSchema) init() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucket([]byte(boltMetaBucket))
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucket([]byte(boltSessionsBucket)); err != nil {
			return err
		}
		if err := meta.Put([]byte(boltMarkerKey), u64le(boltMarker)); err != nil {
			return err
		}
		if err := meta.Put([]byte(boltVersionKey), u64le(boltVersion)); err != nil {
			return err
		}
		return meta.Put([]byte(boltCounterKey), u64le(1))
	})
	if err != nil {
		return fmt.Errorf("unable to initialize datastore, cause %w", err)
	}
	return nil
}

func (s *boltSchema) check() error {
	return s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(boltMetaBucket))
		if meta == nil {
			return ErrUnrecognizedFormat
		}
		marker := meta.Get([]byte(boltMarkerKey))
		if marker == nil || leU64(marker) != boltMarker {
			return ErrUnrecognizedFormat
		}
		version := meta.Get([]byte(boltVersionKey))
		if version == nil {
			return ErrCorrupt
		}
		if v := leU64(version); v != boltVersion {
			return UnknownVersionError{Version: v}
		}
		if meta.Get([]byte(boltCounterKey)) == nil {
			return ErrCorrupt
		}
		if tx.Bucket([]byte(boltSessionsBucket)) == nil {
			return ErrCorrupt
		}
		return nil
	})
}

func (s *boltSchema) createSession(data SessionData) (SessionID, error) {
	var id SessionID
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(boltMetaBucket))
		counter := meta.Get([]byte(boltCounterKey))
		if counter == nil {
			return ErrCorrupt
		}
		id = SessionID(leU64(counter))
		if err := meta.Put([]byte(boltCounterKey), u64le(uint64(id)+1)); err != nil {
			return err
		}
		return tx.Bucket([]byte(boltSessionsBucket)).Put(id.key(), encodeSessionData(data))
	})
	if err != nil {
		return 0, fmt.Errorf("unable to create session, cause %w", err)
	}
	return id, nil
}

func (s *boltSchema) readSession(id SessionID) (*SessionData, error) {
	var data *SessionData
	err := s.db.View(func(tx *bolt.Tx) error {
		// Values are only valid inside the transaction, decode here.
		buf := tx.Bucket([]byte(boltSessionsBucket)).Get(id.key())
		if buf == nil {
			return nil
		}
		decoded, err := decodeSessionData(buf)
		if err != nil {
			return err
		}
		data = &decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read session %v, cause %w", id, err)
	}
	return data, nil
}

func (s *boltSchema) deleteSession(id SessionID) (bool, error) {
	var existed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		sessions := tx.Bucket([]byte(boltSessionsBucket))
		existed = sessions.Get(id.key()) != nil
		return sessions.Delete(id.key())
	})
	if err != nil {
		return false, fmt.Errorf("unable to delete session %v, cause %w", id, err)
	}
	return existed, nil
}

func u64le(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}

func leU64(buf []byte) uint64 {
	if len(buf) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(buf)
}
