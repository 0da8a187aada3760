package datastore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type (
	// Sqlite stores sessions in a single relational table. Ids are drawn
	// at random instead of from a counter; the insert silently ignores a
	// primary-key collision and the caller retries with a new session.
	Sqlite struct {
		db *sql.DB
	}
)

// OpenSqlite opens (and if needed creates) the sessions table at path.
func OpenSqlite(ctx context.Context, path string) (*Sqlite, error) {
	connstr := fmt.Sprintf("file:%v?_journal=wal&mode=rwc", path)
	db, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open datastore %v, cause %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping datastore %v, cause %w", path, err)
	}
	_, err = db.ExecContext(ctx, `create table if not exists sessions(
		id integer primary key,
		secret blob not null,
		created integer not null)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create sessions table, cause %w", err)
	}
	return &Sqlite{db: db}, nil
}

func (s *Sqlite) CreateSession(ctx context.Context, data SessionData) (SessionID, error) {
	id, err := randomID()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`insert or ignore into sessions (id, secret, created) values (?, ?, ?)`,
		int64(id), data.Secret[:], data.Created.Unix())
	if err != nil {
		return 0, fmt.Errorf("unable to create session, cause %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unable to create session, cause %w", err)
	}
	if affected == 0 {
		return 0, ErrAlreadyExists
	}
	return id, nil
}

func (s *Sqlite) ReadSession(ctx context.Context, id SessionID) (*SessionData, error) {
	var data SessionData
	var secret []byte
	var created int64
	err := s.db.QueryRowContext(ctx,
		`select secret, created from sessions where id = ?`, int64(id)).
		Scan(&secret, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to read session %v, cause %w", id, err)
	}
	if len(secret) != SecretLen {
		return nil, fmt.Errorf("session %v has a %v byte secret, want %v", id, len(secret), SecretLen)
	}
	copy(data.Secret[:], secret)
	data.Created = time.Unix(created, 0)
	return &data, nil
}

func (s *Sqlite) DeleteSession(ctx context.Context, id SessionID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `delete from sessions where id = ?`, int64(id))
	if err != nil {
		return false, fmt.Errorf("unable to delete session %v, cause %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unable to delete session %v, cause %w", id, err)
	}
	return affected != 0, nil
}

func (s *Sqlite) Close() error { return s.db.Close() }

func randomID() (SessionID, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("unable to generate session id, cause %w", err)
	}
	return SessionID(binary.BigEndian.Uint64(buf[:])), nil
}
