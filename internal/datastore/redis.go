package datastore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisCounterKey = "dumbauth:session-id-counter"
	redisSessionKey = "dumbauth:session:"
)

type (
	// Redis keeps sessions in a shared redis instance so multiple
	// replicas behind the same proxy agree on who is logged in. INCR
	// hands out ids, so collisions cannot happen.
	Redis struct {
		client *redis.Client
	}
)

// OpenRedis connects to the instance described by a redis:// URL.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redis url, cause %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis, cause %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) CreateSession(ctx context.Context, data SessionData) (SessionID, error) {
	id, err := r.client.Incr(ctx, redisCounterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("unable to allocate session id, cause %w", err)
	}
	err = r.client.Set(ctx, sessionKey(SessionID(id)), encodeSessionData(data), 0).Err()
	if err != nil {
		return 0, fmt.Errorf("unable to create session, cause %w", err)
	}
	return SessionID(id), nil
}

func (r *Redis) ReadSession(ctx context.Context, id SessionID) (*SessionData, error) {
	buf, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to read session %v, cause %w", id, err)
	}
	data, err := decodeSessionData(buf)
	if err != nil {
		return nil, fmt.Errorf("unable to read session %v, cause %w", id, err)
	}
	return &data, nil
}

func (r *Redis) DeleteSession(ctx context.Context, id SessionID) (bool, error) {
	deleted, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("unable to delete session %v, cause %w", id, err)
	}
	return deleted != 0, nil
}

func (r *Redis) Close() error { return r.client.Close() }

func sessionKey(id SessionID) string {
	return redisSessionKey + strconv.FormatUint(uint64(id), 10)
}
