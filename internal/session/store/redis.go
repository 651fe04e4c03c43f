package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"codgoo/client/internal/security"
	"codgoo/client/internal/session/domain"
)

// Redis is a credential store that writes the durable session fields through
// to Redis under a per-scope key, so multiple processes of a host application
// share one session. Loading and Error stay in memory. Redis failures are
// logged and do not surface to callers; the in-memory state is authoritative
// for the current process.
type Redis struct {
	mem        *Memory
	client     *redis.Client
	key        string
	defaultTTL time.Duration
}

const redisOpTimeout = 3 * time.Second

// NewRedis returns a Redis-backed store keyed by scope (e.g. a host app or
// account identifier) and hydrates the snapshot from any existing entry.
// defaultTTL bounds the key lifetime when the token carries no usable exp
// claim.
func NewRedis(ctx context.Context, client *redis.Client, scope string, defaultTTL time.Duration) (*Redis, error) {
	r := &Redis{
		mem:        NewMemory(),
		client:     client,
		key:        "codgoo:session:" + scope,
		defaultTTL: defaultTTL,
	}
	b, err := client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return r, nil
		}
		return nil, err
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	r.mem.SetSession(p.Token, p.User)
	return r, nil
}

// Get returns the current snapshot.
func (r *Redis) Get() domain.Snapshot { return r.mem.Get() }

// SetLoading sets the in-flight flag (not persisted).
func (r *Redis) SetLoading(v bool) { r.mem.SetLoading(v) }

// SetError replaces the failure message (not persisted).
func (r *Redis) SetError(msg string) { r.mem.SetError(msg) }

// SetUser replaces the user profile and writes through.
func (r *Redis) SetUser(u *domain.User) {
	r.mem.SetUser(u)
	r.save()
}

// SetSession replaces the token and user and writes through.
func (r *Redis) SetSession(token string, u *domain.User) {
	r.mem.SetSession(token, u)
	r.save()
}

// Clear resets the snapshot and deletes the Redis key.
func (r *Redis) Clear() {
	r.mem.Clear()
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		log.Printf("session store: redis del: %v", err)
	}
}

func (r *Redis) save() {
	snap := r.mem.Get()
	b, err := json.Marshal(persisted{Token: snap.Token, User: snap.User})
	if err != nil {
		return
	}
	ttl := r.defaultTTL
	if exp, err := security.ExpiryOf(snap.Token); err == nil {
		if until := time.Until(exp); until > 0 {
			ttl = until
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key, b, ttl).Err(); err != nil {
		log.Printf("session store: redis set: %v", err)
	}
}
