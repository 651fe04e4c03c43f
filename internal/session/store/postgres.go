package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"codgoo/client/internal/session/domain"
)

// Postgres is a credential store that writes the durable session fields
// through to a Postgres row keyed by scope. Loading and Error stay in
// memory. Like the Redis store, write failures are logged, not surfaced;
// the in-memory state is authoritative for the current process.
type Postgres struct {
	mem   *Memory
	db    *sql.DB
	scope string
}

const pgOpTimeout = 5 * time.Second

// NewPostgres returns a Postgres-backed store keyed by scope, hydrating the
// snapshot from any existing row. The credential_sessions table is created
// by the embedded migrations (cmd/migrate).
func NewPostgres(ctx context.Context, db *sql.DB, scope string) (*Postgres, error) {
	p := &Postgres{mem: NewMemory(), db: db, scope: scope}
	var token string
	var userJSON []byte
	err := db.QueryRowContext(ctx,
		`SELECT token, user_json FROM credential_sessions WHERE scope = $1`, scope,
	).Scan(&token, &userJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, nil
		}
		return nil, err
	}
	var u *domain.User
	if len(userJSON) > 0 {
		u = &domain.User{}
		if err := json.Unmarshal(userJSON, u); err != nil {
			return nil, err
		}
	}
	p.mem.SetSession(token, u)
	return p, nil
}

// Get returns the current snapshot.
func (p *Postgres) Get() domain.Snapshot { return p.mem.Get() }

// SetLoading sets the in-flight flag (not persisted).
func (p *Postgres) SetLoading(v bool) { p.mem.SetLoading(v) }

// SetError replaces the failure message (not persisted).
func (p *Postgres) SetError(msg string) { p.mem.SetError(msg) }

// SetUser replaces the user profile and writes through.
func (p *Postgres) SetUser(u *domain.User) {
	p.mem.SetUser(u)
	p.save()
}

// SetSession replaces the token and user and writes through.
func (p *Postgres) SetSession(token string, u *domain.User) {
	p.mem.SetSession(token, u)
	p.save()
}

// Clear resets the snapshot and deletes the row.
func (p *Postgres) Clear() {
	p.mem.Clear()
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()
	if _, err := p.db.ExecContext(ctx,
		`DELETE FROM credential_sessions WHERE scope = $1`, p.scope,
	); err != nil {
		log.Printf("session store: postgres delete: %v", err)
	}
}

func (p *Postgres) save() {
	snap := p.mem.Get()
	var userJSON []byte
	if snap.User != nil {
		var err error
		userJSON, err = json.Marshal(snap.User)
		if err != nil {
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()
	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO credential_sessions (scope, token, user_json, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (scope) DO UPDATE
		 SET token = EXCLUDED.token, user_json = EXCLUDED.user_json, updated_at = now()`,
		p.scope, snap.Token, userJSON,
	); err != nil {
		log.Printf("session store: postgres upsert: %v", err)
	}
}
