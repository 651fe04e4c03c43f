package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codgoo/client/internal/session/domain"
)

// File is a credential store that persists the token and user to a JSON file
// so a session survives process restarts (e.g. between CLI invocations).
// Loading and Error are volatile and kept in memory only.
type File struct {
	mem  *Memory
	path string
}

// persisted is the on-disk shape: only the durable fields.
type persisted struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// NewFile returns a file-backed store at path, loading any previously saved
// session. A missing file yields an empty session; a corrupt file is an error.
func NewFile(path string) (*File, error) {
	f := &File{mem: NewMemory(), path: path}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("session file: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("session file %s: %w", path, err)
	}
	f.mem.SetSession(p.Token, p.User)
	return f, nil
}

// Get returns the current snapshot.
func (f *File) Get() domain.Snapshot { return f.mem.Get() }

// SetLoading sets the in-flight flag (not persisted).
func (f *File) SetLoading(v bool) { f.mem.SetLoading(v) }

// SetError replaces the failure message (not persisted).
func (f *File) SetError(msg string) { f.mem.SetError(msg) }

// SetUser replaces the user profile and rewrites the file.
func (f *File) SetUser(u *domain.User) {
	f.mem.SetUser(u)
	f.save()
}

// SetSession replaces the token and user and rewrites the file.
func (f *File) SetSession(token string, u *domain.User) {
	f.mem.SetSession(token, u)
	f.save()
}

// Clear resets the snapshot and removes the file.
func (f *File) Clear() {
	f.mem.Clear()
	_ = os.Remove(f.path)
}

// save writes the durable fields. Write failures are swallowed: persistence
// is best-effort and the in-memory state is already correct.
func (f *File) save() {
	snap := f.mem.Get()
	b, err := json.Marshal(persisted{Token: snap.Token, User: snap.User})
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(f.path), 0o700)
	_ = os.WriteFile(f.path, b, 0o600)
}
