package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"clinic-booking-client/internal/model"
)

// File persists the session as a small JSON document so it survives
// process restarts:
//
//	{"auth_token": "<jwt>", "user_data": "{\"id\":1,...}"}
//
// user_data is itself JSON-encoded, mirroring the browser key-value layout.
type File struct {
	mu    sync.Mutex
	path  string
	token string
	user  *model.User
}

// OpenFile loads the session at path. A missing file is an empty session.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	f.token = entries[KeyToken]
	if data := entries[KeyUser]; data != "" {
		u := &model.User{}
		if err := json.Unmarshal([]byte(data), u); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyUser, err)
		}
		f.user = u
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) SaveToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.token
	f.token = token
	if err := f.flush(); err != nil {
		f.token = prev
		return err
	}
	return nil
}

func (f *File) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *File) RemoveToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.user = nil
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (f *File) SaveUser(u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.user
	f.user = cloneUser(u)
	if err := f.flush(); err != nil {
		f.user = prev
		return err
	}
	return nil
}

func (f *File) User() (*model.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneUser(f.user), f.user != nil
}

// flush writes through a temp file + rename so a crash never leaves a
// half-written session. Caller holds mu.
func (f *File) flush() error {
	entries := map[string]string{}
	if f.token != "" {
		entries[KeyToken] = f.token
	}
	if f.user != nil {
		b, err := json.Marshal(f.user)
		if err != nil {
			return err
		}
		entries[KeyUser] = string(b)
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
