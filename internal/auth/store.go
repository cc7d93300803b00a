// internal/auth/store.go
//
// Credential stores.
//
// MemoryStore backs one browser session and is dropped with it.  FileStore
// backs catalogctl: credentials survive between invocations in a 0600 JSON
// file, restored on the next run.

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps one set of credentials.
type Store interface {
	Get() (Credentials, bool)
	Set(Credentials) error
	Clear() error
}

/*──────────────────────────── memory ──────────────────────────────────────*/

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

func (m *MemoryStore) Get() (Credentials, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, m.creds.Valid()
}

func (m *MemoryStore) Set(c Credentials) error {
	m.mu.Lock()
	m.creds = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.creds = Credentials{}
	m.mu.Unlock()
	return nil
}

/*──────────────────────────── file ────────────────────────────────────────*/

// FileStore persists credentials as JSON at Path.
type FileStore struct {
	Path string

	mu sync.Mutex
}

// NewFileStore returns a store at path.
func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (f *FileStore) Get() (Credentials, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return Credentials{}, false
	}
	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credentials{}, false
	}
	return c, c.Valid()
}

func (f *FileStore) Set(c Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("credentials dir: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
