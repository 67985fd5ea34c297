package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// File keeps every key in one JSON document on disk. Values are stored as
// base64 so arbitrary bytes round-trip. A sidecar lock file
// serialises writers across processes; rewrites go through a temp file and
// rename so a crash never leaves a torn document.
type File struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}
	return &File{path: path, lock: flock.New(path + ".lock")}, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := f.withLock(ctx, func(doc map[string][]byte) (bool, error) {
		v, ok := doc[key]
		if !ok {
			return false, ErrNotFound
		}
		out = append([]byte(nil), v...)
		return false, nil
	})
	return out, err
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	return f.withLock(ctx, func(doc map[string][]byte) (bool, error) {
		doc[key] = append([]byte(nil), value...)
		return true, nil
	})
}

func (f *File) Delete(ctx context.Context, key string) error {
	return f.withLock(ctx, func(doc map[string][]byte) (bool, error) {
		if _, ok := doc[key]; !ok {
			return false, nil
		}
		delete(doc, key)
		return true, nil
	})
}

func (f *File) withLock(ctx context.Context, fn func(doc map[string][]byte) (dirty bool, err error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock kv file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock kv file: %s is busy", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	doc, err := f.read()
	if err != nil {
		return err
	}
	dirty, err := fn(doc)
	if err != nil || !dirty {
		return err
	}
	return f.write(doc)
}

func (f *File) read() (map[string][]byte, error) {
	doc := make(map[string][]byte)
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kv file: %w", err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse kv file: %w", err)
	}
	if doc == nil {
		doc = make(map[string][]byte)
	}
	return doc, nil
}

func (f *File) write(doc map[string][]byte) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write kv file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
