package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kbukum/gopocket/encryption"
	pberrors "github.com/kbukum/gopocket/errors"
)

// File persists all entries as one JSON object at Path. When an Encryptor
// is set the document is sealed before it touches disk. Writes go to a
// temporary file that replaces the original, so a crash never leaves a
// half-written document.
type File struct {
	path string
	enc  encryption.Encryptor

	mu     sync.RWMutex
	data   map[string]string
	loaded bool
}

// NewFile creates a file store. enc may be nil for plaintext storage.
// The file is read lazily on first access.
func NewFile(path string, enc encryption.Encryptor) *File {
	return &File{path: path, enc: enc}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Get returns the value stored under key.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	if f.loaded {
		v, ok := f.data[key]
		f.mu.RUnlock()
		return v, ok, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return "", false, err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the file.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return err
	}
	prev, had := f.data[key]
	f.data[key] = value
	if err := f.persistLocked(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the file.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return err
	}
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.persistLocked(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *File) loadLocked() error {
	if f.loaded {
		return nil
	}
	raw, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.data = make(map[string]string)
		f.loaded = true
		return nil
	case err != nil:
		return pberrors.StorageAccess("store.file.read", err)
	}

	if f.enc != nil {
		if raw, err = f.enc.Open(raw); err != nil {
			return pberrors.StorageAccess("store.file.decrypt", err)
		}
	}

	data := make(map[string]string)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return pberrors.Serialization("store.file.decode", err)
		}
	}
	f.data = data
	f.loaded = true
	return nil
}

func (f *File) persistLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return pberrors.Serialization("store.file.encode", err)
	}
	if f.enc != nil {
		if raw, err = f.enc.Seal(raw); err != nil {
			return pberrors.StorageAccess("store.file.encrypt", err)
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return pberrors.StorageAccess("store.file.mkdir", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return pberrors.StorageAccess("store.file.write", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return pberrors.StorageAccess("store.file.write", err)
	}
	if err := tmp.Close(); err != nil {
		return pberrors.StorageAccess("store.file.write", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return pberrors.StorageAccess("store.file.rename", err)
	}
	return nil
}

var _ Storage = (*File)(nil)
