package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const DefaultDataPath = "data/items.json"

// FileStore keeps the collection as a single JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return storageErr("stat", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) ([]Item, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, storageErr("read", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, storageErr("decode", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Save replaces the document by writing a sibling temp file and renaming it
// over the target.
func (s *FileStore) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return storageErr("encode", err)
	}

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return storageErr("write", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return storageErr("rename", err)
	}
	return nil
}
