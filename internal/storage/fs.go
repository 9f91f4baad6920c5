package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore keeps records on the local filesystem. Used for offline
// grading runs and tests; the layout mirrors the remote store.
type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return errors.New("empty key")
	}
	dst := filepath.Join(s.base, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// List walks prefix depth-first with directory entries in name order,
// matching how the remote store returns listings.
func (s *FSStore) List(_ context.Context, prefix string) ([]string, error) {
	root := filepath.Join(s.base, filepath.Clean(prefix))
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	var out []string
	if err := s.walk(root, prefix, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FSStore) walk(dir, rel string, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		p := rel + "/" + e.Name()
		if e.IsDir() {
			if err := s.walk(filepath.Join(dir, e.Name()), p, out); err != nil {
				return err
			}
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") {
			*out = append(*out, p)
		}
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.base, filepath.Clean(key)))
}
