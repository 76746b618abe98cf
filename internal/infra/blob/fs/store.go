// Package fs implements the blob store on a local directory: one directory
// per concrete type, one JSON file per object name.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"balloons/internal/blob/core"
)

// Store implements core.Store on a local directory.
// This is intentionally simple and not concurrent-writer safe beyond
// per-file creation.
type Store struct {
	root string
}

// New returns a filesystem blob store rooted at path, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./balloondata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// Root returns the directory the store operates in.
func (s *Store) Root() string { return s.root }

// sanitizeComponent rejects path components that would escape the root.
func sanitizeComponent(c string) (string, error) {
	if strings.TrimSpace(c) == "" {
		return "", fmt.Errorf("empty key component")
	}
	if strings.Contains(c, "..") || strings.ContainsAny(c, `/\`) {
		return "", fmt.Errorf("invalid key component %q", c)
	}
	return c, nil
}

func (s *Store) pathFor(key core.Key) (string, error) {
	typ, err := sanitizeComponent(key.Type)
	if err != nil {
		return "", err
	}
	name, err := sanitizeComponent(key.Name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, typ, name+".json"), nil
}

func (s *Store) Exists(ctx context.Context, key core.Key) (bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) ListNames(ctx context.Context, typeName string) ([]string, error) {
	typ, err := sanitizeComponent(typeName)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, typ))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ListTypes(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var types []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		types = append(types, e.Name())
	}
	sort.Strings(types)
	return types, nil
}

func (s *Store) Read(ctx context.Context, key core.Key) (map[string]any, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoBlob, key)
	}
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return fields, nil
}

func (s *Store) Write(ctx context.Context, key core.Key, fields map[string]any) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	// stream through a temp file so readers never observe a partial write
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
