// Package memory implements an in-memory blob store for tests and ephemeral
// worlds.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"balloons/internal/blob/core"
)

// Store holds blobs as serialized JSON keyed by (type, name). Serializing on
// write keeps read results independent of caller mutations, matching the
// durable backends.
type Store struct {
	mu    sync.RWMutex
	blobs map[core.Key][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{blobs: make(map[core.Key][]byte)}
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) Exists(ctx context.Context, key core.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func (s *Store) ListNames(ctx context.Context, typeName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for k := range s.blobs {
		if k.Type == typeName {
			names = append(names, k.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ListTypes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for k := range s.blobs {
		seen[k.Type] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

func (s *Store) Read(ctx context.Context, key core.Key) (map[string]any, error) {
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNoBlob, key)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return fields, nil
}

func (s *Store) Write(ctx context.Context, key core.Key, fields map[string]any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[key] = b
	s.mu.Unlock()
	return nil
}
