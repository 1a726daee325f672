package client

import (
	"fmt"
	"sync"

	"github.com/braunma/topology-builder/pkg/utils"
)

// Store maps (kind, key) to object IDs for the duration of one build. Every
// created object is recorded under its store key so later steps can resolve
// references (a device's rack, a connection's peer interface) without
// re-querying the platform.
type Store struct {
	mu      sync.RWMutex
	objects map[string]map[string]string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		objects: make(map[string]map[string]string),
	}
}

// Set records an object ID under a kind and key
func (s *Store) Set(kind, key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects[kind] == nil {
		s.objects[kind] = make(map[string]string)
	}
	s.objects[kind][key] = id
}

// Get retrieves an object ID by kind and key
func (s *Store) Get(kind, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.objects[kind] == nil {
		return "", false
	}
	id, ok := s.objects[kind][key]
	return id, ok
}

// MustGet retrieves an object ID or returns an error naming the missing key
func (s *Store) MustGet(kind, key string) (string, error) {
	id, ok := s.Get(kind, key)
	if !ok {
		return "", fmt.Errorf("%s %q not found in store", kind, key)
	}
	return id, nil
}

// Size returns the number of stored objects for a kind
func (s *Store) Size(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects[kind])
}

// Load populates the store from a list of platform objects, indexing each by
// its name field.
func (s *Store) Load(kind string, objects []Object) {
	for _, obj := range objects {
		id := utils.GetIDFromObject(obj)
		if id == "" {
			continue
		}
		if name, ok := obj["name"].(string); ok {
			s.Set(kind, name, id)
		}
	}
}
