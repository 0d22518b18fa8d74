package scene

import (
	"bytes"
	"encoding/gob"
	"sort"
	"strings"
	"sync"
)

// Store is a thread-safe key/value map. Namespaced views share the root's
// data and address it as "<namespace>.<key>".
type Store interface {
	Get(key string) (any, bool)
	// Set stores value under key. A nil value deletes the key.
	Set(key string, value any)
	Delete(key string)
	// Keys lists the keys visible in this view, sorted, without the namespace prefix.
	Keys() []string
	Len() int
	// Clear removes every key visible in this view.
	Clear()
	Namespace(ns string) Store
	// MarshalBinary encodes the entries of this view with gob. Values of
	// custom types must be registered with gob.Register.
	MarshalBinary() ([]byte, error)
	// UnmarshalBinary merges encoded entries into this view.
	UnmarshalBinary(data []byte) error
}

const namespaceSep = "."

type mapStore struct {
	mu     sync.RWMutex
	data   map[string]any
	prefix string
	root   *mapStore
}

// NewStore creates an empty root store.
func NewStore() Store {
	s := &mapStore{data: make(map[string]any)}
	s.root = s
	return s
}

func (s *mapStore) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + namespaceSep + key
}

func (s *mapStore) Get(key string) (any, bool) {
	r := s.root
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[s.fullKey(key)]
	return v, ok
}

func (s *mapStore) Set(key string, value any) {
	if value == nil {
		s.Delete(key)
		return
	}
	r := s.root
	r.mu.Lock()
	r.data[s.fullKey(key)] = value
	r.mu.Unlock()
}

func (s *mapStore) Delete(key string) {
	r := s.root
	r.mu.Lock()
	delete(r.data, s.fullKey(key))
	r.mu.Unlock()
}

func (s *mapStore) Namespace(ns string) Store {
	return &mapStore{root: s.root, prefix: s.fullKey(ns)}
}

func (s *mapStore) Keys() []string {
	r := s.root
	r.mu.RLock()
	keys := s.visibleLocked()
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (s *mapStore) Len() int {
	r := s.root
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(s.visibleLocked())
}

func (s *mapStore) Clear() {
	r := s.root
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.prefix == "" {
		r.data = make(map[string]any)
		return
	}
	for _, k := range s.visibleLocked() {
		delete(r.data, s.fullKey(k))
	}
}

// visibleLocked returns the keys of this view, prefix stripped.
func (s *mapStore) visibleLocked() []string {
	keys := make([]string, 0)
	if s.prefix == "" {
		for k := range s.root.data {
			keys = append(keys, k)
		}
		return keys
	}
	pref := s.prefix + namespaceSep
	for k := range s.root.data {
		if strings.HasPrefix(k, pref) {
			keys = append(keys, strings.TrimPrefix(k, pref))
		}
	}
	return keys
}

func (s *mapStore) MarshalBinary() ([]byte, error) {
	r := s.root
	r.mu.RLock()
	entries := make(map[string]any)
	for _, k := range s.visibleLocked() {
		entries[k] = r.data[s.fullKey(k)]
	}
	r.mu.RUnlock()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *mapStore) UnmarshalBinary(data []byte) error {
	entries := make(map[string]any)
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&entries); err != nil {
		return err
	}
	r := s.root
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range entries {
		r.data[s.fullKey(k)] = v
	}
	return nil
}
