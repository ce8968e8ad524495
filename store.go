package mindful

import "sync"

// Store is the pluggable storage backend for session-scoped state
// (mood ledger entries, conversation history).
//
// Data is organized by namespace (typically "mood:{session_id}" or
// "session:{session_id}") and key. Lists preserve append order.
type Store interface {
	// KV operations
	Get(namespace, key string) (string, error)
	Set(namespace, key, value string) error
	Delete(namespace, key string) error

	// List operations (ordered, append-only unless trimmed/cleared)
	Append(namespace, key, value string) error
	GetList(namespace, key string, limit, offset int) ([]string, error)
	// TrimList keeps only the newest maxSize entries. A maxSize of zero
	// or less empties the list.
	TrimList(namespace, key string, maxSize int) error
	ClearList(namespace, key string) error
	ListLength(namespace, key string) (int, error)
}

// MemoryStore is a thread-safe in-memory Store. Data is lost on restart,
// which matches the process-lifetime ownership of the mood ledger.
type MemoryStore struct {
	mu    sync.RWMutex
	kv    map[string]map[string]string
	lists map[string]map[string][]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kv:    make(map[string]map[string]string),
		lists: make(map[string]map[string][]string),
	}
}

func (s *MemoryStore) Get(namespace, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ns, ok := s.kv[namespace]; ok {
		if v, ok := ns[key]; ok {
			return v, nil
		}
	}
	return "", nil
}

func (s *MemoryStore) Set(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv[namespace] == nil {
		s.kv[namespace] = make(map[string]string)
	}
	s.kv[namespace][key] = value
	return nil
}

func (s *MemoryStore) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.kv[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

func (s *MemoryStore) Append(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lists[namespace] == nil {
		s.lists[namespace] = make(map[string][]string)
	}
	s.lists[namespace][key] = append(s.lists[namespace][key], value)
	return nil
}

func (s *MemoryStore) GetList(namespace, key string, limit, offset int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []string
	if ns, ok := s.lists[namespace]; ok {
		items = ns[key]
	}
	if items == nil {
		return []string{}, nil
	}
	if offset >= len(items) {
		return []string{}, nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) TrimList(namespace, key string, maxSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.lists[namespace]
	if !ok {
		return nil
	}
	if maxSize <= 0 {
		delete(ns, key)
		return nil
	}
	items := ns[key]
	if len(items) > maxSize {
		// Keep the newest maxSize entries.
		trimmed := make([]string, maxSize)
		copy(trimmed, items[len(items)-maxSize:])
		ns[key] = trimmed
	}
	return nil
}

func (s *MemoryStore) ClearList(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.lists[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

func (s *MemoryStore) ListLength(namespace, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ns, ok := s.lists[namespace]; ok {
		return len(ns[key]), nil
	}
	return 0, nil
}
