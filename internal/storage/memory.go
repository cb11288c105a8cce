package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps attachments in memory for tests.
type MemoryStore struct {
	mu      sync.Mutex
	seq     int
	objects map[string][]byte

	// FailPut makes every Put fail, to exercise abort paths.
	FailPut bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (s *MemoryStore) Put(_ context.Context, folder string, f File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut {
		return "", fmt.Errorf("put: storage unavailable")
	}
	var buf bytes.Buffer
	if f.Body != nil {
		if _, err := io.Copy(&buf, f.Body); err != nil {
			return "", err
		}
	}
	s.seq++
	key := objectKey(folder, fmt.Sprintf("obj%d", s.seq), f.Name)
	s.objects[key] = buf.Bytes()
	return key, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
