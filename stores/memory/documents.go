package memory

import (
	"context"
	"mindmap-share/core"
	"sync"
)

type recordStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewRecordStore() core.RecordStore {
	return &recordStore{records: make(map[string][]byte)}
}

func (s *recordStore) Init(ctx context.Context) error {
	return nil
}

func (s *recordStore) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.records[id]; ok {
		return append([]byte(nil), val...), nil
	}
	return nil, core.ErrNotFound
}

func (s *recordStore) Insert(ctx context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return core.ErrTokenConflict
	}
	s.records[id] = append([]byte(nil), data...)
	return nil
}

func (s *recordStore) Close() error {
	return nil
}
