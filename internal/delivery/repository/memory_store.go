package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"media_delivery_service/internal/delivery/domain"
	errprocess "media_delivery_service/pkg/err"
)

// MemoryStore 沒有設定 postgres 時使用, 也用在測試
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.VideoRecord
}

// NewMemoryStore seeds the store with records
func NewMemoryStore(records ...domain.VideoRecord) *MemoryStore {
	s := &MemoryStore{records: make(map[string]domain.VideoRecord, len(records))}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

// Add insert or replace
func (s *MemoryStore) Add(record domain.VideoRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
}

// Lookup MediaStore 實作
func (s *MemoryStore) Lookup(_ context.Context, id string) (*domain.VideoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, errprocess.Warn(domain.ErrNotFound, fmt.Sprintf("videoID[%s] 找不到影片", id))
	}
	return &r, nil
}

// List 依 ID 排序
func (s *MemoryStore) List() ([]domain.VideoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.VideoRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByTitle 標題完全相符
func (s *MemoryStore) GetByTitle(title string) ([]domain.VideoRecord, error) {
	all, _ := s.List()
	out := make([]domain.VideoRecord, 0)
	for _, r := range all {
		if r.Title == title {
			out = append(out, r)
		}
	}
	return out, nil
}
