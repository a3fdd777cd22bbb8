package archive

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryService keeps the newest recentLimit records in process memory.
type MemoryService struct {
	mu          sync.RWMutex
	records     map[string]Record
	recentLimit int
}

func NewMemoryService(recentLimit int) *MemoryService {
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &MemoryService{
		records:     make(map[string]Record),
		recentLimit: recentLimit,
	}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) Record(_ context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.CareerID] = rec
	s.pruneLocked()
	return nil
}

func (s *MemoryService) ListRecent(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.sortedLocked()
	limit = clampLimit(limit, maxListLimit)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryService) Get(_ context.Context, careerID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[strings.TrimSpace(careerID)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// sortedLocked newest first; ties broken by career id for a stable order.
func (s *MemoryService) sortedLocked() []Record {
	items := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		items = append(items, rec)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].CareerID > items[j].CareerID
	})
	return items
}

func (s *MemoryService) pruneLocked() {
	if len(s.records) <= s.recentLimit {
		return
	}
	items := s.sortedLocked()
	for _, rec := range items[s.recentLimit:] {
		delete(s.records, rec.CareerID)
	}
}
