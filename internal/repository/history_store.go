package repository

import (
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
)

// HistoryStore keeps the canonical per-series histories for the dashboard
// session. Updates replace the whole slice reference under the lock, so a
// reader sees either the previous or the new history, never a partial write.
// Histories are not persisted across restarts.
type HistoryStore struct {
	mu         sync.RWMutex
	points     map[string][]models.DataPoint
	categories map[string][]models.CategoryPoint
	merged     map[string]time.Time
	now        func() time.Time
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		points:     make(map[string][]models.DataPoint),
		categories: make(map[string][]models.CategoryPoint),
		merged:     make(map[string]time.Time),
		now:        time.Now,
	}
}

var _ drepo.HistoryStore = (*HistoryStore)(nil)

// Points returns the current canonical history for key. The returned slice
// is the stored reference; callers must treat it as read-only.
func (s *HistoryStore) Points(key string) []models.DataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[key]
}

// Categories returns the current multi-category history for key.
func (s *HistoryStore) Categories(key string) []models.CategoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories[key]
}

// ReplacePoints swaps the canonical history for key.
func (s *HistoryStore) ReplacePoints(key string, pts []models.DataPoint) {
	s.mu.Lock()
	s.points[key] = pts
	s.merged[key] = s.now()
	s.mu.Unlock()
}

// ReplaceCategories swaps the multi-category history for key.
func (s *HistoryStore) ReplaceCategories(key string, pts []models.CategoryPoint) {
	s.mu.Lock()
	s.categories[key] = pts
	s.merged[key] = s.now()
	s.mu.Unlock()
}

// LastMerge returns when key's history was last replaced.
func (s *HistoryStore) LastMerge(key string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.merged[key]
	return t, ok
}
