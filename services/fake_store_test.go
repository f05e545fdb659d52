package services

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/models"
	"context"
	"sort"
	"sync"
	"time"
)

// memoryStore 测试用的内存存储
type memoryStore struct {
	mu        sync.Mutex
	rows      map[string]models.EmotionRecord
	findCalls int
	err       error
}

func newMemoryStore(rows ...models.EmotionRecord) *memoryStore {
	s := &memoryStore{rows: make(map[string]models.EmotionRecord)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memoryStore) sorted(match func(models.EmotionRecord) bool) []models.EmotionRecord {
	var out []models.EmotionRecord
	for _, r := range s.rows {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *memoryStore) Create(_ context.Context, rec models.EmotionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows[rec.ID] = rec
	return nil
}

func (s *memoryStore) CreateBatch(_ context.Context, recs []models.EmotionRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	created := 0
	for _, r := range recs {
		if _, ok := s.rows[r.ID]; ok {
			continue
		}
		s.rows[r.ID] = r
		created++
	}
	return created, nil
}

func (s *memoryStore) FindRange(_ context.Context, ownerID, subjectID string, r analytics.Range) ([]models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.sorted(func(rec models.EmotionRecord) bool {
		return rec.OwnerID == ownerID && rec.SubjectID == subjectID && r.Contains(rec.CreatedAt)
	}), nil
}

func (s *memoryStore) Latest(_ context.Context, ownerID, subjectID string) (*models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.sorted(func(rec models.EmotionRecord) bool {
		return rec.OwnerID == ownerID && rec.SubjectID == subjectID
	})
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[len(rows)-1], nil
}

func (s *memoryStore) RecentByOwner(_ context.Context, ownerID string, limit int) ([]models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.sorted(func(rec models.EmotionRecord) bool { return rec.OwnerID == ownerID })
	// 倒序
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *memoryStore) FindByOwnerSince(_ context.Context, ownerID string, since time.Time) ([]models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(rec models.EmotionRecord) bool {
		return rec.OwnerID == ownerID && rec.LastModified.After(since)
	}), nil
}

func (s *memoryStore) ActiveSubjects(_ context.Context, since time.Time) ([]models.SubjectRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[models.SubjectRef]bool)
	var refs []models.SubjectRef
	for _, r := range s.sorted(func(rec models.EmotionRecord) bool { return !rec.LastModified.Before(since) }) {
		ref := models.SubjectRef{OwnerID: r.OwnerID, SubjectID: r.SubjectID}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (s *memoryStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls
}

func row(id, owner, subject, emotion string, intensity int, at time.Time) models.EmotionRecord {
	return models.EmotionRecord{
		ID:        id,
		OwnerID:   owner,
		SubjectID: subject,
		Emotion:   emotion,
		Emotions:  []string{emotion},
		Intensity: intensity,
		CreatedAt: at,

		// 写入时间等于创建时间
		LastModified: at,
	}
}
