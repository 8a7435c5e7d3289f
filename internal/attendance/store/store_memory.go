package store

import (
	"context"
	"sync"

	"davomat/internal/attendance"
	"davomat/pkg/localdate"
	"davomat/pkg/platform/sentinel"
)

type recordKey struct {
	className string
	date      localdate.Date
}

// InMemory keeps attendance records in a map. It backs unit tests and
// deployments without a database; it intentionally favors clarity over
// performance.
type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]attendance.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[recordKey]attendance.Record)}
}

func (s *InMemory) Upsert(_ context.Context, rec attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.PresentNames = append([]string(nil), rec.PresentNames...)
	s.records[recordKey{rec.ClassName, rec.Date}] = rec
	return nil
}

func (s *InMemory) Find(_ context.Context, className string, date localdate.Date) (attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[recordKey{className, date}]; ok {
		return cloneRecord(rec), nil
	}
	return attendance.Record{}, sentinel.ErrNotFound
}

func (s *InMemory) ListByDate(_ context.Context, date localdate.Date) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Record
	for key, rec := range s.records {
		if key.date == date {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *InMemory) ListByRange(_ context.Context, start, end localdate.Date) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Record
	for key, rec := range s.records {
		if !key.date.Before(start) && !key.date.After(end) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *InMemory) DeleteByDate(_ context.Context, date localdate.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.records {
		if key.date == date {
			delete(s.records, key)
		}
	}
	return nil
}

func cloneRecord(rec attendance.Record) attendance.Record {
	rec.PresentNames = append([]string(nil), rec.PresentNames...)
	return rec
}
