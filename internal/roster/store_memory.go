package roster

import (
	"context"
	"sort"
	"strings"
	"sync"

	"davomat/pkg/platform/sentinel"
)

// InMemory keeps roster data in maps, for tests and database-less runs.
type InMemory struct {
	mu       sync.RWMutex
	totals   map[string]int
	students map[string]map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		totals:   make(map[string]int),
		students: make(map[string]map[string]struct{}),
	}
}

func (s *InMemory) TotalStudents(_ context.Context, className string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if total, ok := s.totals[className]; ok {
		return total, nil
	}
	return 0, sentinel.ErrNotFound
}

func (s *InMemory) SetTotalStudents(_ context.Context, className string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[className] = total
	return nil
}

func (s *InMemory) RecordStudent(_ context.Context, className, studentName string) error {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.students[className] == nil {
		s.students[className] = make(map[string]struct{})
	}
	s.students[className][studentName] = struct{}{}
	return nil
}

func (s *InMemory) ListStudents(_ context.Context, className string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.students[className]))
	for name := range s.students[className] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
