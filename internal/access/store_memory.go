package access

import (
	"context"
	"sort"
	"sync"

	"davomat/pkg/platform/sentinel"
)

// InMemory keeps authorization state in maps, for tests and database-less
// runs.
type InMemory struct {
	mu         sync.RWMutex
	recipients map[int64]Recipient
	requests   []Request
}

func NewInMemory() *InMemory {
	return &InMemory{recipients: make(map[int64]Recipient)}
}

func (s *InMemory) IsAuthorized(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipients[userID]
	return ok && r.Status == RecipientActive, nil
}

func (s *InMemory) AddRecipient(_ context.Context, r Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients[r.UserID] = r
	return nil
}

func (s *InMemory) ActiveRecipients(_ context.Context) ([]Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Recipient
	for _, r := range s.recipients {
		if r.Status == RecipientActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *InMemory) Deactivate(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[userID]
	if !ok || r.Status != RecipientActive {
		return sentinel.ErrNotFound
	}
	r.Status = RecipientInactive
	s.recipients[userID] = r
	return nil
}

func (s *InMemory) FindPending(_ context.Context, userID int64) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.UserID == userID && r.Status == RequestPending {
			return r, nil
		}
	}
	return Request{}, sentinel.ErrNotFound
}

func (s *InMemory) CreateRequest(_ context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
	return nil
}

func (s *InMemory) ResolvePending(_ context.Context, userID int64, status RequestStatus) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.requests {
		if r.UserID == userID && r.Status == RequestPending {
			s.requests[i].Status = status
			return s.requests[i], nil
		}
	}
	return Request{}, sentinel.ErrNotFound
}

func (s *InMemory) ListPending(_ context.Context) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Request
	for _, r := range s.requests {
		if r.Status == RequestPending {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}
