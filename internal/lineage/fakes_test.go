package lineage

import (
	"context"
	"errors"
	"sync"

	"DeviceLineage/internal/domain"
)

var errNoDocument = errors.New("no document")

// stubDocuments serves canned page text per identifier.
type stubDocuments struct {
	mu    sync.Mutex
	pages map[string][]string
	calls map[string]int
}

func newStubDocuments(pages map[string][]string) *stubDocuments {
	return &stubDocuments{pages: pages, calls: map[string]int{}}
}

func (s *stubDocuments) FetchText(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	s.calls[id]++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, ok := s.pages[id]
	if !ok {
		return nil, errNoDocument
	}
	return pages, nil
}

func (s *stubDocuments) callCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// predicateDocuments renders a one-page summary citing each predicate.
func predicateDocuments(predicates map[string]string) *stubDocuments {
	pages := make(map[string][]string, len(predicates))
	for id, pred := range predicates {
		pages[id] = []string{"510(k) Summary for " + id + "\nPredicate device: " + pred}
	}
	return newStubDocuments(pages)
}

// stubResolver answers from a fixed predicate table.
type stubResolver struct {
	mu         sync.Mutex
	predicates map[string]string
	calls      []string
}

func (s *stubResolver) Resolve(_ context.Context, id string) domain.Resolution {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()

	if !domain.CanHavePredicate(id) {
		return domain.Resolution{ID: id, Outcome: domain.OutcomeNotResolvable}
	}
	pred, ok := s.predicates[id]
	if !ok {
		return domain.Resolution{ID: id, Outcome: domain.OutcomeNoCandidate}
	}
	return domain.Resolution{ID: id, Predicate: pred, Outcome: domain.OutcomeResolved}
}

type stubLister struct {
	ids []string
	err error
}

func (s stubLister) ListSubmissions(_ context.Context, _ string, limit int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.ids) > limit {
		return s.ids[:limit], nil
	}
	return s.ids, nil
}

type stubMetadata struct {
	records   []domain.Submission
	lookup    map[string][]domain.Submission
	fetchErr  error
	lookupErr error
}

func (s stubMetadata) FetchMetadata(_ context.Context, _ string, _ int) ([]domain.Submission, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.records, nil
}

func (s stubMetadata) LookupSubmission(_ context.Context, id string) ([]domain.Submission, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.lookup[id], nil
}
