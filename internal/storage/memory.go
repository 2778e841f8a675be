package storage

import (
	"context"
	"sync"

	"github.com/briandconnelly/seeds/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.Run
	epochs      map[string][]model.EpochRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.Run)
	s.epochs = make(map[string][]model.EpochRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) AppendEpoch(_ context.Context, record model.EpochRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epochs[record.RunID] = append(s.epochs[record.RunID], copyEpochRecord(record))
	return nil
}

func (s *MemoryStore) GetEpochs(_ context.Context, runID string) ([]model.EpochRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.epochs[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.EpochRecord, 0, len(records))
	for _, record := range records {
		copied = append(copied, copyEpochRecord(record))
	}
	return copied, true, nil
}

func copyEpochRecord(record model.EpochRecord) model.EpochRecord {
	copied := record
	copied.Censuses = make([]model.Census, len(record.Censuses))
	for i, census := range record.Censuses {
		copied.Censuses[i] = census
		copied.Censuses[i].TypeCount = append([]int(nil), census.TypeCount...)
	}
	copied.Transitions = make([]model.Transitions, len(record.Transitions))
	for i, transitions := range record.Transitions {
		copied.Transitions[i] = transitions
		copied.Transitions[i].Counts = append([]int(nil), transitions.Counts...)
	}
	copied.Resources = append([]model.ResourceStats(nil), record.Resources...)
	return copied
}
