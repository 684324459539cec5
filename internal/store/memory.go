package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface backed
// by a map and an RWMutex. Suitable for development, testing, or
// single-instance deployments.
type MemoryStore struct {
	mu          sync.RWMutex
	experiments map[string]Experiment // key -> Experiment
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		experiments: make(map[string]Experiment),
	}
}

// GetAllExperiments retrieves all experiments for the given environment.
func (m *MemoryStore) GetAllExperiments(ctx context.Context, env string) ([]Experiment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Experiment, 0, len(m.experiments))
	for _, exp := range m.experiments {
		if exp.Env == env {
			result = append(result, exp)
		}
	}
	return result, nil
}

// GetExperimentByKey retrieves a single experiment by its key.
func (m *MemoryStore) GetExperimentByKey(ctx context.Context, key string) (*Experiment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, exists := m.experiments[key]
	if !exists {
		return nil, ErrNotFound
	}
	return &exp, nil
}

// UpsertExperiment creates or updates an experiment in memory.
func (m *MemoryStore) UpsertExperiment(ctx context.Context, params UpsertParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.experiments[params.Key] = Experiment{
		Key:         params.Key,
		Description: params.Description,
		Owner:       params.Owner,
		Enabled:     params.Enabled,
		Variants:    params.Variants,
		NumBuckets:  params.NumBuckets,
		BucketBy:    params.BucketBy,
		Expression:  params.Expression,
		Overrides:   params.Overrides,
		StartsAt:    params.StartsAt,
		EndsAt:      params.EndsAt,
		Env:         params.Env,
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

// DeleteExperiment removes an experiment from memory.
func (m *MemoryStore) DeleteExperiment(ctx context.Context, key, env string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exp, exists := m.experiments[key]; exists && exp.Env == env {
		delete(m.experiments, key)
	}
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
