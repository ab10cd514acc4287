package testutil

import (
	"context"
	"sync"

	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"github.com/pinecone-io/go-pinecone/pinecone"
	"gonum.org/v1/gonum/mat"
)

// MockPredictionSource is a mock implementation of PredictionSource for testing
type MockPredictionSource struct {
	PredictFunc func(ctx context.Context, model string, split dataset.Split, classes int) (*mat.Dense, error)

	mu        sync.Mutex
	CallCount int
	Models    []string
	LastSplit dataset.Split
}

func (m *MockPredictionSource) Predict(ctx context.Context, model string, split dataset.Split, classes int) (*mat.Dense, error) {
	m.mu.Lock()
	m.CallCount++
	m.Models = append(m.Models, model)
	m.LastSplit = split
	m.mu.Unlock()

	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, model, split, classes)
	}

	// Default: a perfect model
	return OneHotPrediction(split.Labels, classes), nil
}

// OneHotPrediction returns a prediction that puts all mass on the true label
func OneHotPrediction(labels []int, classes int) *mat.Dense {
	m := mat.NewDense(len(labels), classes, nil)
	for i, l := range labels {
		m.Set(i, l, 1)
	}
	return m
}

// MockPredictionIndex is an in-memory stand-in for a Pinecone index namespace
type MockPredictionIndex struct {
	FetchFunc  func(ctx context.Context, ids []string) (map[string]*pinecone.Vector, error)
	UpsertFunc func(ctx context.Context, vectors []*pinecone.Vector) error

	mu          sync.Mutex
	FetchCount  int
	UpsertCount int
	CloseCount  int
	Storage     map[string]*pinecone.Vector
}

func NewMockPredictionIndex() *MockPredictionIndex {
	return &MockPredictionIndex{
		Storage: make(map[string]*pinecone.Vector),
	}
}

func (m *MockPredictionIndex) Fetch(ctx context.Context, ids []string) (map[string]*pinecone.Vector, error) {
	m.mu.Lock()
	m.FetchCount++
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*pinecone.Vector, len(ids))
	for _, id := range ids {
		if v, ok := m.Storage[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *MockPredictionIndex) Upsert(ctx context.Context, vectors []*pinecone.Vector) error {
	m.mu.Lock()
	m.UpsertCount++
	for _, v := range vectors {
		m.Storage[v.Id] = v
	}
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, vectors)
	}

	return nil
}

func (m *MockPredictionIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCount++
	return nil
}
