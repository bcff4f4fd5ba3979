package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// SleeperType is the type identifier of the sleeper block.
const SleeperType = "test/sleeper@v1"

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// It records the execution time of each step that uses it, keyed by the
// step's "id" parameter.
type MockSleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	Order          []string
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(completionChan chan<- string, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Register registers the sleeper block.
func (m *MockSleeperModule) Register(r *registry.Static) {
	r.Add(m)
}

// Definition implements manifest.Block. "after" exists only to create
// dependencies between sleeper steps.
func (m *MockSleeperModule) Definition() manifest.Definition {
	return manifest.Definition{
		Type:     SleeperType,
		Category: "test",
		Parameters: []manifest.ParameterDefinition{
			{Name: "id", Accepts: manifest.AcceptsLiteral, Type: cty.String},
			{Name: "after", Accepts: manifest.AcceptsSelector, Kinds: []string{kind.Wildcard}, Container: manifest.ContainerList, Optional: true},
		},
		Outputs: []manifest.OutputDefinition{{Name: "id", Kinds: []string{kind.StringKind}}},
	}
}

// Run implements manifest.Block.
func (m *MockSleeperModule) Run(ctx context.Context, params manifest.Params) (manifest.Outputs, error) {
	id, _ := params["id"].(string)

	startTime := time.Now()
	select {
	case <-time.After(m.sleepDuration):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	endTime := time.Now()

	m.mu.Lock()
	m.ExecutionTimes[id] = &ExecutionRecord{Start: startTime, End: endTime}
	m.Order = append(m.Order, id)
	m.mu.Unlock()

	if m.completionChan != nil {
		m.completionChan <- id
	}
	return manifest.Outputs{"id": id}, nil
}

// Record returns the execution record of the given id.
func (m *MockSleeperModule) Record(id string) (*ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ExecutionTimes[id]
	return r, ok
}
