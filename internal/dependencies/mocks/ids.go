package mocks

import (
	"fmt"

	"github.com/mcoot/playersvc/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	// Results is a queue of identifiers to return from NewID
	Results []string
	index   int
	issued  int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued identifier, or a sequential "id-N" once the queue is drained
func (m *MockIDs) NewID() string {
	m.issued++
	if m.index >= len(m.Results) {
		return fmt.Sprintf("id-%d", m.issued)
	}
	result := m.Results[m.index]
	m.index++
	return result
}

// Queue adds identifiers to the result queue
func (m *MockIDs) Queue(values ...string) {
	m.Results = append(m.Results, values...)
}

// Reset clears all queued results
func (m *MockIDs) Reset() {
	m.Results = nil
	m.index = 0
	m.issued = 0
}
