package ids

import "github.com/google/uuid"

// Generator produces identifiers for new records and can be mocked for testing
type Generator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a new random UUID in its canonical string form
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
