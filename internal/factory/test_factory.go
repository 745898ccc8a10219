package factory

import (
	"context"
	"time"

	"github.com/mcoot/playersvc/internal/dependencies/mocks"
	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage/memory"
	"github.com/mcoot/playersvc/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	store := memory.New(mockIDs, mockClock)

	app := newWithDependencies(store, mockClock, mockIDs, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

// SeedPlayers stores players directly, one second apart, bypassing validation
func (t *TestApp) SeedPlayers(players ...*model.Player) ([]*model.Player, error) {
	created := make([]*model.Player, 0, len(players))
	for _, p := range players {
		stored, err := t.Storage.CreatePlayer(context.Background(), p)
		if err != nil {
			return nil, err
		}
		created = append(created, stored)
		t.MockClock.Advance(time.Second)
	}
	return created, nil
}
