package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/playersvc/internal/jsonpatch"
	"github.com/mcoot/playersvc/internal/model"
	redisstorage "github.com/mcoot/playersvc/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: create, read, replace and patch a player end to end through the service
func (s *IntegrationSuite) TestPlayerLifecycle() {
	svc := s.app.PlayerService
	s.app.MockIDs.Queue("p-1")

	// Step 1: Create
	created, err := svc.Create(s.ctx, []byte(`{"name":"Alice","position":"forward","rating":70}`))
	s.Require().NoError(err)
	s.Equal("p-1", created.ID)
	s.Equal(s.app.MockClock.Now(), created.CreatedAt)

	// Step 2: Read back
	got, err := svc.Get(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(created, got)

	// Step 3: Full replace drops fields absent from the payload
	s.app.MockClock.Advance(time.Minute)
	replaced, err := svc.Update(s.ctx, got, []byte(`{"name":"Alicia","age":21}`))
	s.Require().NoError(err)
	s.Equal(&model.Player{ID: "p-1", Name: "Alicia", Age: 21, CreatedAt: created.CreatedAt}, replaced)

	// Step 4: Patch with a passing test
	patched, err := svc.Patch(s.ctx, replaced, []byte(`[
		{"op":"test","path":"/name","value":"Alicia"},
		{"op":"add","path":"/nationality","value":"PT"},
		{"op":"replace","path":"/rating","value":88}
	]`))
	s.Require().NoError(err)
	s.Equal("PT", patched.Nationality)
	s.Equal(88, patched.Rating)

	// Step 5: A failing test leaves the stored player alone
	_, err = svc.Patch(s.ctx, patched, []byte(`[
		{"op":"replace","path":"/rating","value":10},
		{"op":"test","path":"/name","value":"Alice"}
	]`))
	s.ErrorIs(err, jsonpatch.ErrTestFailed)

	stored, err := svc.Get(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(patched, stored)
}

func (s *IntegrationSuite) TestListFiltersAndCounts() {
	_, err := s.app.SeedPlayers(
		&model.Player{Name: "Alice", Position: model.PositionForward, Rating: 90},
		&model.Player{Name: "Bob", Position: model.PositionDefender, Rating: 60},
		&model.Player{Name: "Carol", Position: model.PositionForward, Rating: 75},
	)
	s.Require().NoError(err)

	minRating := 80
	players, total, err := s.app.PlayerService.List(s.ctx, model.PlayerFilter{
		Position:  model.PositionForward,
		MinRating: &minRating,
	})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(players, 1)
	s.Equal("Alice", players[0].Name)

	players, total, err = s.app.PlayerService.List(s.ctx, model.PlayerFilter{Name: "nobody"})
	s.Require().NoError(err)
	s.Empty(players)
	s.Equal(3, total)
}

func (s *IntegrationSuite) TestCreateRoundTrip() {
	created, err := s.app.PlayerService.Create(s.ctx, []byte(`{"name":"Alice","nationality":"NL","age":30,"rating":82}`))
	s.Require().NoError(err)

	data, err := s.app.Serializer.Serialize(created)
	s.Require().NoError(err)
	decoded, err := s.app.Serializer.Deserialize(data)
	s.Require().NoError(err)
	s.Equal(created, decoded)
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	created, err := app.PlayerService.Create(context.Background(), []byte(`{"name":"Alice"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	if _, err := New(Config{StorageType: "mongo"}); err == nil {
		t.Fatal("expected an error for an unknown storage type")
	}
	if _, err := New(Config{StorageType: StorageTypeRedis}); err == nil {
		t.Fatal("expected an error without redis config")
	}
	if _, err := New(Config{StorageType: StorageTypeSQLite}); err == nil {
		t.Fatal("expected an error without a sqlite path")
	}
	if _, err := New(Config{StorageType: StorageTypePostgres}); err == nil {
		t.Fatal("expected an error without a postgres DSN")
	}
}

func TestNewWithRedis(t *testing.T) {
	mini := miniredis.RunT(t)
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	created, err := app.PlayerService.Create(context.Background(), []byte(`{"name":"Alice"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := app.PlayerService.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("name = %q, want Alice", got.Name)
	}
}

func TestNewWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.db")

	app, err := New(Config{StorageType: StorageTypeSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, err := app.PlayerService.Create(context.Background(), []byte(`{"name":"Alice"}`)); err != nil {
		t.Fatalf("create: %v", err)
	}
	total, err := app.PlayerService.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
}
