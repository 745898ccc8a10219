package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/playersvc/internal/dependencies/clock"
	"github.com/mcoot/playersvc/internal/dependencies/ids"
	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[string]*model.Player

	ids   ids.Generator
	clock clock.Clock
}

// New creates a new in-memory storage instance
func New(gen ids.Generator, clk clock.Clock) *Storage {
	return &Storage{
		players: make(map[string]*model.Player),
		ids:     gen,
		clock:   clk,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) QueryPlayers(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		if filter.Matches(p) {
			result = append(result, p.Clone())
		}
	}
	sortPlayers(result)
	return result, nil
}

func (s *Storage) CountPlayers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players), nil
}

func (s *Storage) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	record := storage.Prepare(player, s.ids, s.clock)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[record.ID]; exists {
		return nil, model.ErrPlayerExists
	}
	s.players[record.ID] = record
	return record.Clone(), nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, old, updated *model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.players[old.ID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	record := storage.Replacement(current, updated)
	s.players[record.ID] = record
	return record.Clone(), nil
}

// sortPlayers orders players by creation time, then id
func sortPlayers(players []*model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
}
