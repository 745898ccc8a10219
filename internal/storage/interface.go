package storage

import (
	"context"

	"github.com/mcoot/playersvc/internal/dependencies/clock"
	"github.com/mcoot/playersvc/internal/dependencies/ids"
	"github.com/mcoot/playersvc/internal/model"
)

// Storage defines the interface for player persistence
type Storage interface {
	// QueryPlayers returns the players matching filter, oldest first
	QueryPlayers(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, error)
	// CountPlayers returns the total number of stored players, ignoring any filter
	CountPlayers(ctx context.Context) (int, error)
	// GetPlayer returns model.ErrPlayerNotFound when no player has the id and
	// model.ErrAmbiguousResult when more than one does
	GetPlayer(ctx context.Context, id string) (*model.Player, error)
	// CreatePlayer assigns an id (when empty) and a creation time, then stores the player.
	// Returns model.ErrPlayerExists if the id is taken.
	CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error)
	// UpdatePlayer replaces old with updated. The id and creation time of old are kept.
	UpdatePlayer(ctx context.Context, old, updated *model.Player) (*model.Player, error)
}

// Prepare builds the record that CreatePlayer stores: a copy of player with
// an identifier and creation time filled in
func Prepare(player *model.Player, gen ids.Generator, clk clock.Clock) *model.Player {
	record := player.Clone()
	if record.ID == "" {
		record.ID = gen.NewID()
	}
	record.CreatedAt = clk.Now()
	return record
}

// Replacement builds the record that UpdatePlayer stores: a copy of updated
// that keeps the identity of old
func Replacement(old, updated *model.Player) *model.Player {
	record := updated.Clone()
	record.ID = old.ID
	record.CreatedAt = old.CreatedAt
	return record
}
