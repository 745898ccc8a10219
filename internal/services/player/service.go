// Package player implements the resource operations of the player service:
// filtered listing, lookup, creation, full replacement and JSON Patch updates.
package player

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage"
)

// Patcher applies an RFC 6902 patch document to a JSON document
type Patcher interface {
	Patch(document, patch []byte) ([]byte, error)
}

// Validator checks a value against its rule set
type Validator interface {
	Validate(v model.Validatable) model.Violations
}

// Serializer converts players to and from their wire form
type Serializer interface {
	Serialize(p *model.Player) ([]byte, error)
	Deserialize(data []byte) (*model.Player, error)
}

// Service coordinates validation, serialization, patching and persistence of players.
// It holds no per-request state.
type Service struct {
	storage    storage.Storage
	patcher    Patcher
	validator  Validator
	serializer Serializer
	logger     *slog.Logger
}

// New creates a new player Service
func New(
	storage storage.Storage,
	patcher Patcher,
	validator Validator,
	serializer Serializer,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:    storage,
		patcher:    patcher,
		validator:  validator,
		serializer: serializer,
		logger:     logger,
	}
}

// List returns the players matching filter, oldest first, together with the
// total number of stored players regardless of the filter
func (s *Service) List(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, int, error) {
	if violations := s.validator.Validate(filter); len(violations) > 0 {
		s.logger.Debug("rejected player filter", "violations", violations.String())
		return nil, 0, &model.FilterValidationError{Violations: violations}
	}

	players, err := s.storage.QueryPlayers(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("query players: %w", err)
	}

	total, err := s.storage.CountPlayers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count players: %w", err)
	}

	return players, total, nil
}

// Count returns the total number of stored players
func (s *Service) Count(ctx context.Context) (int, error) {
	total, err := s.storage.CountPlayers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return total, nil
}

// Get returns the player with the given id
func (s *Service) Get(ctx context.Context, id string) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get player %q: %w", id, err)
	}
	return player, nil
}

// Create decodes, validates and stores a new player
func (s *Service) Create(ctx context.Context, raw []byte) (*model.Player, error) {
	candidate, err := s.serializer.Deserialize(raw)
	if err != nil {
		return nil, err
	}
	if err := s.validate(candidate); err != nil {
		return nil, err
	}

	created, err := s.storage.CreatePlayer(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}

	s.logger.Info("player created", "player_id", created.ID)
	return created, nil
}

// Update replaces every mutable field of original with the decoded payload.
// Fields absent from the payload take their zero value.
func (s *Service) Update(ctx context.Context, original *model.Player, raw []byte) (*model.Player, error) {
	candidate, err := s.serializer.Deserialize(raw)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, original, candidate)
}

// Patch applies an RFC 6902 patch document to original and stores the result.
// original is never modified; nothing is stored unless every step succeeds.
func (s *Service) Patch(ctx context.Context, original *model.Player, patch []byte) (*model.Player, error) {
	document, err := s.serializer.Serialize(original)
	if err != nil {
		return nil, fmt.Errorf("serialize player: %w", err)
	}

	patched, err := s.patcher.Patch(document, patch)
	if err != nil {
		s.logger.Debug("rejected player patch", "player_id", original.ID, "error", err)
		return nil, err
	}

	candidate, err := s.serializer.Deserialize(patched)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, original, candidate)
}

func (s *Service) replace(ctx context.Context, original, candidate *model.Player) (*model.Player, error) {
	if candidate.ID == "" {
		candidate.ID = original.ID
	}

	violations := s.validator.Validate(candidate)
	if candidate.ID != original.ID {
		violations = append(model.Violations{{
			Field:   "id",
			Rule:    model.RuleImmutable,
			Message: "id cannot be changed",
		}}, violations...)
	}
	if len(violations) > 0 {
		s.logger.Debug("rejected player", "player_id", original.ID, "violations", violations.String())
		return nil, &model.EntityValidationError{Violations: violations}
	}

	updated, err := s.storage.UpdatePlayer(ctx, original, candidate)
	if err != nil {
		return nil, fmt.Errorf("update player %q: %w", original.ID, err)
	}

	s.logger.Info("player updated", "player_id", updated.ID)
	return updated, nil
}

func (s *Service) validate(candidate *model.Player) error {
	if violations := s.validator.Validate(candidate); len(violations) > 0 {
		s.logger.Debug("rejected player", "violations", violations.String())
		return &model.EntityValidationError{Violations: violations}
	}
	return nil
}
