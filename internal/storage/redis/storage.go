package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/playersvc/internal/dependencies/clock"
	"github.com/mcoot/playersvc/internal/dependencies/ids"
	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each player is a JSON string key; a sorted set indexes ids by creation time.
type Storage struct {
	client *redis.Client
	cfg    Config
	ids    ids.Generator
	clock  clock.Clock
}

// New creates a new Redis storage instance
func New(cfg Config, gen ids.Generator, clk clock.Clock) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg, gen, clk), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, gen ids.Generator, clk clock.Clock) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		ids:    gen,
		clock:  clk,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) QueryPlayers(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, error) {
	playerIDs, err := s.client.ZRange(ctx, s.playerIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(playerIDs))
	if len(playerIDs) == 0 {
		return players, nil
	}

	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = s.playerKey(id)
	}

	// Fetch all records in one round trip
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, val := range values {
		if val == nil {
			continue // index entry without a record
		}
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T for %s", val, keys[i])
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if filter.Matches(&player) {
			players = append(players, &player)
		}
	}

	return players, nil
}

func (s *Storage) CountPlayers(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.playerIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	record := storage.Prepare(player, s.ids, s.clock)
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	key := s.playerKey(record.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrPlayerExists
		}

		// Record and index entry are written together in one MULTI/EXEC
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, s.playerIndexKey(), redis.Z{
				Score:  float64(record.CreatedAt.UnixMilli()),
				Member: record.ID,
			})
			return nil
		})
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			// EXEC does not roll back commands that ran before a failing one
			if delErr := s.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
				return errors.Join(err, fmt.Errorf("remove partial player %q: %w", record.ID, delErr))
			}
		}
		return err
	}, key)

	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, model.ErrPlayerExists), errors.Is(err, redis.TxFailedErr):
		// TxFailedErr: another client wrote the watched key first
		return nil, model.ErrPlayerExists
	default:
		return nil, err
	}
}

func (s *Storage) UpdatePlayer(ctx context.Context, old, updated *model.Player) (*model.Player, error) {
	current, err := s.GetPlayer(ctx, old.ID)
	if err != nil {
		return nil, err
	}

	record := storage.Replacement(current, updated)
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	// XX: only overwrite an existing record
	err = s.client.SetArgs(ctx, s.playerKey(record.ID), data, redis.SetArgs{Mode: "XX"}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return record, nil
}
