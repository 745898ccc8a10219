// Package postgres provides a PostgreSQL-backed player storage implementation.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/mcoot/playersvc/internal/dependencies/clock"
	"github.com/mcoot/playersvc/internal/dependencies/ids"
	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage"
)

const (
	playerColumns = "id, name, position, nationality, age, rating, created_at"
	// Byte-wise id ordering regardless of the database collation
	playerOrder = " ORDER BY created_at, id COLLATE \"C\""

	uniqueViolation = pq.ErrorCode("23505")
)

// Storage persists players in a single Postgres table
type Storage struct {
	db    *sql.DB
	ids   ids.Generator
	clock clock.Clock
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the database at dsn and applies embedded migrations
func Open(ctx context.Context, dsn string, gen ids.Generator, clk clock.Clock) (*Storage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db, ids: gen, clock: clk}, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) QueryPlayers(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, error) {
	where, args := whereClause(filter)
	query := "SELECT " + playerColumns + " FROM players" + where + playerOrder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	players := make([]*model.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

func (s *Storage) CountPlayers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&count); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE id = $1 LIMIT 2", id)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*model.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, model.ErrPlayerNotFound
	case 1:
		return found[0], nil
	default:
		return nil, model.ErrAmbiguousResult
	}
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	record := storage.Prepare(player, s.ids, s.clock)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO players ("+playerColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		record.ID,
		record.Name,
		string(record.Position),
		record.Nationality,
		record.Age,
		record.Rating,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, model.ErrPlayerExists
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return record, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, old, updated *model.Player) (*model.Player, error) {
	current, err := s.GetPlayer(ctx, old.ID)
	if err != nil {
		return nil, err
	}
	record := storage.Replacement(current, updated)

	res, err := s.db.ExecContext(ctx,
		`UPDATE players
		    SET name = $1, position = $2, nationality = $3, age = $4, rating = $5
		  WHERE id = $6`,
		record.Name,
		string(record.Position),
		record.Nationality,
		record.Age,
		record.Rating,
		record.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}
	if affected == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*model.Player, error) {
	var (
		player   model.Player
		position string
	)
	err := row.Scan(
		&player.ID,
		&player.Name,
		&position,
		&player.Nationality,
		&player.Age,
		&player.Rating,
		&player.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}
	player.Position = model.Position(position)
	player.CreatedAt = player.CreatedAt.UTC().Truncate(clock.Precision)
	return &player, nil
}

// whereClause translates a filter into a WHERE clause with numbered placeholders
func whereClause(filter model.PlayerFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if filter.Name != "" {
		add("strpos(lower(name), lower($%d)) > 0", filter.Name)
	}
	if filter.Position != "" {
		add("position = $%d", string(filter.Position))
	}
	if filter.Nationality != "" {
		add("upper(nationality) = upper($%d)", filter.Nationality)
	}
	bound := func(format string, v *int) {
		if v != nil {
			add(format, *v)
		}
	}
	bound("age >= $%d", filter.MinAge)
	bound("age <= $%d", filter.MaxAge)
	bound("rating >= $%d", filter.MinRating)
	bound("rating <= $%d", filter.MaxRating)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
