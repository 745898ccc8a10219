// Package sqlite provides a SQLite-backed player storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/playersvc/internal/dependencies/clock"
	"github.com/mcoot/playersvc/internal/dependencies/ids"
	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage"
)

const playerColumns = "id, name, position, nationality, age, rating, created_at"

// Storage persists players in a single SQLite table
type Storage struct {
	db    *sql.DB
	ids   ids.Generator
	clock clock.Clock
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations
func Open(path string, gen ids.Generator, clk clock.Clock) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serialises writers anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db, ids: gen, clock: clk}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) QueryPlayers(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, error) {
	where, args := whereClause(filter)
	query := "SELECT " + playerColumns + " FROM players" + where + " ORDER BY created_at, id"

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
	// Two rows are enough to tell a unique match from an ambiguous one
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE id = ? LIMIT 2", id)
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
		"INSERT INTO players ("+playerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		record.ID,
		record.Name,
		string(record.Position),
		record.Nationality,
		record.Age,
		record.Rating,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
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
		    SET name = ?, position = ?, nationality = ?, age = ?, rating = ?
		  WHERE id = ?`,
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
		player    model.Player
		position  string
		createdAt int64
	)
	err := row.Scan(
		&player.ID,
		&player.Name,
		&position,
		&player.Nationality,
		&player.Age,
		&player.Rating,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}
	player.Position = model.Position(position)
	player.CreatedAt = fromMillis(createdAt)
	return &player, nil
}

// whereClause translates a filter into a parameterised WHERE clause.
// It returns an empty clause for an empty filter.
func whereClause(filter model.PlayerFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Name != "" {
		conds = append(conds, "instr(lower(name), lower(?)) > 0")
		args = append(args, filter.Name)
	}
	if filter.Position != "" {
		conds = append(conds, "position = ?")
		args = append(args, string(filter.Position))
	}
	if filter.Nationality != "" {
		conds = append(conds, "upper(nationality) = upper(?)")
		args = append(args, filter.Nationality)
	}
	bound := func(cond string, v *int) {
		if v != nil {
			conds = append(conds, cond)
			args = append(args, *v)
		}
	}
	bound("age >= ?", filter.MinAge)
	bound("age <= ?", filter.MaxAge)
	bound("rating >= ?", filter.MinRating)
	bound("rating <= ?", filter.MaxRating)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
