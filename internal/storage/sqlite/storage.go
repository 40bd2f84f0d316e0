// Package sqlite implements the storage interface on a relational
// schema: one user row per REGISTER, one find row per FIND, and an
// attempts-increment plus conditional solved-timestamp per SOLVE. The
// two SOLVE statements run inside a single transaction so a crash can
// never leave an incremented attempt count without its timestamp.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username   TEXT PRIMARY KEY,
	password   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS puzzles (
	id       TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer   TEXT NOT NULL,
	hint     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS finds (
	player      TEXT NOT NULL,
	cache       TEXT NOT NULL,
	time_found  INTEGER NOT NULL,
	time_solved INTEGER,
	attempts    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (player, cache)
);
`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open opens the database at path and applies the schema. WAL mode and
// a busy timeout keep single-writer access well-behaved.
func Open(path string) (*Storage, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (username, password, created_at) VALUES (?, ?, ?)`,
		user.Username, user.Password, user.CreatedAt.UnixNano(),
	)
	return err
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&user.Username, &user.Password, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return &user, nil
}

// Puzzle operations

func (s *Storage) SavePuzzle(ctx context.Context, code model.CacheCode, puzzle *model.Puzzle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO puzzles (id, question, answer, hint) VALUES (?, ?, ?, ?)`,
		string(code), puzzle.Question, puzzle.Answer, puzzle.Hint,
	)
	return err
}

func (s *Storage) GetPuzzle(ctx context.Context, code model.CacheCode) (*model.Puzzle, error) {
	var puzzle model.Puzzle
	err := s.db.QueryRowContext(ctx,
		`SELECT question, answer, hint FROM puzzles WHERE id = ?`,
		string(code),
	).Scan(&puzzle.Question, &puzzle.Answer, &puzzle.Hint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCacheNotFound
	}
	if err != nil {
		return nil, err
	}
	return &puzzle, nil
}

func (s *Storage) PuzzleCodes(ctx context.Context) ([]model.CacheCode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM puzzles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var codes []model.CacheCode
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, model.CacheCode(code))
	}
	return codes, rows.Err()
}

// Find record operations

func (s *Storage) CreateFind(ctx context.Context, rec *model.FindRecord) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO finds (player, cache, time_found, time_solved, attempts) VALUES (?, ?, ?, NULL, ?)`,
		rec.Player, string(rec.Cache), rec.TimeFound.UnixNano(), rec.Attempts,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrFindExists
	}
	return nil
}

func (s *Storage) GetFind(ctx context.Context, player string, cache model.CacheCode) (*model.FindRecord, error) {
	return scanFind(s.db.QueryRowContext(ctx,
		`SELECT player, cache, time_found, time_solved, attempts FROM finds WHERE player = ? AND cache = ?`,
		player, string(cache),
	))
}

func (s *Storage) RecordAttempt(ctx context.Context, player string, cache model.CacheCode, solvedAt *time.Time) (*model.FindRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE finds SET attempts = attempts + 1 WHERE player = ? AND cache = ?`,
		player, string(cache),
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrFindNotFound
	}

	if solvedAt != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE finds SET time_solved = ? WHERE player = ? AND cache = ?`,
			solvedAt.UnixNano(), player, string(cache),
		); err != nil {
			return nil, err
		}
	}

	rec, err := scanFind(tx.QueryRowContext(ctx,
		`SELECT player, cache, time_found, time_solved, attempts FROM finds WHERE player = ? AND cache = ?`,
		player, string(cache),
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Storage) FindsForPlayer(ctx context.Context, player string) (map[model.CacheCode]*model.FindRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, cache, time_found, time_solved, attempts FROM finds WHERE player = ?`,
		player,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[model.CacheCode]*model.FindRecord)
	for rows.Next() {
		rec, err := scanFind(rows)
		if err != nil {
			return nil, err
		}
		out[rec.Cache] = rec
	}
	return out, rows.Err()
}

func (s *Storage) FindsForCache(ctx context.Context, cache model.CacheCode) (map[string]*model.FindRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, cache, time_found, time_solved, attempts FROM finds WHERE cache = ?`,
		string(cache),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]*model.FindRecord)
	for rows.Next() {
		rec, err := scanFind(rows)
		if err != nil {
			return nil, err
		}
		out[rec.Player] = rec
	}
	return out, rows.Err()
}

func (s *Storage) Players(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT player FROM finds ORDER BY player`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var players []string
	for rows.Next() {
		var player string
		if err := rows.Scan(&player); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFind(row rowScanner) (*model.FindRecord, error) {
	var rec model.FindRecord
	var cache string
	var foundNanos int64
	var solvedNanos sql.NullInt64
	err := row.Scan(&rec.Player, &cache, &foundNanos, &solvedNanos, &rec.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrFindNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Cache = model.CacheCode(cache)
	rec.TimeFound = time.Unix(0, foundNanos).UTC()
	if solvedNanos.Valid {
		t := time.Unix(0, solvedNanos.Int64).UTC()
		rec.TimeSolved = &t
	}
	return &rec, nil
}
