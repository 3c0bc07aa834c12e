// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/guessr/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for game history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			public_id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			min_value INTEGER NOT NULL,
			max_value INTEGER NOT NULL,
			max_attempts INTEGER NOT NULL,
			source TEXT NOT NULL,
			total_guesses INTEGER NOT NULL,
			numbers_guessed INTEGER NOT NULL,
			secrets_generated INTEGER NOT NULL,
			forfeits INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			game_id INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			secret INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			PRIMARY KEY (game_id, ordinal)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_outcome ON rounds(outcome);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertGame stores a finished game and its rounds. An empty PublicID is
// replaced with a fresh UUID. Times are stored in UTC so they sort as text.
func (s *Store) InsertGame(ctx context.Context, game model.GameRecord, rounds []model.RoundRecord) (int64, error) {
	if game.PublicID == "" {
		game.PublicID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (public_id, started_at, ended_at, min_value, max_value, max_attempts, source, total_guesses, numbers_guessed, secrets_generated, forfeits)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.PublicID,
		game.StartedAt.UTC().Format(time.RFC3339Nano),
		game.EndedAt.UTC().Format(time.RFC3339Nano),
		game.Min,
		game.Max,
		game.MaxAttempts,
		game.Source,
		game.TotalGuesses,
		game.NumbersGuessed,
		game.SecretsGenerated,
		game.Forfeits,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rounds) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO rounds (game_id, ordinal, secret, attempts, outcome)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range rounds {
			if _, err = stmt.ExecContext(ctx, id, r.Ordinal, r.Secret, r.Attempts, string(r.Outcome)); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListGames returns stored games filtered by stats config, oldest first.
func (s *Store) ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, public_id, ended_at, min_value, max_value, max_attempts, source,
		total_guesses, numbers_guessed, secrets_generated, forfeits
		FROM games
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameAggregate
	for rows.Next() {
		var agg model.GameAggregate
		var endedAt string
		if err := rows.Scan(&agg.GameID, &agg.PublicID, &endedAt, &agg.Min, &agg.Max, &agg.MaxAttempts, &agg.Source,
			&agg.TotalGuesses, &agg.NumbersGuessed, &agg.SecretsGenerated, &agg.Forfeits); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		games = append(games, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(games) > cfg.Last {
		games = games[len(games)-cfg.Last:]
	}
	return games, nil
}

// ListRounds returns the rounds of the given games keyed by game id.
func (s *Store) ListRounds(ctx context.Context, gameIDs []int64) (map[int64][]model.RoundRecord, error) {
	if len(gameIDs) == 0 {
		return map[int64][]model.RoundRecord{}, nil
	}
	placeholders, args := idArgs(gameIDs)
	query := fmt.Sprintf(`SELECT game_id, ordinal, secret, attempts, outcome
		FROM rounds
		WHERE game_id IN (%s)
		ORDER BY game_id, ordinal`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64][]model.RoundRecord{}
	for rows.Next() {
		var gameID int64
		var r model.RoundRecord
		var outcome string
		if err := rows.Scan(&gameID, &r.Ordinal, &r.Secret, &r.Attempts, &outcome); err != nil {
			return nil, err
		}
		r.Outcome = model.RoundOutcome(outcome)
		result[gameID] = append(result[gameID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AttemptHistogram counts guessed rounds by the attempts they took.
func (s *Store) AttemptHistogram(ctx context.Context, gameIDs []int64) ([]model.AttemptBucket, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	placeholders, args := idArgs(gameIDs)
	args = append(args, string(model.RoundGuessed))
	query := fmt.Sprintf(`SELECT attempts, COUNT(*) AS rounds
		FROM rounds
		WHERE game_id IN (%s) AND outcome = ?
		GROUP BY attempts
		ORDER BY attempts`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var buckets []model.AttemptBucket
	for rows.Next() {
		var b model.AttemptBucket
		if err := rows.Scan(&b.Attempts, &b.Rounds); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

func idArgs(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}
