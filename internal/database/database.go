package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
	"github.com/scythe504/skribblr/internal/database/migrations"
)

var ErrUnexpectedDatabase = errors.New("unexpected database error")

// Service stores the word list and the standings of finished games.
type Service struct {
	pool *pgxpool.Pool
}

// New migrates the database at url and opens a connection pool to it.
func New(ctx context.Context, url string) (*Service, error) {
	if err := migrations.Migrate(url); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Service{pool: pool}, nil
}

func (s *Service) Close() {
	log.Info().Msg("closing database pool")
	s.pool.Close()
}

// Health reports connectivity and pool statistics.
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		log.Warn().Err(err).Msg("database health check failed")
		return stats
	}

	ps := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(ps.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(ps.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(ps.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(ps.MaxConns()))
	return stats
}

// =============================================================================
// WORDS
// =============================================================================

func (s *Service) Words(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT word FROM words ORDER BY id")
	if err != nil {
		return nil, wrap(err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrap(err)
	}
	return words, nil
}

// SeedWords inserts words that are not stored yet and returns how many
// were added.
func (s *Service) SeedWords(ctx context.Context, words []string) (int64, error) {
	batch := &pgx.Batch{}
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			batch.Queue("INSERT INTO words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING", w)
		}
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, wrap(err)
		}
		inserted += tag.RowsAffected()
	}
	log.Info().Int64("inserted", inserted).Int("offered", batch.Len()).Msg("seeded words")
	return inserted, nil
}

// =============================================================================
// RESULTS
// =============================================================================

type GameRecord struct {
	ID           int64                     `json:"id"`
	RoomID       string                    `json:"room_id"`
	RoundsPlayed int                       `json:"rounds_played"`
	TotalPlayers int                       `json:"total_players"`
	FinishedAt   time.Time                 `json:"finished_at"`
	Leaderboard  []internal.GameResultData `json:"leaderboard"`
}

// RecordGame stores a finished game and its leaderboard in one transaction.
func (s *Service) RecordGame(ctx context.Context, results internal.FinalResults) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var gameID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO games (room_id, rounds_played, total_players, finished_at)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			results.RoomID, results.RoundsPlayed, results.TotalPlayers, results.FinishedAt,
		).Scan(&gameID)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(results.Leaderboard))
		for _, r := range results.Leaderboard {
			rows = append(rows, []any{gameID, r.PlayerID, r.Username, r.Score, r.Position})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"game_results"},
			[]string{"game_id", "player_id", "username", "score", "position"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
	if err != nil {
		return wrap(err)
	}
	log.Debug().Str("room", results.RoomID).Int("players", len(results.Leaderboard)).Msg("recorded game")
	return nil
}

// RecentResults returns the latest finished games, newest first.
func (s *Service) RecentResults(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		return []GameRecord{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, room_id, rounds_played, total_players, finished_at
		 FROM games ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, wrap(err)
	}
	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (GameRecord, error) {
		var g GameRecord
		err := row.Scan(&g.ID, &g.RoomID, &g.RoundsPlayed, &g.TotalPlayers, &g.FinishedAt)
		return g, err
	})
	if err != nil {
		return nil, wrap(err)
	}
	if len(games) == 0 {
		return []GameRecord{}, nil
	}

	ids := make([]int64, len(games))
	index := make(map[int64]int, len(games))
	for i, g := range games {
		ids[i] = g.ID
		index[g.ID] = i
		games[i].Leaderboard = []internal.GameResultData{}
	}

	rows, err = s.pool.Query(ctx,
		`SELECT game_id, player_id, username, score, position
		 FROM game_results WHERE game_id = ANY($1) ORDER BY game_id, position`, ids)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			gameID int64
			r      internal.GameResultData
		)
		if err := rows.Scan(&gameID, &r.PlayerID, &r.Username, &r.Score, &r.Position); err != nil {
			return nil, wrap(err)
		}
		i := index[gameID]
		games[i].Leaderboard = append(games[i].Leaderboard, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return games, nil
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
}
