package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
)

// Service archives finished games. Live sessions never touch it.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	SaveGameResult(ctx context.Context, result internal.GameResult) error
	RecentGames(ctx context.Context, limit int) ([]internal.GameResult, error)

	// Close terminates the database connection.
	Close() error
}

type service struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	id          UUID PRIMARY KEY,
	room_id     TEXT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	rounds      INT NOT NULL,
	scores      JSONB NOT NULL,
	history     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS game_results_finished_at_idx ON game_results (finished_at DESC);
`

// New connects to connString and makes sure the schema exists.
func New(ctx context.Context, connString string) (Service, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &service{pool: pool}, nil
}

func (s *service) SaveGameResult(ctx context.Context, result internal.GameResult) error {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	history, err := json.Marshal(result.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO game_results (id, room_id, finished_at, rounds, scores, history)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), result.RoomID, result.FinishedAt, result.Rounds, scores, history,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game result for room %s: %w", result.RoomID, err)
	}

	zap.S().Debugf("[SaveGameResult] room=%s archived %d rounds", result.RoomID, result.Rounds)
	return nil
}

// RecentGames returns the latest archived games, newest first.
func (s *service) RecentGames(ctx context.Context, limit int) ([]internal.GameResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT room_id, finished_at, rounds, scores, history
		   FROM game_results
		  ORDER BY finished_at DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game results: %w", err)
	}
	defer rows.Close()

	results := make([]internal.GameResult, 0, limit)
	for rows.Next() {
		var (
			r       internal.GameResult
			scores  []byte
			history []byte
		)
		if err := rows.Scan(&r.RoomID, &r.FinishedAt, &r.Rounds, &scores, &history); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		if err := json.Unmarshal(scores, &r.Scores); err != nil {
			return nil, fmt.Errorf("failed to decode scores: %w", err)
		}
		if err := json.Unmarshal(history, &r.History); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		zap.S().Warnf("[Health] database ping failed: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	poolStats := s.pool.Stat()
	stats["total_connections"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_connections"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_connections"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_connections"] = strconv.Itoa(int(poolStats.MaxConns()))

	if poolStats.AcquiredConns() >= poolStats.MaxConns() {
		stats["message"] = "The database is experiencing heavy load."
	}

	return stats
}

func (s *service) Close() error {
	s.pool.Close()
	return nil
}

type noop struct{}

// NewNoop returns a Service that archives nothing, used when no database is
// configured.
func NewNoop() Service {
	return noop{}
}

func (noop) Health() map[string]string {
	return map[string]string{"status": "disabled"}
}

func (noop) SaveGameResult(context.Context, internal.GameResult) error { return nil }

func (noop) RecentGames(context.Context, int) ([]internal.GameResult, error) {
	return []internal.GameResult{}, nil
}

func (noop) Close() error { return nil }
