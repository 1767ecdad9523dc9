// Package usagelog records one row per synthesis attempt. The rows back
// the admin usage view; they are bookkeeping, not billing, so writes are
// best-effort.
package usagelog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

type Entry struct {
	UserID     uuid.UUID
	Voice      string
	Provider   string
	Characters int
	LatencyMs  int64
	Success    bool
}

func (s *Service) Log(ctx context.Context, e Entry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO generation_logs (user_id, voice, provider, characters, latency_ms, success)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.UserID, e.Voice, e.Provider, e.Characters, e.LatencyMs, e.Success)
	if err != nil {
		return fmt.Errorf("insert generation log: %w", err)
	}
	return nil
}

type Summary struct {
	Voice       string  `json:"voice"`
	Provider    string  `json:"provider"`
	TotalCalls  int     `json:"total_calls"`
	Succeeded   int     `json:"succeeded"`
	TotalChars  int     `json:"total_characters"`
	AvgLatency  float64 `json:"avg_latency_ms"`
}

func (s *Service) GetSummary(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT voice, provider, COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COALESCE(SUM(characters), 0),
		        COALESCE(AVG(latency_ms), 0)
		 FROM generation_logs
		 GROUP BY voice, provider
		 ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.Voice, &sm.Provider, &sm.TotalCalls, &sm.Succeeded, &sm.TotalChars, &sm.AvgLatency); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}
