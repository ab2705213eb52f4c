package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Snatch struct {
	ID         int64     `json:"id" db:"id"`
	Provider   string    `json:"provider" db:"provider"`
	Name       string    `json:"name" db:"name"`
	URL        string    `json:"url" db:"url"`
	Kind       string    `json:"kind" db:"kind"`
	Quality    int       `json:"quality" db:"quality"`
	Method     string    `json:"method" db:"method"`
	SnatchedAt time.Time `json:"snatched_at" db:"snatched_at"`
}

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Add(ctx context.Context, s *Snatch) error {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO snatch_history (provider, name, url, kind, quality, method, snatched_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Provider, s.Name, s.URL, s.Kind, s.Quality, s.Method, toUnix(s.SnatchedAt))
	if err != nil {
		return fmt.Errorf("failed to record snatch: %w", err)
	}
	s.ID, _ = res.LastInsertId()
	return nil
}

// Recent returns the latest snatches, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]Snatch, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, provider, name, url, kind, quality, method, snatched_at
        FROM snatch_history ORDER BY snatched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snatch history: %w", err)
	}
	defer rows.Close()

	var snatches []Snatch
	for rows.Next() {
		var s Snatch
		var snatched int64
		if err := rows.Scan(&s.ID, &s.Provider, &s.Name, &s.URL, &s.Kind, &s.Quality, &s.Method, &snatched); err != nil {
			return nil, err
		}
		s.SnatchedAt = fromUnix(snatched)
		snatches = append(snatches, s)
	}
	return snatches, rows.Err()
}
