package history

import (
	"context"
	"fmt"
	"time"
)

// StatusCount is the number of items with a given status.
type StatusCount struct {
	Status string
	Count  int
}

// CategoryCount is the number of items assigned to a category.
type CategoryCount struct {
	Category string
	Count    int
}

// RunInfo summarizes one recorded run.
type RunInfo struct {
	ID        int64
	StartedAt time.Time
	Engine    string
	Model     string
	Template  string
	Items     int
}

// Stats aggregates the history database for reporting.
type Stats struct {
	Items        int
	ByStatus     []StatusCount
	ByCategory   []CategoryCount
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	RecentRuns   []RunInfo
}

// Stats reads the aggregate counters used by the stats command.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(SUM(total_tokens), 0)
		FROM items`)
	if err := row.Scan(&stats.Items, &stats.InputTokens, &stats.OutputTokens, &stats.TotalTokens); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM items GROUP BY status ORDER BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus = append(stats.ByStatus, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM items
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.engine, r.model, r.template, COUNT(i.id)
		FROM runs r LEFT JOIN items i ON i.run_id = r.id
		GROUP BY r.id ORDER BY r.id DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ri      RunInfo
			started string
		)
		if err := rows.Scan(&ri.ID, &started, &ri.Engine, &ri.Model, &ri.Template, &ri.Items); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ri.StartedAt, _ = time.Parse(time.RFC3339, started)
		stats.RecentRuns = append(stats.RecentRuns, ri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return stats, nil
}
