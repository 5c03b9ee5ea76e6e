package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
)

// ClickHousePointArchive persists merged canonical points for offline
// analysis. It is a write-only sink: the in-memory histories never read from
// it.
type ClickHousePointArchive struct {
	db    *sql.DB
	table string
}

func NewClickHousePointArchive(db *sql.DB, table string) drepo.Archive {
	return &ClickHousePointArchive{db: db, table: table}
}

func (a *ClickHousePointArchive) Store(ctx context.Context, series string, pts []models.DataPoint) error {
	if len(pts) == 0 {
		return nil
	}

	// Multi-row VALUES insert to keep round-trips down; ReplacingMergeTree
	// on (series, ts) makes re-archiving a merge idempotent.
	const chunkSize = 2000
	for start := 0; start < len(pts); start += chunkSize {
		end := start + chunkSize
		if end > len(pts) {
			end = len(pts)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, p := range pts[start:end] {
			values = append(values, "(?, ?, ?)")
			args = append(args, series, p.Timestamp.UTC(), p.Count)
		}
		q := fmt.Sprintf("INSERT INTO %s (series, ts, count) VALUES %s", a.table, strings.Join(values, ","))
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("archive %s: %w", series, err)
		}
	}
	return nil
}

func (a *ClickHousePointArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHousePointArchive) Close() error {
	return nil // connection pool owned by pkg/clickhouse
}
