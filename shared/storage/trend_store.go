// Package storage persists classification results and run history in a
// local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TKay76/the-trend-navigator/internal/models"
)

// Store manages trend persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the trend database and applies migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "trends.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS classified_videos (
            video_id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            category TEXT NOT NULL,
            confidence REAL NOT NULL,
            reasoning TEXT NOT NULL DEFAULT '',
            channel_title TEXT NOT NULL DEFAULT '',
            view_count INTEGER NOT NULL DEFAULT 0,
            published_at TEXT,
            classified_at TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_classified_videos_category ON classified_videos(category)`,
		`CREATE TABLE IF NOT EXISTS runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            submitted INTEGER NOT NULL,
            succeeded INTEGER NOT NULL,
            failed INTEGER NOT NULL,
            batches_total INTEGER NOT NULL,
            batches_failed INTEGER NOT NULL,
            completed_at TEXT NOT NULL
        )`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// SaveClassifications upserts classification results. Re-classifying a video
// replaces the previous row.
func (s *Store) SaveClassifications(ctx context.Context, videos []models.ClassifiedVideo) error {
	if len(videos) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO classified_videos (
            video_id, title, category, confidence, reasoning,
            channel_title, view_count, published_at, classified_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            title=excluded.title, category=excluded.category,
            confidence=excluded.confidence, reasoning=excluded.reasoning,
            channel_title=excluded.channel_title, view_count=excluded.view_count,
            published_at=excluded.published_at, classified_at=excluded.classified_at`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, v := range videos {
		var publishedAt any
		if !v.PublishedAt.IsZero() {
			publishedAt = v.PublishedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, v.VideoID, v.Title, string(v.Category),
			v.Confidence, v.Reasoning, v.ChannelTitle, v.ViewCount, publishedAt, now); err != nil {
			return fmt.Errorf("insert classification %s: %w", v.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit classifications: %w", err)
	}
	return nil
}

// SaveRun appends one run's statistics to the history.
func (s *Store) SaveRun(ctx context.Context, stats models.RunStatistics) error {
	completedAt := stats.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (submitted, succeeded, failed, batches_total, batches_failed, completed_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		stats.Submitted, stats.Succeeded, stats.Failed,
		stats.BatchesTotal, stats.BatchesFailed,
		completedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// IsClassified reports whether a video already has a stored classification.
func (s *Store) IsClassified(ctx context.Context, videoID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM classified_videos WHERE video_id = ?`, videoID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query classification %s: %w", videoID, err)
	}
	return true, nil
}

// FilterUnclassified returns the videos that have no stored classification
// yet, preserving input order.
func (s *Store) FilterUnclassified(ctx context.Context, videos []*models.VideoRecord) ([]*models.VideoRecord, error) {
	var unclassified []*models.VideoRecord
	for _, v := range videos {
		classified, err := s.IsClassified(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		if !classified {
			unclassified = append(unclassified, v)
		}
	}
	return unclassified, nil
}

// ListByCategory returns stored classifications for a category, most viewed
// first. An empty category lists everything.
func (s *Store) ListByCategory(ctx context.Context, category models.Category, limit int) ([]models.ClassifiedVideo, error) {
	query := `SELECT video_id, title, category, confidence, reasoning, channel_title, view_count, published_at
              FROM classified_videos`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY view_count DESC, confidence DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	defer rows.Close()

	var out []models.ClassifiedVideo
	for rows.Next() {
		var v models.ClassifiedVideo
		var category string
		var publishedAt sql.NullString
		if err := rows.Scan(&v.VideoID, &v.Title, &category, &v.Confidence,
			&v.Reasoning, &v.ChannelTitle, &v.ViewCount, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		v.Category = models.Category(category)
		if publishedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, publishedAt.String); err == nil {
				v.PublishedAt = ts
			}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountClassified returns the number of stored classifications.
func (s *Store) CountClassified(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classified_videos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count classifications: %w", err)
	}
	return count, nil
}
