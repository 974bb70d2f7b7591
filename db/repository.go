package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout is how created_at is stored. It sorts lexically.
const timeLayout = "2006-01-02 15:04:05.000"

// DefaultListLimit is used when ListRecent is given a non-positive limit.
const DefaultListLimit = 20

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("generation record not found")

// GenerationRecord is one row of generation_history.
type GenerationRecord struct {
	ID            int64
	CorrelationID string
	TextPreview   string
	Font          string
	PaperX        float64
	PaperY        float64
	Rate          int
	// ParamsJSON is the wire-format params object that was sent.
	ParamsJSON   string
	PageCount    int
	Status       string
	ErrorCode    string
	ErrorMessage string
	DurationMS   int64
	CreatedAt    time.Time
}

// Repository reads and writes generation_history.
type Repository struct {
	db *Database
}

// NewRepository creates a repository on db.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn() (*sql.DB, error) {
	if r.db == nil || r.db.DB() == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return r.db.DB(), nil
}

// InsertGeneration stores rec and returns its id. A zero CreatedAt is set to
// the current time.
func (r *Repository) InsertGeneration(ctx context.Context, rec GenerationRecord) (int64, error) {
	conn, err := r.conn()
	if err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO generation_history (
			correlation_id, text_preview, font, paper_x, paper_y, rate,
			params_json, page_count, status, error_code, error_message,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := conn.ExecContext(ctx, query,
		rec.CorrelationID,
		rec.TextPreview,
		rec.Font,
		rec.PaperX,
		rec.PaperY,
		rec.Rate,
		rec.ParamsJSON,
		rec.PageCount,
		rec.Status,
		rec.ErrorCode,
		rec.ErrorMessage,
		rec.DurationMS,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

const selectColumns = `
	SELECT id, correlation_id, text_preview, font, paper_x, paper_y, rate,
		params_json, page_count, status, error_code, error_message,
		duration_ms, created_at
	FROM generation_history`

// ListRecent returns up to limit records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := conn.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation history rows: %w", err)
	}
	return records, nil
}

// GetByCorrelationID returns the record of one submission.
func (r *Repository) GetByCorrelationID(ctx context.Context, correlationID string) (GenerationRecord, error) {
	conn, err := r.conn()
	if err != nil {
		return GenerationRecord{}, err
	}
	row := conn.QueryRowContext(ctx, selectColumns+` WHERE correlation_id = ? ORDER BY id DESC LIMIT 1`, correlationID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GenerationRecord{}, ErrNotFound
	}
	return rec, err
}

// CountByStatus returns the number of records per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM generation_history GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count generation history: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (GenerationRecord, error) {
	var rec GenerationRecord
	var createdAt string
	err := s.Scan(
		&rec.ID,
		&rec.CorrelationID,
		&rec.TextPreview,
		&rec.Font,
		&rec.PaperX,
		&rec.PaperY,
		&rec.Rate,
		&rec.ParamsJSON,
		&rec.PageCount,
		&rec.Status,
		&rec.ErrorCode,
		&rec.ErrorMessage,
		&rec.DurationMS,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan generation record: %w", err)
	}
	rec.CreatedAt, err = time.ParseInLocation(timeLayout, createdAt, time.UTC)
	if err != nil {
		return rec, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
