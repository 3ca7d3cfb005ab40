package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thechosenone98/MP3Journaling/db"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/model"
)

// SessionRepository defines the interface for session catalog operations.
type SessionRepository interface {
	RecordSession(rec *model.SessionRecord) (int64, error)
	SessionByName(name string) (*model.SessionRecord, error)
	RecentSessions(limit int) ([]*model.SessionRecord, error)
}

// sqliteSessionRepository implements SessionRepository on SQLite.
type sqliteSessionRepository struct {
	DB *sql.DB
}

// NewSQLiteSessionRepository creates a new instance of
// sqliteSessionRepository backed by the shared catalog connection.
func NewSQLiteSessionRepository() SessionRepository {
	return &sqliteSessionRepository{DB: db.DB}
}

// RecordSession stores one processed session with its intervals and
// exports. A session with the same name replaces the previous record, so
// reprocessing a directory never duplicates catalog rows.
func (r *sqliteSessionRepository) RecordSession(rec *model.SessionRecord) (int64, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for RecordSession: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE name = ?`, rec.Name); err != nil {
		return 0, fmt.Errorf("failed to clear previous record for session %s: %w", rec.Name, err)
	}

	res, err := tx.Exec(`INSERT INTO sessions (name, source_prefix, segment_count, marker_count, duration, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.SourcePrefix, rec.SegmentCount, rec.MarkerCount, rec.Duration,
		unixSeconds(rec.CreatedAt), unixSeconds(rec.ProcessedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert session %s: %w", rec.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for session %s: %w", rec.Name, err)
	}

	for _, iv := range rec.Intervals {
		if _, err := tx.Exec(`INSERT INTO intervals (session_id, pattern, start_sec, end_sec) VALUES (?, ?, ?, ?)`,
			id, iv.Pattern, iv.StartSec, iv.EndSec); err != nil {
			return 0, fmt.Errorf("failed to insert interval for session %s: %w", rec.Name, err)
		}
	}
	for _, ex := range rec.Exports {
		if _, err := tx.Exec(`INSERT INTO exports (session_id, pattern, sequence, path, start_sec, end_sec) VALUES (?, ?, ?, ?, ?, ?)`,
			id, ex.Pattern, ex.Sequence, ex.Path, ex.StartSec, ex.EndSec); err != nil {
			return 0, fmt.Errorf("failed to insert export for session %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit RecordSession for %s: %w", rec.Name, err)
	}

	logger.Debug("Session cataloged",
		logger.String("session", rec.Name),
		logger.Int64("id", id),
		logger.Int("intervals", len(rec.Intervals)),
		logger.Int("exports", len(rec.Exports)))
	return id, nil
}

// SessionByName retrieves one session with its intervals and exports.
// Returns nil without error when no session has that name.
func (r *sqliteSessionRepository) SessionByName(name string) (*model.SessionRecord, error) {
	row := r.DB.QueryRow(`SELECT id, name, source_prefix, segment_count, marker_count, duration, created_at, processed_at
		FROM sessions WHERE name = ?`, name)

	rec, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan session %s: %w", name, err)
	}

	if err := r.loadChildren(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecentSessions returns the most recently processed sessions, newest
// first.
func (r *sqliteSessionRepository) RecentSessions(limit int) ([]*model.SessionRecord, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := r.DB.Query(`SELECT id, name, source_prefix, segment_count, marker_count, duration, created_at, processed_at
		FROM sessions ORDER BY processed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer rows.Close()

	recs := make([]*model.SessionRecord, 0)
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session in RecentSessions: %w", err)
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in RecentSessions: %w", err)
	}

	for _, rec := range recs {
		if err := r.loadChildren(rec); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// loadChildren fills in the intervals and exports of a session record.
func (r *sqliteSessionRepository) loadChildren(rec *model.SessionRecord) error {
	rows, err := r.DB.Query(`SELECT id, session_id, pattern, start_sec, end_sec
		FROM intervals WHERE session_id = ? ORDER BY start_sec ASC`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to query intervals for session %d: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var iv model.IntervalRecord
		if err := rows.Scan(&iv.ID, &iv.SessionID, &iv.Pattern, &iv.StartSec, &iv.EndSec); err != nil {
			return fmt.Errorf("failed to scan interval for session %d: %w", rec.ID, err)
		}
		rec.Intervals = append(rec.Intervals, iv)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error during interval iteration for session %d: %w", rec.ID, err)
	}

	exRows, err := r.DB.Query(`SELECT id, session_id, pattern, sequence, path, start_sec, end_sec
		FROM exports WHERE session_id = ? ORDER BY start_sec ASC`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to query exports for session %d: %w", rec.ID, err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var ex model.ExportRecord
		if err := exRows.Scan(&ex.ID, &ex.SessionID, &ex.Pattern, &ex.Sequence, &ex.Path, &ex.StartSec, &ex.EndSec); err != nil {
			return fmt.Errorf("failed to scan export for session %d: %w", rec.ID, err)
		}
		rec.Exports = append(rec.Exports, ex)
	}
	if err = exRows.Err(); err != nil {
		return fmt.Errorf("error during export iteration for session %d: %w", rec.ID, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*model.SessionRecord, error) {
	rec := &model.SessionRecord{}
	var createdAt, processedAt float64
	if err := row.Scan(&rec.ID, &rec.Name, &rec.SourcePrefix, &rec.SegmentCount, &rec.MarkerCount,
		&rec.Duration, &createdAt, &processedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = timeFromUnix(createdAt)
	rec.ProcessedAt = timeFromUnix(processedAt)
	return rec, nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
