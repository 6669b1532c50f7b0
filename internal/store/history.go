package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// InsertHistory stores rec. A missing ID or timestamp is assigned here.
func (db *DB) InsertHistory(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error) {
	if rec.UserID == "" {
		return models.HistoryRecord{}, fmt.Errorf("store: insert history: %w: user id is required", apperr.ErrInvalidInput)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO conversion_history (id, user_id, category, from_value, from_unit, to_value, to_unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.Category, rec.FromValue, rec.FromUnit, rec.ToValue, rec.ToUnit, rec.Timestamp)
	if err != nil {
		if isUniqueViolation(err) {
			return models.HistoryRecord{}, fmt.Errorf("store: insert history: %w", apperr.ErrAlreadyExists)
		}
		return models.HistoryRecord{}, fmt.Errorf("store: insert history: %w", err)
	}
	return rec, nil
}

// ListHistory returns the user's records, newest first.
func (db *DB) ListHistory(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, category, from_value, from_unit, to_value, to_unit, created_at
		FROM conversion_history
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetHistory returns one record owned by userID.
func (db *DB) GetHistory(ctx context.Context, userID, id string) (*models.HistoryRecord, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, category, from_value, from_unit, to_value, to_unit, created_at
		FROM conversion_history
		WHERE user_id = ? AND id = ?
	`, userID, id)
	rec, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get history: %w", err)
	}
	return &rec, nil
}

// DeleteHistory removes a record owned by userID. Records of other users are
// reported as not found.
func (db *DB) DeleteHistory(ctx context.Context, userID, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM conversion_history WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("store: delete history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete history: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(s scanner) (models.HistoryRecord, error) {
	var rec models.HistoryRecord
	err := s.Scan(&rec.ID, &rec.UserID, &rec.Category, &rec.FromValue, &rec.FromUnit, &rec.ToValue, &rec.ToUnit, &rec.Timestamp)
	return rec, err
}
