package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nerrad567/homesim/internal/device"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 1000
)

// ErrDeviceRequired is returned when an entry or query has no device name.
var ErrDeviceRequired = errors.New("activity: device name is required")

// SQLiteRepository implements Store on the activity_log and
// sensor_readings tables. Timestamps are stored as Unix milliseconds (UTC).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a state change.
func (r *SQLiteRepository) Record(ctx context.Context, e Entry) error {
	if e.Device == "" {
		return ErrDeviceRequired
	}
	if e.Source == "" {
		e.Source = SourceConsole
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (device_name, device_kind, is_on, source, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Device,
		string(e.Kind),
		boolToInt(e.On),
		e.Source,
		e.At.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries across all devices, newest last.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT id, device_name, device_kind, is_on, source, created_at
		 FROM activity_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		clampLimit(limit),
	)
}

// ForDevice returns up to limit entries for one device, newest last.
func (r *SQLiteRepository) ForDevice(ctx context.Context, name string, limit int) ([]Entry, error) {
	if name == "" {
		return nil, ErrDeviceRequired
	}
	return r.query(ctx,
		`SELECT id, device_name, device_kind, is_on, source, created_at
		 FROM activity_log
		 WHERE device_name = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		name,
		clampLimit(limit),
	)
}

// Prune deletes entries and readings older than the given duration and
// returns how many rows were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}
	cutoff := time.Now().UTC().Add(-olderThan).UnixMilli()

	var total int64
	for _, table := range []string{"activity_log", "sensor_readings"} {
		result, err := r.db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE created_at < ?", // #nosec G202 -- fixed table names
			cutoff,
		)
		if err != nil {
			return total, fmt.Errorf("pruning %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("checking rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// RecordReading inserts a sensor reading.
func (r *SQLiteRepository) RecordReading(ctx context.Context, value int, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sensor_readings (value, created_at) VALUES (?, ?)",
		value,
		at.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting sensor reading: %w", err)
	}
	return nil
}

// Readings returns up to limit sensor readings, newest last.
func (r *SQLiteRepository) Readings(ctx context.Context, limit int) ([]Reading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, value, created_at
		 FROM sensor_readings
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying sensor readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var rd Reading
		var createdAt int64
		if err := rows.Scan(&rd.ID, &rd.Value, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sensor reading: %w", err)
		}
		rd.At = time.UnixMilli(createdAt).UTC()
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor readings: %w", err)
	}

	slices.Reverse(readings)
	return readings, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		var on int
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Device, &kind, &on, &e.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		e.Kind = device.Kind(kind)
		e.On = on == 1
		e.At = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity: %w", err)
	}

	slices.Reverse(entries)
	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
