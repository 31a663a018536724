package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/database"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// ErrNoScans is returned by Latest when the store holds no scans yet
var ErrNoScans = errors.New("no scans recorded")

// Repository persists scan results in PostgreSQL. Each scan is stored
// as one row keyed by its timestamp, with the full result as JSONB so
// the schema does not chase the snapshot shape.
type Repository struct {
	db  *database.DB
	log *logger.Logger
}

// NewRepository creates a scan repository backed by the given pool
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.WithField("component", "scan_repository"),
	}
}

// EnsureSchema creates the scan table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sector_scans (
			scan_time   TIMESTAMPTZ PRIMARY KEY,
			record_id   TEXT NOT NULL,
			config_hash TEXT NOT NULL DEFAULT '',
			sentiment   TEXT NOT NULL,
			result      JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create scan table: %w", err)
	}
	return nil
}

// Save stores one scan result. Saving the same scan timestamp twice
// is a no-op, so replayed jobs do not duplicate history.
func (r *Repository) Save(ctx context.Context, result *contracts.ScanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode scan result: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sector_scans (scan_time, record_id, config_hash, sentiment, result)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scan_time) DO NOTHING`,
		result.ScanTime, result.RecordID(), result.ConfigHash, string(result.Sentiment), payload)
	if err != nil {
		return fmt.Errorf("failed to save scan result: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.log.WithField("record_id", result.RecordID()).Debug("Scan already stored, skipping")
	}
	return nil
}

// Latest returns the most recent scan, or ErrNoScans
func (r *Repository) Latest(ctx context.Context) (*contracts.ScanResult, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT result FROM sector_scans
		ORDER BY scan_time DESC
		LIMIT 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoScans
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest scan: %w", err)
	}
	return decodeResult(payload)
}

// Range returns scans within [from, to], ascending by scan time
func (r *Repository) Range(ctx context.Context, from, to time.Time) ([]*contracts.ScanResult, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT result FROM sector_scans
		WHERE scan_time >= $1 AND scan_time <= $2
		ORDER BY scan_time ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan range: %w", err)
	}
	defer rows.Close()

	var results []*contracts.ScanResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scan rows: %w", err)
	}
	return results, nil
}

func decodeResult(payload []byte) (*contracts.ScanResult, error) {
	var result contracts.ScanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored scan: %w", err)
	}
	return &result, nil
}
