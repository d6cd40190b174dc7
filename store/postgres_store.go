package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"lumenlearn/api/models"
	"lumenlearn/api/utils"
)

// PostgresStore is the alternative VisitorStore backend for deployments
// that already run Postgres and don't want a second database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, record models.VisitRecord) error {
	query := `
		INSERT INTO visit_records (
			event_id, session_id, page_path, timestamp, ip_address,
			country_code, country_name, country_flag, city, region, org, timezone,
			latitude, longitude, browser, os, device_class, referrer, entry_path, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := s.db.ExecContext(ctx, query,
		record.EventID,
		record.SessionID,
		record.PagePath,
		record.Timestamp,
		record.IPAddress,
		record.CountryCode,
		record.CountryName,
		record.CountryFlag,
		record.City,
		record.Region,
		record.Org,
		record.Timezone,
		record.Latitude,
		record.Longitude,
		record.Browser,
		record.OS,
		record.DeviceClass,
		record.Referrer,
		record.EntryPath,
		record.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit record %s: %w", record.EventID, err)
	}
	return nil
}

func (s *PostgresStore) RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error) {
	query := `
		SELECT event_id, session_id, page_path, timestamp, ip_address,
			country_code, country_name, country_flag, city, region, org, timezone,
			latitude, longitude, browser, os, device_class, referrer, entry_path, user_agent
		FROM visit_records
		ORDER BY timestamp DESC
		LIMIT $1;
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent visits: %w", err)
	}
	defer rows.Close()

	var results []models.VisitRecord
	for rows.Next() {
		var rec models.VisitRecord
		err := rows.Scan(
			&rec.EventID,
			&rec.SessionID,
			&rec.PagePath,
			&rec.Timestamp,
			&rec.IPAddress,
			&rec.CountryCode,
			&rec.CountryName,
			&rec.CountryFlag,
			&rec.City,
			&rec.Region,
			&rec.Org,
			&rec.Timezone,
			&rec.Latitude,
			&rec.Longitude,
			&rec.Browser,
			&rec.OS,
			&rec.DeviceClass,
			&rec.Referrer,
			&rec.EntryPath,
			&rec.UserAgent,
		)
		if err != nil {
			log.Printf("Error scanning visit record row: %v", err)
			continue
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during recent visits query: %w", err)
	}
	return results, nil
}

func (s *PostgresStore) TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPageResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT page_path, count(*) AS view_count
		FROM visit_records
		WHERE timestamp >= $1 AND timestamp <= $2
		GROUP BY page_path
		ORDER BY view_count DESC
		LIMIT $3;
	`
	rows, err := s.db.QueryContext(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	var results []models.TopPageResult
	for rows.Next() {
		var r models.TopPageResult
		if err := rows.Scan(&r.PagePath, &r.Count); err != nil {
			log.Printf("Error scanning top pages row: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top pages: %w", err)
	}
	return results, nil
}

func (s *PostgresStore) VisitCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	return s.bucketedCount(ctx, interval, "count(*)", start, end)
}

func (s *PostgresStore) UniqueSessionsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	return s.bucketedCount(ctx, interval, "count(DISTINCT session_id)", start, end)
}

func (s *PostgresStore) bucketedCount(ctx context.Context, interval, aggregate string, start, end time.Time) ([]models.VisitCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	// date_trunc wants lowercase unit names ('day', 'hour', ...).
	query := fmt.Sprintf(`
		SELECT date_trunc('%s', timestamp) AS time_bucket, %s AS total
		FROM visit_records
		WHERE timestamp >= $1 AND timestamp <= $2
		GROUP BY time_bucket
		ORDER BY time_bucket ASC;
	`, strings.ToLower(interval), aggregate)

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit counts over time: %w", err)
	}
	defer rows.Close()

	var results []models.VisitCountByTime
	for rows.Next() {
		var bucket models.VisitCountByTime
		if err := rows.Scan(&bucket.Time, &bucket.Count); err != nil {
			log.Printf("Error scanning visit count row: %v", err)
			continue
		}
		results = append(results, bucket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for visit counts: %w", err)
	}
	return results, nil
}
