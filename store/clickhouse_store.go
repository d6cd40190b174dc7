package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"lumenlearn/api/database"
	"lumenlearn/api/models"
	"lumenlearn/api/utils"
)

// ClickHouseStore persists visit records in a ClickHouse table. It is the
// primary VisitorStore backend.
type ClickHouseStore struct {
	DB *database.ClickHouseClient
}

func NewClickHouseStore(chClient *database.ClickHouseClient) *ClickHouseStore {
	return &ClickHouseStore{DB: chClient}
}

const visitColumns = `
	event_id, session_id, page_path, timestamp, ip_address,
	country_code, country_name, country_flag, city, region, org, timezone,
	latitude, longitude, browser, os, device_class, referrer, entry_path, user_agent
`

func (s *ClickHouseStore) Insert(ctx context.Context, record models.VisitRecord) error {
	// A single-row batch keeps the column list in one place; visits arrive
	// one navigation at a time, so there is nothing to batch up anyway.
	batch, err := s.DB.Conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO visit_records (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, visitColumns))
	if err != nil {
		return fmt.Errorf("failed to prepare visit insert: %w", err)
	}

	err = batch.Append(
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
		return fmt.Errorf("failed to append visit record %s: %w", record.EventID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send visit record: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM visit_records
		ORDER BY timestamp DESC
		LIMIT ?
	`, visitColumns)

	rows, err := s.DB.Conn.Query(ctx, query, limit)
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

func (s *ClickHouseStore) TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPageResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT page_path, count() as view_count
		FROM visit_records
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY page_path
		ORDER BY view_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
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

func (s *ClickHouseStore) VisitCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	return s.bucketedCount(ctx, interval, "count()", start, end)
}

func (s *ClickHouseStore) UniqueSessionsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	return s.bucketedCount(ctx, interval, "uniq(session_id)", start, end)
}

func (s *ClickHouseStore) bucketedCount(ctx context.Context, interval, aggregate string, start, end time.Time) ([]models.VisitCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, %s AS total
		FROM visit_records
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval, aggregate)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
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
