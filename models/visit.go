package models

import "time"

// VisitRecord is one logged page visit: the session it belongs to, the path
// it hit, and a snapshot of the visitor profile at log time. Records are
// created once per navigation and never mutated.
//
// Everything is nullable on the wire except SessionID, PagePath and
// Timestamp, so degraded profiles still produce valid records.
type VisitRecord struct {
	EventID     string    `json:"eventId"`
	SessionID   string    `json:"sessionId"`
	PagePath    string    `json:"pagePath"`
	Timestamp   time.Time `json:"timestamp"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	CountryCode string    `json:"countryCode,omitempty"`
	CountryName string    `json:"countryName,omitempty"`
	CountryFlag string    `json:"countryFlag,omitempty"`
	City        string    `json:"city,omitempty"`
	Region      string    `json:"region,omitempty"`
	Org         string    `json:"org,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Browser     string    `json:"browser,omitempty"`
	OS          string    `json:"os,omitempty"`
	DeviceClass string    `json:"deviceClass,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	EntryPath   string    `json:"entryPath,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}

// TopPageResult is one row of the top-pages aggregate.
type TopPageResult struct {
	PagePath string `json:"pagePath"`
	Count    uint64 `json:"count"`
}

// VisitCountByTime is one time bucket of the visits-over-time aggregates.
type VisitCountByTime struct {
	Time  time.Time `json:"time"`
	Count uint64    `json:"count"`
}
