package models

import "time"

// UAInfo is what we can derive from the raw user-agent string alone.
// It is always available, even when every network lookup fails.
type UAInfo struct {
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	DeviceClass string `json:"deviceClass"`
}

// Geolocation is the coarse location data returned by the geolocation
// provider. Latitude/Longitude are pointers because the provider may omit
// them; everything else degrades to the empty string.
type Geolocation struct {
	CountryCode string   `json:"countryCode"`
	CountryName string   `json:"countryName"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Org         string   `json:"org"`
	Timezone    string   `json:"timezone"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Currency    string   `json:"currency"`
	Languages   string   `json:"languages"`
}

// VisitorProfile is the resolved (or degraded) identity of the current
// session's visitor. It starts empty, is filled exactly once by the
// resolver, and is never mutated again for the lifetime of the process.
type VisitorProfile struct {
	IPAddress   string      `json:"ipAddress"`
	Geo         Geolocation `json:"geo"`
	CountryFlag string      `json:"countryFlag"`
	UserAgent   string      `json:"userAgent"`
	UA          UAInfo      `json:"ua"`
	Referrer    string      `json:"referrer"`
	EntryPath   string      `json:"entryPath"`
	FirstSeen   time.Time   `json:"firstSeen"`
	Loaded      bool        `json:"loaded"`
	// Error is non-empty only when resolution degraded. Kept for
	// diagnostic display; never propagated upward.
	Error string `json:"error,omitempty"`
}
