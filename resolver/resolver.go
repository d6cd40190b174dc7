// Package resolver turns the process's network vantage point into a
// VisitorProfile: public IP, geolocation for that IP, and a user-agent
// classification. Resolution runs once per session and must degrade
// rather than hang or fail outward.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"lumenlearn/api/geo"
	"lumenlearn/api/models"
	"lumenlearn/api/useragent"
)

const defaultTimeout = 10 * time.Second

// Config points the resolver at its two providers and carries the
// environment facts that go into the profile as-is.
type Config struct {
	// IPLookupURL returns {"ip": "..."} for the caller's public address.
	IPLookupURL string
	// GeoLookupURL is the geolocation provider base; the resolver appends
	// "/<ip>/json/" (or "/json/" when no address is known).
	GeoLookupURL string

	UserAgent string
	Referrer  string
	EntryPath string

	// Timeout bounds each provider call. A provider that never answers
	// becomes a degraded profile, not a stuck one.
	Timeout time.Duration
}

type Resolver struct {
	cfg      Config
	client   *http.Client
	validate *validator.Validate
}

func New(cfg Config) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Resolver{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		validate: validator.New(),
	}
}

// ipResponse is the public-IP provider's payload.
type ipResponse struct {
	IP string `json:"ip" validate:"required,ip"`
}

// geoResponse is the geolocation provider's payload. Fields are optional
// on the wire but must be well-formed when present; a malformed payload is
// a hard failure rather than nulls leaking deep into the profile.
type geoResponse struct {
	IP          string   `json:"ip" validate:"omitempty,ip"`
	CountryCode string   `json:"country_code" validate:"omitempty,len=2,alpha"`
	CountryName string   `json:"country_name"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Org         string   `json:"org"`
	Timezone    string   `json:"timezone"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Currency    string   `json:"currency" validate:"omitempty,len=3,alpha"`
	Languages   string   `json:"languages"`
}

// Resolve performs the two-stage lookup and always returns a profile with
// Loaded=true. On any failure the profile carries the user-agent-derived
// fields plus a non-empty Error; on success Error is empty and the
// network/geo fields are filled. It never blocks past the configured
// timeouts and never panics: callers must not have to guard it.
func (r *Resolver) Resolve(ctx context.Context) models.VisitorProfile {
	profile := models.VisitorProfile{
		UserAgent: r.cfg.UserAgent,
		UA:        useragent.Classify(r.cfg.UserAgent),
		Referrer:  r.cfg.Referrer,
		EntryPath: r.cfg.EntryPath,
		FirstSeen: time.Now().UTC(),
		Loaded:    true,
	}

	// Stage 1: public IP. A miss here is not fatal; the geolocation
	// provider can infer the address from the connection instead.
	ip, err := r.lookupIP(ctx)
	if err != nil {
		log.Printf("Public IP lookup failed, continuing without address: %v", err)
		ip = ""
	}

	// Stage 2: geolocation. This one is the hard gate.
	loc, err := r.lookupGeo(ctx, ip)
	if err != nil {
		log.Printf("Geolocation lookup failed, profile degraded: %v", err)
		profile.Error = err.Error()
		profile.CountryFlag = geo.GlobePlaceholder
		return profile
	}

	profile.IPAddress = ip
	if profile.IPAddress == "" {
		profile.IPAddress = loc.IP
	}
	profile.Geo = models.Geolocation{
		CountryCode: loc.CountryCode,
		CountryName: loc.CountryName,
		City:        loc.City,
		Region:      loc.Region,
		Org:         loc.Org,
		Timezone:    loc.Timezone,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Currency:    loc.Currency,
		Languages:   loc.Languages,
	}
	profile.CountryFlag = geo.CountryFlag(loc.CountryCode)

	return profile
}

func (r *Resolver) lookupIP(ctx context.Context) (string, error) {
	var payload ipResponse
	if err := r.getJSON(ctx, r.cfg.IPLookupURL, &payload); err != nil {
		return "", err
	}
	if err := r.validate.Struct(&payload); err != nil {
		return "", fmt.Errorf("ip lookup returned malformed payload: %w", err)
	}
	return payload.IP, nil
}

func (r *Resolver) lookupGeo(ctx context.Context, ip string) (*geoResponse, error) {
	url := strings.TrimSuffix(r.cfg.GeoLookupURL, "/") + "/json/"
	if ip != "" {
		url = strings.TrimSuffix(r.cfg.GeoLookupURL, "/") + "/" + ip + "/json/"
	}

	var payload geoResponse
	if err := r.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	if err := r.validate.Struct(&payload); err != nil {
		return nil, fmt.Errorf("geolocation provider returned malformed payload: %w", err)
	}
	return &payload, nil
}

func (r *Resolver) getJSON(ctx context.Context, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request to %s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
