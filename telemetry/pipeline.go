// Package telemetry is the composition root of the visitor pipeline. It
// owns the session identity, the single resolution of the visitor profile,
// and the visit history, and exposes them to the rest of the application.
package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"lumenlearn/api/history"
	"lumenlearn/api/models"
	"lumenlearn/api/session"
)

// ProfileState tracks the visitor profile through its one-way lifecycle.
// Resolved and Degraded are both terminal; there is no way back to
// Resolving.
type ProfileState int

const (
	StateUnresolved ProfileState = iota
	StateResolving
	StateResolved
	StateDegraded
)

func (s ProfileState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

// Resolver produces the visitor profile. Implementations must always
// return a profile with Loaded=true (degraded on failure) and must not
// block indefinitely.
type Resolver interface {
	Resolve(ctx context.Context) models.VisitorProfile
}

// Pipeline wires the session identity, the resolver and the visit history
// together. Construct one per process and inject it wherever the profile
// or history is needed; nothing here is a package-level global.
type Pipeline struct {
	sessionID session.Identity
	resolver  Resolver
	History   *history.Controller

	mu          sync.Mutex
	state       ProfileState
	profile     models.VisitorProfile
	subscribers []func(models.VisitorProfile)
}

func NewPipeline(id session.Identity, r Resolver, h *history.Controller) *Pipeline {
	return &Pipeline{
		sessionID: id,
		resolver:  r,
		History:   h,
	}
}

// Session returns the process-wide session identity. It never changes
// after construction.
func (p *Pipeline) Session() session.Identity {
	return p.sessionID
}

// Start kicks off resolution and eagerly hydrates the cross-session
// history snapshot. It is a no-op after the first call.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateUnresolved {
		p.mu.Unlock()
		return
	}
	p.state = StateResolving
	p.mu.Unlock()

	go func() {
		if err := p.History.RefreshAllVisits(ctx); err != nil {
			log.Printf("Initial visit history hydration failed, keeping empty snapshot: %v", err)
		}
	}()

	go func() {
		p.complete(p.resolver.Resolve(ctx))
	}()
}

// complete applies the resolution result. The profile is written at most
// once; a second completion (which the resolver contract already rules
// out) is ignored.
func (p *Pipeline) complete(profile models.VisitorProfile) {
	p.mu.Lock()
	if p.state == StateResolved || p.state == StateDegraded {
		p.mu.Unlock()
		return
	}
	p.profile = profile
	if profile.Error != "" {
		p.state = StateDegraded
	} else {
		p.state = StateResolved
	}
	subs := p.subscribers
	p.subscribers = nil
	state := p.state
	p.mu.Unlock()

	log.Printf("Visitor resolution finished: state=%s session=%s", state, p.sessionID)
	for _, fn := range subs {
		fn(profile)
	}
}

// Profile returns the current profile snapshot and its state. Before
// resolution finishes the profile is the zero value with Loaded=false;
// callers must tolerate that window.
func (p *Pipeline) Profile() (models.VisitorProfile, ProfileState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile, p.state
}

// Subscribe registers fn for the single resolution transition. If the
// profile is already terminal, fn runs immediately with the final value;
// otherwise it runs exactly once when resolution completes.
func (p *Pipeline) Subscribe(fn func(models.VisitorProfile)) {
	p.mu.Lock()
	if p.state == StateResolved || p.state == StateDegraded {
		profile := p.profile
		p.mu.Unlock()
		fn(profile)
		return
	}
	p.subscribers = append(p.subscribers, fn)
	p.mu.Unlock()
}

// LogVisit performs the page-visit-logger step for one navigation. If the
// profile has not finished resolving, the navigation is dropped — not
// queued — so fast navigation before resolution can never grow an
// unbounded backlog. Returns whether a record was logged.
func (p *Pipeline) LogVisit(path string) bool {
	p.mu.Lock()
	if p.state != StateResolved && p.state != StateDegraded {
		p.mu.Unlock()
		log.Printf("Dropping visit to %s: visitor profile still resolving", path)
		return false
	}
	profile := p.profile
	p.mu.Unlock()

	record := models.VisitRecord{
		EventID:     uuid.New().String(),
		SessionID:   string(p.sessionID),
		PagePath:    path,
		Timestamp:   time.Now().UTC(),
		IPAddress:   profile.IPAddress,
		CountryCode: profile.Geo.CountryCode,
		CountryName: profile.Geo.CountryName,
		CountryFlag: profile.CountryFlag,
		City:        profile.Geo.City,
		Region:      profile.Geo.Region,
		Org:         profile.Geo.Org,
		Timezone:    profile.Geo.Timezone,
		Latitude:    profile.Geo.Latitude,
		Longitude:   profile.Geo.Longitude,
		Browser:     profile.UA.Browser,
		OS:          profile.UA.OS,
		DeviceClass: profile.UA.DeviceClass,
		Referrer:    profile.Referrer,
		EntryPath:   profile.EntryPath,
		UserAgent:   profile.UserAgent,
	}

	p.History.AddVisit(record)
	return true
}
