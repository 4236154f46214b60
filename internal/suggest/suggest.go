// Package suggest turns partial user input into place suggestions.
//
// Input is debounced: only text left unchanged for the debounce window issues
// a lookup. Every call to Suggest takes a new ticket; an update is handed to
// the Sink only while its ticket is still the latest one issued, so a slow
// lookup that completes after a newer one is discarded instead of clobbering
// it.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultDebounce is the input inactivity window before a lookup is issued.
	DefaultDebounce = 250 * time.Millisecond

	// MaxSuggestions caps the candidate list.
	MaxSuggestions = 6
)

// Status classifies a suggestion update.
type Status int

const (
	// StatusCleared means the input is blank: no lookup, clear the surface.
	StatusCleared Status = iota
	// StatusPending means a lookup has been issued and is in flight.
	StatusPending
	// StatusMatches carries one or more candidates.
	StatusMatches
	// StatusNoMatches means the lookup succeeded with zero candidates.
	StatusNoMatches
	// StatusFailed means the lookup itself failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCleared:
		return "cleared"
	case StatusPending:
		return "pending"
	case StatusMatches:
		return "matches"
	case StatusNoMatches:
		return "no_matches"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Suggestions is one update for the suggestion surface.
type Suggestions struct {
	Seq        uint64
	Query      string
	Status     Status
	Candidates []domain.PlaceCandidate
	Err        error
}

// Sink receives suggestion updates in ticket order. OnSuggestions must not
// call back into the Provider.
type Sink interface {
	OnSuggestions(Suggestions)
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.delay = d
		}
	}
}

// Provider is a debounced, ticketed suggestion lookup.
type Provider struct {
	geocoder domain.Geocoder
	sink     Sink
	clock    clockwork.Clock
	delay    time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	timer  clockwork.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	// deliverMu serializes the latest-ticket check with the sink call.
	deliverMu sync.Mutex
}

// New creates a Provider that reports to sink.
func New(geocoder domain.Geocoder, sink Sink, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		geocoder: geocoder,
		sink:     sink,
		clock:    clockwork.NewRealClock(),
		delay:    DefaultDebounce,
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Suggest records the latest input text and returns immediately. Any pending
// or in-flight lookup is superseded.
func (p *Provider) Suggest(query string) {
	q := strings.TrimSpace(query)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.seq++
	seq := p.seq
	p.stopLocked()

	if q == "" {
		p.mu.Unlock()
		p.deliver(Suggestions{Seq: seq, Status: StatusCleared})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	p.timer = p.clock.AfterFunc(p.delay, func() {
		defer p.wg.Done()
		p.issue(ctx, seq, q)
	})
	p.mu.Unlock()
}

// Lookup performs an immediate, undebounced lookup for query. The result is
// returned, not sent to the sink.
func (p *Provider) Lookup(ctx context.Context, query string) Suggestions {
	q := strings.TrimSpace(query)
	if q == "" {
		return Suggestions{Status: StatusCleared}
	}
	p.metrics.SuggestionLookups.Inc()
	return p.search(ctx, q)
}

// Close stops the pending timer, cancels any in-flight lookup and waits for
// lookup goroutines to finish. Nothing is delivered after Close returns.
func (p *Provider) Close() {
	p.mu.Lock()
	p.closed = true
	p.seq++
	p.stopLocked()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Provider) issue(ctx context.Context, seq uint64, q string) {
	if !p.deliver(Suggestions{Seq: seq, Query: q, Status: StatusPending}) {
		return
	}
	p.metrics.SuggestionLookups.Inc()

	res := p.search(ctx, q)
	res.Seq = seq
	if !p.deliver(res) {
		p.metrics.SuggestionsSuperseded.Inc()
		p.logger.Debug("suggestion lookup superseded", "query", q, "seq", seq)
	}
}

func (p *Provider) search(ctx context.Context, q string) Suggestions {
	res := Suggestions{Query: q}

	candidates, err := p.geocoder.Search(ctx, q, MaxSuggestions)
	switch {
	case err != nil:
		res.Status = StatusFailed
		res.Err = err
	case len(candidates) == 0:
		res.Status = StatusNoMatches
	default:
		if len(candidates) > MaxSuggestions {
			candidates = candidates[:MaxSuggestions]
		}
		res.Status = StatusMatches
		res.Candidates = candidates
	}
	return res
}

// deliver hands s to the sink if its ticket is still the latest. It reports
// whether s was delivered.
func (p *Provider) deliver(s Suggestions) bool {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	if s.Seq != p.latest() {
		return false
	}
	p.sink.OnSuggestions(s)
	return true
}

func (p *Provider) latest() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// stopLocked drops the pending timer and cancels the in-flight lookup. p.mu must be held.
func (p *Provider) stopLocked() {
	if p.timer != nil && p.timer.Stop() {
		p.wg.Done()
	}
	p.timer = nil
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
