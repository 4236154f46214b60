// Package search sequences location resolution, weather fetching and history
// updates for one search cycle at a time.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/geolocation"
	"github.com/couchcryptid/weather-lookup/internal/observability"
)

// DefaultGeolocationTimeout bounds how long the device location source may take.
const DefaultGeolocationTimeout = 10 * time.Second

// ErrEmptyQuery is returned for a blank free-text search.
var ErrEmptyQuery = errors.New("empty query")

// LocationResolver turns names and coordinates into canonical locations.
type LocationResolver interface {
	ResolveByName(ctx context.Context, query string) (domain.ResolvedLocation, error)
	ResolveByCoordinates(ctx context.Context, lat, lon float64) domain.ResolvedLocation
}

// History is the persisted list of searched labels. Push returns nil entries
// when the current list could not be read.
type History interface {
	Load(ctx context.Context) []string
	Push(ctx context.Context, label string) ([]string, error)
	Clear(ctx context.Context) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGeolocationTimeout overrides DefaultGeolocationTimeout.
func WithGeolocationTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.geoTimeout = d
		}
	}
}

// Orchestrator owns the search cycle. Every Search* call takes a new ticket;
// only the cycle holding the latest ticket may render or update history.
type Orchestrator struct {
	resolver   LocationResolver
	weather    domain.WeatherSource
	locator    geolocation.Locator
	history    History
	renderer   Renderer
	logger     *slog.Logger
	metrics    *observability.Metrics
	geoTimeout time.Duration

	mu  sync.Mutex
	seq uint64

	// renderMu serializes the latest-ticket check with rendering.
	renderMu sync.Mutex
}

// New creates an Orchestrator.
func New(r LocationResolver, w domain.WeatherSource, l geolocation.Locator, h History, renderer Renderer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver:   r,
		weather:    w,
		locator:    l,
		history:    h,
		renderer:   renderer,
		logger:     logger,
		metrics:    metrics,
		geoTimeout: DefaultGeolocationTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SearchByName resolves query by forward geocoding, then fetches weather.
func (o *Orchestrator) SearchByName(ctx context.Context, query string) Outcome {
	seq := o.begin()
	query = strings.TrimSpace(query)
	if query == "" {
		return o.fail(seq, EntryName, MsgEmptyQuery, ErrEmptyQuery)
	}

	o.progress(Progress{Seq: seq, Entry: EntryName, State: StateResolving, Message: MsgSearching})
	loc, err := o.resolver.ResolveByName(ctx, query)
	if err != nil {
		msg := MsgLocationFailed
		if errors.Is(err, domain.ErrNotFound) {
			msg = MsgNotFound
		}
		return o.fail(seq, EntryName, msg, err)
	}
	return o.fetch(ctx, seq, EntryName, loc)
}

// SearchByPlace fetches weather for a location that is already resolved,
// such as a chosen suggestion.
func (o *Orchestrator) SearchByPlace(ctx context.Context, loc domain.ResolvedLocation) Outcome {
	seq := o.begin()
	loc = domain.NewResolvedLocation(loc.Label, loc.Latitude, loc.Longitude)
	return o.fetch(ctx, seq, EntryPlace, loc)
}

// SearchByDevice asks the locator for the device position, labels it by
// reverse geocoding and fetches weather.
func (o *Orchestrator) SearchByDevice(ctx context.Context) Outcome {
	seq := o.begin()
	o.progress(Progress{Seq: seq, Entry: EntryDevice, State: StateResolving, Message: MsgDetecting})

	pos, err := o.locate(ctx)
	if err != nil {
		msg := MsgGeolocationFailed
		if errors.Is(err, domain.ErrGeolocationUnavailable) {
			msg = MsgNoGeolocation
		}
		return o.fail(seq, EntryDevice, msg, err)
	}

	loc := o.resolver.ResolveByCoordinates(ctx, pos.Latitude, pos.Longitude)
	return o.fetch(ctx, seq, EntryDevice, loc)
}

// LoadHistory reads the persisted history and renders it.
func (o *Orchestrator) LoadHistory(ctx context.Context) []string {
	entries := o.history.Load(ctx)
	o.metrics.HistorySize.Set(float64(len(entries)))

	o.renderMu.Lock()
	defer o.renderMu.Unlock()
	o.renderer.OnHistoryChanged(entries)
	return entries
}

// ClearHistory removes the persisted history and renders the empty list.
func (o *Orchestrator) ClearHistory(ctx context.Context) error {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	if err := o.history.Clear(ctx); err != nil {
		o.logger.Error("clear history failed", "error", err)
		return err
	}
	o.metrics.HistorySize.Set(0)
	o.renderer.OnHistoryChanged([]string{})
	return nil
}

func (o *Orchestrator) locate(ctx context.Context) (geolocation.Position, error) {
	lctx, cancel := context.WithTimeout(ctx, o.geoTimeout)
	defer cancel()

	pos, err := o.locator.Locate(lctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return pos, fmt.Errorf("%w: after %s", domain.ErrGeolocationTimeout, o.geoTimeout)
		}
		return pos, err
	}
	return pos, nil
}

func (o *Orchestrator) fetch(ctx context.Context, seq uint64, entry Entry, loc domain.ResolvedLocation) Outcome {
	o.progress(Progress{Seq: seq, Entry: entry, State: StateFetching, Message: MsgFetching})

	snap, err := o.weather.Current(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return o.fail(seq, entry, MsgWeatherFailed, err)
	}

	out := Outcome{
		Seq:      seq,
		Entry:    entry,
		State:    StateSuccess,
		Location: loc,
		Weather:  snap,
		Category: snap.Condition(),
	}
	return o.finish(ctx, out)
}

func (o *Orchestrator) fail(seq uint64, entry Entry, msg string, err error) Outcome {
	o.logger.Warn("search cycle failed",
		"seq", seq,
		"entry", string(entry),
		"message", msg,
		"error", err,
	)
	return o.finish(context.Background(), Outcome{
		Seq:     seq,
		Entry:   entry,
		State:   StateFailed,
		Message: msg,
		Err:     err,
	})
}

// finish renders out if its cycle is still current. A successful cycle first
// records the location in history.
func (o *Orchestrator) finish(ctx context.Context, out Outcome) Outcome {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	if out.Seq != o.latest() {
		out.Superseded = true
		o.metrics.SearchCycles.WithLabelValues(string(out.Entry), "superseded").Inc()
		o.logger.Debug("search cycle superseded", "seq", out.Seq, "entry", string(out.Entry))
		return out
	}

	if out.OK() {
		o.metrics.SearchCycles.WithLabelValues(string(out.Entry), "success").Inc()
		o.recordHistory(ctx, out.Location.Label)
	} else {
		o.metrics.SearchCycles.WithLabelValues(string(out.Entry), "failed").Inc()
	}
	o.renderer.OnSearchResult(out)
	return out
}

// recordHistory pushes label and renders the new list, even when it could
// not be persisted. renderMu must be held.
func (o *Orchestrator) recordHistory(ctx context.Context, label string) {
	entries, err := o.history.Push(context.WithoutCancel(ctx), label)
	if err != nil {
		o.logger.Error("history update failed", "label", label, "error", err)
	}
	if entries == nil {
		return
	}
	o.metrics.HistorySize.Set(float64(len(entries)))
	o.renderer.OnHistoryChanged(entries)
}

func (o *Orchestrator) progress(p Progress) {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	if p.Seq != o.latest() {
		return
	}
	o.renderer.OnSearchProgress(p)
}

func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	return o.seq
}

func (o *Orchestrator) latest() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq
}
