// Command lookup resolves a place, fetches its current weather and prints it.
//
// Usage:
//
//	go run ./cmd/lookup -name Jakarta
//	go run ./cmd/lookup -lat -6.2 -lon 106.8 -label "Jakarta, Indonesia"
//	go run ./cmd/lookup -here
//	go run ./cmd/lookup -suggest Jak
//	go run ./cmd/lookup -history
//	go run ./cmd/lookup -clear-history
//
// Exit status is 0 on success, 1 when the search fails and 2 on bad usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/weather-lookup/internal/app"
	"github.com/couchcryptid/weather-lookup/internal/config"
	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/history"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/couchcryptid/weather-lookup/internal/search"
	"github.com/couchcryptid/weather-lookup/internal/suggest"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	programName = "lookup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, observability.NewMetrics())
	stop()
	os.Exit(code)
}

type options struct {
	name         string
	lat, lon     float64
	label        string
	here         bool
	suggest      string
	showHistory  bool
	clearHistory bool
	coords       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.name, "name", "", "city name to search")
	fs.Float64Var(&opts.lat, "lat", 0, "latitude of an already known place")
	fs.Float64Var(&opts.lon, "lon", 0, "longitude of an already known place")
	fs.StringVar(&opts.label, "label", "", "label for -lat/-lon (defaults to the coordinates)")
	fs.BoolVar(&opts.here, "here", false, "use the device location")
	fs.StringVar(&opts.suggest, "suggest", "", "list place suggestions for partial text")
	fs.BoolVar(&opts.showHistory, "history", false, "print search history, newest first")
	fs.BoolVar(&opts.clearHistory, "clear-history", false, "remove search history")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			opts.coords = true
		}
	})

	modes := 0
	for _, set := range []bool{opts.name != "", opts.coords, opts.here, opts.suggest != "", opts.showHistory, opts.clearHistory} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fs.Usage()
		return opts, errors.New("exactly one of -name, -lat/-lon, -here, -suggest, -history or -clear-history is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, metrics *observability.Metrics) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, programName+":", err)
		}
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, programName+": load config:", err)
		return exitFailed
	}
	logger := observability.NewLogger(cfg, stderr)

	a, err := app.New(cfg, metrics, logger)
	if err != nil {
		fmt.Fprintln(stderr, programName+":", err)
		return exitFailed
	}
	defer a.Close()

	p := &printer{stdout: stdout, stderr: stderr, history: opts.showHistory || opts.clearHistory}

	if opts.suggest != "" {
		suggester := a.NewSuggester(p)
		defer suggester.Close()

		res := suggester.Lookup(ctx, opts.suggest)
		p.OnSuggestions(res)
		if res.Status != suggest.StatusMatches {
			return exitFailed
		}
		return exitOK
	}

	orchestrator := a.NewOrchestrator(p)

	var out search.Outcome
	switch {
	case opts.showHistory:
		orchestrator.LoadHistory(ctx)
		return exitOK
	case opts.clearHistory:
		if err := orchestrator.ClearHistory(ctx); err != nil {
			fmt.Fprintln(stderr, programName+":", err)
			return exitFailed
		}
		return exitOK
	case opts.here:
		out = orchestrator.SearchByDevice(ctx)
	case opts.coords:
		out = orchestrator.SearchByPlace(ctx, domain.NewResolvedLocation(opts.label, opts.lat, opts.lon))
	default:
		out = orchestrator.SearchByName(ctx, opts.name)
	}

	if !out.OK() {
		return exitFailed
	}
	return exitOK
}

// printer renders outcomes and suggestions to stdout and progress to stderr.
type printer struct {
	stdout  io.Writer
	stderr  io.Writer
	history bool
}

func (p *printer) OnSearchProgress(pr search.Progress) {
	fmt.Fprintln(p.stderr, pr.Message)
}

func (p *printer) OnSearchResult(o search.Outcome) {
	if !o.OK() {
		fmt.Fprintln(p.stderr, o.Message)
		return
	}
	fmt.Fprint(p.stdout, formatOutcome(o))
}

// OnHistoryChanged prints the list only when history was asked for.
func (p *printer) OnHistoryChanged(entries []string) {
	if p.history {
		fmt.Fprint(p.stdout, formatHistory(entries))
	}
}

func (p *printer) OnSuggestions(s suggest.Suggestions) {
	switch s.Status {
	case suggest.StatusMatches:
		for _, c := range s.Candidates {
			fmt.Fprintln(p.stdout, c.Label())
		}
	case suggest.StatusNoMatches:
		fmt.Fprintln(p.stderr, "No results")
	case suggest.StatusFailed:
		fmt.Fprintln(p.stderr, "Failed to load suggestions")
	case suggest.StatusCleared:
		fmt.Fprintln(p.stderr, "Enter a city name.")
	}
}

func formatOutcome(o search.Outcome) string {
	loc, w, c := o.Location, o.Weather, o.Category
	return fmt.Sprintf("%s\nLat: %s, Lon: %s\n%s %s\nWind: %s · %s\nMap: %s\n",
		loc.Label,
		domain.FormatNumber(loc.Latitude), domain.FormatNumber(loc.Longitude),
		c.Glyph, w.Temperature(),
		w.Wind(), c.Label,
		loc.MapURL(),
	)
}

func formatHistory(entries []string) string {
	if len(entries) == 0 {
		return "No history yet\n"
	}
	var b strings.Builder
	for _, e := range history.Newest(entries) {
		b.WriteString(e)
		b.WriteString("\n")
	}
	return b.String()
}
