package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/weather-lookup/internal/search"
	"github.com/couchcryptid/weather-lookup/internal/suggest"
)

// Messages delivered to the model by the Bridge.
type (
	suggestionsMsg suggest.Suggestions
	progressMsg    search.Progress
	resultMsg      search.Outcome
	historyMsg     []string
)

var (
	_ suggest.Sink    = (*Bridge)(nil)
	_ search.Renderer = (*Bridge)(nil)
)

// Sender is the part of *tea.Program the Bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge adapts the suggestion Sink and the search Renderer into bubbletea
// messages. Callbacks only enqueue, so they never block on the program loop;
// Run forwards the queue to the program in arrival order.
type Bridge struct {
	mu     sync.Mutex
	queue  []tea.Msg
	notify chan struct{}
}

// NewBridge creates an empty Bridge.
func NewBridge() *Bridge {
	return &Bridge{notify: make(chan struct{}, 1)}
}

func (b *Bridge) OnSuggestions(s suggest.Suggestions) { b.push(suggestionsMsg(s)) }
func (b *Bridge) OnSearchProgress(p search.Progress)  { b.push(progressMsg(p)) }
func (b *Bridge) OnSearchResult(o search.Outcome)     { b.push(resultMsg(o)) }
func (b *Bridge) OnHistoryChanged(entries []string)   { b.push(historyMsg(entries)) }

// Run forwards queued messages to s until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context, s Sender) {
	for {
		for _, msg := range b.drain() {
			s.Send(msg)
		}
		select {
		case <-ctx.Done():
			return
		case <-b.notify:
		}
	}
}

func (b *Bridge) push(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *Bridge) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}
