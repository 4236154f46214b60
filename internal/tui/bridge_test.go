package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/weather-lookup/internal/search"
	"github.com/couchcryptid/weather-lookup/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingSender) received() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func TestBridge_ForwardsInOrder(t *testing.T) {
	b := NewBridge()
	sender := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, sender)
		close(done)
	}()

	b.OnSuggestions(suggest.Suggestions{Seq: 1, Status: suggest.StatusPending})
	b.OnSearchProgress(search.Progress{Seq: 1, State: search.StateResolving})
	b.OnHistoryChanged([]string{"Jakarta, Indonesia"})
	b.OnSearchResult(search.Outcome{Seq: 1, State: search.StateSuccess})

	require.Eventually(t, func() bool { return len(sender.received()) == 4 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	msgs := sender.received()
	assert.IsType(t, suggestionsMsg{}, msgs[0])
	assert.IsType(t, progressMsg{}, msgs[1])
	assert.IsType(t, historyMsg{}, msgs[2])
	assert.IsType(t, resultMsg{}, msgs[3])
}

func TestBridge_CallbacksDoNotBlockWithoutRun(t *testing.T) {
	b := NewBridge()

	for i := range 100 {
		b.OnSuggestions(suggest.Suggestions{Seq: uint64(i)})
	}

	assert.Len(t, b.drain(), 100)
	assert.Empty(t, b.drain())
}
