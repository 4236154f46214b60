// Package history persists the recent-searches list and the theme flag in a
// durable key-value store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// Key is the storage key holding the JSON-encoded history array.
	Key = "wc_cities"

	// MaxEntries bounds the history length.
	MaxEntries = 12
)

// KV is durable string key-value storage.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store is an ordered, case-insensitively deduplicated list of place labels,
// oldest first. Every mutation writes through to storage.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// NewStore creates a history store over kv.
func NewStore(kv KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Load returns the persisted history, oldest first. A missing key, a storage
// failure or a malformed payload all yield an empty history.
func (s *Store) Load(ctx context.Context) []string {
	entries, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("history load failed", "error", err)
		return []string{}
	}
	return entries
}

// Push moves label to the most recent position, dropping any entry equal to
// it under case-insensitive comparison and the oldest entries beyond
// MaxEntries. The new history is returned even when persisting fails.
// When the stored history cannot be read, nothing is written and the
// returned entries are nil.
func (s *Store) Push(ctx context.Context, label string) ([]string, error) {
	current, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	entries := Append(current, label)

	data, err := json.Marshal(entries)
	if err != nil {
		return entries, fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return entries, fmt.Errorf("persist history: %w", err)
	}
	return entries, nil
}

// read returns the stored entries. Only a storage failure is an error; a
// missing key or a malformed payload reads as empty.
func (s *Store) read(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("history payload malformed, treating as empty", "error", err)
		return []string{}, nil
	}
	if entries == nil {
		return []string{}, nil
	}
	return entries, nil
}

// Clear removes the persisted history entirely.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Append returns entries with label deduplicated, moved to the end and the
// result truncated to the newest MaxEntries. entries is not modified.
func Append(entries []string, label string) []string {
	out := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		if !strings.EqualFold(e, label) {
			out = append(out, e)
		}
	}
	out = append(out, label)

	if len(out) > MaxEntries {
		out = out[len(out)-MaxEntries:]
	}
	return out
}

// Newest returns a copy of entries ordered most recent first, the order
// history chips are displayed in.
func Newest(entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
