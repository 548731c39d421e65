package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Backend loads and saves full snapshots of the todo list.
type Backend interface {
	// Load reads the whole persisted list.
	Load(ctx context.Context) (map[string]bool, error)

	// Save replaces the persisted list with items.
	Save(ctx context.Context, items map[string]bool) error

	// Close releases the backend's resources.
	Close() error
}

// Item is a single entry of the list.
type Item struct {
	Label   string `json:"label" yaml:"label"`
	Checked bool   `json:"checked" yaml:"checked"`
}

// Store is the in-memory todo list, kept in sync with its Backend.
// Every mutation is followed by a synchronous full save.
type Store struct {
	backend Backend
	items   map[string]bool
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open loads the full list from backend.
// A corrupt backing store fails the open; no partial list is returned.
// The store takes ownership of backend and closes it in Close.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.items = items

	s.logger.Debug("store loaded", "items", len(items))
	return s, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Add inserts label as unchecked, or resets an existing label to unchecked,
// then saves.
func (s *Store) Add(ctx context.Context, label string) error {
	return s.Set(ctx, label, false)
}

// Check marks label as checked, then saves.
// A label that is not in the list is created already checked.
func (s *Store) Check(ctx context.Context, label string) error {
	return s.Set(ctx, label, true)
}

// Set inserts or overwrites label with the given flag, then saves.
func (s *Store) Set(ctx context.Context, label string, checked bool) error {
	if reason := validateLabel(label); reason != "" {
		return newInvalidLabelError(label, reason)
	}
	label = normalizeLabel(label)

	s.items[label] = checked
	s.logger.Debug("item set", "label", label, "checked", checked)

	return s.Save(ctx)
}

// Delete removes label if present, then saves.
// Deleting a label that is not in the list is not an error.
func (s *Store) Delete(ctx context.Context, label string) error {
	label = normalizeLabel(label)

	if _, ok := s.items[label]; ok {
		delete(s.items, label)
		s.logger.Debug("item deleted", "label", label)
	} else {
		s.logger.Debug("delete of absent item", "label", label)
	}

	return s.Save(ctx)
}

// Save writes the full list to the backend.
func (s *Store) Save(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.items); err != nil {
		return newPersistError(err)
	}
	s.logger.Debug("store saved", "items", len(s.items))
	return nil
}

// Get returns the flag for label and whether label is in the list.
func (s *Store) Get(label string) (checked, ok bool) {
	checked, ok = s.items[normalizeLabel(label)]
	return checked, ok
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns every entry sorted by label.
func (s *Store) Items() []Item {
	labels := sortedLabels(s.items)
	items := make([]Item, len(labels))
	for i, label := range labels {
		items[i] = Item{Label: label, Checked: s.items[label]}
	}
	return items
}

// Snapshot returns a copy of the label to flag mapping.
func (s *Store) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.items))
	for label, checked := range s.items {
		out[label] = checked
	}
	return out
}
