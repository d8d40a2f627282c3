// Package editor owns one editing session: the live document, the saved
// snapshot and the store the snapshot is persisted to. Commands stay pure;
// the session performs their side effects.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/specforge/internal/command"
	"github.com/mark3labs/specforge/internal/spec"
	"github.com/mark3labs/specforge/internal/store"
)

// Session serialises dispatches against a single command.State.
type Session struct {
	mu     sync.Mutex
	state  command.State
	store  store.Store
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDocument starts the session from doc instead of the default document.
// doc is normalized on the way in.
func WithDocument(doc *spec.Document) Option {
	return func(s *Session) {
		if doc != nil {
			s.state = command.Apply(s.state, command.ReplaceSpec{Document: doc})
		}
	}
}

// New returns a session persisting snapshots to st. A nil store keeps them
// in memory only.
func New(st store.Store, opts ...Option) *Session {
	if st == nil {
		st = store.NewMemoryStore()
	}
	s := &Session{
		state:  command.NewState(),
		store:  st,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns the live document. Callers must not mutate it.
func (s *Session) Document() *spec.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Document
}

// State returns the current state.
func (s *Session) State() command.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies cmd and returns the resulting document. SAVE persists the
// new snapshot; UNDO without an explicit snapshot restores the persisted one.
// When persisting fails the in-memory state still advances.
func (s *Session) Dispatch(ctx context.Context, cmd command.Command) (*spec.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(ctx, cmd)
}

// DispatchAll applies cmds in order and stops at the first error.
func (s *Session) DispatchAll(ctx context.Context, cmds ...command.Command) (*spec.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cmd := range cmds {
		if _, err := s.dispatch(ctx, cmd); err != nil {
			return s.state.Document, fmt.Errorf("command %d (%s): %w", i, cmd.Kind(), err)
		}
	}
	return s.state.Document, nil
}

func (s *Session) dispatch(ctx context.Context, cmd command.Command) (*spec.Document, error) {
	if cmd == nil {
		return s.state.Document, nil
	}
	if err := ctx.Err(); err != nil {
		return s.state.Document, err
	}
	switch c := cmd.(type) {
	case command.Undo:
		if c.Snapshot == nil {
			snap, err := s.loadSnapshot(ctx)
			if err != nil {
				return s.state.Document, err
			}
			c.Snapshot = snap
		}
		cmd = c
	}

	s.state = command.Apply(s.state, cmd)
	s.logger.Debug("dispatched command", "type", cmd.Kind(), "paths", len(s.state.Document.Paths))

	if cmd.Kind() == command.KindSave {
		if err := s.saveSnapshot(ctx, s.state.Snapshot); err != nil {
			s.logger.Warn("snapshot not persisted", "error", err)
			return s.state.Document, err
		}
	}
	return s.state.Document, nil
}

func (s *Session) saveSnapshot(ctx context.Context, snap *spec.Document) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.store.Put(ctx, store.SnapshotKey, data); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// loadSnapshot returns nil without error when nothing was ever saved.
func (s *Session) loadSnapshot(ctx context.Context) (*spec.Document, error) {
	data, err := s.store.Get(ctx, store.SnapshotKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc spec.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("ignoring unreadable snapshot", "error", err)
		return nil, nil
	}
	return &doc, nil
}

// Import parses text in either grammar and replaces the live document with
// it. On error the document is unchanged.
func (s *Session) Import(ctx context.Context, text []byte) (*spec.Document, error) {
	doc, err := spec.Parse(text, spec.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, command.ReplaceSpec{Document: doc})
}

// Load reads a document from a path or URL and replaces the live document.
func (s *Session) Load(ctx context.Context, location string, opts ...spec.Option) (*spec.Document, error) {
	opts = append([]spec.Option{spec.WithLogger(s.logger)}, opts...)
	doc, err := spec.Load(ctx, location, opts...)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, command.ReplaceSpec{Document: doc})
}

// Export serializes the post-processed live document.
func (s *Session) Export(format spec.Format) ([]byte, error) {
	return spec.Export(s.Document(), format)
}
