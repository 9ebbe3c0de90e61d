package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"rx-vendas/internal/entity"
)

const DefaultDebounce = 150 * time.Millisecond

// Searcher is satisfied by *Provider.
type Searcher interface {
	Search(ctx context.Context, kind entity.Kind, query string) []entity.Reference
}

// Suggester debounces keystrokes for one entity kind and keeps the current
// suggestion list. Every issued search takes the next sequence number and a
// response is applied only if no later search has been applied already, so
// slow responses can never overwrite fresher ones.
type Suggester struct {
	searcher Searcher
	kind     entity.Kind
	quiet    time.Duration
	onStale  func()

	mu       sync.Mutex
	timer    *time.Timer
	issued   uint64
	applied  uint64
	current  []entity.Reference
	query    string
	closed   bool
	onUpdate func([]entity.Reference)
}

type SuggesterOption func(*Suggester)

// OnUpdate registers a callback invoked with every applied suggestion list.
func OnUpdate(fn func([]entity.Reference)) SuggesterOption {
	return func(s *Suggester) { s.onUpdate = fn }
}

// OnStale registers a callback invoked for every discarded out-of-order response.
func OnStale(fn func()) SuggesterOption {
	return func(s *Suggester) { s.onStale = fn }
}

func NewSuggester(searcher Searcher, kind entity.Kind, quiet time.Duration, opts ...SuggesterOption) *Suggester {
	if quiet <= 0 {
		quiet = DefaultDebounce
	}
	s := &Suggester{searcher: searcher, kind: kind, quiet: quiet}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type records the latest input. An empty query clears the suggestions at
// once and invalidates searches still in flight; anything else (re)starts the
// quiet period. Background searches keep ctx's values but not its
// cancellation, since the caller's request usually ends before the timer fires.
func (s *Suggester) Type(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.query = query
	if strings.TrimSpace(query) == "" {
		s.issued++
		s.applied = s.issued
		s.current = nil
		s.notify(nil)
		return
	}

	detached := context.WithoutCancel(ctx)
	s.timer = time.AfterFunc(s.quiet, func() { s.fire(detached, query) })
}

func (s *Suggester) fire(ctx context.Context, query string) {
	s.mu.Lock()
	if s.closed || s.query != query {
		s.mu.Unlock()
		return
	}
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	results := s.searcher.Search(ctx, s.kind, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq <= s.applied {
		if s.onStale != nil {
			s.onStale()
		}
		return
	}
	s.applied = seq
	s.current = results
	s.notify(results)
}

// notify must be called with s.mu held.
func (s *Suggester) notify(refs []entity.Reference) {
	if s.onUpdate != nil {
		s.onUpdate(cloneRefs(refs))
	}
}

// Suggestions returns a copy of the most recently applied list.
func (s *Suggester) Suggestions() []entity.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRefs(s.current)
}

// Select returns the suggestion with the given id, if it is currently shown.
func (s *Suggester) Select(id string) (entity.Reference, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range s.current {
		if ref.ID == id {
			return ref, true
		}
	}
	return entity.Reference{}, false
}

// Close stops any pending search; later responses are dropped.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func cloneRefs(refs []entity.Reference) []entity.Reference {
	if refs == nil {
		return nil
	}
	out := make([]entity.Reference, len(refs))
	copy(out, refs)
	return out
}
