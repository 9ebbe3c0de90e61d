package lookup

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rx-vendas/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher records queries and lets a test hold individual responses back.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	gates   map[string]chan struct{}
	started chan string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{gates: map[string]chan struct{}{}, started: make(chan string, 16)}
}

func (f *fakeSearcher) hold(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeSearcher) Search(ctx context.Context, kind entity.Kind, query string) []entity.Reference {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := f.gates[query]
	f.mu.Unlock()

	f.started <- query
	if gate != nil {
		<-gate
	}
	return []entity.Reference{{Kind: kind, ID: query, Name: query}}
}

func (f *fakeSearcher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

const quiet = 20 * time.Millisecond

func TestSuggester_Debounce(t *testing.T) {
	fs := newFakeSearcher()
	s := NewSuggester(fs, entity.KindCustomer, quiet)
	defer s.Close()

	ctx := context.Background()
	s.Type(ctx, "a")
	s.Type(ctx, "an")
	s.Type(ctx, "ana")

	assert.Eventually(t, func() bool {
		got := s.Suggestions()
		return len(got) == 1 && got[0].ID == "ana"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"ana"}, fs.seen(), "only the last query in the quiet window reaches the network")
}

func TestSuggester_EmptyQueryClears(t *testing.T) {
	fs := newFakeSearcher()
	s := NewSuggester(fs, entity.KindCustomer, quiet)
	defer s.Close()

	ctx := context.Background()
	s.Type(ctx, "ana")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 1 }, time.Second, 5*time.Millisecond)

	s.Type(ctx, "")

	assert.Nil(t, s.Suggestions())
	time.Sleep(3 * quiet)
	assert.Equal(t, []string{"ana"}, fs.seen(), "an empty query never issues a search")
}

func TestSuggester_OutOfOrderResponseDiscarded(t *testing.T) {
	fs := newFakeSearcher()
	var stale atomic.Int32
	var updates atomic.Int32
	s := NewSuggester(fs, entity.KindProduct, quiet,
		OnStale(func() { stale.Add(1) }),
		OnUpdate(func([]entity.Reference) { updates.Add(1) }),
	)
	defer s.Close()

	ctx := context.Background()
	release := fs.hold("pn")

	s.Type(ctx, "pn")
	assert.Equal(t, "pn", <-fs.started)

	s.Type(ctx, "pneu")
	assert.Equal(t, "pneu", <-fs.started)

	require.Eventually(t, func() bool {
		got := s.Suggestions()
		return len(got) == 1 && got[0].ID == "pneu"
	}, time.Second, 5*time.Millisecond)

	close(release)

	assert.Eventually(t, func() bool { return stale.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "pneu", s.Suggestions()[0].ID, "the older response must not win")
	assert.Equal(t, int32(1), updates.Load())
}

func TestSuggester_ClearInvalidatesInFlight(t *testing.T) {
	fs := newFakeSearcher()
	s := NewSuggester(fs, entity.KindEmployee, quiet)
	defer s.Close()

	ctx := context.Background()
	release := fs.hold("bru")
	s.Type(ctx, "bru")
	<-fs.started

	s.Type(ctx, "")
	close(release)

	time.Sleep(3 * quiet)
	assert.Nil(t, s.Suggestions())
}

func TestSuggester_DetachedFromRequestCancellation(t *testing.T) {
	fs := newFakeSearcher()
	s := NewSuggester(fs, entity.KindCustomer, quiet)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s.Type(ctx, "ana")
	cancel()

	assert.Eventually(t, func() bool { return len(s.Suggestions()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSuggester_SelectAndClose(t *testing.T) {
	fs := newFakeSearcher()
	s := NewSuggester(fs, entity.KindCustomer, quiet)

	ctx := context.Background()
	s.Type(ctx, "ana")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 1 }, time.Second, 5*time.Millisecond)

	ref, ok := s.Select("ana")
	assert.True(t, ok)
	assert.Equal(t, "ana", ref.Name)

	_, ok = s.Select("nobody")
	assert.False(t, ok)

	s.Close()
	s.Type(ctx, "bia")
	time.Sleep(3 * quiet)
	assert.Equal(t, []string{"ana"}, fs.seen(), "a closed suggester ignores input")
}
