package order

import (
	"context"
	"testing"
	"time"

	"rx-vendas/internal/backend"
	"rx-vendas/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSearcher struct{}

func (staticSearcher) Search(ctx context.Context, kind entity.Kind, query string) []entity.Reference {
	return []entity.Reference{{Kind: kind, ID: "1", Name: query}}
}

func newTestStore(t *testing.T, cfg SessionConfig) (*SessionStore, *time.Time) {
	t.Helper()
	if cfg.NewEngine == nil {
		cfg.NewEngine = func() *Engine { return NewEngine(new(MockSaleCreator)) }
	}
	st := NewSessionStore(cfg)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	return st, &now
}

func TestSessionStore_CreateGetDiscard(t *testing.T) {
	st, _ := newTestStore(t, SessionConfig{})

	sess := st.Create()
	require.NotNil(t, sess)
	assert.Equal(t, StateEmpty, sess.Engine.State())
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	assert.True(t, st.Discard(sess.ID))
	assert.False(t, st.Discard(sess.ID))

	_, err = st.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = st.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Suggesters(t *testing.T) {
	t.Run("Without searcher", func(t *testing.T) {
		st, _ := newTestStore(t, SessionConfig{})
		sess := st.Create()
		assert.Nil(t, sess.Suggester(entity.KindCustomer))
	})

	t.Run("One per kind", func(t *testing.T) {
		st, _ := newTestStore(t, SessionConfig{Searcher: staticSearcher{}, Debounce: time.Millisecond})
		sess := st.Create()
		defer st.Discard(sess.ID)

		for _, kind := range []entity.Kind{entity.KindCustomer, entity.KindEmployee, entity.KindProduct} {
			assert.NotNil(t, sess.Suggester(kind), kind)
		}
		assert.NotSame(t, sess.Suggester(entity.KindCustomer), sess.Suggester(entity.KindProduct))
	})
}

func TestSessionStore_Sweep(t *testing.T) {
	st, now := newTestStore(t, SessionConfig{TTL: 10 * time.Minute})

	idle := st.Create()
	*now = now.Add(8 * time.Minute)
	active := st.Create()

	*now = now.Add(5 * time.Minute)
	_, err := st.Get(active.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, st.Sweep())
	_, err = st.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(active.ID)
	assert.NoError(t, err)
}

func TestSessionStore_SweepKeepsSubmitting(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	creator := SaleCreatorFunc(func(ctx context.Context, req backend.CreateSaleRequest) (*backend.Sale, error) {
		close(entered)
		<-release
		return &backend.Sale{ID: "v-1"}, nil
	})

	st, now := newTestStore(t, SessionConfig{
		TTL:       time.Minute,
		NewEngine: func() *Engine { return NewEngine(creator) },
	})
	sess := st.Create()
	fillEngine(t, sess.Engine)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Engine.Submit(authedCtx())
		done <- err
	}()
	<-entered

	*now = now.Add(time.Hour)
	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, st.Sweep())
}

func TestSessionStore_RunStopsOnCancel(t *testing.T) {
	st, _ := newTestStore(t, SessionConfig{TTL: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		st.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
