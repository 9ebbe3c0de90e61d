package order

import (
	"context"
	"sync"
	"time"

	"rx-vendas/internal/entity"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/lookup"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultSessionTTL = 30 * time.Minute

// Session is one open composition workflow: a draft engine plus the
// suggestion state of its search fields.
type Session struct {
	ID        uuid.UUID
	Engine    *Engine
	CreatedAt time.Time

	suggesters map[entity.Kind]*lookup.Suggester
	lastSeen   time.Time
}

// Suggester returns the session's suggester for kind, or nil.
func (s *Session) Suggester(kind entity.Kind) *lookup.Suggester {
	return s.suggesters[kind]
}

func (s *Session) close() {
	for _, sg := range s.suggesters {
		sg.Close()
	}
}

type SessionConfig struct {
	TTL       time.Duration
	Debounce  time.Duration
	Searcher  lookup.Searcher
	NewEngine func() *Engine
	OnStale   func()
}

// SessionStore keeps sessions in memory only; idle sessions are dropped
// after TTL, so an abandoned draft is simply lost.
type SessionStore struct {
	cfg SessionConfig
	now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore(cfg SessionConfig) *SessionStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	return &SessionStore{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (st *SessionStore) Create() *Session {
	now := st.now()
	sess := &Session{
		ID:         uuid.New(),
		Engine:     st.cfg.NewEngine(),
		CreatedAt:  now,
		lastSeen:   now,
		suggesters: make(map[entity.Kind]*lookup.Suggester, 3),
	}

	if st.cfg.Searcher != nil {
		var opts []lookup.SuggesterOption
		if st.cfg.OnStale != nil {
			opts = append(opts, lookup.OnStale(st.cfg.OnStale))
		}
		for _, kind := range []entity.Kind{entity.KindCustomer, entity.KindEmployee, entity.KindProduct} {
			sess.suggesters[kind] = lookup.NewSuggester(st.cfg.Searcher, kind, st.cfg.Debounce, opts...)
		}
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess
}

// Get returns the session and marks it as active.
func (st *SessionStore) Get(id uuid.UUID) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = st.now()
	return sess, nil
}

// Discard drops the session (cancel or successful submit).
func (st *SessionStore) Discard(id uuid.UUID) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		sess.close()
	}
	return ok
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than TTL and returns how many went.
// A session whose submission is still in flight is kept.
func (st *SessionStore) Sweep() int {
	now := st.now()
	var expired []*Session

	st.mu.Lock()
	for id, sess := range st.sessions {
		if now.Sub(sess.lastSeen) > st.cfg.TTL && sess.Engine.State() != StateSubmitting {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (st *SessionStore) Run(ctx context.Context) {
	interval := st.cfg.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				logger.L().Info("expired idle composition sessions", zap.Int("count", n))
			}
		}
	}
}
