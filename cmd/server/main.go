package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rx-vendas/internal/api"
	"rx-vendas/internal/backend"
	"rx-vendas/internal/config"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/lookup"
	"rx-vendas/internal/metrics"
	"rx-vendas/internal/middleware"
	"rx-vendas/internal/order"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// startServerFunc is swapped out in tests.
var startServerFunc = func(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newServer(cfg)
	go app.sessions.Run(ctx)
	go app.limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.L().Info("🚀 sales desk running",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.BackendURL),
	)
	return startServerFunc(ctx, srv)
}

type server struct {
	router   http.Handler
	sessions *order.SessionStore
	limiter  *middleware.RateLimiter
}

func newServer(cfg *config.Config) *server {
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)

	lookupStats := &metrics.Lookup{}
	submitStats := &metrics.Submission{}
	provider := lookup.NewProvider(client, cfg.LookupLimit, lookupStats)
	rules := order.Rules{MaxDiscount: decimal.NewFromFloat(cfg.MaxDiscountPercent)}

	sessions := order.NewSessionStore(order.SessionConfig{
		TTL:      cfg.SessionTTL,
		Debounce: cfg.LookupDebounce,
		Searcher: provider,
		NewEngine: func() *order.Engine {
			return order.NewEngine(client, order.WithRules(rules), order.WithStats(submitStats))
		},
		OnStale: lookupStats.Stale.Inc,
	})

	h := api.NewHandler(api.Deps{
		Sessions:    sessions,
		Search:      provider,
		Sales:       client,
		LookupStats: lookupStats,
		SubmitStats: submitStats,
	})

	limiter := middleware.NewRateLimiter()

	return &server{
		router:   setupRouter(h, cfg.AllowedOrigin, limiter),
		sessions: sessions,
		limiter:  limiter,
	}
}

func setupRouter(h *api.Handler, origin string, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.TokenMiddleware)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(origin))
	r.Use(limiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h.RegisterRoutes(r)
	return r
}
