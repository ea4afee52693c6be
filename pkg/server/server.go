// Package server composes the two listeners (mock dispatch and admin API),
// the storage backend, and the expired-endpoint janitor into one runnable
// unit.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mockbay/mockbay/internal/seed"
	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/admin"
	"github.com/mockbay/mockbay/pkg/config"
	"github.com/mockbay/mockbay/pkg/dispatch"
	"github.com/mockbay/mockbay/pkg/registry"
	"github.com/mockbay/mockbay/pkg/token"
)

const shutdownTimeout = 10 * time.Second

// Server holds the composed components.
type Server struct {
	cfg config.Config
	log *slog.Logger

	store    storage.Store
	svc      *registry.Service
	mockSrv  *http.Server
	adminSrv *http.Server
	cron     *cron.Cron
}

// New wires the server from configuration. The store is opened here; Run
// closes it on exit.
func New(cfg config.Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var store storage.Store
	if cfg.InMemory {
		store = storage.NewMemoryStore()
		log.Warn("using in-memory storage, data will not survive a restart")
	} else {
		s, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		store = s
	}

	issuer, err := token.NewIssuer([]byte(cfg.SigningKey), log)
	if err != nil {
		store.Close()
		return nil, err
	}

	svc := registry.New(store, issuer, log)
	api := admin.NewAPI(svc, issuer, log)
	handler := dispatch.NewHandler(svc, issuer, log)

	srv := &Server{
		cfg:      cfg,
		log:      log,
		store:    store,
		svc:      svc,
		mockSrv:  &http.Server{Addr: cfg.MockAddr, Handler: handler},
		adminSrv: &http.Server{Addr: cfg.AdminAddr, Handler: api.Handler()},
		cron:     cron.New(),
	}

	if cfg.JanitorSchedule != "" {
		if _, err := srv.cron.AddFunc(cfg.JanitorSchedule, srv.purgeExpired); err != nil {
			store.Close()
			return nil, fmt.Errorf("invalid janitor schedule %q: %w", cfg.JanitorSchedule, err)
		}
	}
	return srv, nil
}

// Run starts both listeners and the janitor, then blocks until ctx is
// cancelled or a listener fails. Shutdown is graceful with a bounded
// timeout.
func (s *Server) Run(ctx context.Context) error {
	defer s.store.Close()

	if s.cfg.Seed {
		if err := seed.Run(ctx, s.svc, s.log); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}

	s.cron.Start()
	defer s.cron.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("mock listener starting", "addr", s.cfg.MockAddr)
		if err := s.mockSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.log.Info("admin listener starting", "addr", s.cfg.AdminAddr)
		if err := s.adminSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(
			s.mockSrv.Shutdown(shutdownCtx),
			s.adminSrv.Shutdown(shutdownCtx),
		)
	})
	return g.Wait()
}

// purgeExpired removes endpoints expired for longer than the retention
// window. Recently expired ones stay so dispatch can answer Gone.
func (s *Server) purgeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-time.Duration(s.cfg.RetentionHours) * time.Hour)
	n, err := s.svc.PurgeExpiredBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("expired endpoint purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("purged expired endpoints", "count", n, "cutoff", cutoff)
	}
}
