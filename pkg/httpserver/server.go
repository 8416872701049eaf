package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/searchkit/pkg/lifecycle"
	"github.com/dmitrymomot/searchkit/pkg/logger"
)

type config struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	managed         []lifecycle.Managed
}

// Server serves HTTP for as long as the components registered with it are
// running. It starts them before listening and stops them after draining.
type Server struct {
	cfg config

	mu   sync.Mutex
	srv  *http.Server
	once sync.Once
}

// New returns a Server listening on :8080 unless WithAddr says otherwise.
func New(opts ...Option) *Server {
	cfg := config{addr: ":8080", shutdownTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Discard()
	}
	return &Server{cfg: cfg}
}

// Run starts the managed components, then serves handler until ctx is done,
// a termination signal arrives or Shutdown is called. A nil handler answers
// 404. Components are stopped after the server has drained, bounded by the
// shutdown timeout.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	srv, err := s.claim(handler)
	if err != nil {
		return err
	}
	log := s.cfg.logger

	if err := lifecycle.StartAll(ctx, s.cfg.managed...); err != nil {
		log.ErrorContext(ctx, "failed to start components", logger.Error(err))
		return errors.Join(ErrStart, err)
	}

	var errs []error
	if err := s.serve(ctx, srv); err != nil {
		errs = append(errs, errors.Join(ErrStart, err))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), s.cfg.shutdownTimeout)
	defer cancel()
	if err := lifecycle.StopAll(stopCtx, s.cfg.managed...); err != nil {
		errs = append(errs, errors.Join(ErrShutdown, err))
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("http server stopped with errors", logger.Error(err))
		return err
	}
	log.Info("http server stopped")
	return nil
}

// claim builds the http.Server for this run. A Server runs at most once.
func (s *Server) claim(handler http.Handler) (*http.Server, error) {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil, errors.Join(ErrStart, ErrAlreadyRunning)
	}
	s.srv = &http.Server{
		Addr:         s.cfg.addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.readTimeout,
		WriteTimeout: s.cfg.writeTimeout,
		IdleTimeout:  s.cfg.idleTimeout,
	}
	return s.srv, nil
}

// serve blocks until the listener fails or the server is shut down.
// A clean shutdown returns nil.
func (s *Server) serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.cfg.logger.InfoContext(ctx, "http server started", slog.String("addr", srv.Addr))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		_ = s.Shutdown(context.Background())
		err = <-errCh
	case <-sig:
		_ = s.Shutdown(context.Background())
		err = <-errCh
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains the server started by Run. Only the first call has an
// effect; errors are joined with ErrShutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
