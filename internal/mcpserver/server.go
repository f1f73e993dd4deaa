package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
	"github.com/NassimMahmoudi/mcp-server/internal/metrics"
	"github.com/NassimMahmoudi/mcp-server/internal/service"
)

type Config struct {
	Name            string
	Version         string
	Addr            string
	Path            string
	ShutdownTimeout time.Duration
	DefaultLimit    int
}

type Server struct {
	cfg     Config
	mcp     *mcp.Server
	search  service.SearchService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, svc service.SearchService, logger *zap.Logger, m *metrics.Metrics) *Server {
	if cfg.Name == "" {
		cfg.Name = "SearchServer"
	}
	if cfg.Version == "" {
		cfg.Version = "v1.0.0"
	}
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:8080"
	}
	if cfg.Path == "" {
		cfg.Path = "/mcp"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = domain.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg: cfg,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		search:  svc,
		logger:  logger,
		metrics: m,
	}
	s.registerTools()

	return s
}

// MCP exposes the protocol server, e.g. for in-process transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler serves the MCP endpoint, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(s.cfg.Path, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	return s.recoverer(mux)
}

func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve blocks until ctx is done, then shuts down within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting MCP search server",
			zap.String("addr", ln.Addr().String()),
			zap.String("path", s.cfg.Path),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("MCP search server stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in http handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
