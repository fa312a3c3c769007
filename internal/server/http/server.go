package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rhurkes/rofka/internal/ingest"
	"github.com/rhurkes/rofka/internal/runtime"
	"github.com/rhurkes/rofka/internal/server/http/controllers"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

const requestTimeout = 30 * time.Second

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	log    logpkg.Logger
	stats  func() ingest.Stats
	router *chi.Mux
}

// Option customizes a Server.
type Option func(*Server)

// WithIngestStats exposes consumer counters on /v1/stats.
func WithIngestStats(fn func() ingest.Stats) Option {
	return func(s *Server) { s.stats = fn }
}

func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	s := &Server{rt: rt, log: logger.WithComponent("http"), router: chi.NewRouter()}
	for _, o := range opts {
		o(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(s.requestLog)
	s.router.Use(cors)

	reg := controllers.NewControllerRegistry(rt, s.log, s.stats)
	s.router.Route("/v1", reg.RegisterAllRoutes)

	s.srv = &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.log.Info("http admin listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			logpkg.Str("method", r.Method),
			logpkg.Str("path", r.URL.Path),
			logpkg.Int("status", ww.Status()),
			logpkg.Dur("elapsed", time.Since(start)),
			logpkg.Str("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
