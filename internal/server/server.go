// Package server exposes the dataset, metrics, and query operations over
// HTTP. All responses are JSON; errors carry a stable code and map to a
// status through the apperr taxonomy.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/signalworks/vendormetrics/internal/config"
	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/internal/metrics"
	"github.com/signalworks/vendormetrics/internal/nlquery"
)

// Server wires the dataset store, metrics engine, and query interpreter
// behind a chi router. The interpreter may be nil when no API key is
// configured; the query endpoint then reports queries as disabled.
type Server struct {
	cfg         *config.Config
	store       *dataset.Store
	engine      *metrics.Engine
	interpreter *nlquery.Interpreter
}

// New builds a Server around the given components.
func New(cfg *config.Config, store *dataset.Store, engine *metrics.Engine, interpreter *nlquery.Interpreter) *Server {
	return &Server{cfg: cfg, store: store, engine: engine, interpreter: interpreter}
}

// Router assembles the route tree with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/metrics", func(r chi.Router) {
			r.Get("/info", s.handleInfo)
			r.Post("/upload", s.handleUpload)
			r.Get("/vendors/{vendor}", s.handleVendorMetrics)
			r.Get("/period", s.handlePeriodMetrics)
			r.Get("/compare", s.handleCompare)
			r.Get("/drawdowns", s.handleDrawdowns)
		})
		r.Post("/query", s.handleQuery)
		r.Get("/query/supported", s.handleSupportedPatterns)
	})

	return r
}

// HTTPServer returns a configured http.Server ready for ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// requestLogger logs each request through the global zap logger with the
// chi request ID attached.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			ww.Header().Set("X-Request-Id", reqID)
		}
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
