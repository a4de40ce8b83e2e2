// Package web serves the assessment generator over HTTP: the form, a
// live session page fed by Server-Sent Events, the printable paper, the
// blueprint, and the export downloads.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/metrics"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/render"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = template.Must(template.New("web").ParseFS(templateFS, "templates/*.tmpl"))

// Config controls the HTTP surface.
type Config struct {
	AllowedOrigins []string
	RatePerMinute  int
	RateBurst      int
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns settings suitable for local use.
func DefaultConfig() Config {
	return Config{
		RatePerMinute:  6,
		RateBurst:      3,
		SessionTTL:     2 * time.Hour,
		RequestTimeout: 30 * time.Second,
	}
}

// Runner starts a generation against a session.
type Runner interface {
	Run(ctx context.Context, s *orchestrator.Session, in assessment.FormInputs) (*orchestrator.Result, error)
}

// Server holds the HTTP handlers and the runs they started.
type Server struct {
	cfg      Config
	runner   Runner
	blobs    blobstore.Store
	paper    render.PaperOptions
	registry *Registry
	limiter  *RateLimiter
	metrics  *metrics.Prometheus
	logger   *zap.Logger

	runCtx    context.Context
	cancelRun context.CancelFunc
	runs      sync.WaitGroup
}

// Deps are the collaborators of a Server. Metrics may be nil.
type Deps struct {
	Runner  Runner
	Blobs   blobstore.Store
	Paper   render.PaperOptions
	Metrics *metrics.Prometheus
	Logger  *zap.Logger
}

// New creates a Server.
func New(deps Deps, cfg Config) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	logger := deps.Logger.Named("web")
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		runner:    deps.Runner,
		blobs:     deps.Blobs,
		paper:     deps.Paper,
		registry:  NewRegistry(cfg.SessionTTL, logger),
		limiter:   NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst),
		metrics:   deps.Metrics,
		logger:    logger,
		runCtx:    ctx,
		cancelRun: cancel,
	}
}

// Registry exposes the session registry.
func (s *Server) Registry() *Registry { return s.registry }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.accessLog, middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.observe)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// SSE streams outlive the request timeout.
	r.Get("/api/sessions/{id}/events", s.handleEvents)

	r.Group(func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}

		r.Get("/", s.handleForm)
		r.Get("/healthz", s.handleHealth)
		if s.metrics != nil {
			r.Handle("/metrics", s.metrics.Handler())
		}

		r.With(s.limiter.Middleware).Post("/generate", s.handleGenerate)
		r.With(s.limiter.Middleware).Post("/api/assessments", s.handleCreateAssessment)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Get("/paper", s.handlePaper)
			r.Get("/blueprint", s.handleBlueprint)
			r.Get("/export/word", s.handleExportWord)
			r.Get("/export/excel", s.handleExportExcel)
			r.Post("/reset", s.handleReset)
		})
		r.Get("/api/sessions/{id}", s.handleSnapshot)
		r.Get("/illustrations/{ref}", s.handleIllustration)
	})
	return r
}

// Start runs the housekeeping loops until ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.registry.Janitor(ctx, time.Minute)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.limiter.Prune(10 * time.Minute)
			}
		}
	}()
}

// Close stops in-flight runs and waits for them to return.
func (s *Server) Close() {
	s.cancelRun()
	s.runs.Wait()
}

// startRun generates in the background. The run outlives the request
// that started it.
func (s *Server) startRun(id string, session *orchestrator.Session, in assessment.FormInputs) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		res, err := s.runner.Run(s.runCtx, session, in)
		if err != nil {
			s.logger.Warn("run ended with error", zap.String("session", id), zap.Error(err))
			return
		}
		s.logger.Info("run finished", zap.String("session", id),
			zap.Int("questions", len(res.Data.Questions)),
			zap.Int("illustration_failures", len(res.Failed())),
		)
	}()
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}
