// Package server exposes TFBS searches over HTTP.
//
//	POST /tfbs    run a search
//	GET  /        welcome page (also /welcome)
//	GET  /health  liveness
//	GET  /metrics Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tfbscan/tfbscan/internal/app"
	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/logger"
	"github.com/tfbscan/tfbscan/internal/metrics"
	"github.com/tfbscan/tfbscan/internal/report"
	"github.com/tfbscan/tfbscan/internal/store"
)

const (
	msgMissingParams = "Motif and mRNA parameters are required"
	msgInternal      = "An internal error occurred. Please try again later."
)

// Searcher runs one search. email is the NCBI contact address of the caller.
type Searcher interface {
	Search(ctx context.Context, email string, cfg engine.Config) (engine.Result, error)
}

// Request is the POST /tfbs body. Short keys follow the public API.
type Request struct {
	Email string `json:"email"`
	// T is the motif score threshold.
	T *float64 `json:"t"`
	// L is the promoter length.
	L *int `json:"l"`
	// W is the window size.
	W *int   `json:"w"`
	M string `json:"m"`
	// S is the window score threshold.
	S *float64 `json:"s"`
	// P is the pseudocount.
	P    *float64 `json:"p"`
	MRNA []string `json:"mrna"`
}

// Options configures a Server.
type Options struct {
	Addr    string
	Workers int
	// Timeout bounds a single search; 0 means no limit.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Log     *logger.Logger
}

// Server is the HTTP front end.
type Server struct {
	searcher Searcher
	opts     Options
	log      *logger.Logger
	server   *http.Server
}

// New builds a server around searcher.
func New(searcher Searcher, opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	s := &Server{searcher: searcher, opts: opts, log: opts.Log.With("http")}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tfbs", s.handleTFBS)
	mux.HandleFunc("GET /{$}", handleWelcome)
	mux.HandleFunc("GET /welcome", handleWelcome)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "tfbscan"})
	})
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics.Handler())
	}
	return s.instrument(mux)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("listening").Str("addr", s.server.Addr).Send()
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTFBS(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.M == "" || len(req.MRNA) == 0 {
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	if req.T == nil || req.S == nil {
		writeError(w, http.StatusBadRequest, "Thresholds t and s are required")
		return
	}
	cfg := req.Config(s.opts.Workers)

	ctx := r.Context()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	res, err := s.searcher.Search(ctx, req.Email, cfg)
	if err != nil {
		if isClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("search failed").Err(err).Str("motif", req.M).Send()
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, report.Response(res.TF, res.Windows, report.Parameters{
		Motif:           cfg.Motif,
		Threshold:       cfg.Threshold,
		PromoterLength:  cfg.PromoterLength,
		WindowSize:      cfg.WindowSize,
		WindowThreshold: cfg.WindowThreshold,
		Pseudocount:     cfg.Pseudocount,
		MRNA:            cfg.Sequences,
	}))
}

// isClientError reports whether err should be answered with 400.
func isClientError(err error) bool {
	return engine.IsInvalidInput(err) ||
		errors.Is(err, store.ErrBadName) ||
		errors.Is(err, app.ErrNoEmail)
}

// Config maps the request onto an engine configuration, applying the public
// API defaults (l=1000, w=40, p=0).
func (r Request) Config(workers int) engine.Config {
	cfg := engine.Config{
		Motif:          r.M,
		Sequences:      r.MRNA,
		PromoterLength: engine.DefaultPromoterLength,
		WindowSize:     engine.DefaultWindowSize,
		Workers:        workers,
	}
	if r.L != nil {
		cfg.PromoterLength = *r.L
	}
	if r.W != nil {
		cfg.WindowSize = *r.W
	}
	if r.T != nil {
		cfg.Threshold = *r.T
	}
	if r.S != nil {
		cfg.WindowThreshold = *r.S
	}
	if r.P != nil {
		cfg.Pseudocount = *r.P
	}
	return cfg
}

const welcomeHTML = `<html>
    <head>
        <title>Welcome to the TFBS API</title>
    </head>
    <body>
        <h2><b>Welcome to the TFBS API</b></h2>
        <p>This API finds Transcription Factor Binding Sites (TFBS) in promoter sequences of given genes.</p>
        <h3>Available Endpoints:</h3>
        <ul>
            <li><b>GET /health</b> - Check the health status of the API</li>
            <li><b>POST /tfbs</b> - Find TFBS in promoter sequences of given genes</li>
            <li><b>GET /metrics</b> - Prometheus metrics</li>
        </ul>
    </body>
</html>
`

func handleWelcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(welcomeHTML))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request metrics and logs.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if m := s.opts.Metrics; m != nil {
			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		s.opts.Metrics.RecordHTTPRequest(routeLabel(r.URL.Path), strconv.Itoa(rec.status), duration)
		s.log.LogHTTPRequest(r.Method, r.URL.Path, rec.status, duration)
	})
}

// routeLabel bounds metric label cardinality to known routes.
func routeLabel(path string) string {
	switch path {
	case "/", "/welcome", "/tfbs", "/health", "/metrics":
		return path
	}
	return "other"
}
