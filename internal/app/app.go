// Package app wires the data store, remote clients, result cache, search log
// and metrics into a ready-to-use search service shared by the CLI and the
// HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tfbscan/tfbscan/internal/audit"
	"github.com/tfbscan/tfbscan/internal/cache"
	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/entrez"
	"github.com/tfbscan/tfbscan/internal/fasta"
	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/logger"
	"github.com/tfbscan/tfbscan/internal/metrics"
	"github.com/tfbscan/tfbscan/internal/store"
)

// ErrNoEmail is returned when a download is needed but no contact email is
// configured for NCBI.
var ErrNoEmail = errors.New("an email address is required for NCBI E-utilities")

// Options configures an App.
type Options struct {
	DataDir       string
	Email         string
	APIKey        string
	EntrezBaseURL string
	JASPARBaseURL string
	Timeout       time.Duration
	// Offline disables downloads; missing files are errors.
	Offline bool
	Metrics *metrics.Metrics
	Log     *logger.Logger
}

// App is a configured search service.
type App struct {
	opts   Options
	Store  *store.Store
	Cache  *cache.DB
	Audit  *audit.Log
	jaspar *jaspar.Client
	log    *logger.Logger
}

// New opens the data directory and prepares the remote clients.
func New(opts Options) (*App, error) {
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	st, err := store.Open(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	db, err := cache.Open(filepath.Join(opts.DataDir, "cache"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &App{
		opts:   opts,
		Store:  st,
		Cache:  db,
		Audit:  audit.NewLog(opts.DataDir),
		jaspar: jaspar.NewClient(opts.JASPARBaseURL, opts.Timeout),
		log:    opts.Log,
	}, nil
}

// Motifs returns the motif source backed by the store and JASPAR.
func (a *App) Motifs() *store.Motifs {
	src := &store.Motifs{Store: a.Store, Log: a.log.SourceLogger("jaspar")}
	if !a.opts.Offline {
		src.Remote = &countedMotifs{next: a.jaspar, m: a.opts.Metrics}
	}
	return src
}

// Promoters returns the sequence source backed by the store and NCBI. email
// overrides the configured contact address when set.
func (a *App) Promoters(email string) *store.Promoters {
	src := &store.Promoters{Store: a.Store, Log: a.log.SourceLogger("entrez")}
	if a.opts.Offline {
		return src
	}
	if email == "" {
		email = a.opts.Email
	}
	client := entrez.NewClient(a.opts.EntrezBaseURL, email, a.opts.APIKey, a.opts.Timeout)
	client.Log = a.log.SourceLogger("entrez")
	src.Remote = &countedPromoters{next: client, email: email, m: a.opts.Metrics}
	return src
}

// Engine returns a search engine using email for NCBI downloads.
func (a *App) Engine(email string) *engine.Engine {
	return &engine.Engine{
		Motifs:    a.Motifs(),
		Sequences: a.Promoters(email),
		Cache:     a.Cache,
		Metrics:   a.opts.Metrics,
		Log:       a.log.With("engine"),
	}
}

// Search runs cfg and appends the outcome to the search log.
func (a *App) Search(ctx context.Context, email string, cfg engine.Config) (engine.Result, error) {
	started := time.Now()
	res, err := a.Engine(email).Search(ctx, cfg)
	a.record(started, cfg, res, err)
	return res, err
}

// SearchAll runs several motifs concurrently and logs every search, failed
// ones included. The first failure in cfgs order is returned.
func (a *App) SearchAll(ctx context.Context, email string, cfgs []engine.Config, limit int) ([]engine.Result, error) {
	started := time.Now()
	outcomes := a.Engine(email).SearchEach(ctx, cfgs, limit)
	out := make([]engine.Result, len(outcomes))
	var firstErr error
	for i, o := range outcomes {
		a.record(started, cfgs[i], o.Result, o.Err)
		if o.Err != nil && firstErr == nil {
			firstErr = o.Err
		}
		out[i] = o.Result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (a *App) record(started time.Time, cfg engine.Config, res engine.Result, err error) {
	rec := audit.SearchRecord{
		Timestamp:       started,
		Motif:           cfg.Motif,
		TF:              res.TF,
		Sequences:       cfg.Sequences,
		PromoterLength:  cfg.PromoterLength,
		WindowSize:      cfg.WindowSize,
		WindowThreshold: cfg.WindowThreshold,
		Threshold:       cfg.Threshold,
		Pseudocount:     cfg.Pseudocount,
		Windows:         len(res.Windows),
		Cached:          res.Stats.Cached,
		Duration:        res.Stats.Duration.Round(time.Millisecond).String(),
		TopWindows:      audit.Summarize(res.Windows, 5),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if aerr := a.Audit.Append(rec); aerr != nil {
		a.log.Warn("search log write failed").Err(aerr).Send()
	}
}

type countedMotifs struct {
	next store.MotifFetcher
	m    *metrics.Metrics
}

func (c *countedMotifs) Fetch(ctx context.Context, id string) (jaspar.Matrix, error) {
	mat, err := c.next.Fetch(ctx, id)
	c.m.RecordFetch("jaspar", err)
	return mat, err
}

type countedPromoters struct {
	next  store.PromoterFetcher
	email string
	m     *metrics.Metrics
}

func (c *countedPromoters) Promoter(ctx context.Context, accession string, length int) (fasta.Record, error) {
	if c.email == "" {
		return fasta.Record{}, ErrNoEmail
	}
	rec, err := c.next.Promoter(ctx, accession, length)
	c.m.RecordFetch("entrez", err)
	return rec, err
}
