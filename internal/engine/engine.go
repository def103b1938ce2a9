package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tfbscan/tfbscan/internal/cache"
	"github.com/tfbscan/tfbscan/internal/fasta"
	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/logger"
	"github.com/tfbscan/tfbscan/internal/metrics"
	"github.com/tfbscan/tfbscan/internal/pssm"
	"github.com/tfbscan/tfbscan/internal/types"
	"github.com/tfbscan/tfbscan/internal/window"
)

var (
	// ErrNoMotif is returned when no motif id is given.
	ErrNoMotif = errors.New("motif id is required")
	// ErrNoSequences is returned when no sequence id is given.
	ErrNoSequences = errors.New("at least one sequence id is required")
	// ErrMissingSequence is returned when a sequence source yields nothing.
	ErrMissingSequence = errors.New("missing promoter sequence")
	// ErrMalformedHits is returned when the matcher reports impossible hits.
	ErrMalformedHits = errors.New("malformed matcher output")
)

// Defaults mirror the public API defaults.
const (
	DefaultPromoterLength = 1000
	DefaultWindowSize     = 40
)

// Config describes one search.
type Config struct {
	Motif     string
	Sequences []string

	PromoterLength  int
	WindowSize      int
	WindowThreshold float64
	// Threshold is the minimum matcher score for a hit.
	Threshold   float64
	Pseudocount float64
	// Workers > 1 scores windows concurrently.
	Workers int
	NoCache bool
}

// Params returns the window scan parameters of cfg.
func (c Config) Params() window.Params {
	return window.Params{
		PromoterLength:  c.PromoterLength,
		WindowSize:      c.WindowSize,
		WindowThreshold: c.WindowThreshold,
		Workers:         c.Workers,
	}
}

// Validate checks cfg before any collaborator is called.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Motif) == "" {
		return ErrNoMotif
	}
	if len(c.Sequences) == 0 {
		return ErrNoSequences
	}
	if c.Pseudocount < 0 {
		return &window.ConfigError{Field: "pseudocount", Reason: "must be >= 0"}
	}
	return c.Params().Validate()
}

// IsInvalidInput reports whether err was caused by the request rather than
// by a collaborator or the environment.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrNoMotif) ||
		errors.Is(err, ErrNoSequences) ||
		errors.Is(err, window.ErrInvalidConfig) ||
		errors.Is(err, window.ErrDuplicateSequence)
}

// MotifSource resolves motif ids to count matrices.
type MotifSource interface {
	Motif(ctx context.Context, id string) (jaspar.Matrix, error)
}

// SequenceSource resolves sequence ids to promoter sequences.
type SequenceSource interface {
	Promoter(ctx context.Context, id string, length int) (fasta.Record, error)
}

// Matcher finds motif hits in one sequence.
type Matcher interface {
	Search(seq []byte, threshold float64) []types.Hit
}

// MatcherFactory builds a Matcher from a count matrix.
type MatcherFactory func(m jaspar.Matrix, pseudocount float64) (Matcher, error)

// PSSMMatcher is the default MatcherFactory.
func PSSMMatcher(m jaspar.Matrix, pseudocount float64) (Matcher, error) {
	mat, err := pssm.FromCounts(m.Counts, pseudocount)
	if err != nil {
		return nil, fmt.Errorf("motif %s: %w", m.ID, err)
	}
	return mat, nil
}

// Engine runs searches. Motifs and Sequences are required; the rest is
// optional.
type Engine struct {
	Motifs     MotifSource
	Sequences  SequenceSource
	NewMatcher MatcherFactory
	Cache      *cache.DB
	Metrics    *metrics.Metrics
	Log        *logger.Logger
}

// Stats summarizes a search.
type Stats struct {
	Sequences  int
	Hits       int
	Candidates int
	Suppressed int
	Degenerate int
	Cached     bool
	Duration   time.Duration
}

// Result is the outcome of one search. Windows is never nil; an empty
// slice means no window qualified.
type Result struct {
	Motif   string
	TF      string
	Windows []types.WindowResult
	Stats   Stats
}

// Search runs cfg.
func (e *Engine) Search(ctx context.Context, cfg Config) (Result, error) {
	started := time.Now()
	res, err := e.search(ctx, cfg)
	res.Stats.Duration = time.Since(started)
	e.Metrics.RecordSearch(metrics.SearchStats{
		Candidates: res.Stats.Candidates,
		Accepted:   len(res.Windows),
		Suppressed: res.Stats.Suppressed,
		Degenerate: res.Stats.Degenerate,
		Cached:     res.Stats.Cached,
	}, res.Stats.Duration, err)
	e.log().LogSearch(cfg.Motif, len(cfg.Sequences), len(res.Windows), res.Stats.Duration, err)
	return res, err
}

func (e *Engine) search(ctx context.Context, cfg Config) (Result, error) {
	res := Result{Motif: cfg.Motif, Windows: []types.WindowResult{}}
	if err := cfg.Validate(); err != nil {
		return res, err
	}

	mat, err := e.Motifs.Motif(ctx, cfg.Motif)
	if err != nil {
		return res, fmt.Errorf("motif %s: %w", cfg.Motif, err)
	}
	res.TF = mat.Name
	newMatcher := e.NewMatcher
	if newMatcher == nil {
		newMatcher = PSSMMatcher
	}
	matcher, err := newMatcher(mat, cfg.Pseudocount)
	if err != nil {
		return res, err
	}

	key := cache.NewHasher().
		String(cfg.Motif).
		String(mat.Name).
		Int(cfg.PromoterLength).
		Int(cfg.WindowSize).
		Float(cfg.WindowThreshold).
		Float(cfg.Threshold).
		Float(cfg.Pseudocount)

	hs := window.NewHitSet()
	for _, id := range cfg.Sequences {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := e.Sequences.Promoter(ctx, id, cfg.PromoterLength)
		if err != nil {
			return res, fmt.Errorf("sequence %s: %w", id, err)
		}
		if len(rec.Seq) == 0 {
			return res, fmt.Errorf("%w: %s", ErrMissingSequence, id)
		}
		hits := matcher.Search(rec.Seq, cfg.Threshold)
		if err := checkHits(hits, len(rec.Seq)); err != nil {
			return res, fmt.Errorf("sequence %s: %w", id, err)
		}
		if err := hs.Add(id, hits); err != nil {
			return res, err
		}
		key.String(id).Bytes(rec.Seq)
		e.log().Debug("sequence matched").Str("sequence", id).Int("length", len(rec.Seq)).Int("hits", len(hits)).Send()
	}
	res.Stats.Sequences = hs.Len()
	res.Stats.Hits = hs.TotalHits()

	useCache := e.Cache != nil && !cfg.NoCache
	if useCache {
		entry, ok, err := e.Cache.Load(key.Key())
		if err != nil {
			e.log().Warn("cache read failed").Err(err).Send()
		} else if ok {
			res.Windows = entry.Windows
			res.Stats.Cached = true
			return res, nil
		}
	}

	scan, err := window.Scan(ctx, hs, cfg.Params())
	if err != nil {
		return res, err
	}
	res.Windows = scan.Windows
	res.Stats.Candidates = scan.Candidates
	res.Stats.Suppressed = scan.Suppressed
	res.Stats.Degenerate = scan.Degenerate

	if useCache {
		if err := e.Cache.Save(cache.Entry{Key: key.Key(), Motif: cfg.Motif, TF: res.TF, Windows: res.Windows}); err != nil {
			e.log().Warn("cache write failed").Err(err).Send()
		}
	}
	return res, nil
}

// checkHits rejects positions outside the sequence and non-finite scores.
func checkHits(hits []types.Hit, seqLen int) error {
	for _, h := range hits {
		if h.Position >= seqLen || h.Position < -seqLen {
			return fmt.Errorf("%w: position %d outside sequence of length %d", ErrMalformedHits, h.Position, seqLen)
		}
		if math.IsNaN(h.Score) || math.IsInf(h.Score, 0) {
			return fmt.Errorf("%w: non-finite score at position %d", ErrMalformedHits, h.Position)
		}
	}
	return nil
}

// SearchAll runs several independent searches concurrently. Results keep
// the order of cfgs. The first failure cancels the remaining searches.
func (e *Engine) SearchAll(ctx context.Context, cfgs []Config, limit int) ([]Result, error) {
	out := make([]Result, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, cfg := range cfgs {
		g.Go(func() error {
			res, err := e.Search(gctx, cfg)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Outcome is the result of one search run by SearchEach.
type Outcome struct {
	Result Result
	Err    error
}

// SearchEach runs every config to completion, even when some fail, and
// returns one Outcome per config in the order of cfgs.
func (e *Engine) SearchEach(ctx context.Context, cfgs []Config, limit int) []Outcome {
	out := make([]Outcome, len(cfgs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, cfg := range cfgs {
		g.Go(func() error {
			res, err := e.Search(ctx, cfg)
			out[i] = Outcome{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Engine) log() *logger.Logger {
	if e.Log == nil {
		return logger.Nop()
	}
	return e.Log
}
