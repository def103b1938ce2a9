package core

import (
	"context"
	"time"

	"github.com/tfbscan/tfbscan/internal/app"
	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/types"
	"github.com/tfbscan/tfbscan/internal/window"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config       = engine.Config
	Result       = engine.Result
	WindowResult = types.WindowResult
	Hit          = types.Hit
	Params       = window.Params
	SequenceHits = window.SequenceHits
)

// Options locate the data directory and remote sources used by Search.
type Options struct {
	DataDir string
	// Email is sent to NCBI with every download.
	Email   string
	APIKey  string
	Timeout time.Duration
	Offline bool
}

// Search resolves motif and promoters (downloading what the data directory
// lacks) and returns the accepted windows.
func Search(ctx context.Context, cfg Config, opts Options) (Result, error) {
	a, err := app.New(app.Options{
		DataDir: opts.DataDir,
		Email:   opts.Email,
		APIKey:  opts.APIKey,
		Timeout: opts.Timeout,
		Offline: opts.Offline,
	})
	if err != nil {
		return Result{}, err
	}
	return a.Search(ctx, opts.Email, cfg)
}

// ScanHits runs the sliding window scan on precomputed hits, in the given
// sequence order.
func ScanHits(ctx context.Context, hits []SequenceHits, p Params) ([]WindowResult, error) {
	hs := window.NewHitSet()
	for _, s := range hits {
		if err := hs.Add(s.ID, s.Hits); err != nil {
			return nil, err
		}
	}
	res, err := window.Scan(ctx, hs, p)
	if err != nil {
		return nil, err
	}
	return res.Windows, nil
}
