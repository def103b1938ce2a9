package window

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tfbscan/tfbscan/internal/types"
)

// Result is the outcome of a full sliding scan.
type Result struct {
	// Windows are the accepted windows in acceptance order. Never nil.
	Windows []types.WindowResult
	// Candidates is the number of windows scored.
	Candidates int
	// Suppressed counts accepted candidates dropped because their score
	// equalled the previous accepted candidate's score.
	Suppressed int
	// Degenerate counts non-finite ratios skipped across all windows.
	Degenerate int
}

// Windows enumerates the candidate windows for p. The last window always
// starts before PromoterLength-WindowSize, so no window extends past the
// promoter.
func Windows(p Params) []Window {
	step := p.step()
	var out []Window
	for start := 0; start < p.PromoterLength-p.WindowSize; start += step {
		out = append(out, Window{Start: start, End: start + p.WindowSize})
	}
	return out
}

// Scan scores every candidate window of hs and selects the accepted ones.
func Scan(ctx context.Context, hs *HitSet, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	scored, err := scoreAll(ctx, hs, p)
	if err != nil {
		return Result{}, err
	}
	res := Accept(scored, p.WindowThreshold)
	for _, s := range scored {
		res.Degenerate += s.Degenerate
	}
	return res, nil
}

func scoreAll(ctx context.Context, hs *HitSet, p Params) ([]Scored, error) {
	wins := Windows(p)
	out := make([]Scored, len(wins))
	if p.Workers <= 1 {
		for i, w := range wins {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = ScoreWindow(hs, w, p)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i, w := range wins {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ScoreWindow(hs, w, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Accept folds scored candidates, in left-to-right order, into the accepted
// window list. A candidate is accepted when 0 < score < threshold. An
// accepted candidate whose score equals the previous accepted candidate's
// score is suppressed, but still becomes the new comparison baseline.
func Accept(scored []Scored, threshold float64) Result {
	res := Result{Windows: []types.WindowResult{}, Candidates: len(scored)}
	var last float64
	next := 1
	for _, s := range scored {
		if !(s.Score > 0 && s.Score < threshold) {
			continue
		}
		if s.Score == last {
			res.Suppressed++
		} else {
			res.Windows = append(res.Windows, types.WindowResult{
				ID:           next,
				Start:        s.Start,
				End:          s.End,
				Score:        s.Score,
				Observations: s.Observations,
			})
			next++
		}
		last = s.Score
	}
	return res
}
