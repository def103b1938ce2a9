package window

import (
	"math"

	"github.com/tfbscan/tfbscan/internal/types"
)

// Window is the half-open promoter interval [Start, End).
type Window struct {
	Start int
	End   int
}

// Scored is the outcome of scoring one candidate window.
type Scored struct {
	Window
	Score float64
	// Rows holds the qualifying adjusted positions of each contributing
	// sequence, in HitSet order.
	Rows [][]int
	// Observations has one entry per contributing sequence.
	Observations []types.SequenceObservation
	// Degenerate counts ratios skipped because they were not finite.
	Degenerate int
}

// ScoreWindow computes the proximity score of hs inside w.
//
// Only consecutive rows are compared, and for every pair (a, b) with a from
// row i and b from row i+1 the ratio |a-b|/b counts when it is below the
// closeness threshold. When a sequence has several hits in the window the
// observation keeps the last one examined.
func ScoreWindow(hs *HitSet, w Window, p Params) Scored {
	out := Scored{Window: w}
	for _, seq := range hs.sequences() {
		var row []int
		var last types.Observation
		for _, h := range seq.Hits {
			adj := types.AdjustPosition(h.Position, p.PromoterLength)
			if adj < w.Start || adj >= w.End {
				continue
			}
			row = append(row, adj)
			last = types.Observation{Position: adj, RawPosition: h.Position, Score: h.Score}
		}
		if len(row) == 0 {
			continue
		}
		out.Rows = append(out.Rows, row)
		out.Observations = append(out.Observations, types.SequenceObservation{SequenceID: seq.ID, Observation: last})
	}
	if len(out.Rows) < 2 {
		return out
	}

	seuil := p.Seuil()
	for i := 0; i+1 < len(out.Rows); i++ {
		cur, next := out.Rows[i], out.Rows[i+1]
		for _, a := range cur {
			for _, b := range next {
				r := math.Abs(float64(a-b)) / float64(b)
				if math.IsNaN(r) || math.IsInf(r, 0) {
					out.Degenerate++
					continue
				}
				if r < seuil {
					out.Score += r
				}
			}
		}
	}
	return out
}
