package core_test

import (
	"context"
	"fmt"

	"github.com/tfbscan/tfbscan/pkg/core"
)

// ExampleScanHits runs the window scan on hits computed elsewhere.
func ExampleScanHits() {
	hits := []core.SequenceHits{
		{ID: "NM_A", Hits: []core.Hit{{Position: 50, Score: 8.2}}},
		// negative positions are reverse strand hits
		{ID: "NM_B", Hits: []core.Hit{{Position: -49, Score: 7.9}}},
	}
	windows, err := core.ScanHits(context.Background(), hits, core.Params{
		PromoterLength:  100,
		WindowSize:      30,
		WindowThreshold: 1,
	})
	if err != nil {
		panic(err)
	}
	for _, w := range windows {
		fmt.Printf("window %d [%d,%d) score %.4f\n", w.ID, w.Start, w.End, w.Score)
	}
	// Output:
	// window 1 [28,58) score 0.0385
}
