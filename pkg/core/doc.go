// Package core provides a small, stable facade over tfbscan's internal engine
// for external integrations, without exposing internal implementation
// packages.
//
// Example:
//
//	cfg := core.Config{Motif: "MA0031.1", Sequences: []string{"NM_000546"},
//		PromoterLength: 1000, WindowSize: 40, WindowThreshold: 0.01, Threshold: -5}
//	res, err := core.Search(ctx, cfg, core.Options{Email: "you@example.org"})
//	if err != nil { /* handle */ }
//	_ = core.MarshalResults(os.Stdout, res.Windows)
package core
