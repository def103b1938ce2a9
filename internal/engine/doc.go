// Package engine runs a TFBS search: it resolves the motif and the promoter
// sequences through its collaborators, matches the motif on every promoter,
// assembles the hits into a window.HitSet and runs the sliding window scan.
// External consumers should use the stable facade in pkg/core.
package engine
