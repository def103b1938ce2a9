// Package window implements the proximity scoring of TFBS hits inside a
// fixed-width window and the sliding scan that selects qualifying windows
// across a promoter region. It performs no I/O; hits are produced by the
// motif matcher and assembled into a HitSet by the engine package.
package window
