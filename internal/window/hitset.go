package window

import (
	"errors"
	"fmt"

	"github.com/tfbscan/tfbscan/internal/types"
)

// ErrDuplicateSequence is returned when a sequence id is added twice.
var ErrDuplicateSequence = errors.New("duplicate sequence id")

// SequenceHits holds the hits of one sequence in matcher order.
type SequenceHits struct {
	ID   string
	Hits []types.Hit
}

// HitSet maps sequence ids to their hits while keeping insertion order.
// It is built once per search and must not be modified while scanning.
type HitSet struct {
	seqs  []SequenceHits
	index map[string]int
}

// NewHitSet returns an empty HitSet.
func NewHitSet() *HitSet {
	return &HitSet{index: map[string]int{}}
}

// Add appends the hits for id. The hits slice is copied.
func (h *HitSet) Add(id string, hits []types.Hit) error {
	if h.index == nil {
		h.index = map[string]int{}
	}
	if _, ok := h.index[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSequence, id)
	}
	cp := make([]types.Hit, len(hits))
	copy(cp, hits)
	h.index[id] = len(h.seqs)
	h.seqs = append(h.seqs, SequenceHits{ID: id, Hits: cp})
	return nil
}

// Len returns the number of sequences.
func (h *HitSet) Len() int {
	if h == nil {
		return 0
	}
	return len(h.seqs)
}

// IDs returns sequence ids in insertion order.
func (h *HitSet) IDs() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.seqs))
	for i, s := range h.seqs {
		out[i] = s.ID
	}
	return out
}

// Hits returns the hits recorded for id.
func (h *HitSet) Hits(id string) ([]types.Hit, bool) {
	if h == nil {
		return nil, false
	}
	i, ok := h.index[id]
	if !ok {
		return nil, false
	}
	return h.seqs[i].Hits, true
}

// TotalHits counts hits across all sequences.
func (h *HitSet) TotalHits() int {
	n := 0
	for _, s := range h.sequences() {
		n += len(s.Hits)
	}
	return n
}

func (h *HitSet) sequences() []SequenceHits {
	if h == nil {
		return nil
	}
	return h.seqs
}
