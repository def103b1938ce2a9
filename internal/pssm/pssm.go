// Package pssm turns nucleotide count matrices into log-odds scoring matrices
// and scans sequences on both strands for motif hits.
package pssm

import (
	"errors"
	"fmt"
	"math"

	"github.com/tfbscan/tfbscan/internal/types"
)

// Alphabet is the row order of every matrix in this package.
const Alphabet = "ACGT"

var (
	// ErrEmptyMatrix is returned for a matrix without columns.
	ErrEmptyMatrix = errors.New("empty matrix")
	// ErrRaggedMatrix is returned when rows have different lengths.
	ErrRaggedMatrix = errors.New("matrix rows differ in length")
)

var letterIndex [256]int8

func init() {
	for i := range letterIndex {
		letterIndex[i] = -1
	}
	for i, c := range Alphabet {
		letterIndex[c] = int8(i)
		letterIndex[c+'a'-'A'] = int8(i)
	}
}

// Matrix is a position-specific scoring matrix in log2 odds against a
// uniform background.
type Matrix struct {
	rows [4][]float64
}

// FromCounts normalizes counts (rows in Alphabet order) with the given
// pseudocount added to every cell and converts them to log-odds scores.
func FromCounts(counts [4][]float64, pseudocount float64) (*Matrix, error) {
	n := len(counts[0])
	if n == 0 {
		return nil, ErrEmptyMatrix
	}
	for _, r := range counts[1:] {
		if len(r) != n {
			return nil, ErrRaggedMatrix
		}
	}
	if pseudocount < 0 {
		return nil, fmt.Errorf("pseudocount must be >= 0, got %v", pseudocount)
	}
	m := &Matrix{}
	for l := range m.rows {
		m.rows[l] = make([]float64, n)
	}
	const background = 0.25
	for j := 0; j < n; j++ {
		total := 0.0
		for l := 0; l < 4; l++ {
			total += counts[l][j] + pseudocount
		}
		if total <= 0 {
			return nil, fmt.Errorf("column %d has no counts", j)
		}
		for l := 0; l < 4; l++ {
			p := (counts[l][j] + pseudocount) / total
			if p == 0 {
				m.rows[l][j] = math.Inf(-1)
				continue
			}
			m.rows[l][j] = math.Log2(p / background)
		}
	}
	return m, nil
}

// Len is the motif length.
func (m *Matrix) Len() int { return len(m.rows[0]) }

// Score returns the log-odds of letter (one of ACGT) at column j.
func (m *Matrix) Score(letter byte, j int) float64 {
	return m.rows[letterIndex[letter]][j]
}

// MaxScore is the best achievable score.
func (m *Matrix) MaxScore() float64 {
	s := 0.0
	for j := 0; j < m.Len(); j++ {
		best := math.Inf(-1)
		for l := 0; l < 4; l++ {
			best = math.Max(best, m.rows[l][j])
		}
		s += best
	}
	return s
}

// Consensus returns the highest scoring letter of every column.
func (m *Matrix) Consensus() string {
	out := make([]byte, m.Len())
	for j := range out {
		best := 0
		for l := 1; l < 4; l++ {
			if m.rows[l][j] > m.rows[best][j] {
				best = l
			}
		}
		out[j] = Alphabet[best]
	}
	return string(out)
}

// ReverseComplement returns the matrix matching the opposite strand.
func (m *Matrix) ReverseComplement() *Matrix {
	n := m.Len()
	rc := &Matrix{}
	for l := 0; l < 4; l++ {
		src := m.rows[3-l] // A<->T, C<->G
		dst := make([]float64, n)
		for j := 0; j < n; j++ {
			dst[j] = src[n-1-j]
		}
		rc.rows[l] = dst
	}
	return rc
}

// Calculate scores every offset of seq. Offsets whose window contains a
// letter outside ACGT score NaN.
func (m *Matrix) Calculate(seq []byte) []float64 {
	n := m.Len()
	if len(seq) < n {
		return nil
	}
	out := make([]float64, len(seq)-n+1)
	for i := range out {
		s := 0.0
		for j := 0; j < n; j++ {
			li := letterIndex[seq[i+j]]
			if li < 0 {
				s = math.NaN()
				break
			}
			s += m.rows[li][j]
		}
		out[i] = s
	}
	return out
}

// Search scans both strands of seq and returns every hit scoring at least
// threshold, ordered by offset. Forward hits report their offset; reverse
// strand hits report offset-len(seq), which is always negative.
func (m *Matrix) Search(seq []byte, threshold float64) []types.Hit {
	fwd := m.Calculate(seq)
	rev := m.ReverseComplement().Calculate(seq)
	var out []types.Hit
	for i := range fwd {
		if fwd[i] >= threshold {
			out = append(out, types.Hit{Position: i, Score: fwd[i]})
		}
		if rev[i] >= threshold {
			out = append(out, types.Hit{Position: i - len(seq), Score: rev[i]})
		}
	}
	return out
}
