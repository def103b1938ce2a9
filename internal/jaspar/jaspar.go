// Package jaspar fetches motif count matrices from the JASPAR REST API and
// reads and writes the JASPAR flat-file format.
package jaspar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNotFound is returned when JASPAR has no matrix for an id.
var ErrNotFound = errors.New("jaspar: matrix not found")

// Matrix is a nucleotide count matrix; Counts rows follow the order A, C, G, T.
type Matrix struct {
	ID     string
	Name   string
	Counts [4][]float64
}

// Len returns the number of columns.
func (m Matrix) Len() int { return len(m.Counts[0]) }

const letters = "ACGT"

// Write encodes m in JASPAR format.
func Write(w io.Writer, m Matrix) error {
	if _, err := fmt.Fprintf(w, ">%s\t%s\n", m.ID, m.Name); err != nil {
		return err
	}
	for i, row := range m.Counts {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%5d", int(v))
		}
		if _, err := fmt.Fprintf(w, "%c  [ %s ]\n", letters[i], strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes the first matrix of a JASPAR file.
func Read(r io.Reader) (Matrix, error) {
	var m Matrix
	seen := [4]bool{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if m.ID != "" {
				break
			}
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return m, fmt.Errorf("jaspar: line %d: empty header", lineNo)
			}
			m.ID = fields[0]
			if len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
			continue
		}
		idx := strings.IndexByte(letters, line[0])
		if idx < 0 {
			return m, fmt.Errorf("jaspar: line %d: unexpected row %q", lineNo, line)
		}
		body := strings.TrimSpace(line[1:])
		body = strings.TrimPrefix(body, "[")
		body = strings.TrimSuffix(body, "]")
		var row []float64
		for _, f := range strings.Fields(body) {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return m, fmt.Errorf("jaspar: line %d: %w", lineNo, err)
			}
			row = append(row, v)
		}
		m.Counts[idx] = row
		seen[idx] = true
	}
	if err := sc.Err(); err != nil {
		return m, err
	}
	for i, ok := range seen {
		if !ok {
			return m, fmt.Errorf("jaspar: missing %c row", letters[i])
		}
	}
	for i := 1; i < 4; i++ {
		if len(m.Counts[i]) != len(m.Counts[0]) {
			return m, fmt.Errorf("jaspar: %c row has %d columns, want %d", letters[i], len(m.Counts[i]), len(m.Counts[0]))
		}
	}
	return m, nil
}
