// Package fasta reads and writes promoter sequences in FASTA format.
package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoRecord is returned when input holds no FASTA record.
var ErrNoRecord = errors.New("fasta: no record")

// Record is one FASTA entry. Description holds the header text after the id.
type Record struct {
	ID          string
	Description string
	Seq         []byte
}

// Parse reads every record from r.
func Parse(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var out []Record
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			id, desc := parseHeader(line[1:])
			out = append(out, Record{ID: id, Description: desc})
			continue
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("fasta: sequence data before first header")
		}
		cur := &out[len(out)-1]
		cur.Seq = append(cur.Seq, line...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fasta scan: %w", err)
	}
	return out, nil
}

// ReadOne returns the single record in r, as a promoter file holds one.
func ReadOne(r io.Reader) (Record, error) {
	recs, err := Parse(r)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNoRecord
	}
	return recs[0], nil
}

// ReadFile reads the first record of path. Gzip input is detected by magic
// number or a .gz suffix.
func ReadFile(path string) (Record, error) {
	rc, err := openReader(path)
	if err != nil {
		return Record{}, err
	}
	defer rc.Close()
	rec, err := ReadOne(rc)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Write encodes rec wrapping the sequence at width columns (60 when <= 0).
func Write(w io.Writer, rec Record, width int) error {
	if width <= 0 {
		width = 60
	}
	bw := bufio.NewWriter(w)
	header := rec.ID
	if rec.Description != "" {
		header += " " + rec.Description
	}
	if _, err := fmt.Fprintf(bw, ">%s\n", header); err != nil {
		return err
	}
	for off := 0; off < len(rec.Seq); off += width {
		end := off + width
		if end > len(rec.Seq) {
			end = len(rec.Seq)
		}
		if _, err := bw.Write(rec.Seq[off:end]); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func parseHeader(h []byte) (string, string) {
	s := strings.TrimSpace(string(h))
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func openReader(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	_, _ = fh.Seek(0, io.SeekStart)
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}
