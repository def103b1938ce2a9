// Package store keeps downloaded promoter sequences and motif matrices in a
// local data directory so repeated searches do not hit remote services.
//
// Layout:
//
//	<root>/sequences/<accession>_<length>.fa
//	<root>/motifs/<id>.jaspar
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/tfbscan/tfbscan/internal/fasta"
	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/logger"
)

const (
	sequencesDir = "sequences"
	motifsDir    = "motifs"
)

// ErrBadName is returned for identifiers that cannot be used as file names.
var ErrBadName = errors.New("store: invalid identifier")

// Store is a data directory.
type Store struct {
	Root string
}

// Open creates the directory layout under root if needed.
func Open(root string) (*Store, error) {
	for _, d := range []string{sequencesDir, motifsDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{Root: root}, nil
}

func checkName(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadName, id)
	}
	return nil
}

// SequencePath returns where the promoter of accession is kept.
func (s *Store) SequencePath(accession string, length int) string {
	return filepath.Join(s.Root, sequencesDir, fmt.Sprintf("%s_%d.fa", accession, length))
}

// MotifPath returns where the matrix id is kept.
func (s *Store) MotifPath(id string) string {
	return filepath.Join(s.Root, motifsDir, id+".jaspar")
}

// LoadSequence reads a stored promoter. The error wraps fs.ErrNotExist when
// the promoter was never downloaded.
func (s *Store) LoadSequence(accession string, length int) (fasta.Record, error) {
	if err := checkName(accession); err != nil {
		return fasta.Record{}, err
	}
	return fasta.ReadFile(s.SequencePath(accession, length))
}

// SaveSequence writes rec as the promoter of accession.
func (s *Store) SaveSequence(accession string, length int, rec fasta.Record) error {
	if err := checkName(accession); err != nil {
		return err
	}
	return writeAtomic(s.SequencePath(accession, length), func(f *os.File) error {
		return fasta.Write(f, rec, 60)
	})
}

// LoadMotif reads a stored JASPAR matrix.
func (s *Store) LoadMotif(id string) (jaspar.Matrix, error) {
	if err := checkName(id); err != nil {
		return jaspar.Matrix{}, err
	}
	f, err := os.Open(s.MotifPath(id))
	if err != nil {
		return jaspar.Matrix{}, err
	}
	defer f.Close()
	return jaspar.Read(f)
}

// SaveMotif writes m in JASPAR format.
func (s *Store) SaveMotif(m jaspar.Matrix) error {
	if err := checkName(m.ID); err != nil {
		return err
	}
	return writeAtomic(s.MotifPath(m.ID), func(f *os.File) error {
		return jaspar.Write(f, m)
	})
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SequenceFile describes one stored promoter.
type SequenceFile struct {
	Accession string `json:"accession"`
	Length    int    `json:"length"`
	Path      string `json:"path"`
}

// ListSequences returns stored promoters sorted by accession then length.
func (s *Store) ListSequences() ([]SequenceFile, error) {
	matches, err := doublestar.Glob(os.DirFS(s.Root), sequencesDir+"/*.{fa,fa.gz,fasta}")
	if err != nil {
		return nil, err
	}
	var out []SequenceFile
	for _, m := range matches {
		base := filepath.Base(m)
		for _, ext := range []string{".fa.gz", ".fasta", ".fa"} {
			if strings.HasSuffix(base, ext) {
				base = strings.TrimSuffix(base, ext)
				break
			}
		}
		i := strings.LastIndexByte(base, '_')
		if i <= 0 {
			continue
		}
		n, err := strconv.Atoi(base[i+1:])
		if err != nil {
			continue
		}
		out = append(out, SequenceFile{Accession: base[:i], Length: n, Path: filepath.Join(s.Root, filepath.FromSlash(m))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accession == out[j].Accession {
			return out[i].Length < out[j].Length
		}
		return out[i].Accession < out[j].Accession
	})
	return out, nil
}

// ListMotifs returns the ids of stored matrices, sorted.
func (s *Store) ListMotifs() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(s.Root), motifsDir+"/*.jaspar")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(filepath.Base(m), ".jaspar"))
	}
	sort.Strings(out)
	return out, nil
}

// MotifFetcher downloads motif matrices.
type MotifFetcher interface {
	Fetch(ctx context.Context, id string) (jaspar.Matrix, error)
}

// PromoterFetcher downloads promoter regions.
type PromoterFetcher interface {
	Promoter(ctx context.Context, accession string, length int) (fasta.Record, error)
}

// Motifs serves matrices from the store, downloading missing ones.
type Motifs struct {
	Store  *Store
	Remote MotifFetcher
	Log    *logger.Logger
}

// Motif returns the matrix for id.
func (m *Motifs) Motif(ctx context.Context, id string) (jaspar.Matrix, error) {
	mat, err := m.Store.LoadMotif(id)
	if err == nil {
		return mat, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || m.Remote == nil {
		return mat, err
	}
	m.log().Info("downloading motif").Str("motif", id).Send()
	mat, err = m.Remote.Fetch(ctx, id)
	if err != nil {
		return mat, err
	}
	if err := m.Store.SaveMotif(mat); err != nil {
		return mat, fmt.Errorf("store motif %s: %w", id, err)
	}
	return mat, nil
}

func (m *Motifs) log() *logger.Logger {
	if m.Log == nil {
		return logger.Nop()
	}
	return m.Log
}

// Promoters serves promoter sequences from the store, downloading missing ones.
type Promoters struct {
	Store  *Store
	Remote PromoterFetcher
	Log    *logger.Logger
}

// Promoter returns the promoter of accession with the given length.
func (p *Promoters) Promoter(ctx context.Context, accession string, length int) (fasta.Record, error) {
	rec, err := p.Store.LoadSequence(accession, length)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || p.Remote == nil {
		return rec, err
	}
	p.log().Info("downloading promoter").Str("accession", accession).Int("length", length).Send()
	rec, err = p.Remote.Promoter(ctx, accession, length)
	if err != nil {
		return rec, err
	}
	if err := p.Store.SaveSequence(accession, length, rec); err != nil {
		return rec, fmt.Errorf("store promoter %s: %w", accession, err)
	}
	return rec, nil
}

func (p *Promoters) log() *logger.Logger {
	if p.Log == nil {
		return logger.Nop()
	}
	return p.Log
}
