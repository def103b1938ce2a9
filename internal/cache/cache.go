package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/tfbscan/tfbscan/internal/types"
)

// Entry is one cached search outcome.
type Entry struct {
	Key       string               `json:"key"`
	Motif     string               `json:"motif"`
	TF        string               `json:"tf"`
	Windows   []types.WindowResult `json:"windows"`
	Count     int                  `json:"count"`
	Timestamp time.Time            `json:"timestamp"`
}

// DB stores entries as one JSON file per key under Dir.
type DB struct {
	Dir string
}

// Open returns a DB rooted at dir, creating it if needed.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DB{Dir: dir}, nil
}

func (db *DB) path(key string) string {
	return filepath.Join(db.Dir, key+".json")
}

// Load returns the entry for key; ok is false on a miss.
func (db *DB) Load(key string) (Entry, bool, error) {
	var e Entry
	b, err := os.ReadFile(db.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return e, false, nil
	}
	if err != nil {
		return e, false, err
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return e, false, err
	}
	if e.Windows == nil {
		e.Windows = []types.WindowResult{}
	}
	return e, true, nil
}

// Save stores e under e.Key.
func (db *DB) Save(e Entry) error {
	if e.Key == "" {
		return errors.New("cache: empty key")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Count = len(e.Windows)
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(db.path(e.Key), b, 0o644)
}

// Hasher builds cache keys from ordered parts.
type Hasher struct {
	d *xxhash.Digest
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// String adds s, length-prefixed so that part boundaries matter.
func (h *Hasher) String(s string) *Hasher {
	_, _ = h.d.WriteString(strconv.Itoa(len(s)))
	_, _ = h.d.WriteString(":")
	_, _ = h.d.WriteString(s)
	return h
}

// Bytes adds the hash of b.
func (h *Hasher) Bytes(b []byte) *Hasher {
	return h.String(ContentHash(b))
}

// Int adds an integer.
func (h *Hasher) Int(v int) *Hasher { return h.String(strconv.Itoa(v)) }

// Float adds a float using its shortest exact representation.
func (h *Hasher) Float(v float64) *Hasher {
	return h.String(strconv.FormatFloat(v, 'g', -1, 64))
}

// Key returns the hex key.
func (h *Hasher) Key() string {
	return strconv.FormatUint(h.d.Sum64(), 16)
}

// ContentHash returns a short content hash of b.
func ContentHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}
