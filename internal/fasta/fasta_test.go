package fasta

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MultiRecord(t *testing.T) {
	in := ">NC_000001.11:100-120 Homo sapiens chr1\nACGT\nacgt\n\n>second\nTTTT\n"
	recs, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "NC_000001.11:100-120", recs[0].ID)
	assert.Equal(t, "Homo sapiens chr1", recs[0].Description)
	assert.Equal(t, "ACGTacgt", string(recs[0].Seq))
	assert.Equal(t, "TTTT", string(recs[1].Seq))
}

func TestParse_DataBeforeHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("ACGT\n>x\nA\n"))
	assert.Error(t, err)
}

func TestReadOne_Empty(t *testing.T) {
	_, err := ReadOne(strings.NewReader("\n"))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestWrite_Wraps(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Record{ID: "p1", Description: "promoter", Seq: []byte("ACGTACGTAC")}, 4))
	assert.Equal(t, ">p1 promoter\nACGT\nACGT\nAC\n", buf.String())
}

func TestReadFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.fa.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(">gz\nAAAC\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))

	rec, err := ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "gz", rec.ID)
	assert.Equal(t, "AAAC", string(rec.Seq))
}
