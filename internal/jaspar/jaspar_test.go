package jaspar

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Matrix {
	return Matrix{
		ID:   "MA0004.1",
		Name: "Arnt",
		Counts: [4][]float64{
			{4, 19, 0, 0, 0, 0},
			{16, 0, 20, 0, 0, 0},
			{0, 1, 0, 20, 0, 20},
			{0, 0, 0, 0, 20, 0},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample()))
	assert.True(t, strings.HasPrefix(buf.String(), ">MA0004.1\tArnt\nA  [     4    19"))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader(">X\tY\nA [ 1 2 ]\nC [ 1 2 ]\nG [ 1 2 ]\n"))
	assert.ErrorContains(t, err, "missing T row")

	_, err = Read(strings.NewReader(">X\tY\nA [ 1 2 ]\nC [ 1 ]\nG [ 1 2 ]\nT [ 1 2 ]\n"))
	assert.ErrorContains(t, err, "C row has 1 columns")

	_, err = Read(strings.NewReader(">X\nA [ 1 x ]\n"))
	assert.Error(t, err)
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/matrix/MA0004.1/" {
			_, _ = w.Write([]byte(`{"matrix_id":"MA0004.1","name":"Arnt","pfm":{"A":[4,19,0,0,0,0],"C":[16,0,20,0,0,0],"G":[0,1,0,20,0,20],"T":[0,0,0,0,20,0]}}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	m, err := c.Fetch(context.Background(), "MA0004.1")
	require.NoError(t, err)
	assert.Equal(t, sample(), m)

	_, err = c.Fetch(context.Background(), "MA9999.1")
	assert.ErrorIs(t, err, ErrNotFound)
}
