package app

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/fasta"
	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/metrics"
)

func seed(t *testing.T, a *App) {
	t.Helper()
	require.NoError(t, a.Store.SaveMotif(jaspar.Matrix{
		ID: "MA0001.1", Name: "AC-box",
		Counts: [4][]float64{{10, 0}, {0, 10}, {0, 0}, {0, 0}},
	}))
	seqs := map[string]string{
		"NM_A": strings.Repeat("G", 50) + "AC" + strings.Repeat("G", 48),
		"NM_B": strings.Repeat("G", 52) + "AC" + strings.Repeat("G", 46),
	}
	for id, s := range seqs {
		require.NoError(t, a.Store.SaveSequence(id, 100, fasta.Record{ID: id, Seq: []byte(s)}))
	}
}

func searchConfig(seqs ...string) engine.Config {
	return engine.Config{
		Motif:           "MA0001.1",
		Sequences:       seqs,
		PromoterLength:  100,
		WindowSize:      30,
		WindowThreshold: 1,
		Threshold:       1,
	}
}

func TestSearch_OfflineFromStoreAndLogged(t *testing.T) {
	a, err := New(Options{DataDir: t.TempDir(), Offline: true})
	require.NoError(t, err)
	seed(t, a)

	res, err := a.Search(context.Background(), "", searchConfig("NM_A", "NM_B"))
	require.NoError(t, err)
	assert.Equal(t, "AC-box", res.TF)
	require.Len(t, res.Windows, 1)
	assert.Equal(t, 28, res.Windows[0].Start)

	again, err := a.Search(context.Background(), "", searchConfig("NM_A", "NM_B"))
	require.NoError(t, err)
	assert.True(t, again.Stats.Cached)

	history, err := a.Audit.LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Cached)
	assert.Equal(t, "MA0001.1", history[1].Motif)
	assert.Equal(t, 1, history[1].Windows)
	require.Len(t, history[1].TopWindows, 1)
}

func TestSearch_OfflineMissingSequenceIsLogged(t *testing.T) {
	a, err := New(Options{DataDir: t.TempDir(), Offline: true})
	require.NoError(t, err)
	seed(t, a)

	_, err = a.Search(context.Background(), "", searchConfig("NM_A", "NM_MISSING"))
	require.Error(t, err)
	history, herr := a.Audit.LoadHistory()
	require.NoError(t, herr)
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].Error)
}

func TestSearchAll_LogsFailedMotifs(t *testing.T) {
	a, err := New(Options{DataDir: t.TempDir(), Offline: true})
	require.NoError(t, err)
	seed(t, a)
	missing := searchConfig("NM_A", "NM_B")
	missing.Motif = "MA9999.1"

	_, err = a.SearchAll(context.Background(), "", []engine.Config{searchConfig("NM_A", "NM_B"), missing}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MA9999.1")

	history, herr := a.Audit.LoadHistory()
	require.NoError(t, herr)
	require.Len(t, history, 2)
	byMotif := map[string]string{}
	for _, rec := range history {
		byMotif[rec.Motif] = rec.Error
	}
	assert.Empty(t, byMotif["MA0001.1"])
	assert.NotEmpty(t, byMotif["MA9999.1"])
}

func TestSearch_DownloadNeedsEmail(t *testing.T) {
	m := metrics.NewMetrics()
	a, err := New(Options{DataDir: t.TempDir(), EntrezBaseURL: "http://127.0.0.1:1", Metrics: m})
	require.NoError(t, err)
	seed(t, a)

	_, err = a.Search(context.Background(), "", searchConfig("NM_A", "NM_NEW"))
	require.ErrorIs(t, err, ErrNoEmail)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RemoteFetchesTotal.WithLabelValues("entrez", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("error")))
}

func TestSearchAll_LogsEachMotif(t *testing.T) {
	a, err := New(Options{DataDir: t.TempDir(), Offline: true})
	require.NoError(t, err)
	seed(t, a)
	require.NoError(t, a.Store.SaveMotif(jaspar.Matrix{
		ID: "MA0002.1", Name: "TT-box",
		Counts: [4][]float64{{0, 0}, {0, 0}, {0, 0}, {10, 10}},
	}))
	second := searchConfig("NM_A", "NM_B")
	second.Motif = "MA0002.1"

	out, err := a.SearchAll(context.Background(), "", []engine.Config{searchConfig("NM_A", "NM_B"), second}, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Windows, 1)
	assert.Equal(t, "TT-box", out[1].TF)

	history, err := a.Audit.LoadHistory()
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
