package tfbscan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfbscan/tfbscan/internal/config"
	"github.com/tfbscan/tfbscan/internal/fasta"
	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/store"
)

// seedDataDir stores one motif and two promoters whose hits fall in the
// same window.
func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(dir)
	require.NoError(t, err)
	require.NoError(t, st.SaveMotif(jaspar.Matrix{
		ID: "MA0001.1", Name: "AC-box",
		Counts: [4][]float64{{10, 0}, {0, 10}, {0, 0}, {0, 0}},
	}))
	for id, s := range map[string]string{
		"NM_A": strings.Repeat("G", 50) + "AC" + strings.Repeat("G", 48),
		"NM_B": strings.Repeat("G", 52) + "AC" + strings.Repeat("G", 46),
	} {
		require.NoError(t, st.SaveSequence(id, 100, fasta.Record{ID: id, Seq: []byte(s)}))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ScanOfflineJSON(t *testing.T) {
	dir := seedDataDir(t)
	out, err := execute(t, "scan", "--offline", "--json", "--no-cache", "--data-dir", dir,
		"-m", "MA0001.1", "-l", "100", "-w", "30", "-s", "1", "-t", "1", "NM_A", "NM_B")
	require.NoError(t, err)

	var windows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &windows), out)
	require.Len(t, windows, 1)
	assert.Equal(t, "AC-box", windows[0]["tf"])
	assert.Equal(t, []any{28.0, 58.0}, windows[0]["window_pos"])

	out, err = execute(t, "history", "--json", "--data-dir", dir)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records), out)
	require.NotEmpty(t, records)
	assert.Equal(t, "MA0001.1", records[0]["motif"])
}

func TestCLI_ScanRejectsBadParameters(t *testing.T) {
	dir := seedDataDir(t)
	_, err := execute(t, "scan", "--offline", "--json", "--data-dir", dir,
		"-m", "MA0001.1", "-l", "100", "-w", "100", "-s", "1", "NM_A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window_size")
}

func TestCLI_ScanRepeatedMotifRunsOnce(t *testing.T) {
	dir := seedDataDir(t)
	out, err := execute(t, "scan", "--offline", "--json", "--no-cache", "--data-dir", dir,
		"-m", "MA0001.1", "-m", "MA0001.1", "-l", "100", "-w", "30", "-s", "1", "-t", "1", "NM_A", "NM_B")
	require.NoError(t, err)

	var windows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &windows), out)
	require.Len(t, windows, 1)

	out, err = execute(t, "history", "--json", "--data-dir", dir)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records), out)
	assert.Len(t, records, 1)
}

func TestUniqueMotifs(t *testing.T) {
	assert.Equal(t, []string{"MA1", "MA2"}, uniqueMotifs([]string{"MA1", " MA2 ", "MA1", "", "MA2"}))
	assert.Empty(t, uniqueMotifs([]string{" "}))
}

func TestSearchConfig_Precedence(t *testing.T) {
	flagPromoterLength, flagWindowSize, flagWorkers, flagNoCache = 0, 0, 0, false
	cmd := &cobra.Command{}
	cmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "")
	cmd.Flags().Float64Var(&flagWindowThreshold, "window-threshold", 0, "")
	cmd.Flags().Float64Var(&flagPseudocount, "pseudocount", 0, "")

	ws, thr, pc := 25, -3.0, 0.8
	lcfg = config.FileConfig{WindowSize: &ws, Threshold: &thr}
	gcfg = config.FileConfig{Pseudocount: &pc}
	defer func() { lcfg, gcfg = config.FileConfig{}, config.FileConfig{} }()

	require.NoError(t, cmd.Flags().Set("threshold", "0"))
	cfg := searchConfig(cmd, "MA1", []string{"NM_A"})
	assert.Equal(t, 1000, cfg.PromoterLength)
	assert.Equal(t, 25, cfg.WindowSize)
	assert.Equal(t, 0.0, cfg.Threshold, "explicit zero flag wins over config")
	assert.Equal(t, 0.8, cfg.Pseudocount)
	assert.Equal(t, 0.0, cfg.WindowThreshold)
}

func TestReadIDs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(p, []byte("# header\nNM_A\n\n  NM_B  \n"), 0o644))
	ids, err := readIDs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"NM_A", "NM_B"}, ids)
}

func TestSummarizeIDs(t *testing.T) {
	assert.Equal(t, "a,b", summarizeIDs([]string{"a", "b"}, 3))
	assert.Equal(t, "a,b,c,+2", summarizeIDs([]string{"a", "b", "c", "d", "e"}, 3))
}

func TestPick(t *testing.T) {
	l, g := "local", "global"
	assert.Equal(t, "cli", pickString("cli", &l, &g))
	assert.Equal(t, "local", pickString("", &l, &g))
	assert.Equal(t, "global", pickString("", nil, &g))
	one, two := 1, 2
	assert.Equal(t, 1, pickInt(0, &one, &two))
	assert.Equal(t, 0, pickInt(0, nil, nil))
	f := false
	assert.False(t, pickBool(false, &f, nil))
	assert.True(t, pickBool(true, &f, nil))
}
