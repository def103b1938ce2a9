package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/tfbscan/tfbscan/internal/types"
)

type PrintOptions struct {
	NoColor  bool
	TF       string
	Motif    string
	Duration time.Duration
	// Candidates is the number of windows scored.
	Candidates int
	Cached     bool
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	seqStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func render(s lipgloss.Style, text string, noColor bool) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// PrintTable renders one row per sequence observation, grouped by window.
func PrintTable(w io.Writer, windows []types.WindowResult, opts PrintOptions) error {
	if len(windows) == 0 {
		fmt.Fprintln(w, NoResultMessage)
		printFooter(w, windows, opts)
		return nil
	}
	fmt.Fprintf(w, "Windows: %d  TF: %s\n", len(windows), opts.TF)
	table := tablewriter.NewWriter(w)
	table.Header("WINDOW", "RANGE", "SCORE", "SEQUENCE", "POSITION", "ADJUSTED", "HIT SCORE")
	for _, win := range windows {
		rng := fmt.Sprintf("%d-%d", win.Start, win.End)
		for i, o := range win.Observations {
			id, r, score := strconv.Itoa(win.ID), rng, formatScore(win.Score)
			if i > 0 {
				id, r, score = "", "", ""
			}
			row := []string{id, r, score, o.SequenceID,
				strconv.Itoa(o.RawPosition), strconv.Itoa(o.Position), formatScore(o.Score)}
			if err := table.Append(row); err != nil {
				return err
			}
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	printFooter(w, windows, opts)
	return nil
}

// PrintText renders a compact, human oriented listing.
func PrintText(w io.Writer, windows []types.WindowResult, opts PrintOptions) {
	if len(windows) == 0 {
		fmt.Fprintln(w, NoResultMessage)
		printFooter(w, windows, opts)
		return
	}
	fmt.Fprintln(w, render(titleStyle, fmt.Sprintf("Windows: %d  TF: %s", len(windows), opts.TF), opts.NoColor))
	for _, win := range windows {
		fmt.Fprintf(w, "#%d [%d, %d) score %s\n", win.ID, win.Start, win.End,
			render(scoreStyle, formatScore(win.Score), opts.NoColor))
		for _, o := range win.Observations {
			fmt.Fprintf(w, "    %s at %d (raw %d) %s\n",
				render(seqStyle, o.SequenceID, opts.NoColor), o.Position, o.RawPosition,
				render(dimStyle, formatScore(o.Score), opts.NoColor))
		}
	}
	printFooter(w, windows, opts)
}

func printFooter(w io.Writer, windows []types.WindowResult, opts PrintOptions) {
	if opts.Duration <= 0 && opts.Candidates <= 0 && !opts.Cached {
		return
	}
	fmt.Fprintln(w)
	var parts []string
	if opts.Motif != "" {
		parts = append(parts, "Motif: "+opts.Motif)
	}
	parts = append(parts, fmt.Sprintf("Windows: %d", len(windows)))
	if opts.Candidates > 0 {
		parts = append(parts, fmt.Sprintf("Candidates: %d", opts.Candidates))
	}
	if opts.Cached {
		parts = append(parts, "cached")
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Search duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
