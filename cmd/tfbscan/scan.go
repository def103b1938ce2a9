package tfbscan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/report"
	"github.com/tfbscan/tfbscan/internal/update"
)

var (
	flagMotifs          []string
	flagMRNAFile        string
	flagPromoterLength  int
	flagWindowSize      int
	flagWindowThreshold float64
	flagThreshold       float64
	flagPseudocount     float64
	flagText            bool
	flagParallelMotifs  int
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [flags] ACCESSION...",
		Short: "Search promoters for windows of co-located motif hits",
		Example: `  tfbscan scan -m MA0031.1 -t -5 -s 0.01 --email you@example.org NM_000546 NM_001126112
  tfbscan scan -m MA0031.1 -m MA0114.4 --mrna-file accessions.txt --json`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringArrayVarP(&flagMotifs, "motif", "m", nil, "JASPAR matrix id (repeatable)")
	cmd.Flags().StringVar(&flagMRNAFile, "mrna-file", "", "read accessions from file, one per line (- for stdin)")
	cmd.Flags().IntVarP(&flagPromoterLength, "promoter-length", "l", 0, "promoter length upstream of the gene start (default 1000)")
	cmd.Flags().IntVarP(&flagWindowSize, "window-size", "w", 0, "sliding window size (default 40)")
	cmd.Flags().Float64VarP(&flagWindowThreshold, "window-threshold", "s", 0, "accept windows scoring strictly between 0 and this value")
	cmd.Flags().Float64VarP(&flagThreshold, "threshold", "t", 0, "minimum motif score for a hit")
	cmd.Flags().Float64VarP(&flagPseudocount, "pseudocount", "p", 0, "pseudocount added to every matrix cell")
	cmd.Flags().BoolVar(&flagText, "text", false, "output in plain text instead of a table")
	cmd.Flags().IntVar(&flagParallelMotifs, "parallel", 0, "motifs searched concurrently (0 = all)")
}

// searchConfig resolves scan parameters: CLI > local > global > defaults.
func searchConfig(cmd *cobra.Command, motif string, accessions []string) engine.Config {
	cfg := engine.Config{
		Motif:           motif,
		Sequences:       accessions,
		PromoterLength:  pickInt(flagPromoterLength, lcfg.PromoterLength, gcfg.PromoterLength),
		WindowSize:      pickInt(flagWindowSize, lcfg.WindowSize, gcfg.WindowSize),
		WindowThreshold: pickFloat(cmd, "window-threshold", flagWindowThreshold, lcfg.WindowThreshold, gcfg.WindowThreshold, 0),
		Threshold:       pickFloat(cmd, "threshold", flagThreshold, lcfg.Threshold, gcfg.Threshold, 0),
		Pseudocount:     pickFloat(cmd, "pseudocount", flagPseudocount, lcfg.Pseudocount, gcfg.Pseudocount, 0),
		Workers:         pickInt(flagWorkers, lcfg.Workers, gcfg.Workers),
		NoCache:         pickBool(flagNoCache, lcfg.NoCache, gcfg.NoCache),
	}
	if cfg.PromoterLength == 0 {
		cfg.PromoterLength = engine.DefaultPromoterLength
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = engine.DefaultWindowSize
	}
	return cfg
}

func runScan(cmd *cobra.Command, args []string) error {
	motifs := uniqueMotifs(flagMotifs)
	if len(motifs) == 0 {
		return errors.New("at least one --motif is required")
	}
	accessions := append([]string(nil), args...)
	if flagMRNAFile != "" {
		ids, err := readIDs(flagMRNAFile)
		if err != nil {
			return fmt.Errorf("read accessions: %w", err)
		}
		accessions = append(accessions, ids...)
	}
	if len(accessions) == 0 {
		return errors.New("no accessions given")
	}

	cfgs := make([]engine.Config, len(motifs))
	for i, m := range motifs {
		cfgs[i] = searchConfig(cmd, m, accessions)
		// reject bad parameters before touching the network
		if err := cfgs[i].Validate(); err != nil {
			return err
		}
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}

	if !flagJSON && !flagNoUpdateCheck {
		if latest, newer, _ := update.Check(version, flagOffline); newer && latest != "" {
			_, _ = fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'tfbscan version --self-update' to upgrade\n", latest)
		}
	}
	if !flagJSON {
		_, _ = fmt.Fprintf(os.Stderr, "Searching %d promoters for %d motif(s)...\n", len(accessions), len(cfgs))
	}

	ctx := cmd.Context()
	var results []engine.Result
	if len(cfgs) == 1 {
		res, err := a.Search(ctx, "", cfgs[0])
		if err != nil {
			return fmt.Errorf("search error: %w", err)
		}
		results = []engine.Result{res}
	} else {
		results, err = a.SearchAll(ctx, "", cfgs, flagParallelMotifs)
		if err != nil {
			return fmt.Errorf("search error: %w", err)
		}
	}
	return printResults(cmd.OutOrStdout(), cfgs, results)
}

func printResults(w io.Writer, cfgs []engine.Config, results []engine.Result) error {
	if flagJSON {
		var payload any
		if len(results) == 1 {
			payload = response(cfgs[0], results[0])
		} else {
			all := make(map[string]any, len(results))
			for i, res := range results {
				all[res.Motif] = response(cfgs[i], res)
			}
			payload = all
		}
		if stdoutIsTerminal() && !noColor() {
			return report.WriteJSONPretty(w, payload)
		}
		return report.WriteJSON(w, payload)
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		opts := report.PrintOptions{
			NoColor:    noColor(),
			TF:         res.TF,
			Motif:      res.Motif,
			Duration:   res.Stats.Duration,
			Candidates: res.Stats.Candidates,
			Cached:     res.Stats.Cached,
		}
		if flagText {
			report.PrintText(w, res.Windows, opts)
			continue
		}
		if err := report.PrintTable(w, res.Windows, opts); err != nil {
			return err
		}
	}
	return nil
}

func response(cfg engine.Config, res engine.Result) any {
	return report.Response(res.TF, res.Windows, report.Parameters{
		Motif:           cfg.Motif,
		Threshold:       cfg.Threshold,
		PromoterLength:  cfg.PromoterLength,
		WindowSize:      cfg.WindowSize,
		WindowThreshold: cfg.WindowThreshold,
		Pseudocount:     cfg.Pseudocount,
		MRNA:            cfg.Sequences,
	})
}

// uniqueMotifs drops repeated motif ids, keeping first-seen order.
func uniqueMotifs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
