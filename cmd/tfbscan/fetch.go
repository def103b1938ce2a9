package tfbscan

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/report"
)

var flagFetchLength int

func init() {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download promoters and motifs into the data directory",
	}
	rootCmd.AddCommand(fetchCmd)

	promCmd := &cobra.Command{
		Use:   "promoters ACCESSION...",
		Short: "Download the upstream region of each mRNA's gene",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFetchPromoters,
	}
	promCmd.Flags().IntVarP(&flagFetchLength, "promoter-length", "l", 0, "promoter length (default 1000)")
	fetchCmd.AddCommand(promCmd)

	fetchCmd.AddCommand(&cobra.Command{
		Use:   "motif ID...",
		Short: "Download JASPAR matrices",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFetchMotifs,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List promoters and motifs in the data directory",
		Args:  cobra.NoArgs,
		RunE:  runList,
	})
}

func runFetchPromoters(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	length := pickInt(flagFetchLength, lcfg.PromoterLength, gcfg.PromoterLength)
	if length <= 0 {
		length = engine.DefaultPromoterLength
	}
	src := a.Promoters("")
	for _, acc := range args {
		rec, err := src.Promoter(cmd.Context(), acc, length)
		if err != nil {
			return fmt.Errorf("%s: %w", acc, err)
		}
		fmt.Fprintf(os.Stdout, "%s\t%d bp\t%s\n", acc, len(rec.Seq), a.Store.SequencePath(acc, length))
	}
	return nil
}

func runFetchMotifs(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	src := a.Motifs()
	for _, id := range args {
		m, err := src.Motif(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\t%d columns\t%s\n", m.ID, m.Name, m.Len(), a.Store.MotifPath(id))
	}
	return nil
}

func runList(_ *cobra.Command, _ []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	seqs, err := a.Store.ListSequences()
	if err != nil {
		return err
	}
	motifs, err := a.Store.ListMotifs()
	if err != nil {
		return err
	}
	if flagJSON {
		return report.WriteJSON(os.Stdout, map[string]any{"sequences": seqs, "motifs": motifs})
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("KIND", "ID", "LENGTH", "PATH")
	for _, s := range seqs {
		if err := table.Append([]string{"promoter", s.Accession, strconv.Itoa(s.Length), s.Path}); err != nil {
			return err
		}
	}
	for _, id := range motifs {
		if err := table.Append([]string{"motif", id, "", a.Store.MotifPath(id)}); err != nil {
			return err
		}
	}
	return table.Render()
}
