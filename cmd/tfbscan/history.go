package tfbscan

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/audit"
	"github.com/tfbscan/tfbscan/internal/report"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past searches from the search log",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of searches to show (0 = all)")
	rootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	log := audit.NewLog(dataDir())
	records, err := log.LoadHistory()
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, "No searches recorded yet.")
		return nil
	}
	if err != nil {
		return err
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}
	if flagJSON {
		return report.WriteJSON(out, records)
	}
	table := tablewriter.NewWriter(out)
	table.Header("WHEN", "MOTIF", "TF", "SEQUENCES", "L", "W", "WINDOWS", "DURATION", "STATUS")
	for _, r := range records {
		status := "ok"
		switch {
		case r.Error != "":
			status = "error"
		case r.Cached:
			status = "cached"
		}
		row := []string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Motif, r.TF,
			summarizeIDs(r.Sequences, 3),
			strconv.Itoa(r.PromoterLength), strconv.Itoa(r.WindowSize),
			strconv.Itoa(r.Windows), r.Duration, status,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func summarizeIDs(ids []string, n int) string {
	if len(ids) <= n {
		return strings.Join(ids, ",")
	}
	return fmt.Sprintf("%s,+%d", strings.Join(ids[:n], ","), len(ids)-n)
}
