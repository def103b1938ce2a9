package tfbscan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/pssm"
	"github.com/tfbscan/tfbscan/internal/report"
)

var flagInfoPseudocount float64

func init() {
	motifCmd := &cobra.Command{Use: "motif", Short: "Motif helpers"}
	rootCmd.AddCommand(motifCmd)

	infoCmd := &cobra.Command{
		Use:   "info ID",
		Short: "Show a motif's counts, consensus and score range",
		Args:  cobra.ExactArgs(1),
		RunE:  runMotifInfo,
	}
	infoCmd.Flags().Float64VarP(&flagInfoPseudocount, "pseudocount", "p", 0, "pseudocount used to build the score matrix")
	motifCmd.AddCommand(infoCmd)
}

type motifInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Length      int     `json:"length"`
	Consensus   string  `json:"consensus"`
	MaxScore    float64 `json:"max_score"`
	Pseudocount float64 `json:"pseudocount"`
}

func runMotifInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	m, err := a.Motifs().Motif(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	pc := pickFloat(cmd, "pseudocount", flagInfoPseudocount, lcfg.Pseudocount, gcfg.Pseudocount, 0)
	mat, err := pssm.FromCounts(m.Counts, pc)
	if err != nil {
		return err
	}
	info := motifInfo{
		ID:          m.ID,
		Name:        m.Name,
		Length:      m.Len(),
		Consensus:   mat.Consensus(),
		MaxScore:    mat.MaxScore(),
		Pseudocount: pc,
	}
	if flagJSON {
		return report.WriteJSON(os.Stdout, info)
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", info.ID, info.Name)
	fmt.Fprintf(os.Stdout, "Length:    %d\n", info.Length)
	fmt.Fprintf(os.Stdout, "Consensus: %s\n", info.Consensus)
	fmt.Fprintf(os.Stdout, "Max score: %.3f (pseudocount %g)\n\n", info.MaxScore, pc)
	return jaspar.Write(os.Stdout, m)
}
