package tfbscan

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/config"
)

var (
	cfgOutput string
	cfgEmail  string
	cfgGlobal bool
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .tfbscan.yml with the default search parameters",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".tfbscan.yml", "output file path")
	initCmd.Flags().StringVar(&cfgEmail, "email", "", "contact email for NCBI E-utilities")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the global config instead ($XDG_CONFIG_HOME/tfbscan/config.yml)")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	out := cfgOutput
	if cfgGlobal {
		p, err := config.GlobalPath()
		if err != nil {
			return err
		}
		out = p
	}
	fc := config.Default()
	if e := strings.TrimSpace(cfgEmail); e != "" {
		fc.Email = &e
	}
	if err := config.Save(out, fc, cfgForce); err != nil {
		return err
	}
	fmt.Println("Wrote", out)
	return nil
}
