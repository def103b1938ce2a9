package tfbscan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/update"
)

var flagSelfUpdate bool

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for updates",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if flagSelfUpdate {
				latest, err := selfUpdate()
				if err != nil {
					return fmt.Errorf("self-update: %w", err)
				}
				fmt.Fprintf(os.Stdout, "updated to v%s\n", latest)
				return nil
			}
			fmt.Fprintf(os.Stdout, "tfbscan v%s\n", version)
			if latest, newer, _ := update.Check(version, flagNoUpdateCheck || flagOffline); newer {
				fmt.Fprintf(os.Stdout, "new version available: v%s (run 'tfbscan version --self-update')\n", latest)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagSelfUpdate, "self-update", false, "update tfbscan to the latest release")
	rootCmd.AddCommand(cmd)
}
