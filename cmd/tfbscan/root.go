package tfbscan

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/app"
	"github.com/tfbscan/tfbscan/internal/config"
	"github.com/tfbscan/tfbscan/internal/logger"
	"github.com/tfbscan/tfbscan/internal/metrics"
)

var (
	flagConfig        string
	flagDataDir       string
	flagEmail         string
	flagAPIKey        string
	flagJSON          bool
	flagNoColor       bool
	flagWorkers       int
	flagNoCache       bool
	flagOffline       bool
	flagTimeout       time.Duration
	flagLogLevel      string
	flagLogPretty     bool
	flagNoUpdateCheck bool

	version = "0.1.0"

	// lcfg and gcfg are the local and global config files, loaded before
	// any subcommand runs.
	lcfg, gcfg config.FileConfig
)

// rootCmd is the base Cobra command for the tfbscan CLI.
var rootCmd = &cobra.Command{
	Use:   "tfbscan",
	Short: "Find transcription factor binding site clusters in promoters",
	Long: "tfbscan downloads promoter sequences from NCBI and motifs from JASPAR, " +
		"finds motif hits on both strands and reports sliding windows where hits " +
		"of consecutive promoters fall at similar positions.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the tfbscan CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./.tfbscan.yml, then $XDG_CONFIG_HOME/tfbscan/config.yml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for downloaded promoters, motifs and the search log (default data)")
	rootCmd.PersistentFlags().StringVar(&flagEmail, "email", "", "contact email sent to NCBI E-utilities")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "NCBI API key")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "concurrent window scoring workers (0 = sequential)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable the result cache")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "never download; use the data directory only")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "timeout for remote calls (default 30s)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default warn)")
	rootCmd.PersistentFlags().BoolVar(&flagLogPretty, "log-pretty", false, "human-readable logs")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}

// setup loads configs (CLI > local > global) and initialises logging.
func setup(_ *cobra.Command, _ []string) error {
	lcfg, gcfg = config.FileConfig{}, config.FileConfig{}
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if flagConfig != "" {
		c, err := config.LoadFile(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		lcfg = c
	} else if c, err := config.LoadLocal("."); err == nil {
		lcfg = c
	}

	level := pickString(flagLogLevel, lcfg.LogLevel, gcfg.LogLevel)
	if level == "" {
		level = "warn"
	}
	logger.InitGlobalLogger(logger.Config{
		Level:  level,
		Pretty: pickBool(flagLogPretty, lcfg.LogPretty, gcfg.LogPretty),
	})
	return nil
}

func dataDir() string {
	if d := pickString(flagDataDir, lcfg.DataDir, gcfg.DataDir); d != "" {
		return d
	}
	return "data"
}

func timeout() (time.Duration, error) {
	if flagTimeout > 0 {
		return flagTimeout, nil
	}
	for _, fc := range []config.FileConfig{lcfg, gcfg} {
		d, err := fc.TimeoutDuration()
		if err != nil {
			return 0, err
		}
		if d > 0 {
			return d, nil
		}
	}
	return 30 * time.Second, nil
}

func entrezBaseURL() string {
	if u := lcfg.EntrezBaseURL(); u != "" {
		return u
	}
	return gcfg.EntrezBaseURL()
}

func jasparBaseURL() string {
	if u := lcfg.JASPARBaseURL(); u != "" {
		return u
	}
	return gcfg.JASPARBaseURL()
}

func noColor() bool {
	return pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor) || os.Getenv("NO_COLOR") != ""
}

// newApp builds the search service from the resolved configuration.
func newApp(m *metrics.Metrics) (*app.App, error) {
	to, err := timeout()
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		DataDir:       dataDir(),
		Email:         pickString(flagEmail, lcfg.Email, gcfg.Email),
		APIKey:        pickString(flagAPIKey, lcfg.APIKey, gcfg.APIKey),
		EntrezBaseURL: entrezBaseURL(),
		JASPARBaseURL: jasparBaseURL(),
		Timeout:       to,
		Offline:       flagOffline,
		Metrics:       m,
		Log:           logger.Get(),
	})
}
