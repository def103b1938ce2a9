package tfbscan

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tfbscan/tfbscan/internal/logger"
	"github.com/tfbscan/tfbscan/internal/metrics"
	"github.com/tfbscan/tfbscan/internal/server"
)

var (
	flagListen        string
	flagNoMetrics     bool
	flagSearchTimeout time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the TFBS search API over HTTP",
		Long: "Serve POST /tfbs, GET /health and GET /metrics. Requests carry the caller's " +
			"email, which is forwarded to NCBI for downloads.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default :8000)")
	cmd.Flags().BoolVar(&flagNoMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().DurationVar(&flagSearchTimeout, "search-timeout", 5*time.Minute, "upper bound for one search request")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.Get()
	addr := pickString(flagListen, lcfg.Listen, gcfg.Listen)
	if addr == "" {
		addr = ":8000"
	}
	var m *metrics.Metrics
	enabled := true
	if lcfg.Metrics != nil {
		enabled = *lcfg.Metrics
	} else if gcfg.Metrics != nil {
		enabled = *gcfg.Metrics
	}
	if enabled && !flagNoMetrics {
		m = metrics.NewMetrics()
	}

	a, err := newApp(m)
	if err != nil {
		return err
	}
	srv := server.New(a, server.Options{
		Addr:    addr,
		Workers: pickInt(flagWorkers, lcfg.Workers, gcfg.Workers),
		Timeout: flagSearchTimeout,
		Metrics: m,
		Log:     log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.LogServerStart(addr, dataDir())
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.LogServerShutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
