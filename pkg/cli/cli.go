// Package cli builds the cobra command shared by the runner executables.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"studyguide.parallel/imgbench/pkg/config"
	"studyguide.parallel/imgbench/pkg/runner"
	"studyguide.parallel/imgbench/pkg/stats"
	"studyguide.parallel/imgbench/pkg/transform"
)

// RunFunc selects which strategy a command executes, usually a method
// expression such as (*runner.Runner).Parallel.
type RunFunc func(r *runner.Runner, ctx context.Context) (*stats.Report, error)

// Strategy describes one executable.
type Strategy struct {
	Use           string
	Short         string
	DefaultOutput string
	Run           RunFunc
}

// NewCommand returns a root command for s. Options come from flags,
// IMGBENCH_* environment variables and an optional YAML file, in that
// order of precedence.
func NewCommand(s Strategy) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          s.Use,
		Short:        s.Short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			r := runner.New(cfg, logger, cmd.OutOrStdout())
			_, err = s.Run(r, cmd.Context())
			return err
		},
	}

	addFlags(cmd.Flags(), s.DefaultOutput)
	config.SetDefaults(v, s.DefaultOutput)
	config.BindEnv(v)
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}
	return cmd
}

func addFlags(flags *pflag.FlagSet, defaultOutput string) {
	flags.String(config.KeyConfig, "", "YAML config file")
	flags.String(config.KeyInput, config.DefaultInputDir, "Input directory, scanned recursively")
	flags.String(config.KeyOutput, defaultOutput, "Output directory")
	flags.IntSlice(config.KeyWorkers, config.DefaultWorkerCounts, "Worker counts to test")
	flags.Int(config.KeyNodes, 2, "Number of simulated nodes")
	flags.String(config.KeyNodeMode, string(config.NodeModeConcurrent), "Node scheduling: concurrent or serial")
	flags.Float64(config.KeyBaseline, 0, "Sequential baseline in seconds (0 measures it)")
	flags.Int(config.KeySize, transform.DefaultSize, "Output width and height in pixels")
	flags.String(config.KeyWatermark, transform.DefaultWatermark, "Watermark text (empty disables it)")
	flags.Int(config.KeyKernel, 0, "Gaussian blur kernel size (0 disables blur)")
	flags.Bool(config.KeyFailFast, true, "Abort the run on the first failed image")
	flags.String(config.KeyReport, "", "Append a plain-text report to this file")
	flags.String(config.KeyMetrics, "", "Write Prometheus textfile metrics to this file")
	flags.String(config.KeyRedis, "", "Redis address for the node result queue (empty uses memory)")
	flags.String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error")
}

// NewLogger returns a text slog logger at level writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Main executes cmd with a signal-aware context and exits non-zero on error.
func Main(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
