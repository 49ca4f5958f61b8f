// Package main provides the filoma command-line interface: a multi-backend
// directory profiler that walks a subtree and reports file/folder counts,
// size totals, extension and depth histograms and empty-directory data.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/filoma/filoma/internal/capability"
	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/progress"
	"github.com/filoma/filoma/internal/selector"
	"github.com/filoma/filoma/internal/walker"
)

var version = "dev"

// probeOptions holds the resolved configuration for a probe run: built-in
// defaults, overlaid by the config file, overlaid by explicit flags.
type probeOptions struct {
	backend          string
	maxDepth         int
	followSymlinks   bool
	fastPathOnly     bool
	concurrency      int
	networkTimeoutMs int
	networkRetries   int
	showProgress     bool
	jsonOutput       bool
	topExtensions    int

	verbose bool
	logFile string
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, walker.ErrScanCancelled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "filoma",
		Short:         "Profile directory trees with selectable traversal backends",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newProbeCmd(), newBackendsCmd())
	return cmd
}

func newProbeCmd() *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe <path>",
		Short: "Scan a directory tree and print its statistical profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.SetupLogging(opts.verbose, opts.logFile); err != nil {
				return err
			}
			defer logger.Close()

			file, err := loadFileConfig(configPath())
			if err != nil {
				return err
			}
			applyFileDefaults(opts, file, cmd.Flags().Changed)

			return runProbe(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.backend, "backend", "auto",
		"backend to use: auto, parallel, network, fd, fastwalk, sequential")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "limit traversal depth (0 = unlimited)")
	flags.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	flags.BoolVar(&opts.fastPathOnly, "fast-path-only", false, "discovery only: skip size and timestamp metadata")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "worker or in-flight cap (0 = auto)")
	flags.IntVar(&opts.networkTimeoutMs, "network-timeout-ms", 0, "per-operation deadline for the network backend")
	flags.IntVar(&opts.networkRetries, "network-retries", -1, "retry budget per transient failure in network mode")
	flags.BoolVar(&opts.showProgress, "progress", false, "render live progress on stderr")
	flags.BoolVar(&opts.jsonOutput, "json", false, "emit the profile as JSON")
	flags.IntVar(&opts.topExtensions, "top", 10, "number of extensions shown in the report")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")

	return cmd
}

// runProbe executes the scan with signal-driven cancellation and renders the
// report. A cancelled scan still prints its partial profile, tagged
// incomplete.
func runProbe(cmd *cobra.Command, root string, opts *probeOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := walker.Config{
		MaxDepth:       opts.maxDepth,
		FollowSymlinks: opts.followSymlinks,
		FastPathOnly:   opts.fastPathOnly,
		Concurrency:    opts.concurrency,
		NetworkTimeout: time.Duration(opts.networkTimeoutMs) * time.Millisecond,
		NetworkRetries: opts.networkRetries,
	}
	if opts.backend != "" && opts.backend != "auto" {
		cfg.Backends = []string{opts.backend}
	}

	var reporter *progress.Reporter
	if opts.showProgress {
		reporter = progress.NewReporter(os.Stderr, progress.DefaultInterval)
		cfg.OnProgress = reporter.Update
	}

	result, err := selector.Probe(ctx, root, cfg)
	if reporter != nil {
		reporter.Finish()
	}
	if err != nil && !errors.Is(err, walker.ErrScanCancelled) {
		return err
	}

	if opts.jsonOutput {
		if jsonErr := writeJSON(cmd.OutOrStdout(), result); jsonErr != nil {
			return jsonErr
		}
	} else {
		writeReport(cmd.OutOrStdout(), result, opts.topExtensions)
	}

	return err
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List traversal backends and their availability on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.SetupLogging(false, ""); err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			writeBackends(cmd.OutOrStdout(), capability.Detect(ctx))
			return nil
		},
	}
}
