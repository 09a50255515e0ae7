package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gatherfs/gather/internal/config"
	"github.com/gatherfs/gather/internal/engine"
	"github.com/gatherfs/gather/internal/event"
	"github.com/gatherfs/gather/internal/stats"
	"github.com/gatherfs/gather/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// sourceFlag is a custom pflag.Value that appends repeated --source values
// in CLI order.
type sourceFlag struct {
	roots *[]string
}

var _ pflag.Value = (*sourceFlag)(nil)

func (*sourceFlag) String() string { return "" }
func (*sourceFlag) Type() string   { return "path" }

func (f *sourceFlag) Set(val string) error {
	if val == "" {
		return errors.New("empty source path")
	}
	*f.roots = append(*f.roots, val)
	return nil
}

//nolint:gocyclo // main CLI entry point orchestrates all flag parsing and mode selection
func run() int {
	var (
		dryRun       bool
		verbose      bool
		quiet        bool
		logFile      string
		configFile   string
		noTimes      bool
		pruneSources bool
		includeRoot  bool
		showVersion  bool
		flagSources  []string
	)

	rootCmd := &cobra.Command{
		Use:   "gather [flags] [<source>... <destination>]",
		Short: "Consolidate directory trees into one, deduplicating by content",
		Long: `gather merges one or more source directory trees into a single
destination tree. Byte-identical files already present at the destination
are skipped; conflicting files and directories are kept under _2, _3, ...
sibling names so no data is ever overwritten or dropped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			if len(args) == 1 && len(flagSources) == 0 {
				return errors.New("a destination needs at least one source (positional or --source)")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "gather %s\n", version)
				return nil
			}

			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd, cfg.Defaults, &verbose, &quiet, &dryRun, &logFile, &noTimes)

			dest := cfg.Roots.Dest
			sources := append([]string(nil), cfg.Roots.Sources...)
			sources = append(sources, flagSources...)
			if len(args) > 0 {
				dest = args[len(args)-1]
				sources = append(sources, args[:len(args)-1]...)
			}
			if dest == "" {
				return errors.New("no destination: pass one as the last argument or set roots.dest in the config file")
			}
			if len(sources) == 0 {
				return errors.New("no sources: pass them as arguments or set roots.sources in the config file")
			}

			logger, closeLog, err := setupLogging(verbose, quiet, logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger)

			if dryRun {
				slog.Info("dry run mode")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			var logWg sync.WaitGroup
			logWg.Add(1)
			go func() {
				defer logWg.Done()
				ui.LogEvents(logger, events)
			}()

			// Documented workflow: clean up empty directories in the sources
			// first, then consolidate.
			if pruneSources {
				for _, src := range sources {
					if _, err := engine.Prune(ctx, engine.PruneConfig{
						Root:   src,
						DryRun: dryRun,
						Events: events,
						Stats:  collector,
					}); err != nil && ctx.Err() != nil {
						break
					}
				}
			}

			result := engine.Result{Stats: collector.Snapshot()}
			if ctx.Err() == nil {
				slog.Debug("starting consolidation",
					"sources", sources,
					"dest", dest,
					"dry_run", dryRun,
				)
				result = engine.Run(ctx, engine.Config{
					Dest:          dest,
					Sources:       sources,
					DryRun:        dryRun,
					PreserveTimes: !noTimes,
					Events:        events,
					Stats:         collector,
				})
			}

			stop()
			close(events)
			logWg.Wait()

			if !quiet {
				fmt.Fprintln(os.Stderr, ui.Summary(result.Stats))
			}

			if result.Err != nil {
				slog.Error("consolidation failed", "error", result.Err)
				if result.Stats.FilesCopied > 0 {
					return &exitError{code: 1} // partial
				}
				return &exitError{code: 2}
			}
			if result.Stats.Errors > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().BoolVar(&pruneSources, "prune-sources", false, "delete empty directories from the sources before merging")
	rootCmd.Flags().BoolVar(&noTimes, "no-times", false, "don't preserve mtime on copied files")
	rootCmd.Flags().Var(&sourceFlag{roots: &flagSources}, "source", "additional source root (repeatable)")

	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every file decision")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "append structured JSON records to FILE")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: XDG config path)")

	pruneCmd := &cobra.Command{
		Use:   "prune [flags] <root>...",
		Short: "Delete directories containing no files anywhere in their subtree",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd, cfg.Defaults, &verbose, &quiet, &dryRun, &logFile, &noTimes)

			roots := args
			if len(roots) == 0 {
				roots = cfg.Roots.Sources
			}
			if len(roots) == 0 {
				return errors.New("no roots: pass them as arguments or set roots.sources in the config file")
			}

			logger, closeLog, err := setupLogging(verbose, quiet, logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			var logWg sync.WaitGroup
			logWg.Add(1)
			go func() {
				defer logWg.Done()
				ui.LogEvents(logger, events)
			}()

			for _, root := range roots {
				// A missing root is already counted; keep going with the rest.
				if _, err := engine.Prune(ctx, engine.PruneConfig{
					Root:        root,
					IncludeRoot: includeRoot,
					DryRun:      dryRun,
					Events:      events,
					Stats:       collector,
				}); err != nil && ctx.Err() != nil {
					break
				}
			}

			stop()
			close(events)
			logWg.Wait()

			snapshot := collector.Snapshot()
			if !quiet {
				fmt.Fprintln(os.Stderr, ui.PruneSummary(snapshot))
			}
			if snapshot.Errors > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	pruneCmd.Flags().BoolVar(&includeRoot, "include-root", false, "also delete the root itself if its subtree has no files")

	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	return cfg, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	verbose, quiet, dryRun *bool,
	logFile *string,
	noTimes *bool,
) {
	if !cmd.Flags().Changed("verbose") && defaults.Verbose != nil {
		*verbose = *defaults.Verbose
	}
	if !cmd.Flags().Changed("quiet") && defaults.Quiet != nil {
		*quiet = *defaults.Quiet
	}
	if !cmd.Flags().Changed("dry-run") && defaults.DryRun != nil {
		*dryRun = *defaults.DryRun
	}
	if !cmd.Flags().Changed("log") && defaults.Log != nil {
		*logFile = *defaults.Log
	}
	if f := cmd.Flags().Lookup("no-times"); f != nil && !f.Changed && defaults.PreserveTimes != nil {
		*noTimes = !*defaults.PreserveTimes
	}
}

// setupLogging builds the slog logger: text on stderr at a level derived
// from --verbose/--quiet, optionally fanned out to a JSON log file that
// always records at debug.
func setupLogging(verbose, quiet bool, logFile string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelError
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	var handler slog.Handler = textHandler
	closer := func() {}
	if logFile != "" {
		lf, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = ui.NewMultiHandler(textHandler, jsonHandler)
		closer = func() { lf.Close() }
	}
	return slog.New(handler), closer, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
