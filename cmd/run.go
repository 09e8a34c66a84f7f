package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"leakctl/internal/config"
	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"
	"leakctl/internal/suite"
	"leakctl/internal/tui"
	"leakctl/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// runFlags holds the flags of `leakctl run`. Flags left unset keep the value
// from the configuration files.
type runFlags struct {
	strategy          string
	gcPasses          int
	output            string
	reportPath        string
	metricsFile       string
	tui               bool
	verbose           bool
	debug             bool
	failFast          bool
	disable           bool
	requireAssertions bool
	module            string
	test              string
}

// completeStrategyFlag provides shell completion for the strategy flag
func completeStrategyFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, s := range leakcheck.Strategies() {
		out = append(out, string(s))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeOutputFlag provides shell completion for the output flag
func completeOutputFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{config.OutputText, config.OutputQuiet, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
}

// completeModuleFlag completes module names from the suites named on the
// command line, the configured suites or the built-in suite.
func completeModuleFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	suites, err := loadSuites(args, cfg.Suites)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, s := range suites {
		for _, m := range s.Modules {
			if strings.HasPrefix(m.Name, toComplete) && !slices.Contains(out, m.Name) {
				out = append(out, m.Name)
			}
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [suite files or directories...]",
		Short: "Run test suites with owner leak detection",
		Long: `Run executes YAML test suites one test at a time and checks that every
application and engine instance created by a test is garbage collected.

Strategies:
- per-test:   check after every test; leaks fail the test that created them
- per-module: check after every module; leaks are reported in a synthesized
              "[OWNER LEAK DETECTED]" module
- after-all:  check once after the last module

Without arguments the suites listed in the configuration are run, or the
built-in suite when none is configured.

Example usage:
  leakctl run                                  # Built-in suite, per-test
  leakctl run suites/ --strategy=after-all     # All suites in a directory
  leakctl run --module=clean-component         # Only matching modules
  leakctl run --output=json > result.json      # Machine-readable result
  leakctl run --metrics-file=leakctl.prom      # Export detector metrics
  leakctl run --tui                            # Interactive progress view`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, args)
		},
	}

	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Leak detection strategy (per-test, per-module, after-all)")
	cmd.Flags().IntVar(&f.gcPasses, "gc-passes", 0, "Forced collections per checkpoint (minimum 3)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output format (text, quiet, json)")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Directory to save a detailed JSON report to")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write detector metrics in Prometheus text format to this file")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "Show an interactive progress view")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Enable verbose test output")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "Stop after the first failing test")
	cmd.Flags().BoolVar(&f.disable, "disable", false, "Run without owner leak detection")
	cmd.Flags().BoolVar(&f.requireAssertions, "require-assertions", false, "Fail tests that run no assertion")
	cmd.Flags().StringVar(&f.module, "module", "", "Only run modules whose name contains this text")
	cmd.Flags().StringVar(&f.test, "test", "", "Only run tests whose name contains this text")

	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategyFlag)
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFlag)
	_ = cmd.RegisterFlagCompletionFunc("module", completeModuleFlag)

	cmd.MarkFlagsMutuallyExclusive("tui", "output")
	return cmd
}

// apply overrides cfg with the flags set on cmd.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.LeakctlConfig) {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if flags.Changed("gc-passes") {
		cfg.GCPasses = f.gcPasses
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("report") {
		cfg.ReportPath = f.reportPath
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = f.failFast
	}
	if flags.Changed("disable") {
		cfg.Disabled = f.disable
	}
	if flags.Changed("require-assertions") {
		cfg.RequireAssertions = f.requireAssertions
	}
}

func (f *runFlags) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	f.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logChannel <-chan logging.LogEntry
	if f.tui {
		logChannel = logging.InitForTUI(logLevel(f.debug, cfg.Verbose))
		defer logging.CloseTUIChannel()
	} else {
		logging.InitForCLI(logLevel(f.debug, cfg.Verbose), cmd.ErrOrStderr())
	}

	suites, err := loadSuites(args, cfg.Suites)
	if err != nil {
		return err
	}
	suites, err = suite.Filter(suites, f.module, f.test)
	if err != nil {
		return err
	}

	opts, err := runOptions(cfg, f.debug)
	if err != nil {
		return err
	}
	metrics := opts.Metrics

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *harness.SuiteResult
	if f.tui {
		result, err = tui.Run(ctx, suites, opts, logChannel)
	} else {
		opts.Reporter = newReporter(cmd.OutOrStdout(), cfg.Output, opts.Harness)
		result, err = suite.Run(ctx, suites, opts)
	}

	if metrics != nil {
		if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			logging.Error("Run", werr, "Failed to write metrics to %s", cfg.MetricsFile)
		}
	}
	if result != nil && cfg.ReportPath != "" && (f.tui || cfg.Output != config.OutputText) {
		if _, rerr := harness.SaveReport(cfg.ReportPath, *result); rerr != nil {
			logging.Error("Run", rerr, "Failed to save detailed report")
		}
	}

	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("%d of %d tests failed", result.FailedTests+result.ErrorTests, result.TotalTests)
	}
	return nil
}

// runOptions translates cfg into suite run options. Metrics are collected
// only when a metrics file is configured.
func runOptions(cfg config.LeakctlConfig, debug bool) (suite.RunOptions, error) {
	strategy, err := config.ParseStrategy(cfg.Strategy)
	if err != nil {
		return suite.RunOptions{}, err
	}

	var metrics *leakcheck.Metrics
	if cfg.MetricsFile != "" {
		metrics = leakcheck.NewMetrics(prometheus.NewRegistry(), leakcheck.MetricsNamespace)
	}

	return suite.RunOptions{
		Strategy: strategy,
		GCPasses: cfg.GCPasses,
		Disabled: cfg.Disabled,
		Harness: harness.Configuration{
			FailFast:          cfg.FailFast,
			Verbose:           cfg.Verbose,
			Debug:             debug,
			RequireAssertions: cfg.RequireAssertions,
			ReportPath:        cfg.ReportPath,
		},
		Metrics: metrics,
	}, nil
}

// newReporter returns the reporter for output. Only the text reporter saves
// the detailed report itself.
func newReporter(out io.Writer, output string, cfg harness.Configuration) harness.Reporter {
	switch output {
	case config.OutputQuiet:
		return harness.NewQuietReporter(out)
	case config.OutputJSON:
		return harness.NewJSONReporter(out)
	default:
		return harness.NewConsoleReporter(out, cfg.Verbose, cfg.Debug, cfg.ReportPath)
	}
}

// loadSuites loads args, falling back to the configured suites and then to
// the built-in one.
func loadSuites(args, configured []string) ([]*suite.Suite, error) {
	paths := args
	if len(paths) == 0 {
		paths = configured
	}
	if len(paths) == 0 {
		return []*suite.Suite{suite.Default()}, nil
	}
	suites, err := suite.LoadAll(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load suites: %w", err)
	}
	return suites, nil
}

func logLevel(debug, verbose bool) logging.LogLevel {
	switch {
	case debug:
		return logging.LevelDebug
	case verbose:
		return logging.LevelInfo
	default:
		return logging.LevelWarn
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
