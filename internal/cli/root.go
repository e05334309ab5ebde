// Package cli provides the ordersdash command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ordersdash/internal/config"
	"ordersdash/internal/infrastructure"
	"ordersdash/pkg/contracts"
)

// envKey is used to store the command environment in context
type envKey struct{}

// env is what every subcommand needs: configuration, resolved paths and a logger
type env struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

type rootOptions struct {
	configFile string
	baseDir    string
	logLevel   string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ordersdash",
		Short: "Reconcile Summary and Secondary order reports",
		Long: `ordersdash joins a Summary (primary) order report with a Secondary
(line-level) report, computes KPIs and diagnostics, and exports the
filtered result as CSV or Excel. It runs once from the command line or
serves the same reports over HTTP.`,
		Version: contracts.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./ordersdash.yaml or ./configs/ordersdash.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.baseDir, "base-dir", "", "directory relative paths are resolved against (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSampleCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func loadEnv(cmd *cobra.Command, opts *rootOptions) (*env, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	paths, err := config.GetPaths(opts.baseDir)
	if err != nil {
		return nil, err
	}
	paths.Apply(cfg)

	var logger *slog.Logger
	if cfg.Logging.Output == "console" {
		// keep stdout free for tables and JSON
		logger = infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	} else {
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	return &env{cfg: cfg, paths: paths, logger: logger}, nil
}

func getEnv(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	paths, _ := config.GetPaths("")
	return &env{cfg: config.Default(), paths: paths, logger: infrastructure.GetLogger()}
}
