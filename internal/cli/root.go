package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amenk/import-product/internal/config"
	"github.com/amenk/import-product/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string
	LogFile    string

	cfg     *config.Config
	logger  *slog.Logger
	logSink io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rewrites CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "rewrites",
		Short:   "rewrites - URL rewrite reconciliation",
		Version: ir.EngineVersion,
		Long:    `Keep the URL rewrite table of a storefront in line with catalog data.

Each imported entity gets one canonical rewrite per store view and one per
assigned category. When a url key or category path changes, the old
request paths are turned into permanent redirects instead of being removed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Close()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./rewrites.yaml or ~/.config/rewrites/rewrites.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write logs to a rotated file instead of stderr")

	// Add subcommands
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Settings returns the resolved configuration. Global flags override the
// config file and REWRITES_* environment variables.
func (o *RootOptions) Settings() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	o.cfg = cfg
	return cfg, nil
}

// Logger returns the command logger: text records at INFO, or DEBUG with
// --verbose, written to w unless a log file is configured.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}

	logFile := o.LogFile
	if o.cfg != nil && o.cfg.LogFile != "" {
		logFile = o.cfg.LogFile
	}
	if logFile != "" {
		sink := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		o.logSink = sink
		w = sink
	}

	o.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return o.logger
}

// Close releases the log file, if any.
func (o *RootOptions) Close() error {
	if o.logSink == nil {
		return nil
	}
	err := o.logSink.Close()
	o.logSink = nil
	o.logger = nil
	return err
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
