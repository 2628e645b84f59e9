package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"sentimentpulse/internal/app"
	"sentimentpulse/internal/config"
	"sentimentpulse/internal/infrastructure"
	"sentimentpulse/internal/services"
	"sentimentpulse/internal/validation"
	"sentimentpulse/pkg/contracts"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitDataNotFound = 3
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	DataFile   string
	Format     string // "text" | "json"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the report CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "sentiment-report",
		Short:   "Sentiment workbook reports",
		Long:    "Summarise and export the Quarterly Sentiment sheet without starting the dashboard.",
		Version: contracts.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate(contracts.GetVersionString() + "\n")

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (defaults to config.yaml next to the executable)")
	cmd.PersistentFlags().StringVarP(&opts.DataFile, "file", "f", "", "sentiment workbook, overrides data.file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// ExitCode maps a command error to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, services.ErrDataFileNotFound):
		return ExitDataNotFound
	default:
		return ExitFailure
	}
}

// env is what every subcommand needs to read the workbook
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	dataset *services.DatasetService
}

func (o *RootOptions) setup(cmd *cobra.Command) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigFile != "" {
		cfg, err = config.LoadFrom(o.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	logger, err := infrastructure.NewLogger(config.LoggingConfig{
		Level:  level,
		Output: "console",
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	if o.DataFile != "" {
		abs, err := filepath.Abs(o.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data file: %w", err)
		}
		if err := validation.NewFileValidator(logger).ValidateWorkbookPath(abs); err != nil {
			return nil, err
		}
		cfg.Data.Source = config.SourceXLSX
		cfg.Data.File = abs
	}

	source, err := app.NewSource(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		dataset: services.NewDatasetService(source, app.NewSummarizer(cfg, logger), nil, nil, logger),
	}, nil
}
