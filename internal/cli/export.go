package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sentimentpulse/internal/config"
	apierrors "sentimentpulse/internal/errors"
	"sentimentpulse/internal/exporter"
	"sentimentpulse/internal/validation"
	"sentimentpulse/pkg/contracts/domain"
)

// ExportOptions holds export command flags
type ExportOptions struct {
	OutDir  string
	Formats []string
}

// ExportedFile describes one written export
type ExportedFile struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Rows   int    `json:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the latest snapshot table to CSV and XLSX",
		Long: `Write the latest score of every company, the table behind the
dashboard's raw data view, to the exports directory. All requested formats
are written concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "output directory (defaults to paths.exports_dir)")
	cmd.Flags().StringSliceVarP(&opts.Formats, "type", "t", []string{exporter.FormatCSV, exporter.FormatXLSX}, "export formats (csv,xlsx)")

	return cmd
}

func runExport(rootOpts *RootOptions, opts *ExportOptions, cmd *cobra.Command) error {
	for _, f := range opts.Formats {
		if f != exporter.FormatCSV && f != exporter.FormatXLSX {
			return fmt.Errorf("unsupported export format %q", f)
		}
	}

	e, err := rootOpts.setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	rows, err := e.dataset.Snapshot(ctx)
	if err != nil {
		return err
	}

	paths := config.PathsFromConfig(e.cfg)
	if opts.OutDir != "" {
		paths.ExportsDir = opts.OutDir
	}
	if err := validation.NewFileValidator(e.logger).ValidateOutputDirectory(paths.ExportsDir); err != nil {
		return err
	}

	files, err := exportAll(ctx, paths, slices.Compact(slices.Sorted(slices.Values(opts.Formats))), rows, e.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}
	for _, f := range files {
		fmt.Fprintf(out, "%s\t%d rows\t%s\n", f.Format, f.Rows, f.Path)
	}
	return nil
}

// exportAll writes one file per format in parallel. Results keep the order
// of formats; each goroutine owns one slot of files.
func exportAll(ctx context.Context, paths *config.Paths, formats []string, rows []domain.Observation, logger *slog.Logger) ([]ExportedFile, error) {
	g, ctx := errgroup.WithContext(ctx)
	files := make([]ExportedFile, len(formats))

	for i, format := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := exportOne(paths, format, rows, logger)
			if err != nil {
				return fmt.Errorf("%s export failed: %w", format, err)
			}
			files[i] = ExportedFile{Format: format, Path: path, Rows: len(rows)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func exportOne(paths *config.Paths, format string, rows []domain.Observation, logger *slog.Logger) (string, error) {
	name := exporter.SnapshotFilename(format)

	if format == exporter.FormatCSV {
		return exporter.NewCSVWriter(paths, logger).WriteSimpleCSV(name, exporter.SnapshotHeaders, exporter.SnapshotRecords(rows))
	}

	path := filepath.Join(paths.ExportsDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", apierrors.NewStorageError("failed to create export file", err).WithContext("path", path)
	}
	if err := exporter.WriteSnapshotXLSX(f, rows); err != nil {
		f.Close()
		return "", apierrors.NewStorageError("failed to write export file", err).WithContext("path", path)
	}
	logger.Info("Wrote XLSX file", slog.String("full_path", path), slog.Int("record_count", len(rows)))
	return path, f.Close()
}
