// Command pivot converts environmental sample workbooks into
// chart-ready day-by-category tables without running the server. Each
// input workbook produces one CSV or XLSX file next to it (or under
// --out when given).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"envchart/internal/dataset"
	"envchart/internal/exporter"
	"envchart/internal/services"
	"envchart/internal/validation"
	"envchart/pkg/contracts"
	"envchart/pkg/contracts/domain"
)

const (
	dateFlagFormat = "02/01/2006"

	// Batch conversions read from disk, so the bound is looser than
	// the HTTP upload limit.
	maxWorkbookSize = 100 << 20
)

type options struct {
	parameter string
	from      string
	to        string
	format    string
	outDir    string
	workers   int
	verbose   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "pivot [flags] workbook.xlsx [workbook.xlsx...]",
		Short:   "Pivot environmental sample workbooks into day-by-category tables",
		Long:    "Reads xlsx workbooks with Temperatura/Umidade/CO2/Data/Ambiente columns,\nnormalizes the values and writes one pivoted table per workbook.",
		Version: contracts.Version,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.parameter, "parameter", "p", "temperature", "parameter to pivot (temperature, humidity, co2)")
	cmd.Flags().StringVar(&opts.from, "from", "", "start of the inclusive day range (DD/MM/YYYY)")
	cmd.Flags().StringVar(&opts.to, "to", "", "end of the inclusive day range (DD/MM/YYYY)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format (csv or xlsx)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory (defaults to each workbook's directory)")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "number of workbooks converted concurrently")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	return cmd
}

func run(ctx context.Context, opts *options, paths []string) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	parameter := domain.Parameter(strings.ToLower(opts.parameter))
	if !parameter.Valid() {
		return fmt.Errorf("unknown parameter %q (want temperature, humidity or co2)", opts.parameter)
	}

	format := strings.ToLower(opts.format)
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q (want csv or xlsx)", opts.format)
	}

	dateRange, err := parseDateRange(opts.from, opts.to)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	validator := validation.NewUploadValidator(logger, maxWorkbookSize)
	loader := dataset.NewLoader(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	for _, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return convertWorkbook(logger, validator, loader, path, parameter, dateRange, format, opts.outDir)
		})
	}

	return g.Wait()
}

func convertWorkbook(
	logger *slog.Logger,
	validator *validation.UploadValidator,
	loader *dataset.Loader,
	path string,
	parameter domain.Parameter,
	dateRange domain.DateRange,
	format, outDir string,
) error {
	if err := validator.ValidateWorkbookPath(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	samples, skipped, err := loader.LoadWithStats(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	filtered := dataset.FilterByDate(samples, dateRange)
	categories := dataset.Categories(filtered)
	rows := dataset.Pivot(filtered, parameter)

	outPath := outputPath(path, parameter, format, outDir)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%s: %w", outPath, err)
	}
	defer out.Close()

	switch format {
	case "csv":
		err = exporter.WriteCSV(out, rows, categories)
	case "xlsx":
		err = exporter.WriteXLSX(out, rows, categories, services.ExportSheetName)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", outPath, err)
	}

	logger.Info("Workbook converted",
		slog.String("input", path),
		slog.String("output", outPath),
		slog.Int("rows_loaded", len(samples)),
		slog.Int("rows_skipped", skipped),
		slog.Int("days", len(rows)),
		slog.Int("categories", len(categories)))

	fmt.Fprintf(os.Stdout, "%s: %d days, %d categories -> %s\n", path, len(rows), len(categories), outPath)
	return nil
}

// parseDateRange turns the optional --from/--to flags into an
// inclusive day range. Bounds are interpreted in local time the same
// way the HTTP API does.
func parseDateRange(from, to string) (domain.DateRange, error) {
	var dr domain.DateRange

	if from != "" {
		t, err := time.ParseInLocation(dateFlagFormat, from, time.Local)
		if err != nil {
			return dr, fmt.Errorf("invalid --from date %q (want DD/MM/YYYY)", from)
		}
		dr.Start = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateFlagFormat, to, time.Local)
		if err != nil {
			return dr, fmt.Errorf("invalid --to date %q (want DD/MM/YYYY)", to)
		}
		dr.End = &t
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return dr, fmt.Errorf("--to date is before --from date")
	}

	return dr, nil
}

func outputPath(input string, parameter domain.Parameter, format, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := fmt.Sprintf("%s-%s.%s", base, parameter, format)
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}
