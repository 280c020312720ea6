package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChrisMcGann/FTIRKit/internal/config"
	"github.com/ChrisMcGann/FTIRKit/internal/logging"
	"github.com/ChrisMcGann/FTIRKit/internal/metrics"
	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	"github.com/ChrisMcGann/FTIRKit/pkg/pipeline"
	"github.com/ChrisMcGann/FTIRKit/pkg/writer/bandcsv"
	"github.com/ChrisMcGann/FTIRKit/pkg/writer/model"
	"github.com/ChrisMcGann/FTIRKit/pkg/writer/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// Flags for process command
	displayMode   string
	spacingFactor float64
	stackStep     float64
	stylesCSV     string
	legendLoc     string
	minProminence string
	minSpacing    float64
	polarity      string
	outDir        string
	bandsFile     string
	modelFile     string
	dbFile        string
	workers       int
)

func init() {
	processCmd.Flags().StringVarP(&displayMode, "mode", "m", "overlay", "Display mode: overlay or stacked")
	processCmd.Flags().Float64Var(&spacingFactor, "spacing-factor", 1.1, "Stacked step as a multiple of the largest intensity range")
	processCmd.Flags().Float64Var(&stackStep, "step", 0, "Fixed stacked step in intensity units (0 = use --spacing-factor)")
	processCmd.Flags().StringVar(&stylesCSV, "styles", "", "CSV with per-file label, color and line style (file,label,color,linestyle)")
	processCmd.Flags().StringVar(&legendLoc, "legend", "best", "Legend location: best, upper right, upper left, lower right, none")
	processCmd.Flags().StringVar(&minProminence, "min-prominence", "auto", "Minimum band prominence (auto = 0.02 normalized, 0.5 raw)")
	processCmd.Flags().Float64Var(&minSpacing, "min-spacing", 0, "Minimum distance between bands in cm-1")
	processCmd.Flags().StringVar(&polarity, "polarity", "maxima", "Band polarity: maxima (absorbance peaks) or minima (transmittance valleys)")
	processCmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Output directory")
	processCmd.Flags().StringVar(&bandsFile, "bands", "bands.csv", "Band table file name")
	processCmd.Flags().StringVar(&modelFile, "model", "model.json", "View model file name (.json or .yaml)")
	processCmd.Flags().StringVar(&dbFile, "db", "", "Also write results to this SQLite database")
	processCmd.Flags().IntVar(&workers, "workers", 0, "Parallel file workers (0 = all CPUs)")
}

var processCmd = &cobra.Command{
	Use:   "process FILE...",
	Short: "Process a batch of spectra and export bands and the view model",
	Long: `Parse every file, crop it to the wavenumber window, optionally normalize it,
detect bands and align the batch for overlay or stacked display.

A file that cannot be parsed is reported and skipped; the rest of the batch is
still processed.

Examples:
  # Overlay two exports with default settings
  ftirkit process film_a.csv film_b.csv

  # Stacked, normalized, with custom labels and a YAML view model
  ftirkit process *.csv --mode stacked --normalize --styles styles.csv --model model.yaml

  # Transmittance data: report valleys at least 15 cm-1 apart, results also in SQLite
  ftirkit process sample.jdx --polarity minima --min-spacing 15 --db results.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	settings, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := logging.ForService("process")

	aligner, err := settings.Aligner()
	if err != nil {
		return err
	}
	if aligner.Styles.Len() > 0 {
		fmt.Printf("Loaded %d style overrides\n", aligner.Styles.Len())
	}

	registry := prometheus.NewRegistry()
	pm, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	inputs := readInputs(args)

	fmt.Printf("Processing %d file(s)...\n", len(args))
	fmt.Printf("Mode: %s\n", aligner.Mode)
	if settings.Normalize {
		fmt.Printf("Normalization: min-max\n")
	}
	peakConfig := settings.PeakConfig()
	fmt.Printf("Bands: %s, prominence >= %g, spacing >= %g cm-1\n",
		peakConfig.Polarity, peakConfig.MinProminence, peakConfig.MinSpacing)

	report, err := pipeline.Run(context.Background(), inputs, pipeline.Options{
		Reader:    settings.ReaderOptions(),
		Range:     *settings.FilterConfig(),
		Normalize: settings.Normalize,
		Aligner:   aligner,
		Peaks:     peakConfig,
		View:      settings.ViewOptions(),
		Workers:   settings.Workers,
		Logger:    logger,
		Metrics:   pm,
	})

	if report != nil {
		printReport(report)
	}

	var emptyErr *core.EmptyBatchError
	if errors.As(err, &emptyErr) {
		writeMetrics(settings, pm)
		return err
	}
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if err := writeOutputs(settings, report); err != nil {
		return err
	}
	writeMetrics(settings, pm)

	fmt.Printf("\nProcessing complete!\n")
	fmt.Printf("Run: %s\n", report.RunID)
	fmt.Printf("Spectra: %d, bands: %d\n", len(report.Display), len(report.Rows))
	return nil
}

// printReport lists which files succeeded and which failed and why.
func printReport(report *pipeline.Report) {
	fmt.Println()
	for _, f := range report.Files {
		if !f.OK() {
			fmt.Printf("  FAIL  %s: %v\n", f.Source, f.Err)
			continue
		}
		for i, spec := range f.Spectra {
			fmt.Printf("  OK    %s (%s, %d points, %d bands)\n", spec.ID, f.Format, spec.Len(), len(f.Bands[i]))
		}
	}
	fmt.Printf("\n%d of %d file(s) processed\n", report.Succeeded(), len(report.Files))
}

func writeOutputs(settings *config.Settings, report *pipeline.Report) error {
	dir := settings.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if settings.Output.Bands != "" {
		path := filepath.Join(dir, settings.Output.Bands)
		if err := writeFile(path, func(f *os.File) error { return bandcsv.Write(f, report.Rows) }); err != nil {
			return fmt.Errorf("failed to write band table: %w", err)
		}
		fmt.Printf("Band table: %s\n", path)
	}

	if settings.Output.Model != "" {
		path := filepath.Join(dir, settings.Output.Model)
		format := model.FormatFromPath(path)
		if err := writeFile(path, func(f *os.File) error { return model.Write(f, report.Model, format) }); err != nil {
			return fmt.Errorf("failed to write view model: %w", err)
		}
		fmt.Printf("View model: %s\n", path)
	}

	if settings.Output.Database != "" {
		if err := writeDatabase(settings.Output.Database, report); err != nil {
			return err
		}
		fmt.Printf("Database: %s\n", settings.Output.Database)
	}

	return nil
}

func writeDatabase(path string, report *pipeline.Report) error {
	writer, err := sqlite.NewWriter(path, report.RunID)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}

	for i, ds := range report.Display {
		if err := writer.WriteSpectrum(ds, report.Bands[i]); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write spectrum %s: %w", ds.Spectrum.ID, err)
		}
	}

	desc := fmt.Sprintf("%d of %d file(s)", report.Succeeded(), len(report.Files))
	if err := writer.Finalize(desc); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMetrics(settings *config.Settings, pm *metrics.PipelineMetrics) {
	if settings.Metrics.File == "" {
		return
	}
	if err := pm.WriteTextfile(settings.Metrics.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
