// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChrisMcGann/FTIRKit/internal/config"
	"github.com/ChrisMcGann/FTIRKit/internal/logging"
	"github.com/ChrisMcGann/FTIRKit/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile  string
	logLevel    string
	logFile     string
	metricsFile string

	// Input flags, shared by every command
	delimiter string
	skipRows  int
	minWN     float64
	maxWN     float64
	normalize bool
)

// initLogging is replaced in tests.
var initLogging = logging.Init

// flagBindings maps config keys to flag names. Only flags defined on the
// running command are bound.
var flagBindings = map[string]string{
	"log.level":             "log-level",
	"log.file":              "log-file",
	"metrics.file":          "metrics-file",
	"input.delimiter":       "delimiter",
	"input.skiprows":        "skip-rows",
	"range.min":             "min-wavenumber",
	"range.max":             "max-wavenumber",
	"normalize":             "normalize",
	"display.mode":          "mode",
	"display.spacingfactor": "spacing-factor",
	"display.step":          "step",
	"display.styles":        "styles",
	"display.legend":        "legend",
	"peaks.minprominence":   "min-prominence",
	"peaks.minspacing":      "min-spacing",
	"peaks.polarity":        "polarity",
	"output.dir":            "out-dir",
	"output.bands":          "bands",
	"output.model":          "model",
	"output.database":       "db",
	"workers":               "workers",
}

var rootCmd = &cobra.Command{
	Use:   "ftirkit",
	Short: "FTIRKit - FTIR spectrum processing tool",
	Long: `FTIRKit cleans FTIR instrument exports (delimited text and JCAMP-DX),
normalizes and aligns several spectra for overlay or stacked display, detects
absorption bands and exports the band table and a plot-ready view model.

Settings are read from ftirkit.yaml (working directory or ~/.config/ftirkit),
FTIRKIT_* environment variables and flags, in increasing order of precedence.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ftirkit.yaml in . or ~/.config/ftirkit)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	rootCmd.PersistentFlags().StringVarP(&delimiter, "delimiter", "d", "auto", "Field delimiter: auto, comma, tab, semicolon, whitespace")
	rootCmd.PersistentFlags().IntVar(&skipRows, "skip-rows", 0, "Lines to skip before header detection")
	rootCmd.PersistentFlags().Float64Var(&minWN, "min-wavenumber", 400, "Lower wavenumber bound in cm-1 (0 = none)")
	rootCmd.PersistentFlags().Float64Var(&maxWN, "max-wavenumber", 4000, "Upper wavenumber bound in cm-1 (0 = none)")
	rootCmd.PersistentFlags().BoolVarP(&normalize, "normalize", "n", false, "Rescale every spectrum to 0-1")
}

// setup loads settings for cmd and initializes logging. The returned function
// closes the log file and must be called once the command finishes.
func setup(cmd *cobra.Command) (*config.Settings, func() error, error) {
	v := config.New()

	bindings := make(map[string]string)
	for key, name := range flagBindings {
		if cmd.Flags().Lookup(name) != nil {
			bindings[key] = name
		}
	}
	if err := config.BindFlags(v, cmd.Flags(), bindings); err != nil {
		return nil, nil, err
	}

	settings, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}

	closeLog, err := initLogging(settings.LoggingConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return settings, closeLog, nil
}

// readInputs loads every file named on the command line. An unreadable file
// is kept with Input.Err set so it is reported with the rest of the batch.
func readInputs(paths []string) []pipeline.Input {
	inputs := make([]pipeline.Input, 0, len(paths))
	for _, path := range paths {
		in := pipeline.Input{Name: filepath.Base(path)}
		data, err := os.ReadFile(path)
		if err != nil {
			in.Err = fmt.Errorf("failed to read %s: %w", path, err)
		} else {
			in.Data = data
		}
		inputs = append(inputs, in)
	}
	return inputs
}
