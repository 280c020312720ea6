package cmd

import (
	"fmt"

	"github.com/ChrisMcGann/FTIRKit/internal/logging"
	"github.com/ChrisMcGann/FTIRKit/pkg/pipeline"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate input files without processing them",
	Long: `Parse each file with the current input settings and check that it yields
at least one well-formed spectrum inside the wavenumber window.

The command exits with an error when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	settings, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := logging.ForService("validate")

	inputs := readInputs(args)
	failed := 0

	rangeConfig := settings.FilterConfig()
	for _, in := range inputs {
		format := pipeline.DetectFormat(in.Name, in.Data)
		spectra, err := pipeline.Parse(in, format, settings.ReaderOptions())
		if err == nil {
			for _, spec := range spectra {
				if err = spec.Validate(); err != nil {
					break
				}
				if _, err = rangeConfig.Apply(spec); err != nil {
					break
				}
			}
		}
		if err != nil {
			failed++
			logger.Debug("validation failed", "source", in.Name, "error", err)
			fmt.Printf("  FAIL  %s: %v\n", in.Name, err)
			continue
		}
		fmt.Printf("  OK    %s (%s, %d spectra)\n", in.Name, format, len(spectra))
	}

	fmt.Printf("\n%d of %d file(s) valid\n", len(args)-failed, len(args))
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed validation", failed)
	}
	return nil
}
