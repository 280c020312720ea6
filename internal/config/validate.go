package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/FTIRKit/internal/logging"
	"github.com/ChrisMcGann/FTIRKit/pkg/align"
	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	"github.com/ChrisMcGann/FTIRKit/pkg/filter"
	"github.com/ChrisMcGann/FTIRKit/pkg/peaks"
	"github.com/ChrisMcGann/FTIRKit/pkg/reader/xy"
	"github.com/ChrisMcGann/FTIRKit/pkg/view"
)

// Validate checks every setting and reports all problems at once.
func (s *Settings) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseDelimiter(s.Input.Delimiter); err != nil {
		errs = append(errs, err)
	}
	if s.Input.SkipRows < 0 {
		errs = append(errs, fmt.Errorf("input.skiprows must be non-negative, got %d", s.Input.SkipRows))
	}
	if err := s.FilterConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("range: %w", err))
	}

	mode, err := align.ParseMode(s.Display.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	if s.Display.SpacingFactor < 0 || s.Display.Step < 0 {
		errs = append(errs, errors.New("display.spacingfactor and display.step must be non-negative"))
	} else if mode == align.Stacked && s.Display.Step == 0 && s.Display.SpacingFactor == 0 {
		errs = append(errs, errors.New("display.spacingfactor must be positive in stacked mode unless display.step is set"))
	}
	if _, err := view.ParseLegendLocation(s.Display.Legend); err != nil {
		errs = append(errs, err)
	}
	if s.Display.DPI <= 0 {
		errs = append(errs, fmt.Errorf("display.dpi must be positive, got %d", s.Display.DPI))
	}

	if _, err := s.minProminence(); err != nil {
		errs = append(errs, err)
	}
	if s.Peaks.MinSpacing < 0 {
		errs = append(errs, fmt.Errorf("peaks.minspacing must be non-negative, got %g", s.Peaks.MinSpacing))
	}
	if _, err := peaks.ParsePolarity(s.Peaks.Polarity); err != nil {
		errs = append(errs, err)
	}

	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", s.Workers))
	}

	return errors.Join(errs...)
}

// ParseDelimiter maps a delimiter name or literal to the reader delimiter. Auto
// detection is 0.
func ParseDelimiter(name string) (rune, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return 0, nil
	case "comma", ",":
		return ',', nil
	case "tab", "\t", `\t`:
		return '\t', nil
	case "semicolon", ";":
		return ';', nil
	case "whitespace", "space", " ":
		return xy.Whitespace, nil
	default:
		return 0, fmt.Errorf("invalid delimiter %q, must be auto, comma, tab, semicolon or whitespace", name)
	}
}

// minProminence returns the configured threshold, or a negative value for
// "auto".
func (s *Settings) minProminence() (float64, error) {
	raw := strings.TrimSpace(s.Peaks.MinProminence)
	if raw == "" || strings.EqualFold(raw, "auto") {
		return -1, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("peaks.minprominence must be auto or a non-negative number, got %q", raw)
	}
	return v, nil
}

// ReaderOptions returns the delimited text reader options.
func (s *Settings) ReaderOptions() xy.Options {
	delim, _ := ParseDelimiter(s.Input.Delimiter)
	return xy.Options{Delimiter: delim, SkipRows: s.Input.SkipRows}
}

// FilterConfig returns the wavenumber window.
func (s *Settings) FilterConfig() *filter.Config {
	return &filter.Config{MinWavenumber: s.Range.Min, MaxWavenumber: s.Range.Max}
}

// PeakConfig returns the detector parameters. An "auto" prominence depends on
// whether spectra are normalized.
func (s *Settings) PeakConfig() peaks.Config {
	prom, _ := s.minProminence()
	if prom < 0 {
		prom = peaks.DefaultMinProminence(s.Normalize)
	}
	polarity, _ := peaks.ParsePolarity(s.Peaks.Polarity)
	return peaks.Config{
		MinProminence: prom,
		MinSpacing:    s.Peaks.MinSpacing,
		Polarity:      polarity,
	}
}

// Aligner returns the aligner, with styles loaded from Display.Styles when set.
func (s *Settings) Aligner() (align.Aligner, error) {
	mode, _ := align.ParseMode(s.Display.Mode)
	a := align.Aligner{
		Mode:          mode,
		SpacingFactor: s.Display.SpacingFactor,
		Step:          s.Display.Step,
	}

	if s.Display.Styles == "" {
		return a, nil
	}
	f, err := os.Open(s.Display.Styles)
	if err != nil {
		return a, fmt.Errorf("failed to open styles file: %w", err)
	}
	defer f.Close()

	styles := core.NewStyleTable()
	if err := styles.LoadFromCSV(f); err != nil {
		return a, fmt.Errorf("failed to load styles from %s: %w", s.Display.Styles, err)
	}
	a.Styles = styles
	return a, nil
}

// ViewOptions returns the presentation options.
func (s *Settings) ViewOptions() view.Options {
	legend, _ := view.ParseLegendLocation(s.Display.Legend)
	return view.Options{
		XLabel:         s.Display.XLabel,
		YLabel:         s.Display.YLabel,
		MinWavenumber:  s.Range.Min,
		MaxWavenumber:  s.Range.Max,
		AxisFontSize:   s.Display.AxisFontSize,
		LegendFontSize: s.Display.LegendFontSize,
		LegendLocation: legend,
		LineWidth:      view.DefaultOptions().LineWidth,
		Width:          s.Display.Width,
		Height:         s.Display.Height,
		DPI:            s.Display.DPI,
		BandMarkers:    s.Display.BandMarkers,
	}
}

// LoggingConfig returns the logger setup.
func (s *Settings) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      s.Log.Level,
		File:       s.Log.File,
		MaxSizeMB:  s.Log.MaxSizeMB,
		MaxBackups: s.Log.MaxBackups,
		MaxAgeDays: s.Log.MaxAgeDays,
	}
}
