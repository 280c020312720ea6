// Package core provides the intermediate representation (IR) models and validation logic
// for FTIR spectra processed by FTIRKit.
package core

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// Sample is a single wavenumber, intensity pair.
type Sample struct {
	Wavenumber float64 // cm-1
	Intensity  float64 // transmittance or absorbance, instrument units
}

// Spectrum represents one measured FTIR spectrum.
//
// A Spectrum is immutable once produced by a reader: accessors return copies and
// every transform in this module returns a new value.
type Spectrum struct {
	ID           string   // Source file name, with a "#N" suffix for later blocks of multi-block files
	SourceFile   string   // File the spectrum was read from
	Samples      []Sample // Ordered by wavenumber, descending after cleaning
	SourceFormat string   // xy, jcamp
	Normalized   bool     // Intensities rescaled to [0,1]

	// Metadata collected from skipped header lines (e.g. "Instrument: X").
	Metadata map[string]string
}

// Band represents a detected local extremum in a spectrum.
type Band struct {
	SpectrumID string
	Wavenumber float64
	Intensity  float64
	Prominence float64
	Index      int // Sample index in the source spectrum
}

// DisplaySpectrum is a spectrum placed for plotting.
type DisplaySpectrum struct {
	Spectrum  *Spectrum
	Offset    float64 // Vertical offset added to every intensity
	Label     string
	Color     string
	LineStyle string
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return len(s.Samples)
}

// Wavenumbers returns a copy of the wavenumber axis.
func (s *Spectrum) Wavenumbers() []float64 {
	out := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		out[i] = smp.Wavenumber
	}
	return out
}

// Intensities returns a copy of the intensity values.
func (s *Spectrum) Intensities() []float64 {
	out := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		out[i] = smp.Intensity
	}
	return out
}

// IntensityRange returns the minimum and maximum intensity. Both are zero for an
// empty spectrum.
func (s *Spectrum) IntensityRange() (lo, hi float64) {
	return MinMax(s.Intensities())
}

// WavenumberRange returns the minimum and maximum wavenumber.
func (s *Spectrum) WavenumberRange() (lo, hi float64) {
	return MinMax(s.Wavenumbers())
}

// WithSamples returns a copy of the spectrum carrying the given samples.
func (s *Spectrum) WithSamples(samples []Sample) *Spectrum {
	out := *s
	out.Samples = samples
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Validate checks that a spectrum meets all requirements for processing.
func (s *Spectrum) Validate() error {
	var errs []string

	if s.ID == "" {
		errs = append(errs, "id is required")
	}
	if len(s.Samples) < 2 {
		errs = append(errs, "at least two samples are required")
	}

	for i, smp := range s.Samples {
		if math.IsNaN(smp.Wavenumber) || math.IsInf(smp.Wavenumber, 0) {
			errs = append(errs, fmt.Sprintf("sample %d has invalid wavenumber", i))
		}
		if math.IsNaN(smp.Intensity) || math.IsInf(smp.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("sample %d has invalid intensity", i))
		}
	}

	if !s.IsSortedDescending() {
		errs = append(errs, "samples must be sorted by wavenumber, descending")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// IsSortedDescending checks if samples are ordered by wavenumber, highest first.
// Equal neighbouring wavenumbers are allowed.
func (s *Spectrum) IsSortedDescending() bool {
	for i := 1; i < len(s.Samples); i++ {
		if s.Samples[i].Wavenumber > s.Samples[i-1].Wavenumber {
			return false
		}
	}
	return true
}

// SortSamples orders samples by wavenumber, descending. The sort is stable so
// duplicate wavenumbers keep their input order.
func SortSamples(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Wavenumber > samples[j].Wavenumber
	})
}

// Name returns the spectrum file name without directory or extension.
func (s *Spectrum) Name() string {
	base := filepath.Base(s.ID)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
