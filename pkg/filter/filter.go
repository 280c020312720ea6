// Package filter provides sample filtering applied to spectra before display
package filter

import (
	"fmt"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	MinWavenumber float64 // Lower bound in cm-1 (0 = no lower bound)
	MaxWavenumber float64 // Upper bound in cm-1 (0 = no upper bound)
}

// Enabled reports whether any bound is set.
func (c *Config) Enabled() bool {
	return c.MinWavenumber > 0 || c.MaxWavenumber > 0
}

// Validate checks that the bounds are usable
func (c *Config) Validate() error {
	if c.MinWavenumber < 0 || c.MaxWavenumber < 0 {
		return fmt.Errorf("wavenumber bounds must be non-negative, got %.1f..%.1f", c.MinWavenumber, c.MaxWavenumber)
	}
	if c.MinWavenumber > 0 && c.MaxWavenumber > 0 && c.MinWavenumber >= c.MaxWavenumber {
		return fmt.Errorf("minimum wavenumber %.1f must be below maximum %.1f", c.MinWavenumber, c.MaxWavenumber)
	}
	return nil
}

// Apply returns a new spectrum holding only the samples inside the configured
// window. The source spectrum is not modified. Fewer than two remaining samples
// is a *core.RangeError.
func (c *Config) Apply(spec *core.Spectrum) (*core.Spectrum, error) {
	if !c.Enabled() {
		return spec, nil
	}

	filtered := make([]core.Sample, 0, len(spec.Samples))
	for _, smp := range spec.Samples {
		if c.inRange(smp.Wavenumber) {
			filtered = append(filtered, smp)
		}
	}

	if len(filtered) < 2 {
		return nil, &core.RangeError{
			Source: spec.ID,
			Min:    c.MinWavenumber,
			Max:    c.MaxWavenumber,
			Kept:   len(filtered),
		}
	}

	return spec.WithSamples(filtered), nil
}

// inRange checks a wavenumber against the configured bounds
func (c *Config) inRange(wn float64) bool {
	if c.MinWavenumber > 0 && wn < c.MinWavenumber {
		return false
	}
	if c.MaxWavenumber > 0 && wn > c.MaxWavenumber {
		return false
	}
	return true
}
