// Package normalize rescales spectrum intensities to a common range.
package normalize

import "github.com/ChrisMcGann/FTIRKit/pkg/core"

// MinMax returns a new spectrum whose intensities are mapped linearly so the
// smallest becomes 0 and the largest 1. A flat spectrum maps to all zeros.
// The wavenumber axis and the source spectrum are left untouched.
func MinMax(spec *core.Spectrum) *core.Spectrum {
	lo, hi := spec.IntensityRange()
	span := hi - lo

	samples := make([]core.Sample, len(spec.Samples))
	for i, smp := range spec.Samples {
		samples[i].Wavenumber = smp.Wavenumber
		if span == 0 {
			continue
		}
		samples[i].Intensity = (smp.Intensity - lo) / span
	}

	out := spec.WithSamples(samples)
	out.Normalized = true
	return out
}
