package core

import "math"

// Summary holds descriptive statistics of one spectrum.
type Summary struct {
	Points        int
	MinWavenumber float64
	MaxWavenumber float64
	MeanSpacing   float64 // average |delta wavenumber| between neighbours, cm-1
	MinIntensity  float64
	MaxIntensity  float64
	MeanIntensity float64
	StdIntensity  float64 // population standard deviation
}

// Summarize computes a Summary. An empty spectrum yields the zero value.
func Summarize(spec *Spectrum) Summary {
	n := spec.Len()
	if n == 0 {
		return Summary{}
	}

	s := Summary{Points: n}
	s.MinWavenumber, s.MaxWavenumber = spec.WavenumberRange()
	s.MinIntensity, s.MaxIntensity = spec.IntensityRange()
	if n > 1 {
		s.MeanSpacing = (s.MaxWavenumber - s.MinWavenumber) / float64(n-1)
	}

	var sum float64
	for _, smp := range spec.Samples {
		sum += smp.Intensity
	}
	s.MeanIntensity = sum / float64(n)

	var sq float64
	for _, smp := range spec.Samples {
		d := smp.Intensity - s.MeanIntensity
		sq += d * d
	}
	s.StdIntensity = math.Sqrt(sq / float64(n))

	return s
}
