package filter

import (
	"errors"
	"testing"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

func testSpectrum() *core.Spectrum {
	return &core.Spectrum{
		ID: "film.csv",
		Samples: []core.Sample{
			{Wavenumber: 4500, Intensity: 0.1},
			{Wavenumber: 4000, Intensity: 0.2},
			{Wavenumber: 2500, Intensity: 0.3},
			{Wavenumber: 400, Intensity: 0.4},
			{Wavenumber: 350, Intensity: 0.5},
		},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []float64
	}{
		{"disabled", Config{}, []float64{4500, 4000, 2500, 400, 350}},
		{"inclusive window", Config{MinWavenumber: 400, MaxWavenumber: 4000}, []float64{4000, 2500, 400}},
		{"lower bound only", Config{MinWavenumber: 2000}, []float64{4500, 4000, 2500}},
		{"upper bound only", Config{MaxWavenumber: 400}, []float64{400, 350}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testSpectrum()
			got, err := tt.cfg.Apply(src)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			wns := got.Wavenumbers()
			if len(wns) != len(tt.want) {
				t.Fatalf("expected %d samples, got %d", len(tt.want), len(wns))
			}
			for i := range wns {
				if wns[i] != tt.want[i] {
					t.Errorf("sample %d: expected %.0f, got %.0f", i, tt.want[i], wns[i])
				}
			}
			if src.Len() != 5 {
				t.Errorf("source spectrum was modified")
			}
		})
	}
}

func TestApplyOutOfRange(t *testing.T) {
	cfg := Config{MinWavenumber: 1000, MaxWavenumber: 2000}

	_, err := cfg.Apply(testSpectrum())
	var rerr *core.RangeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *core.RangeError, got %v", err)
	}
	if rerr.Kept != 0 || rerr.Source != "film.csv" {
		t.Errorf("unexpected error fields: %+v", rerr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero", Config{}, false},
		{"ordered", Config{MinWavenumber: 400, MaxWavenumber: 4000}, false},
		{"reversed", Config{MinWavenumber: 4000, MaxWavenumber: 400}, true},
		{"negative", Config{MinWavenumber: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
