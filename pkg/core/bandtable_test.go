package core

import "testing"

func TestBandTable(t *testing.T) {
	a := &Spectrum{ID: "a.csv"}
	b := &Spectrum{ID: "b.csv"}
	display := []DisplaySpectrum{
		{Spectrum: a, Label: "A", Offset: 0},
		{Spectrum: b, Label: "B", Offset: 1.5},
	}
	bands := [][]Band{
		{{SpectrumID: "a.csv", Wavenumber: 1715.123, Intensity: 0.123456}},
		{
			{SpectrumID: "b.csv", Wavenumber: 1000.005, Intensity: 0.5},
			{SpectrumID: "b.csv", Wavenumber: 2900, Intensity: 0.25},
		},
	}

	rows := BandTable(display, bands)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[0].Series != "A" || rows[0].Wavenumber != 1715.12 || rows[0].Intensity != 0.1235 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	// Offsets never leak into the exported intensities.
	if rows[1].Intensity != 0.5 || rows[1].SpectrumID != "b.csv" {
		t.Errorf("unexpected second row %+v", rows[1])
	}
}

func TestBandTableSourceFile(t *testing.T) {
	display := []DisplaySpectrum{
		{Spectrum: &Spectrum{ID: "multi.jdx#2", SourceFile: "multi.jdx"}, Label: "second"},
		{Spectrum: &Spectrum{ID: "plain.csv"}, Label: "plain"},
	}
	bands := [][]Band{
		{{SpectrumID: "multi.jdx#2", Wavenumber: 1600, Intensity: 0.7}},
		{{SpectrumID: "plain.csv", Wavenumber: 1700, Intensity: 0.2}},
	}

	rows := BandTable(display, bands)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].SpectrumID != "multi.jdx#2" || rows[0].SourceFile != "multi.jdx" {
		t.Errorf("block row should keep its id and name the file, got %+v", rows[0])
	}
	// Without a recorded file the spectrum id is used.
	if rows[1].SourceFile != "plain.csv" {
		t.Errorf("expected fallback to the spectrum id, got %+v", rows[1])
	}
}

func TestBandTableMismatchedLengths(t *testing.T) {
	display := []DisplaySpectrum{{Spectrum: &Spectrum{ID: "a.csv"}, Label: "A"}}
	if rows := BandTable(display, nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
