package core

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultPalette is the rotating series color palette.
var DefaultPalette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

// DefaultLineStyle is a solid line.
const DefaultLineStyle = "-"

var validLineStyles = map[string]bool{"-": true, "--": true, "-.": true, ":": true}

// Style is the display style of one series.
type Style struct {
	Label     string
	Color     string
	LineStyle string
}

// StyleTable stores per-file display overrides keyed by file name.
type StyleTable struct {
	styles map[string]Style
}

// NewStyleTable creates an empty style table
func NewStyleTable() *StyleTable {
	return &StyleTable{
		styles: make(map[string]Style),
	}
}

// LoadFromCSV loads styles from a CSV file (format: file,label[,color[,linestyle]])
func (t *StyleTable) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// The first line is the column header.
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		var style Style
		file := strings.TrimSpace(parts[0])
		style.Label = strings.TrimSpace(parts[1])
		if len(parts) >= 3 {
			style.Color = strings.TrimSpace(parts[2])
			if style.Color != "" && !isHexColor(style.Color) {
				return fmt.Errorf("line %d: invalid color '%s', expected #rrggbb", lineNum, style.Color)
			}
		}
		if len(parts) >= 4 {
			style.LineStyle = strings.TrimSpace(parts[3])
			if style.LineStyle != "" && !validLineStyles[style.LineStyle] {
				return fmt.Errorf("line %d: invalid line style '%s'", lineNum, style.LineStyle)
			}
		}

		t.styles[filepath.Base(file)] = style
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// Add adds or updates the style for a file
func (t *StyleTable) Add(file string, style Style) {
	t.styles[filepath.Base(file)] = style
}

// Len returns the number of entries.
func (t *StyleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.styles)
}

// Resolve returns the style for a spectrum at position index. Fields missing
// from the table fall back to the file name, the palette and a solid line.
func (t *StyleTable) Resolve(spec *Spectrum, index int) Style {
	style := Style{}
	if t != nil {
		style = t.styles[filepath.Base(spec.ID)]
	}
	if style.Label == "" {
		style.Label = spec.Name()
	}
	if style.Color == "" {
		style.Color = DefaultPalette[index%len(DefaultPalette)]
	}
	if style.LineStyle == "" {
		style.LineStyle = DefaultLineStyle
	}
	return style
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
