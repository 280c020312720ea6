// Package config loads ftirkit settings from defaults, an optional YAML file,
// FTIRKIT_* environment variables and command line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FTIRKIT"

// Settings is the full configuration surface.
type Settings struct {
	Log       LogSettings     `mapstructure:"log"`
	Input     InputSettings   `mapstructure:"input"`
	Range     RangeSettings   `mapstructure:"range"`
	Normalize bool            `mapstructure:"normalize"`
	Display   DisplaySettings `mapstructure:"display"`
	Peaks     PeakSettings    `mapstructure:"peaks"`
	Output    OutputSettings  `mapstructure:"output"`
	Workers   int             `mapstructure:"workers"` // 0 uses every CPU
	Metrics   MetricsSettings `mapstructure:"metrics"`
}

type LogSettings struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxsize"`
	MaxBackups int    `mapstructure:"maxbackups"`
	MaxAgeDays int    `mapstructure:"maxage"`
}

type InputSettings struct {
	Delimiter string `mapstructure:"delimiter"` // auto, comma, tab, semicolon, whitespace
	SkipRows  int    `mapstructure:"skiprows"`
}

// RangeSettings is the wavenumber window in cm-1. Zero disables a bound.
type RangeSettings struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type DisplaySettings struct {
	Mode           string  `mapstructure:"mode"`          // overlay or stacked
	SpacingFactor  float64 `mapstructure:"spacingfactor"` // stacked step = largest range * factor
	Step           float64 `mapstructure:"step"`          // fixed stacked step, overrides the factor
	Styles         string  `mapstructure:"styles"`        // CSV file: file,label[,color[,linestyle]]
	Legend         string  `mapstructure:"legend"`
	AxisFontSize   float64 `mapstructure:"axisfontsize"`
	LegendFontSize float64 `mapstructure:"legendfontsize"`
	XLabel         string  `mapstructure:"xlabel"`
	YLabel         string  `mapstructure:"ylabel"`
	Width          float64 `mapstructure:"width"`
	Height         float64 `mapstructure:"height"`
	DPI            int     `mapstructure:"dpi"`
	BandMarkers    bool    `mapstructure:"bandmarkers"`
}

type PeakSettings struct {
	MinProminence string  `mapstructure:"minprominence"` // "auto" or a number
	MinSpacing    float64 `mapstructure:"minspacing"`    // cm-1
	Polarity      string  `mapstructure:"polarity"`      // maxima or minima
}

type OutputSettings struct {
	Dir      string `mapstructure:"dir"`
	Bands    string `mapstructure:"bands"`    // band table CSV, relative to Dir
	Model    string `mapstructure:"model"`    // view model, .json or .yaml
	Database string `mapstructure:"database"` // SQLite results file; empty disables
}

type MetricsSettings struct {
	File string `mapstructure:"file"` // Prometheus textfile; empty disables
}

// New returns a viper instance with every default registered.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxsize", 10)
	v.SetDefault("log.maxbackups", 3)
	v.SetDefault("log.maxage", 28)

	v.SetDefault("input.delimiter", "auto")
	v.SetDefault("input.skiprows", 0)

	v.SetDefault("range.min", 400.0)
	v.SetDefault("range.max", 4000.0)

	v.SetDefault("normalize", false)

	v.SetDefault("display.mode", "overlay")
	v.SetDefault("display.spacingfactor", 1.1)
	v.SetDefault("display.step", 0.0)
	v.SetDefault("display.styles", "")
	v.SetDefault("display.legend", "best")
	v.SetDefault("display.axisfontsize", 12.0)
	v.SetDefault("display.legendfontsize", 9.0)
	v.SetDefault("display.xlabel", "Wavenumber (cm-1)")
	v.SetDefault("display.ylabel", "Transmittance (a.u.)")
	v.SetDefault("display.width", 10.0)
	v.SetDefault("display.height", 6.0)
	v.SetDefault("display.dpi", 300)
	v.SetDefault("display.bandmarkers", true)

	v.SetDefault("peaks.minprominence", "auto")
	v.SetDefault("peaks.minspacing", 0.0)
	v.SetDefault("peaks.polarity", "maxima")

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.bands", "bands.csv")
	v.SetDefault("output.model", "model.json")
	v.SetDefault("output.database", "")

	v.SetDefault("workers", 0)
	v.SetDefault("metrics.file", "")
}

// DefaultConfigPaths lists the directories searched for ftirkit.yaml.
func DefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ftirkit"))
	}
	return paths
}

// BindFlags binds command line flags to config keys. bindings maps config key
// to flag name; flags missing from fs are an error.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag --%s for %s is not defined", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile, or ftirkit.yaml from DefaultConfigPaths when
// configFile is empty, and returns validated settings. A missing default
// config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ftirkit")
		v.SetConfigType("yaml")
		for _, path := range DefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}
