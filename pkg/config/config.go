// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the top-level configuration surface for the kgls CLI and engine.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Run     RunConfig     `koanf:"run"`
	Abort   []AbortEntry  `koanf:"abort"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Report  ReportConfig  `koanf:"report"`
}

// AppConfig holds process-wide identification, unrelated to the algorithm.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// RunConfig carries the five run parameters recognized by the search driver.
type RunConfig struct {
	DepthLinKernighan   int      `koanf:"depth_lin_kernighan"`
	DepthRelocationChain int     `koanf:"depth_relocation_chain"`
	NumPerturbations    int      `koanf:"num_perturbations"`
	NeighborhoodSize    int      `koanf:"neighborhood_size"`
	Moves               []string `koanf:"moves"`
}

// AbortEntry is one (name, integer parameter) abort-condition request, as
// recognized by engine.Engine.AddAbortCondition.
type AbortEntry struct {
	Name  string `koanf:"name"`
	Param int    `koanf:"param"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures pkg/metrics.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// ReportConfig configures optional PDF/XLSX report generation after a run.
type ReportConfig struct {
	WritePDF   bool   `koanf:"write_pdf"`
	WriteExcel bool   `koanf:"write_excel"`
	OutputDir  string `koanf:"output_dir"`

	DefaultCompanyName string    `koanf:"default_company_name"`
	PDF                PDFConfig `koanf:"pdf"`
}

// PDFConfig configures pkg/report's maroto-based PDF writer.
type PDFConfig struct {
	PageSize       string  `koanf:"page_size"`  // A4, Letter, Legal
	Orientation    string  `koanf:"orientation"` // portrait, landscape
	MarginTop      float64 `koanf:"margin_top"`
	MarginBottom   float64 `koanf:"margin_bottom"`
	MarginLeft     float64 `koanf:"margin_left"`
	MarginRight    float64 `koanf:"margin_right"`
	FontSize       float64 `koanf:"font_size"`
	HeaderFontSize float64 `koanf:"header_font_size"`
}

var validMoveNames = map[string]bool{
	"segment_move":      true,
	"cross_exchange":    true,
	"relocation_chain":  true,
}

// Validate checks the configuration for internally-detectable mistakes,
// including unknown run.moves operator names. It does not check abort
// condition names; an unknown one surfaces as
// apperror.CodeUnknownAbortCondition when the engine's abort conditions are set.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Run.DepthLinKernighan < 2 {
		errs = append(errs, fmt.Sprintf("run.depth_lin_kernighan must be >= 2, got %d", c.Run.DepthLinKernighan))
	}
	if c.Run.DepthRelocationChain < 1 {
		errs = append(errs, fmt.Sprintf("run.depth_relocation_chain must be >= 1, got %d", c.Run.DepthRelocationChain))
	}
	if c.Run.NumPerturbations < 1 {
		errs = append(errs, fmt.Sprintf("run.num_perturbations must be >= 1, got %d", c.Run.NumPerturbations))
	}
	if c.Run.NeighborhoodSize < 1 {
		errs = append(errs, fmt.Sprintf("run.neighborhood_size must be >= 1, got %d", c.Run.NeighborhoodSize))
	}
	for _, m := range c.Run.Moves {
		if !validMoveNames[m] {
			errs = append(errs, fmt.Sprintf("run.moves contains unknown operator %q", m))
		}
	}

	validPageSizes := map[string]bool{"A4": true, "Letter": true, "Legal": true, "A3": true}
	if c.Report.PDF.PageSize != "" && !validPageSizes[c.Report.PDF.PageSize] {
		errs = append(errs, fmt.Sprintf("report.pdf.page_size must be one of: A4, Letter, Legal, A3, got %s", c.Report.PDF.PageSize))
	}
	validOrientations := map[string]bool{"portrait": true, "landscape": true}
	if c.Report.PDF.Orientation != "" && !validOrientations[c.Report.PDF.Orientation] {
		errs = append(errs, fmt.Sprintf("report.pdf.orientation must be one of: portrait, landscape, got %s", c.Report.PDF.Orientation))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the configured environment is development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the configured environment is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
