// Package config builds component configurations from CLI inputs.
package config

import (
	"fmt"

	"gl-duplicate-analyzer/internal/analyzer"
	"gl-duplicate-analyzer/internal/engine"
	"gl-duplicate-analyzer/internal/parsers"
	"gl-duplicate-analyzer/internal/report"
	"gl-duplicate-analyzer/internal/reporter"

	"github.com/shopspring/decimal"
)

// CreatePostingParserConfig returns the parser configuration for the named
// input format, extended with common column aliases seen in GL exports.
func CreatePostingParserConfig(format string) (*parsers.PostingParserConfig, error) {
	base := parsers.GetPostingConfig(format)
	if base == nil {
		return nil, fmt.Errorf("unknown input format '%s'. Valid formats: standard, sap", format)
	}

	config := *base
	config.ColumnAliases = map[string]string{}
	for k, v := range base.ColumnAliases {
		config.ColumnAliases[k] = v
	}

	return &config, nil
}

// CreateEngineConfig returns the grouping engine configuration with the
// CLI threshold override applied.
func CreateEngineConfig(threshold int) *engine.Config {
	config := engine.DefaultConfig()
	config.Threshold = threshold
	return config
}

// CreateReportBuilderConfig returns the report builder configuration with
// CLI overrides applied.
func CreateReportBuilderConfig(highValueThreshold float64, benchmarkRate float64) *report.Config {
	config := report.DefaultConfig()
	if highValueThreshold > 0 {
		config.HighValueThreshold = decimal.NewFromFloat(highValueThreshold)
	}
	if benchmarkRate > 0 {
		config.BenchmarkDuplicateRate = benchmarkRate
	}
	return config
}

// CreateAnalyzerConfig bundles the engine and report configurations.
func CreateAnalyzerConfig(threshold int, highValueThreshold, benchmarkRate float64) *analyzer.Config {
	return &analyzer.Config{
		Engine: CreateEngineConfig(threshold),
		Report: CreateReportBuilderConfig(highValueThreshold, benchmarkRate),
	}
}

// CreateReporterConfig returns the output configuration for the specified
// format.
func CreateReporterConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeGroupDetails = true
		config.IncludeInsights = true
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	}

	return config
}
