package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gl-duplicate-analyzer/cmd/glanalyzer/config"
	"gl-duplicate-analyzer/internal/analyzer"
	"gl-duplicate-analyzer/internal/parsers"
	"gl-duplicate-analyzer/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the analyze command
var (
	inputFile          string
	inputFormat        string
	outputFormat       string
	outputFile         string
	duplicateThreshold int
	highValueThreshold float64
	benchmarkRate      float64
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a GL posting export for duplicates",
	Long: `Analyze reads a CSV export of general-ledger postings, detects
duplicate groups using six detection rules from most to least specific,
scores each group's risk, and produces a consolidated analytics report.

Each posting belongs to at most one group: once a posting is claimed by a
more specific rule, broader rules skip it.

Examples:
  # Basic analysis with console output
  glanalyzer analyze --input-file postings.csv

  # Full JSON report written to a file
  glanalyzer analyze --input-file postings.csv --output-format json --output-file report.json

  # SAP line item export with a custom threshold
  glanalyzer analyze --input-file fagll03.csv --input-format sap --threshold 3

  # Flattened duplicate rows for spreadsheet review
  glanalyzer analyze --input-file postings.csv --output-format csv --output-file duplicates.csv`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&inputFile, "input-file", "i", "", "path to the GL posting CSV file (required)")
	analyzeCmd.Flags().StringVar(&inputFormat, "input-format", "standard", "input format: standard, sap")

	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	analyzeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	analyzeCmd.Flags().IntVarP(&duplicateThreshold, "threshold", "t", 2, "minimum group size to report as duplicates")
	analyzeCmd.Flags().Float64Var(&highValueThreshold, "high-value-threshold", 0, "group total marking a high-value anomaly (default 1000000)")
	analyzeCmd.Flags().Float64Var(&benchmarkRate, "benchmark-rate", 0, "industry average duplicate rate in percent (default 2.5)")

	analyzeCmd.MarkFlagRequired("input-file")

	viper.BindPFlag("input-file", analyzeCmd.Flags().Lookup("input-file"))
	viper.BindPFlag("input-format", analyzeCmd.Flags().Lookup("input-format"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", analyzeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("threshold", analyzeCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("high-value-threshold", analyzeCmd.Flags().Lookup("high-value-threshold"))
	viper.BindPFlag("benchmark-rate", analyzeCmd.Flags().Lookup("benchmark-rate"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	inputFile = viper.GetString("input-file")
	inputFormat = viper.GetString("input-format")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	duplicateThreshold = viper.GetInt("threshold")
	highValueThreshold = viper.GetFloat64("high-value-threshold")
	benchmarkRate = viper.GetFloat64("benchmark-rate")

	if inputFile == "" {
		return fmt.Errorf("input-file is required")
	}
	if err := validateFileExists(inputFile, "input file"); err != nil {
		return err
	}

	if parsers.GetPostingConfig(inputFormat) == nil {
		return fmt.Errorf("invalid input format '%s'. Valid formats: standard, sap", inputFormat)
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if duplicateThreshold < 2 {
		return fmt.Errorf("threshold must be at least 2, got %d", duplicateThreshold)
	}
	if highValueThreshold < 0 {
		return fmt.Errorf("high-value-threshold cannot be negative")
	}
	if benchmarkRate < 0 {
		return fmt.Errorf("benchmark-rate cannot be negative")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	errorHandler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting duplicate analysis...\n")
		fmt.Fprintf(os.Stderr, "Input file: %s (%s format)\n", inputFile, inputFormat)
		fmt.Fprintf(os.Stderr, "Duplicate threshold: %d\n", duplicateThreshold)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	parserConfig, err := config.CreatePostingParserConfig(inputFormat)
	if err != nil {
		return err
	}

	parser, err := parsers.NewPostingParser(parserConfig)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	transactions, stats, err := parser.ParsePostingsWithContext(ctx, inputFile)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "%s\n", stats)
		for _, sample := range stats.SampleErrors(3) {
			fmt.Fprintf(os.Stderr, "  %s\n", sample)
		}
	}

	analyzerConfig := config.CreateAnalyzerConfig(duplicateThreshold, highValueThreshold, benchmarkRate)
	a, err := analyzer.New(analyzerConfig, nil, nil)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	result, err := a.Analyze(ctx, transactions)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	reporterConfig := config.CreateReporterConfig(outputFormat)
	generator, err := reporter.NewReportGenerator(reporterConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := generator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		info := result.AnalysisInfo
		fmt.Fprintf(os.Stderr, "\nAnalysis completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Analyzed %d transactions.\n", info.TotalTransactions)
		fmt.Fprintf(os.Stderr, "Found %d duplicate groups covering %d transactions (%s in total).\n",
			info.TotalDuplicateGroups, info.TotalDuplicateTransactions,
			info.TotalAmountInvolved.StringFixed(2))
	}

	return nil
}
