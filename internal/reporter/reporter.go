// Package reporter renders analysis results for different audiences.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: the complete result object for programmatic consumption
//   - CSV: the flattened export rows for spreadsheet review
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gl-duplicate-analyzer/internal/report"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report rendering
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Console detail options
	IncludeGroupDetails bool `json:"include_group_details"`
	IncludeInsights     bool `json:"include_insights"`
	MaxGroupsShown      int  `json:"max_groups_shown"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatConsole,
		IncludeGroupDetails: true,
		IncludeInsights:     true,
		MaxGroupsShown:      20,
		CSVDelimiter:        ',',
		CSVHeaders:          true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxGroupsShown < 1 {
		return fmt.Errorf("max groups shown must be at least 1, got %d", c.MaxGroupsShown)
	}
	return nil
}

// ReportGenerator renders analysis results in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator with the given configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the result and writes it to the provided writer
func (rg *ReportGenerator) GenerateReport(result *report.AnalysisResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("analysis result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *report.AnalysisResult, writer io.Writer) error {
	info := result.AnalysisInfo

	fmt.Fprintf(writer, "DUPLICATE ANALYSIS REPORT\n")
	fmt.Fprintf(writer, "Analysis ID: %s\n", info.AnalysisID)
	fmt.Fprintf(writer, "Generated: %s\n\n", info.AnalysisDate)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "%-28s %d\n", "Total Transactions:", info.TotalTransactions)
	fmt.Fprintf(writer, "%-28s %d\n", "Duplicate Groups:", info.TotalDuplicateGroups)
	fmt.Fprintf(writer, "%-28s %d\n", "Duplicate Transactions:", info.TotalDuplicateTransactions)
	fmt.Fprintf(writer, "%-28s %s\n", "Total Amount Involved:", info.TotalAmountInvolved.StringFixed(2))
	fmt.Fprintf(writer, "%-28s %d\n\n", "Duplicate Threshold:", info.DuplicateThreshold)

	if info.TotalDuplicateGroups == 0 {
		fmt.Fprintf(writer, "No duplicate groups detected.\n")
		return nil
	}

	fmt.Fprintf(writer, "=== DUPLICATE TYPES ===\n")
	fmt.Fprintf(writer, "%-60s %8s %8s %16s\n", "Type", "Groups", "Lines", "Amount")
	for _, row := range result.ChartData.DuplicateTypeChart {
		fmt.Fprintf(writer, "%-60s %8d %8d %16s\n",
			truncate(row.Type, 60), row.Groups, row.Transactions, row.TotalAmount.StringFixed(2))
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== RISK LEVELS ===\n")
	fmt.Fprintf(writer, "%-10s %8s %8s %16s\n", "Level", "Groups", "Lines", "Amount")
	for _, row := range result.ChartData.RiskLevelChart {
		fmt.Fprintf(writer, "%-10s %8d %8d %16s\n",
			row.RiskLevel, row.DuplicateGroups, row.Transactions, row.TotalAmount.StringFixed(2))
	}
	fmt.Fprintf(writer, "\n")

	if rg.config.IncludeGroupDetails {
		fmt.Fprintf(writer, "=== TOP DUPLICATE GROUPS ===\n")
		fmt.Fprintf(writer, "%-60s %12s %6s %16s %6s %8s\n",
			"Type", "GL Account", "Count", "Total Amount", "Risk", "Level")
		shown := 0
		for _, row := range result.SummaryTable {
			if shown >= rg.config.MaxGroupsShown {
				fmt.Fprintf(writer, "... and %d more groups\n", len(result.SummaryTable)-shown)
				break
			}
			fmt.Fprintf(writer, "%-60s %12s %6d %16s %6d %8s\n",
				truncate(row.DuplicateType, 60), row.GLAccount, row.DuplicateCount,
				row.TotalAmount.StringFixed(2), row.RiskScore, row.RiskLevel)
			shown++
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeInsights {
		rg.printInsights(result.DetailedInsights, writer)
	}

	if result.MLEnhancement != nil {
		fmt.Fprintf(writer, "=== ML ENHANCEMENT ===\n")
		fmt.Fprintf(writer, "%-28s %t\n", "Model Available:", result.MLEnhancement.MLModelAvailable)
		fmt.Fprintf(writer, "%-28s %t\n", "Model Trained:", result.MLEnhancement.MLModelTrained)
		fmt.Fprintf(writer, "%-28s %d\n", "ML Duplicates Found:", result.MLEnhancement.MLDuplicatesFound)
		if result.MLEnhancement.MLError != "" {
			fmt.Fprintf(writer, "%-28s %s\n", "ML Error:", result.MLEnhancement.MLError)
		}
		fmt.Fprintf(writer, "\n")
	}

	return nil
}

func (rg *ReportGenerator) printInsights(insights report.DetailedInsights, writer io.Writer) {
	if insights.RiskAssessment != nil && len(insights.RiskAssessment.HighRiskGroups) > 0 {
		fmt.Fprintf(writer, "=== HIGH RISK GROUPS ===\n")
		for _, g := range insights.RiskAssessment.HighRiskGroups {
			fmt.Fprintf(writer, "- %s (risk %d, %s, %d lines)\n",
				g.Type, g.RiskScore, g.Amount.StringFixed(2), g.Count)
		}
		fmt.Fprintf(writer, "\n")
	}

	if insights.AuditRecommendations != nil {
		rec := insights.AuditRecommendations
		if len(rec.ImmediateActions) > 0 {
			fmt.Fprintf(writer, "=== IMMEDIATE ACTIONS ===\n")
			for _, a := range rec.ImmediateActions {
				fmt.Fprintf(writer, "- [%s] %s (%s)\n", a.Priority, a.Action, a.Reason)
			}
			fmt.Fprintf(writer, "\n")
		}
		if len(rec.InvestigationPriorities) > 0 {
			fmt.Fprintf(writer, "=== INVESTIGATION PRIORITIES ===\n")
			for _, p := range rec.InvestigationPriorities {
				fmt.Fprintf(writer, "%d. %s (%s, risk %d)\n",
					p.Priority, p.Type, p.Amount.StringFixed(2), p.RiskScore)
			}
			fmt.Fprintf(writer, "\n")
		}
	}

	if insights.ComparativeAnalysis != nil {
		c := insights.ComparativeAnalysis
		fmt.Fprintf(writer, "=== BENCHMARK ===\n")
		fmt.Fprintf(writer, "%-28s %.2f%%\n", "Duplicate Rate:", c.BenchmarkComparison.CurrentDuplicateRate)
		fmt.Fprintf(writer, "%-28s %.2f%%\n", "Industry Average:", c.BenchmarkComparison.IndustryAverageDuplicateRate)
		fmt.Fprintf(writer, "%-28s %s\n\n", "Status:", c.BenchmarkComparison.Status)
	}
}

func (rg *ReportGenerator) generateJSONReport(result *report.AnalysisResult, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// exportHeaders lists the CSV columns in their output order
var exportHeaders = []string{
	"Duplicate_Type", "Duplicate_Criteria", "GL_Account", "Amount",
	"Duplicate_Count", "Risk_Score", "Risk_Level", "Transaction_ID",
	"Document_Number", "Posting_Date", "Document_Date", "User_Name",
	"Document_Type", "Transaction_Type", "Text", "Fiscal_Year",
	"Posting_Period", "Profit_Center", "Cost_Center", "Local_Currency",
	"Group_Total_Amount", "Group_Debit_Count", "Group_Credit_Count",
	"Group_Debit_Amount", "Group_Credit_Amount", "Unique_Users_In_Group",
	"Unique_Documents_In_Group",
}

func (rg *ReportGenerator) generateCSVReport(result *report.AnalysisResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(exportHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, row := range result.ExportData {
		record := []string{
			row.DuplicateType,
			row.DuplicateCriteria,
			row.GLAccount,
			row.Amount.StringFixed(2),
			strconv.Itoa(row.DuplicateCount),
			strconv.Itoa(row.RiskScore),
			row.RiskLevel,
			row.TransactionID,
			row.DocumentNumber,
			row.PostingDate,
			row.DocumentDate,
			row.UserName,
			row.DocumentType,
			row.TransactionType,
			row.Text,
			strconv.Itoa(row.FiscalYear),
			strconv.Itoa(row.PostingPeriod),
			row.ProfitCenter,
			row.CostCenter,
			row.LocalCurrency,
			row.GroupTotalAmount.StringFixed(2),
			strconv.Itoa(row.GroupDebitCount),
			strconv.Itoa(row.GroupCreditCount),
			row.GroupDebitAmount.StringFixed(2),
			row.GroupCreditAmount.StringFixed(2),
			strconv.Itoa(row.UniqueUsersInGroup),
			strconv.Itoa(row.UniqueDocsInGroup),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// UpdateConfiguration replaces the generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}
	rg.config = config
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
