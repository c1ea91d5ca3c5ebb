package parsers

import (
	"fmt"
	"strings"
)

// PostingParserConfig maps logical posting fields onto the column names of
// a specific GL export format. Only the ID and amount columns are
// mandatory in the file; all other columns are read when present, and a
// missing account column degrades to the unknown-account sentinel.
type PostingParserConfig struct {
	Name               string            `json:"name"`
	IDColumn           string            `json:"id_column"`
	GLAccountColumn    string            `json:"gl_account_column"`
	AmountColumn       string            `json:"amount_column"`
	CurrencyColumn     string            `json:"currency_column"`
	UserColumn         string            `json:"user_column"`
	PostingDateColumn  string            `json:"posting_date_column"`
	DocumentDateColumn string            `json:"document_date_column"`
	DocumentNumColumn  string            `json:"document_number_column"`
	DocumentTypeColumn string            `json:"document_type_column"`
	TypeColumn         string            `json:"type_column"`
	TextColumn         string            `json:"text_column"`
	FiscalYearColumn   string            `json:"fiscal_year_column"`
	PeriodColumn       string            `json:"posting_period_column"`
	ProfitCenterColumn string            `json:"profit_center_column"`
	CostCenterColumn   string            `json:"cost_center_column"`
	HasHeader          bool              `json:"has_header"`
	Delimiter          rune              `json:"delimiter"`
	ColumnAliases      map[string]string `json:"column_aliases,omitempty"`
	Description        string            `json:"description,omitempty"`
}

// Validate checks that the mandatory column mappings are set
func (pc *PostingParserConfig) Validate() error {
	if strings.TrimSpace(pc.IDColumn) == "" {
		return fmt.Errorf("transaction ID column cannot be empty")
	}
	if strings.TrimSpace(pc.GLAccountColumn) == "" {
		return fmt.Errorf("GL account column cannot be empty")
	}
	if strings.TrimSpace(pc.AmountColumn) == "" {
		return fmt.Errorf("amount column cannot be empty")
	}
	return nil
}

// GetColumnName returns the export's column name for a logical field,
// checking aliases first
func (pc *PostingParserConfig) GetColumnName(standardName string) string {
	if alias, exists := pc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "id":
		return pc.IDColumn
	case "gl_account":
		return pc.GLAccountColumn
	case "amount":
		return pc.AmountColumn
	case "currency":
		return pc.CurrencyColumn
	case "user_name":
		return pc.UserColumn
	case "posting_date":
		return pc.PostingDateColumn
	case "document_date":
		return pc.DocumentDateColumn
	case "document_number":
		return pc.DocumentNumColumn
	case "document_type":
		return pc.DocumentTypeColumn
	case "type":
		return pc.TypeColumn
	case "text":
		return pc.TextColumn
	case "fiscal_year":
		return pc.FiscalYearColumn
	case "posting_period":
		return pc.PeriodColumn
	case "profit_center":
		return pc.ProfitCenterColumn
	case "cost_center":
		return pc.CostCenterColumn
	default:
		return standardName
	}
}

// Predefined configurations for common GL export formats
var (
	// StandardPostingConfig matches the analyzer's own canonical column
	// names, as produced by the export endpoint and the test generator.
	StandardPostingConfig = &PostingParserConfig{
		Name:               "Standard",
		IDColumn:           "id",
		GLAccountColumn:    "gl_account",
		AmountColumn:       "amount",
		CurrencyColumn:     "local_currency",
		UserColumn:         "user_name",
		PostingDateColumn:  "posting_date",
		DocumentDateColumn: "document_date",
		DocumentNumColumn:  "document_number",
		DocumentTypeColumn: "document_type",
		TypeColumn:         "transaction_type",
		TextColumn:         "text",
		FiscalYearColumn:   "fiscal_year",
		PeriodColumn:       "posting_period",
		ProfitCenterColumn: "profit_center",
		CostCenterColumn:   "cost_center",
		HasHeader:          true,
		Delimiter:          ',',
		Description:        "Canonical GL posting format",
	}

	// SAPExportConfig matches FAGLL03-style line item exports.
	SAPExportConfig = &PostingParserConfig{
		Name:               "SAP",
		IDColumn:           "Document Number",
		GLAccountColumn:    "Account",
		AmountColumn:       "Amount in local currency",
		CurrencyColumn:     "Local Currency",
		UserColumn:         "User Name",
		PostingDateColumn:  "Posting Date",
		DocumentDateColumn: "Document Date",
		DocumentNumColumn:  "Document Number",
		DocumentTypeColumn: "Document Type",
		TypeColumn:         "Debit/Credit ind",
		TextColumn:         "Text",
		FiscalYearColumn:   "Fiscal Year",
		PeriodColumn:       "Posting period",
		ProfitCenterColumn: "Profit Center",
		CostCenterColumn:   "Cost Center",
		HasHeader:          true,
		Delimiter:          ',',
		Description:        "SAP GL line item export (FAGLL03)",
	}
)

// GetPostingConfig returns a predefined configuration by name
func GetPostingConfig(name string) *PostingParserConfig {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "standard":
		return StandardPostingConfig
	case "sap":
		return SAPExportConfig
	default:
		return nil
	}
}

// ListAvailablePostingConfigs returns all predefined configurations
func ListAvailablePostingConfigs() []*PostingParserConfig {
	return []*PostingParserConfig{
		StandardPostingConfig,
		SAPExportConfig,
	}
}

// AutoDetectPostingConfig picks the configuration whose mandatory columns
// all appear in the given headers, falling back to the standard format
func AutoDetectPostingConfig(headers []string) *PostingParserConfig {
	headerMap := make(map[string]bool)
	for _, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = true
	}

	for _, config := range ListAvailablePostingConfigs() {
		if headerMap[strings.ToLower(config.IDColumn)] &&
			headerMap[strings.ToLower(config.GLAccountColumn)] &&
			headerMap[strings.ToLower(config.AmountColumn)] {
			return config
		}
	}

	return StandardPostingConfig
}
