package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"gl-duplicate-analyzer/internal/models"
	"gl-duplicate-analyzer/pkg/errors"

	"github.com/shopspring/decimal"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

const standardCSV = `id,gl_account,amount,local_currency,user_name,posting_date,document_date,document_number,document_type,transaction_type,text,fiscal_year,posting_period,profit_center,cost_center
GL001,100100,500.00,SAR,JSMITH,2024-03-15,2024-03-14,DOC001,SA,DEBIT,Office supplies,2024,3,PC01,CC01
GL002,100100,500.00,SAR,JSMITH,2024-03-15,2024-03-14,DOC002,SA,DEBIT,Office supplies,2024,3,PC01,CC01
GL003,200200,1250.75,SAR,MALI,2024-03-16,2024-03-16,DOC003,KR,CREDIT,Vendor invoice,2024,3,PC02,CC02
`

func TestNewPostingParserDefaults(t *testing.T) {
	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("Expected parser with standard config, got error: %v", err)
	}
	if parser.config.Name != "Standard" {
		t.Errorf("Expected Standard config, got %s", parser.config.Name)
	}
}

func TestNewPostingParserRejectsInvalidConfig(t *testing.T) {
	_, err := NewPostingParser(&PostingParserConfig{Name: "Broken"})
	if err == nil {
		t.Fatal("Expected configuration error for missing column mappings")
	}
	analyzerErr, ok := errors.AsAnalyzerError(err)
	if !ok || analyzerErr.Category != errors.CategoryConfiguration {
		t.Errorf("Expected typed configuration error, got %v", err)
	}
}

func TestParsePostingsStandard(t *testing.T) {
	path := writeTestFile(t, "postings.csv", standardCSV)

	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	transactions, stats, err := parser.ParsePostings(path)
	if err != nil {
		t.Fatalf("ParsePostings failed: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("Expected 3 postings, got %d", len(transactions))
	}
	if stats.RecordsValid != 3 || stats.HasErrors() {
		t.Errorf("Unexpected stats: %s", stats.String())
	}

	tx := transactions[0]
	if tx.ID != "GL001" || tx.GLAccount != "100100" {
		t.Errorf("Unexpected posting identity: %s / %s", tx.ID, tx.GLAccount)
	}
	if !tx.Amount.Equal(decimal.NewFromFloat(500.00)) {
		t.Errorf("Expected amount 500.00, got %s", tx.Amount)
	}
	if tx.PostingDate.Format(models.DateFormat) != "2024-03-15" {
		t.Errorf("Unexpected posting date: %s", tx.PostingDate)
	}
	if tx.DocumentDate.Format(models.DateFormat) != "2024-03-14" {
		t.Errorf("Unexpected document date: %s", tx.DocumentDate)
	}
	if tx.FiscalYear != 2024 || tx.PostingPeriod != 3 {
		t.Errorf("Unexpected fiscal fields: %d / %d", tx.FiscalYear, tx.PostingPeriod)
	}

	if !transactions[2].IsCredit() {
		t.Error("Expected GL003 to be a credit posting")
	}
}

func TestParsePostingsSkipsBadRows(t *testing.T) {
	content := `id,gl_account,amount,transaction_type
GL001,100100,500.00,DEBIT
GL002,100100,not-a-number,DEBIT
,100100,10.00,DEBIT
GL004,100100,25.50,TRANSFER
GL005,200200,75.00,CREDIT
`
	path := writeTestFile(t, "postings.csv", content)

	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	transactions, stats, err := parser.ParsePostings(path)
	if err != nil {
		t.Fatalf("Expected row errors to degrade, not fail: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 valid postings, got %d", len(transactions))
	}
	if transactions[0].ID != "GL001" || transactions[1].ID != "GL005" {
		t.Errorf("Unexpected surviving postings: %s, %s", transactions[0].ID, transactions[1].ID)
	}
	if stats.ErrorCount != 3 {
		t.Errorf("Expected 3 row errors, got %d", stats.ErrorCount)
	}
	if stats.RecordsValid != 2 {
		t.Errorf("Expected 2 valid records, got %d", stats.RecordsValid)
	}
}

func TestParsePostingsMissingRequiredHeader(t *testing.T) {
	content := `id,gl_account,user_name
GL001,100100,JSMITH
`
	path := writeTestFile(t, "postings.csv", content)

	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	_, _, err = parser.ParsePostings(path)
	if err == nil {
		t.Fatal("Expected error for missing amount column")
	}
	analyzerErr, ok := errors.AsAnalyzerError(err)
	if !ok || analyzerErr.Code != errors.CodeMissingColumn {
		t.Errorf("Expected missing column error, got %v", err)
	}
}

func TestParsePostingsMissingFile(t *testing.T) {
	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	_, _, err = parser.ParsePostings(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	analyzerErr, ok := errors.AsAnalyzerError(err)
	if !ok || analyzerErr.Code != errors.CodeFileNotFound {
		t.Errorf("Expected file not found error, got %v", err)
	}
}

func TestParsePostingsSAPFormat(t *testing.T) {
	content := `Document Number,Account,Amount in local currency,Local Currency,User Name,Posting Date,Document Date,Document Type,Debit/Credit ind,Text,Fiscal Year,Posting period
5000001,100100,"1,234.56",SAR,JSMITH,15.03.2024,14.03.2024,SA,S,Accrual,2024,3
5000002,100100,"1,234.56",SAR,JSMITH,15.03.2024,14.03.2024,SA,H,Reversal,2024,3
`
	path := writeTestFile(t, "fagll03.csv", content)

	parser, err := NewPostingParser(SAPExportConfig)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	transactions, stats, err := parser.ParsePostings(path)
	if err != nil {
		t.Fatalf("ParsePostings failed: %v", err)
	}
	if len(transactions) != 2 || stats.HasErrors() {
		t.Fatalf("Expected 2 clean SAP postings, got %d (%s)", len(transactions), stats.String())
	}

	if !transactions[0].Amount.Equal(decimal.NewFromFloat(1234.56)) {
		t.Errorf("Expected amount 1234.56, got %s", transactions[0].Amount)
	}
	if !transactions[0].IsDebit() {
		t.Error("Expected S indicator to parse as debit")
	}
	if !transactions[1].IsCredit() {
		t.Error("Expected H indicator to parse as credit")
	}
	if transactions[0].PostingDate.Format(models.DateFormat) != "2024-03-15" {
		t.Errorf("Unexpected SAP posting date: %s", transactions[0].PostingDate)
	}
}

func TestParsePostingsOptionalFields(t *testing.T) {
	content := `id,amount
GL001,42.00
`
	path := writeTestFile(t, "minimal.csv", content)

	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	transactions, _, err := parser.ParsePostings(path)
	if err != nil {
		t.Fatalf("Expected a minimal file to parse: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 posting, got %d", len(transactions))
	}

	tx := transactions[0]
	if tx.GLAccount != "" {
		t.Errorf("Expected empty account for absent column, got %q", tx.GLAccount)
	}
	if !tx.IsDebit() {
		t.Error("Expected debit default when type column is absent")
	}
	if tx.HasPostingDate() {
		t.Error("Expected undated posting when date column is absent")
	}
}

func TestParsePostingsUnparseableDateDegrades(t *testing.T) {
	content := `id,amount,posting_date
GL001,10.00,sometime in March
`
	path := writeTestFile(t, "postings.csv", content)

	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	transactions, stats, err := parser.ParsePostings(path)
	if err != nil {
		t.Fatalf("ParsePostings failed: %v", err)
	}
	if len(transactions) != 1 || stats.HasErrors() {
		t.Fatalf("Expected the row to survive with no date, got %d postings (%s)",
			len(transactions), stats.String())
	}
	if transactions[0].HasPostingDate() {
		t.Error("Expected unparseable date to leave the posting undated")
	}
}

func TestValidatePostingFile(t *testing.T) {
	parser, err := NewPostingParser(nil)
	if err != nil {
		t.Fatalf("NewPostingParser failed: %v", err)
	}

	valid := writeTestFile(t, "valid.csv", standardCSV)
	if err := parser.ValidatePostingFile(valid); err != nil {
		t.Errorf("Expected valid file to pass: %v", err)
	}

	headerOnly := writeTestFile(t, "empty.csv", "id,gl_account,amount\n")
	if err := parser.ValidatePostingFile(headerOnly); err == nil {
		t.Error("Expected error for a file with no data rows")
	}
}

func TestGetPostingConfig(t *testing.T) {
	if config := GetPostingConfig("standard"); config == nil || config.Name != "Standard" {
		t.Errorf("Expected Standard config, got %+v", config)
	}
	if config := GetPostingConfig("sap"); config == nil || config.Name != "SAP" {
		t.Errorf("Expected SAP config, got %+v", config)
	}
	if config := GetPostingConfig("unknown"); config != nil {
		t.Errorf("Expected nil for unknown format, got %+v", config)
	}
}

func TestAutoDetectPostingConfig(t *testing.T) {
	standard := AutoDetectPostingConfig([]string{"id", "gl_account", "amount", "user_name"})
	if standard.Name != "Standard" {
		t.Errorf("Expected Standard detection, got %s", standard.Name)
	}

	sap := AutoDetectPostingConfig([]string{"Document Number", "Account", "Amount in local currency"})
	if sap.Name != "SAP" {
		t.Errorf("Expected SAP detection, got %s", sap.Name)
	}

	fallback := AutoDetectPostingConfig([]string{"col_a", "col_b"})
	if fallback.Name != "Standard" {
		t.Errorf("Expected Standard fallback, got %s", fallback.Name)
	}
}
