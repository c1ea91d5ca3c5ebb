package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the debit/credit indicator of a GL posting
type TransactionType string

const (
	// TransactionTypeDebit represents a debit posting
	TransactionTypeDebit TransactionType = "DEBIT"
	// TransactionTypeCredit represents a credit posting
	TransactionTypeCredit TransactionType = "CREDIT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// IsDebit returns true for the debit indicator
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeDebit
}

// IsCredit returns true for the credit indicator
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeCredit
}

// DateFormat is the canonical day-precision format used for grouping keys
// and report output.
const DateFormat = "2006-01-02"

// Transaction represents a single general-ledger posting record.
// Instances are owned by the caller and treated as read-only by the
// analysis engine. A zero PostingDate or DocumentDate means the source
// record carried no usable date.
type Transaction struct {
	ID             string          `json:"id" csv:"id"`
	GLAccount      string          `json:"gl_account" csv:"gl_account"`
	Amount         decimal.Decimal `json:"amount" csv:"amount"`
	Currency       string          `json:"currency" csv:"currency"`
	User           string          `json:"user_name" csv:"user_name"`
	PostingDate    time.Time       `json:"posting_date" csv:"posting_date"`
	DocumentDate   time.Time       `json:"document_date" csv:"document_date"`
	DocumentNumber string          `json:"document_number" csv:"document_number"`
	DocumentType   string          `json:"document_type" csv:"document_type"`
	Type           TransactionType `json:"transaction_type" csv:"transaction_type"`
	Text           string          `json:"text" csv:"text"`
	FiscalYear     int             `json:"fiscal_year" csv:"fiscal_year"`
	PostingPeriod  int             `json:"posting_period" csv:"posting_period"`
	ProfitCenter   string          `json:"profit_center" csv:"profit_center"`
	CostCenter     string          `json:"cost_center" csv:"cost_center"`
}

// NewTransaction creates a new Transaction with the fields every posting
// must carry. Optional fields are set directly on the returned value.
func NewTransaction(id, glAccount string, amount decimal.Decimal, txType TransactionType) *Transaction {
	return &Transaction{
		ID:        id,
		GLAccount: glAccount,
		Amount:    amount,
		Type:      txType,
	}
}

// Validate performs basic validation on the Transaction.
// GLAccount is intentionally not required here: the frame builder
// substitutes a sentinel for missing accounts.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Account: %s, Amount: %s, Type: %s, Posted: %s}",
		t.ID, t.GLAccount, t.Amount.String(), t.Type, t.PostingDate.Format(DateFormat))
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Amount       string `json:"amount"`
		PostingDate  string `json:"posting_date"`
		DocumentDate string `json:"document_date"`
		*Alias
	}{
		Amount:       t.Amount.String(),
		PostingDate:  formatOptionalDate(t.PostingDate),
		DocumentDate: formatOptionalDate(t.DocumentDate),
		Alias:        (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Amount       string `json:"amount"`
		PostingDate  string `json:"posting_date"`
		DocumentDate string `json:"document_date"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	if aux.PostingDate != "" {
		if t.PostingDate, err = ParseTimeWithFormats(aux.PostingDate); err != nil {
			return fmt.Errorf("invalid posting date format: %w", err)
		}
	}

	if aux.DocumentDate != "" {
		if t.DocumentDate, err = ParseTimeWithFormats(aux.DocumentDate); err != nil {
			return fmt.Errorf("invalid document date format: %w", err)
		}
	}

	return nil
}

// Source returns the document source used by the source+amount rules.
// The posting's document type identifies the originating subsystem.
func (t *Transaction) Source() string {
	return t.DocumentType
}

// IsDebit returns true if the posting is a debit
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// IsCredit returns true if the posting is a credit
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// HasPostingDate reports whether the posting carries a usable posting date
func (t *Transaction) HasPostingDate() bool {
	return !t.PostingDate.IsZero()
}

// HasDocumentDate reports whether the posting carries a usable document date
func (t *Transaction) HasDocumentDate() bool {
	return !t.DocumentDate.IsZero()
}

func formatOptionalDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

// Utility functions for type conversion and validation

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Remove common currency symbols and thousand separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseTransactionType parses and validates a transaction type from string
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	switch s {
	case "DEBIT", "D", "DR", "S":
		// "S" is the SAP debit indicator (Soll)
		return TransactionTypeDebit, nil
	case "CREDIT", "C", "CR", "H":
		// "H" is the SAP credit indicator (Haben)
		return TransactionTypeCredit, nil
	default:
		return "", fmt.Errorf("invalid transaction type '%s': must be DEBIT or CREDIT", s)
	}
}

// ParseTimeWithFormats attempts to parse time from string using multiple common formats
func ParseTimeWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	// Date formats seen across GL exports
	formats := []string{
		DateFormat,            // "2006-01-02"
		time.RFC3339,          // "2006-01-02T15:04:05Z07:00"
		"2006-01-02 15:04:05", // "2006-01-02 15:04:05"
		"2006-01-02T15:04:05", // "2006-01-02T15:04:05"
		"01/02/2006",          // "01/02/2006"
		"02.01.2006",          // "02.01.2006" (SAP day.month.year)
		"2006/01/02",          // "2006/01/02"
		"20060102",            // "20060102" (compact SAP form)
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time '%s': %w", s, lastErr)
}

// ParseFiscalPeriod parses an integer fiscal year or posting period field,
// tolerating empty input
func ParseFiscalPeriod(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("invalid numeric value '%s': %w", s, err)
	}
	return v, nil
}
