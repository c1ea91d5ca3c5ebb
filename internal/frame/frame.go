// Package frame normalizes raw GL posting records into a uniform tabular
// structure with comparison-stable grouping keys.
//
// The builder is a pure function over its input: it derives string-keyed
// date and amount columns so that postings can be grouped by exact key
// equality, substitutes sentinels for missing values, and never mutates
// the caller's transactions.
package frame

import (
	"time"

	"gl-duplicate-analyzer/internal/catalog"
	"gl-duplicate-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// UnknownAccount is substituted for postings with no GL account
	UnknownAccount = "UNKNOWN"
	// UnknownKey is the bucket key for missing or malformed dates
	UnknownKey = "Unknown"
	// DefaultCurrency is assumed when the posting carries no currency code
	DefaultCurrency = "SAR"

	monthFormat = "2006-01"
)

// Record is one normalized posting row. All *Key fields are
// comparison-stable strings: equal keys mean equal grouping values.
type Record struct {
	ID             string
	GLAccount      string
	Amount         decimal.Decimal
	AmountKey      string
	Currency       string
	User           string
	PostingDate    time.Time
	DocumentDate   time.Time
	PostingDateKey string
	DocumentDateKey string
	MonthKey       string
	DocumentNumber string
	DocumentType   string
	Source         string
	Type           models.TransactionType
	Text           string
	FiscalYear     int
	PostingPeriod  int
	ProfitCenter   string
	CostCenter     string
}

// Frame is the normalized view of one analysis batch
type Frame struct {
	Records []Record
}

// Build converts a sequence of transactions into a Frame. An empty or nil
// input yields an empty frame, which is a valid analysis batch.
func Build(transactions []*models.Transaction) *Frame {
	records := make([]Record, 0, len(transactions))

	for _, t := range transactions {
		if t == nil {
			continue
		}

		account := t.GLAccount
		if account == "" {
			account = UnknownAccount
		}

		currency := t.Currency
		if currency == "" {
			currency = DefaultCurrency
		}

		records = append(records, Record{
			ID:              t.ID,
			GLAccount:       account,
			Amount:          t.Amount,
			AmountKey:       AmountKey(t.Amount),
			Currency:        currency,
			User:            t.User,
			PostingDate:     t.PostingDate,
			DocumentDate:    t.DocumentDate,
			PostingDateKey:  DateKey(t.PostingDate),
			DocumentDateKey: DateKey(t.DocumentDate),
			MonthKey:        MonthKey(t.PostingDate),
			DocumentNumber:  t.DocumentNumber,
			DocumentType:    t.DocumentType,
			Source:          t.Source(),
			Type:            t.Type,
			Text:            t.Text,
			FiscalYear:      t.FiscalYear,
			PostingPeriod:   t.PostingPeriod,
			ProfitCenter:    t.ProfitCenter,
			CostCenter:      t.CostCenter,
		})
	}

	return &Frame{Records: records}
}

// Len returns the number of rows in the frame
func (f *Frame) Len() int {
	return len(f.Records)
}

// TotalAmount returns the sum of all posting amounts in the frame
func (f *Frame) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range f.Records {
		total = total.Add(f.Records[i].Amount)
	}
	return total
}

// KeyValue returns the comparison-stable grouping value of the record for
// one of the catalog key columns. Unrecognized columns yield the unknown
// bucket so a misconfigured rule degrades instead of panicking.
func (r *Record) KeyValue(column string) string {
	switch column {
	case catalog.ColumnGLAccount:
		return r.GLAccount
	case catalog.ColumnAmount:
		return r.AmountKey
	case catalog.ColumnUser:
		return r.User
	case catalog.ColumnSource:
		return r.Source
	case catalog.ColumnPostingDate:
		return r.PostingDateKey
	case catalog.ColumnDocumentDate:
		return r.DocumentDateKey
	default:
		return UnknownKey
	}
}

// HasPostingDate reports whether the record carries a usable posting date
func (r *Record) HasPostingDate() bool {
	return !r.PostingDate.IsZero()
}

// AmountKey renders an amount in the canonical form used for grouping.
// GL postings are local-currency amounts; comparing at two decimal places
// makes 500, 500.0 and 500.00 collide.
func AmountKey(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// DateKey renders a date as a stable day-precision key, degrading missing
// dates to the unknown bucket rather than failing.
func DateKey(d time.Time) string {
	if d.IsZero() {
		return UnknownKey
	}
	return d.Format(models.DateFormat)
}

// MonthKey renders a date as a calendar-month key for trend reporting
func MonthKey(d time.Time) string {
	if d.IsZero() {
		return UnknownKey
	}
	return d.Format(monthFormat)
}
