package engine

import (
	"gl-duplicate-analyzer/internal/catalog"
	"gl-duplicate-analyzer/internal/frame"
	"gl-duplicate-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

// Risk level bands derived from a group's risk score
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// RiskLevels returns the fixed risk level set in ascending severity order
func RiskLevels() []string {
	return []string{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}
}

// RiskLevelFor maps a risk score onto its band:
// LOW [0,40), MEDIUM [40,70), HIGH [70,90), CRITICAL [90,100]
func RiskLevelFor(score int) string {
	switch {
	case score < 40:
		return RiskLevelLow
	case score < 70:
		return RiskLevelMedium
	case score < 90:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// DateRange holds the posting date span of a group, day precision.
// Empty strings mean no member carried a usable posting date.
type DateRange struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}

// DuplicateGroup is a set of postings sharing identical values on one
// rule's key columns, together with the group-level statistics computed
// from its members. Groups are created once per analysis run and are
// immutable thereafter.
type DuplicateGroup struct {
	Type        string            `json:"type"`
	Criteria    string            `json:"criteria"`
	Description string            `json:"description"`
	GroupKey    []string          `json:"group_key"`
	GroupValues map[string]string `json:"group_values"`

	Records []frame.Record `json:"-"`

	Count           int             `json:"count"`
	Amount          decimal.Decimal `json:"amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RiskScore       int             `json:"risk_score"`
	DebitCount      int             `json:"debit_count"`
	CreditCount     int             `json:"credit_count"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	UniqueUsers     int             `json:"unique_users"`
	UniqueDocuments int             `json:"unique_documents"`
	DateRange       DateRange       `json:"date_range"`
}

// RiskLevel returns the risk band of the group's score
func (g *DuplicateGroup) RiskLevel() string {
	return RiskLevelFor(g.RiskScore)
}

// TransactionIDs returns the member posting ids in frame order
func (g *DuplicateGroup) TransactionIDs() []string {
	ids := make([]string, len(g.Records))
	for i := range g.Records {
		ids[i] = g.Records[i].ID
	}
	return ids
}

// buildGroup computes all group-level statistics for one set of matching
// postings under the given rule. The representative amount is the first
// member's amount; by construction every member shares the same amount key.
func buildGroup(rule catalog.Rule, records []frame.Record) *DuplicateGroup {
	group := &DuplicateGroup{
		Type:         rule.Type,
		Criteria:     rule.Criteria,
		Description:  rule.Description,
		GroupKey:     append([]string(nil), rule.KeyColumns...),
		GroupValues:  make(map[string]string, len(rule.KeyColumns)),
		Records:      records,
		Count:        len(records),
		Amount:       records[0].Amount,
		TotalAmount:  decimal.Zero,
		DebitAmount:  decimal.Zero,
		CreditAmount: decimal.Zero,
	}

	for _, column := range rule.KeyColumns {
		group.GroupValues[column] = records[0].KeyValue(column)
	}

	group.RiskScore = riskScore(len(records), rule.RiskMultiplier)

	users := make(map[string]struct{})
	documents := make(map[string]struct{})
	var minDate, maxDate string

	for i := range records {
		r := &records[i]
		group.TotalAmount = group.TotalAmount.Add(r.Amount)

		if r.Type == models.TransactionTypeDebit {
			group.DebitCount++
			group.DebitAmount = group.DebitAmount.Add(r.Amount)
		} else {
			group.CreditCount++
			group.CreditAmount = group.CreditAmount.Add(r.Amount)
		}

		users[r.User] = struct{}{}
		documents[r.DocumentNumber] = struct{}{}

		if r.HasPostingDate() {
			key := r.PostingDateKey
			if minDate == "" || key < minDate {
				minDate = key
			}
			if maxDate == "" || key > maxDate {
				maxDate = key
			}
		}
	}

	group.UniqueUsers = len(users)
	group.UniqueDocuments = len(documents)
	group.DateRange = DateRange{MinDate: minDate, MaxDate: maxDate}

	return group
}

// riskScore is min(count x multiplier, 100), keeping every score in [0,100]
func riskScore(count, multiplier int) int {
	score := count * multiplier
	if score > 100 {
		return 100
	}
	return score
}
