// Package catalog defines the static table of duplicate type rules.
//
// Each rule names the posting columns that must share identical values for
// a set of journal lines to be flagged as duplicates of that type. A rule
// with more key columns is stronger evidence of an actual duplicate, so it
// carries a higher risk multiplier and a higher resolution priority.
package catalog

// Key column identifiers used by rules and the grouping engine
const (
	ColumnGLAccount    = "gl_account"
	ColumnAmount       = "amount"
	ColumnUser         = "user_name"
	ColumnSource       = "source"
	ColumnPostingDate  = "posting_date"
	ColumnDocumentDate = "document_date"
)

// Rule describes one duplicate classification: the columns that must
// match, the human-readable criteria, and the weight it contributes to a
// group's risk score. Rules are immutable configuration; DefaultRules
// returns a fresh copy so callers cannot mutate the catalog.
type Rule struct {
	Type           string   `json:"type"`
	Criteria       string   `json:"criteria"`
	Description    string   `json:"description"`
	KeyColumns     []string `json:"groupby_cols"`
	RiskMultiplier int      `json:"risk_multiplier"`
	// Priority ranks specificity: 1 is the least specific rule,
	// 6 the most specific. The engine resolves overlaps in favor of
	// the highest priority.
	Priority int `json:"priority"`
}

var defaultRules = []Rule{
	{
		Type:           "Type 6 Duplicate",
		Criteria:       "Account Number + Effective Date + Posted Date + User + Source + Amount",
		Description:    "Identical account number, effective date, posting date, user, source, and amount",
		KeyColumns:     []string{ColumnGLAccount, ColumnDocumentDate, ColumnPostingDate, ColumnUser, ColumnSource, ColumnAmount},
		RiskMultiplier: 25,
		Priority:       6,
	},
	{
		Type:           "Type 5 Duplicate",
		Criteria:       "Account Number + Effective Date + Amount",
		Description:    "Identical account number, effective date, and amount",
		KeyColumns:     []string{ColumnGLAccount, ColumnDocumentDate, ColumnAmount},
		RiskMultiplier: 20,
		Priority:       5,
	},
	{
		Type:           "Type 4 Duplicate",
		Criteria:       "Account Number + Posted Date + Amount",
		Description:    "Identical account number, posting date, and amount",
		KeyColumns:     []string{ColumnGLAccount, ColumnPostingDate, ColumnAmount},
		RiskMultiplier: 18,
		Priority:       4,
	},
	{
		Type:           "Type 3 Duplicate",
		Criteria:       "Account Number + User + Amount",
		Description:    "Identical account number, user, and amount",
		KeyColumns:     []string{ColumnGLAccount, ColumnUser, ColumnAmount},
		RiskMultiplier: 15,
		Priority:       3,
	},
	{
		Type:           "Type 2 Duplicate",
		Criteria:       "Account Number + Source + Amount",
		Description:    "Identical account number, source document type, and amount",
		KeyColumns:     []string{ColumnGLAccount, ColumnSource, ColumnAmount},
		RiskMultiplier: 12,
		Priority:       2,
	},
	{
		Type:           "Type 1 Duplicate",
		Criteria:       "Account Number + Amount",
		Description:    "Identical account number and amount",
		KeyColumns:     []string{ColumnGLAccount, ColumnAmount},
		RiskMultiplier: 10,
		Priority:       1,
	},
}

// DefaultRules returns the six duplicate type rules ordered most specific
// first, which is the order the engine applies them in.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	for i := range rules {
		cols := make([]string, len(defaultRules[i].KeyColumns))
		copy(cols, defaultRules[i].KeyColumns)
		rules[i].KeyColumns = cols
	}
	return rules
}

// RuleByType looks up a rule by its type name
func RuleByType(rules []Rule, typeName string) (Rule, bool) {
	for _, rule := range rules {
		if rule.Type == typeName {
			return rule, true
		}
	}
	return Rule{}, false
}
