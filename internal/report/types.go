package report

import (
	"gl-duplicate-analyzer/internal/engine"

	"github.com/shopspring/decimal"
)

// AnalysisResult is the single consolidated object produced per analysis
// run. The top-level key set and nesting are a stable contract consumed by
// chart renderers and CSV exporters downstream; ml_enhancement is the
// optional enrichment attached next to the rule-based output.
type AnalysisResult struct {
	AnalysisInfo     AnalysisInfo     `json:"analysis_info"`
	DuplicateList    []DuplicateEntry `json:"duplicate_list"`
	ChartData        ChartData        `json:"chart_data"`
	Breakdowns       Breakdowns       `json:"breakdowns"`
	SlicerFilters    SlicerFilters    `json:"slicer_filters"`
	SummaryTable     []SummaryRow     `json:"summary_table"`
	ExportData       []ExportRow      `json:"export_data"`
	DetailedInsights DetailedInsights `json:"detailed_insights"`
	MLEnhancement    *MLEnhancement   `json:"ml_enhancement,omitempty"`
}

// AnalysisInfo carries run-level identifiers and totals
type AnalysisInfo struct {
	AnalysisID                 string          `json:"analysis_id"`
	TotalTransactions          int             `json:"total_transactions"`
	TotalDuplicateGroups       int             `json:"total_duplicate_groups"`
	TotalDuplicateTransactions int             `json:"total_duplicate_transactions"`
	TotalAmountInvolved        decimal.Decimal `json:"total_amount_involved"`
	AnalysisDate               string          `json:"analysis_date"`
	DuplicateThreshold         int             `json:"duplicate_threshold"`
}

// DuplicateEntry is one row of duplicate_list: a single posting with its
// group context denormalized onto it.
type DuplicateEntry struct {
	DuplicateType          string          `json:"duplicate_type"`
	DuplicateCriteria      string          `json:"duplicate_criteria"`
	GLAccount              string          `json:"gl_account"`
	Amount                 decimal.Decimal `json:"amount"`
	DuplicateCount         int             `json:"duplicate_count"`
	RiskScore              int             `json:"risk_score"`
	TransactionID          string          `json:"transaction_id"`
	DocumentNumber         string          `json:"document_number"`
	PostingDate            string          `json:"posting_date"`
	DocumentDate           string          `json:"document_date"`
	UserName               string          `json:"user_name"`
	DocumentType           string          `json:"document_type"`
	TransactionType        string          `json:"transaction_type"`
	Text                   string          `json:"text"`
	FiscalYear             int             `json:"fiscal_year"`
	PostingPeriod          int             `json:"posting_period"`
	ProfitCenter           string          `json:"profit_center"`
	CostCenter             string          `json:"cost_center"`
	LocalCurrency          string          `json:"local_currency"`
	DebitCount             int             `json:"debit_count"`
	CreditCount            int             `json:"credit_count"`
	DebitAmount            decimal.Decimal `json:"debit_amount"`
	CreditAmount           decimal.Decimal `json:"credit_amount"`
	GroupTotalAmount       decimal.Decimal `json:"group_total_amount"`
	UniqueUsersInGroup     int             `json:"unique_users_in_group"`
	UniqueDocumentsInGroup int             `json:"unique_documents_in_group"`
}

// Chart datasets

// TypeChartRow aggregates groups of one duplicate type
type TypeChartRow struct {
	Type         string          `json:"type"`
	Groups       int             `json:"groups"`
	Transactions int             `json:"transactions"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// MonthlyTrendRow aggregates duplicate activity within one calendar month
type MonthlyTrendRow struct {
	Month           string          `json:"month"`
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
}

// UserChartRow aggregates duplicate activity per posting user
type UserChartRow struct {
	User            string          `json:"user"`
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// AccountChartRow aggregates duplicate activity per GL account
type AccountChartRow struct {
	GLAccount       string          `json:"gl_account"`
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
}

// AmountBucketRow is one bar of the amount distribution histogram
type AmountBucketRow struct {
	Range           string          `json:"range"`
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// RiskLevelRow is one bar of the risk level histogram
type RiskLevelRow struct {
	RiskLevel       string          `json:"risk_level"`
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// ChartData bundles the six chart datasets
type ChartData struct {
	DuplicateTypeChart      []TypeChartRow    `json:"duplicate_type_chart"`
	MonthlyTrendChart       []MonthlyTrendRow `json:"monthly_trend_chart"`
	UserBreakdownChart      []UserChartRow    `json:"user_breakdown_chart"`
	FSLineChart             []AccountChartRow `json:"fs_line_chart"`
	AmountDistributionChart []AmountBucketRow `json:"amount_distribution_chart"`
	RiskLevelChart          []RiskLevelRow    `json:"risk_level_chart"`
}

// Breakdown records

// TypeBreakdown rolls one duplicate type up including its debit/credit split
type TypeBreakdown struct {
	Count        int             `json:"count"`
	Transactions int             `json:"transactions"`
	Amount       decimal.Decimal `json:"amount"`
	DebitCount   int             `json:"debit_count"`
	CreditCount  int             `json:"credit_count"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
}

// MonthlyDebitCredit splits one month's duplicate journal lines by side
type MonthlyDebitCredit struct {
	DebitCount   int             `json:"debit_count"`
	CreditCount  int             `json:"credit_count"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	JournalLines int             `json:"journal_lines"`
}

// UserBreakdown summarizes one impacted user
type UserBreakdown struct {
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	Amount          decimal.Decimal `json:"amount"`
	UniqueAccounts  int             `json:"unique_accounts"`
	UniqueDocuments int             `json:"unique_documents"`
}

// AccountBreakdown summarizes one impacted FS line (GL account)
type AccountBreakdown struct {
	DuplicateGroups int             `json:"duplicate_groups"`
	Transactions    int             `json:"transactions"`
	Amount          decimal.Decimal `json:"amount"`
	DebitCount      int             `json:"debit_count"`
	CreditCount     int             `json:"credit_count"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
}

// RiskBucket aggregates groups within one risk band
type RiskBucket struct {
	Groups       int             `json:"groups"`
	Transactions int             `json:"transactions"`
	Amount       decimal.Decimal `json:"amount"`
}

// Breakdowns bundles the detailed breakdown maps. TypeBreakdown mirrors
// DuplicateFlags; downstream consumers read it under both keys.
type Breakdowns struct {
	DuplicateFlags     map[string]*TypeBreakdown      `json:"duplicate_flags"`
	DebitCreditMonthly map[string]*MonthlyDebitCredit `json:"debit_credit_monthly"`
	UserBreakdown      map[string]*UserBreakdown      `json:"user_breakdown"`
	FSLineBreakdown    map[string]*AccountBreakdown   `json:"fs_line_breakdown"`
	TypeBreakdown      map[string]*TypeBreakdown      `json:"type_breakdown"`
	RiskBreakdown      map[string]*RiskBucket         `json:"risk_breakdown"`
}

// FilterOption is one canned slicer choice
type FilterOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SlicerFilters lists the distinct values and canned buckets available for
// dynamic filtering in the UI
type SlicerFilters struct {
	DuplicateTypes []string       `json:"duplicate_types"`
	Users          []string       `json:"users"`
	GLAccounts     []string       `json:"gl_accounts"`
	DateRanges     []FilterOption `json:"date_ranges"`
	AmountRanges   []FilterOption `json:"amount_ranges"`
	RiskLevels     []string       `json:"risk_levels"`
}

// TransactionStub is the nested member view inside a summary row
type TransactionStub struct {
	ID              string          `json:"id"`
	DocumentNumber  string          `json:"document_number"`
	PostingDate     string          `json:"posting_date"`
	UserName        string          `json:"user_name"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
}

// SummaryRow is one group with full audit context for final test selections
type SummaryRow struct {
	DuplicateType   string            `json:"duplicate_type"`
	Criteria        string            `json:"criteria"`
	GLAccount       string            `json:"gl_account"`
	Amount          decimal.Decimal   `json:"amount"`
	DuplicateCount  int               `json:"duplicate_count"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	RiskScore       int               `json:"risk_score"`
	RiskLevel       string            `json:"risk_level"`
	DebitCount      int               `json:"debit_count"`
	CreditCount     int               `json:"credit_count"`
	DebitAmount     decimal.Decimal   `json:"debit_amount"`
	CreditAmount    decimal.Decimal   `json:"credit_amount"`
	UniqueUsers     int               `json:"unique_users"`
	UniqueDocuments int               `json:"unique_documents"`
	DateRange       engine.DateRange  `json:"date_range"`
	Transactions    []TransactionStub `json:"transactions"`
}

// ExportRow is one fully flattened (group, posting) pair with
// export-friendly field names for CSV serialization
type ExportRow struct {
	DuplicateType        string          `json:"Duplicate_Type"`
	DuplicateCriteria    string          `json:"Duplicate_Criteria"`
	GLAccount            string          `json:"GL_Account"`
	Amount               decimal.Decimal `json:"Amount"`
	DuplicateCount       int             `json:"Duplicate_Count"`
	RiskScore            int             `json:"Risk_Score"`
	RiskLevel            string          `json:"Risk_Level"`
	TransactionID        string          `json:"Transaction_ID"`
	DocumentNumber       string          `json:"Document_Number"`
	PostingDate          string          `json:"Posting_Date"`
	DocumentDate         string          `json:"Document_Date"`
	UserName             string          `json:"User_Name"`
	DocumentType         string          `json:"Document_Type"`
	TransactionType      string          `json:"Transaction_Type"`
	Text                 string          `json:"Text"`
	FiscalYear           int             `json:"Fiscal_Year"`
	PostingPeriod        int             `json:"Posting_Period"`
	ProfitCenter         string          `json:"Profit_Center"`
	CostCenter           string          `json:"Cost_Center"`
	LocalCurrency        string          `json:"Local_Currency"`
	GroupTotalAmount     decimal.Decimal `json:"Group_Total_Amount"`
	GroupDebitCount      int             `json:"Group_Debit_Count"`
	GroupCreditCount     int             `json:"Group_Credit_Count"`
	GroupDebitAmount     decimal.Decimal `json:"Group_Debit_Amount"`
	GroupCreditAmount    decimal.Decimal `json:"Group_Credit_Amount"`
	UniqueUsersInGroup   int             `json:"Unique_Users_In_Group"`
	UniqueDocsInGroup    int             `json:"Unique_Documents_In_Group"`
}

// Detailed insight records

// PatternSummary is one of the most common duplicate patterns
type PatternSummary struct {
	Pattern    string  `json:"pattern"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// UnusualPattern is a rare but high-risk duplicate pattern
type UnusualPattern struct {
	Pattern   string          `json:"pattern"`
	RiskScore int             `json:"risk_score"`
	Amount    decimal.Decimal `json:"amount"`
	Count     int             `json:"count"`
}

// DuplicatePatterns analyzes pattern frequency across the group set
type DuplicatePatterns struct {
	MostCommonPatterns []PatternSummary `json:"most_common_patterns"`
	UnusualPatterns    []UnusualPattern `json:"unusual_patterns"`
	PatternFrequency   map[string]int   `json:"pattern_frequency"`
}

// HighValueDuplicate flags a group above the high-value threshold
type HighValueDuplicate struct {
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Count     int             `json:"count"`
	RiskScore int             `json:"risk_score"`
}

// FrequentDuplicate flags a user+account combination recurring across groups
type FrequentDuplicate struct {
	UserAccount string `json:"user_account"`
	Frequency   int    `json:"frequency"`
}

// SameDayDuplicate flags a group whose members all posted on one calendar day
type SameDayDuplicate struct {
	Type   string          `json:"type"`
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AnomalyIndicators collects the specific anomaly signals
type AnomalyIndicators struct {
	HighValueDuplicates []HighValueDuplicate `json:"high_value_duplicates"`
	FrequentDuplicates  []FrequentDuplicate  `json:"frequent_duplicates"`
	TimeBasedAnomalies  []SameDayDuplicate   `json:"time_based_anomalies"`
}

// HighRiskGroup is a group above the high-risk score threshold
type HighRiskGroup struct {
	Type      string          `json:"type"`
	RiskScore int             `json:"risk_score"`
	Amount    decimal.Decimal `json:"amount"`
	Count     int             `json:"count"`
	Users     []string        `json:"users"`
	Accounts  []string        `json:"accounts"`
}

// RiskAssessment summarizes the risk profile of the group set
type RiskAssessment struct {
	HighRiskGroups        []HighRiskGroup `json:"high_risk_groups"`
	RiskDistribution      map[string]int  `json:"risk_distribution"`
	MitigationSuggestions []string        `json:"mitigation_suggestions"`
}

// ImmediateAction is a recommendation requiring prompt attention
type ImmediateAction struct {
	Action   string `json:"action"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// InvestigationPriority ranks a group for audit investigation
type InvestigationPriority struct {
	Priority  int             `json:"priority"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	RiskScore int             `json:"risk_score"`
	Reason    string          `json:"reason"`
}

// ControlImprovement recommends a process control change
type ControlImprovement struct {
	Improvement string `json:"improvement"`
	Reason      string `json:"reason"`
}

// AuditRecommendations bundles audit follow-up guidance
type AuditRecommendations struct {
	ImmediateActions        []ImmediateAction       `json:"immediate_actions"`
	InvestigationPriorities []InvestigationPriority `json:"investigation_priorities"`
	ControlImprovements     []ControlImprovement    `json:"control_improvements"`
	MonitoringSuggestions   []string                `json:"monitoring_suggestions"`
}

// MonthlyTotals is one month's duplicate line count and amount
type MonthlyTotals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AmountDistribution buckets group totals into coarse magnitude bands
type AmountDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	VeryHigh int `json:"very_high"`
}

// AmountTrends summarizes the distribution of group total amounts
type AmountTrends struct {
	MinAmount          decimal.Decimal    `json:"min_amount"`
	MaxAmount          decimal.Decimal    `json:"max_amount"`
	AverageAmount      decimal.Decimal    `json:"average_amount"`
	AmountDistribution AmountDistribution `json:"amount_distribution"`
}

// TrendAnalysis summarizes temporal and amount trends
type TrendAnalysis struct {
	TemporalTrends map[string]*MonthlyTotals `json:"temporal_trends"`
	AmountTrends   *AmountTrends             `json:"amount_trends,omitempty"`
}

// DuplicatePercentage relates duplicates to the whole analyzed population
type DuplicatePercentage struct {
	TransactionCount float64 `json:"transaction_count"`
	Amount           float64 `json:"amount"`
}

// BenchmarkComparison compares the observed rate to an external benchmark
type BenchmarkComparison struct {
	IndustryAverageDuplicateRate float64 `json:"industry_average_duplicate_rate"`
	CurrentDuplicateRate         float64 `json:"current_duplicate_rate"`
	Status                       string  `json:"status"`
}

// ComparativeAnalysis relates the duplicate set to the full batch
type ComparativeAnalysis struct {
	DuplicatePercentage DuplicatePercentage `json:"duplicate_percentage"`
	BenchmarkComparison BenchmarkComparison `json:"benchmark_comparison"`
}

// DetailedInsights bundles the derived audit insights. All sections are
// omitted when no duplicate groups were detected.
type DetailedInsights struct {
	DuplicatePatterns    *DuplicatePatterns    `json:"duplicate_patterns,omitempty"`
	AnomalyIndicators    *AnomalyIndicators    `json:"anomaly_indicators,omitempty"`
	RiskAssessment       *RiskAssessment       `json:"risk_assessment,omitempty"`
	AuditRecommendations *AuditRecommendations `json:"audit_recommendations,omitempty"`
	TrendAnalysis        *TrendAnalysis        `json:"trend_analysis,omitempty"`
	ComparativeAnalysis  *ComparativeAnalysis  `json:"comparative_analysis,omitempty"`
}

// MLPrediction is one model-flagged posting reported alongside the
// rule-based duplicate list
type MLPrediction struct {
	TransactionID        string  `json:"transaction_id"`
	IsDuplicate          bool    `json:"is_duplicate"`
	DuplicateProbability float64 `json:"duplicate_probability"`
	RiskScore            float64 `json:"risk_score"`
}

// MLEnhancement reports the state and output of the optional ML
// collaborator. It never alters the rule-based result.
type MLEnhancement struct {
	MLModelAvailable     bool           `json:"ml_model_available"`
	MLModelTrained       bool           `json:"ml_model_trained"`
	MLDuplicatesFound    int            `json:"ml_duplicates_found"`
	MLEnhancedDuplicates []MLPrediction `json:"ml_enhanced_duplicates"`
	MLError              string         `json:"ml_error,omitempty"`
}
