// Package report assembles the consolidated analysis result from the
// duplicate groups produced by the grouping engine. Every build emits the
// same top-level key set regardless of input, so downstream consumers never
// branch on missing sections.
package report

import (
	"fmt"
	"sort"
	"time"

	"gl-duplicate-analyzer/internal/engine"
	"gl-duplicate-analyzer/internal/frame"
	"gl-duplicate-analyzer/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config holds the thresholds that shape the derived insight sections.
type Config struct {
	// HighValueThreshold marks a group total as anomalously large.
	HighValueThreshold decimal.Decimal `json:"high_value_threshold"`

	// BenchmarkDuplicateRate is the industry-average duplicate rate (in
	// percent) the observed rate is compared against.
	BenchmarkDuplicateRate float64 `json:"benchmark_duplicate_rate"`

	// TopPatterns limits the most-common-pattern list.
	TopPatterns int `json:"top_patterns"`

	// TopAnomalies limits each anomaly indicator list.
	TopAnomalies int `json:"top_anomalies"`

	// TopInvestigations limits the investigation priority list.
	TopInvestigations int `json:"top_investigations"`

	// ControlImprovementThreshold is the group count beyond which a
	// preventive-control recommendation is emitted.
	ControlImprovementThreshold int `json:"control_improvement_threshold"`
}

// DefaultConfig returns the thresholds used in production analyses.
func DefaultConfig() *Config {
	return &Config{
		HighValueThreshold:          decimal.NewFromInt(1000000),
		BenchmarkDuplicateRate:      2.5,
		TopPatterns:                 3,
		TopAnomalies:                5,
		TopInvestigations:           3,
		ControlImprovementThreshold: 10,
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.HighValueThreshold.IsNegative() {
		return fmt.Errorf("high value threshold must not be negative, got %s", c.HighValueThreshold)
	}
	if c.BenchmarkDuplicateRate < 0 {
		return fmt.Errorf("benchmark duplicate rate must not be negative, got %f", c.BenchmarkDuplicateRate)
	}
	if c.TopPatterns <= 0 || c.TopAnomalies <= 0 || c.TopInvestigations <= 0 {
		return fmt.Errorf("insight list limits must be positive")
	}
	if c.ControlImprovementThreshold <= 0 {
		return fmt.Errorf("control improvement threshold must be positive, got %d", c.ControlImprovementThreshold)
	}
	return nil
}

// Builder turns duplicate groups into the full analysis result.
type Builder struct {
	config *Config
	logger logger.Logger
}

// NewBuilder creates a Builder with the given configuration. A nil config
// uses the defaults.
func NewBuilder(config *Config, log logger.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Builder{
		config: config,
		logger: log.WithComponent("report_builder"),
	}
}

// Build assembles the complete result from the analyzed frame and its
// duplicate groups. Groups are consumed in the order the engine emitted
// them, which keeps every list section deterministic.
func (b *Builder) Build(f *frame.Frame, groups []*engine.DuplicateGroup, threshold int) *AnalysisResult {
	result := newEmptyResult(threshold)
	result.AnalysisInfo.TotalTransactions = f.Len()

	if len(groups) == 0 {
		b.logger.WithField("total_transactions", f.Len()).Info("No duplicate groups found, emitting empty result")
		return result
	}

	duplicateTransactions := 0
	totalAmount := decimal.Zero
	for _, g := range groups {
		duplicateTransactions += g.Count
		totalAmount = totalAmount.Add(g.TotalAmount)
	}
	result.AnalysisInfo.TotalDuplicateGroups = len(groups)
	result.AnalysisInfo.TotalDuplicateTransactions = duplicateTransactions
	result.AnalysisInfo.TotalAmountInvolved = totalAmount

	result.DuplicateList = b.buildDuplicateList(groups)
	result.ChartData = b.buildChartData(groups)
	result.Breakdowns = b.buildBreakdowns(groups)
	result.SlicerFilters = b.buildSlicerFilters(groups)
	result.SummaryTable = b.buildSummaryTable(groups)
	result.ExportData = b.buildExportData(groups)
	result.DetailedInsights = b.buildDetailedInsights(f, groups)

	b.logger.WithFields(logger.Fields{
		"analysis_id":            result.AnalysisInfo.AnalysisID,
		"duplicate_groups":       len(groups),
		"duplicate_transactions": duplicateTransactions,
		"total_amount":           totalAmount.StringFixed(2),
	}).Info("Analysis result assembled")

	return result
}

// EmptyResult returns the canonical result for an empty or duplicate-free
// batch: every top-level key present, all counts zero, all lists empty.
func EmptyResult(threshold int) *AnalysisResult {
	return newEmptyResult(threshold)
}

func newEmptyResult(threshold int) *AnalysisResult {
	return &AnalysisResult{
		AnalysisInfo: AnalysisInfo{
			AnalysisID:          uuid.New().String(),
			TotalAmountInvolved: decimal.Zero,
			AnalysisDate:        time.Now().UTC().Format(time.RFC3339),
			DuplicateThreshold:  threshold,
		},
		DuplicateList: []DuplicateEntry{},
		ChartData: ChartData{
			DuplicateTypeChart:      []TypeChartRow{},
			MonthlyTrendChart:       []MonthlyTrendRow{},
			UserBreakdownChart:      []UserChartRow{},
			FSLineChart:             []AccountChartRow{},
			AmountDistributionChart: []AmountBucketRow{},
			RiskLevelChart:          []RiskLevelRow{},
		},
		Breakdowns: Breakdowns{
			DuplicateFlags:     map[string]*TypeBreakdown{},
			DebitCreditMonthly: map[string]*MonthlyDebitCredit{},
			UserBreakdown:      map[string]*UserBreakdown{},
			FSLineBreakdown:    map[string]*AccountBreakdown{},
			TypeBreakdown:      map[string]*TypeBreakdown{},
			RiskBreakdown:      map[string]*RiskBucket{},
		},
		SlicerFilters: SlicerFilters{
			DuplicateTypes: []string{},
			Users:          []string{},
			GLAccounts:     []string{},
			DateRanges:     []FilterOption{},
			AmountRanges:   []FilterOption{},
			RiskLevels:     []string{},
		},
		SummaryTable: []SummaryRow{},
		ExportData:   []ExportRow{},
	}
}

func (b *Builder) buildDuplicateList(groups []*engine.DuplicateGroup) []DuplicateEntry {
	entries := make([]DuplicateEntry, 0, totalMembers(groups))
	for _, g := range groups {
		for _, r := range g.Records {
			entries = append(entries, DuplicateEntry{
				DuplicateType:          g.Type,
				DuplicateCriteria:      g.Criteria,
				GLAccount:              r.GLAccount,
				Amount:                 r.Amount,
				DuplicateCount:         g.Count,
				RiskScore:              g.RiskScore,
				TransactionID:          r.ID,
				DocumentNumber:         r.DocumentNumber,
				PostingDate:            r.PostingDateKey,
				DocumentDate:           r.DocumentDateKey,
				UserName:               r.User,
				DocumentType:           r.DocumentType,
				TransactionType:        string(r.Type),
				Text:                   r.Text,
				FiscalYear:             r.FiscalYear,
				PostingPeriod:          r.PostingPeriod,
				ProfitCenter:           r.ProfitCenter,
				CostCenter:             r.CostCenter,
				LocalCurrency:          r.Currency,
				DebitCount:             g.DebitCount,
				CreditCount:            g.CreditCount,
				DebitAmount:            g.DebitAmount,
				CreditAmount:           g.CreditAmount,
				GroupTotalAmount:       g.TotalAmount,
				UniqueUsersInGroup:     g.UniqueUsers,
				UniqueDocumentsInGroup: g.UniqueDocuments,
			})
		}
	}
	return entries
}

func (b *Builder) buildSlicerFilters(groups []*engine.DuplicateGroup) SlicerFilters {
	typeSeen := make(map[string]bool)
	types := []string{}
	userSet := make(map[string]bool)
	accountSet := make(map[string]bool)
	hasDates := false

	for _, g := range groups {
		if !typeSeen[g.Type] {
			typeSeen[g.Type] = true
			types = append(types, g.Type)
		}
		for _, r := range g.Records {
			userSet[r.User] = true
			accountSet[r.GLAccount] = true
			if r.HasPostingDate() {
				hasDates = true
			}
		}
	}

	users := sortedKeys(userSet)
	accounts := sortedKeys(accountSet)

	dateRanges := []FilterOption{}
	if hasDates {
		dateRanges = []FilterOption{
			{Label: "Last 30 Days", Value: "last_30_days"},
			{Label: "Last 90 Days", Value: "last_90_days"},
			{Label: "Last 6 Months", Value: "last_6_months"},
			{Label: "Last Year", Value: "last_year"},
			{Label: "All Time", Value: "all_time"},
		}
	}

	amountRanges := []FilterOption{}
	if len(groups) > 0 {
		amountRanges = []FilterOption{
			{Label: "0 - 1K", Value: "0-1000"},
			{Label: "1K - 10K", Value: "1000-10000"},
			{Label: "10K - 100K", Value: "10000-100000"},
			{Label: "100K - 1M", Value: "100000-1000000"},
			{Label: "1M+", Value: "1000000+"},
		}
	}

	return SlicerFilters{
		DuplicateTypes: types,
		Users:          users,
		GLAccounts:     accounts,
		DateRanges:     dateRanges,
		AmountRanges:   amountRanges,
		RiskLevels:     engine.RiskLevels(),
	}
}

func (b *Builder) buildSummaryTable(groups []*engine.DuplicateGroup) []SummaryRow {
	rows := make([]SummaryRow, 0, len(groups))
	for _, g := range groups {
		stubs := make([]TransactionStub, 0, len(g.Records))
		for _, r := range g.Records {
			stubs = append(stubs, TransactionStub{
				ID:              r.ID,
				DocumentNumber:  r.DocumentNumber,
				PostingDate:     r.PostingDateKey,
				UserName:        r.User,
				Amount:          r.Amount,
				TransactionType: string(r.Type),
			})
		}
		rows = append(rows, SummaryRow{
			DuplicateType:   g.Type,
			Criteria:        g.Criteria,
			GLAccount:       g.Records[0].GLAccount,
			Amount:          g.Amount,
			DuplicateCount:  g.Count,
			TotalAmount:     g.TotalAmount,
			RiskScore:       g.RiskScore,
			RiskLevel:       g.RiskLevel(),
			DebitCount:      g.DebitCount,
			CreditCount:     g.CreditCount,
			DebitAmount:     g.DebitAmount,
			CreditAmount:    g.CreditAmount,
			UniqueUsers:     g.UniqueUsers,
			UniqueDocuments: g.UniqueDocuments,
			DateRange:       g.DateRange,
			Transactions:    stubs,
		})
	}
	return rows
}

func (b *Builder) buildExportData(groups []*engine.DuplicateGroup) []ExportRow {
	rows := make([]ExportRow, 0, totalMembers(groups))
	for _, g := range groups {
		for _, r := range g.Records {
			rows = append(rows, ExportRow{
				DuplicateType:      g.Type,
				DuplicateCriteria:  g.Criteria,
				GLAccount:          r.GLAccount,
				Amount:             r.Amount,
				DuplicateCount:     g.Count,
				RiskScore:          g.RiskScore,
				RiskLevel:          g.RiskLevel(),
				TransactionID:      r.ID,
				DocumentNumber:     r.DocumentNumber,
				PostingDate:        r.PostingDateKey,
				DocumentDate:       r.DocumentDateKey,
				UserName:           r.User,
				DocumentType:       r.DocumentType,
				TransactionType:    string(r.Type),
				Text:               r.Text,
				FiscalYear:         r.FiscalYear,
				PostingPeriod:      r.PostingPeriod,
				ProfitCenter:       r.ProfitCenter,
				CostCenter:         r.CostCenter,
				LocalCurrency:      r.Currency,
				GroupTotalAmount:   g.TotalAmount,
				GroupDebitCount:    g.DebitCount,
				GroupCreditCount:   g.CreditCount,
				GroupDebitAmount:   g.DebitAmount,
				GroupCreditAmount:  g.CreditAmount,
				UniqueUsersInGroup: g.UniqueUsers,
				UniqueDocsInGroup:  g.UniqueDocuments,
			})
		}
	}
	return rows
}

func totalMembers(groups []*engine.DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
