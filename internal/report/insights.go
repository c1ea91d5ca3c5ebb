package report

import (
	"fmt"
	"sort"

	"gl-duplicate-analyzer/internal/engine"
	"gl-duplicate-analyzer/internal/frame"

	"github.com/shopspring/decimal"
)

// Thresholds for the amount trend distribution bands.
var (
	amountBandMedium = decimal.NewFromInt(10000)
	amountBandHigh   = decimal.NewFromInt(100000)
	amountBandVery   = decimal.NewFromInt(1000000)
)

// highRiskScoreThreshold marks groups that warrant individual review.
const highRiskScoreThreshold = 70

// criticalRiskScoreThreshold marks groups that require immediate action.
const criticalRiskScoreThreshold = 90

func (b *Builder) buildDetailedInsights(f *frame.Frame, groups []*engine.DuplicateGroup) DetailedInsights {
	if len(groups) == 0 {
		return DetailedInsights{}
	}
	return DetailedInsights{
		DuplicatePatterns:    b.buildDuplicatePatterns(groups),
		AnomalyIndicators:    b.buildAnomalyIndicators(groups),
		RiskAssessment:       b.buildRiskAssessment(groups),
		AuditRecommendations: b.buildAuditRecommendations(groups),
		TrendAnalysis:        b.buildTrendAnalysis(groups),
		ComparativeAnalysis:  b.buildComparativeAnalysis(f, groups),
	}
}

func (b *Builder) buildDuplicatePatterns(groups []*engine.DuplicateGroup) *DuplicatePatterns {
	frequency := make(map[string]int)
	for _, g := range groups {
		frequency[g.Type]++
	}

	patterns := make([]string, 0, len(frequency))
	for p := range frequency {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if frequency[patterns[i]] != frequency[patterns[j]] {
			return frequency[patterns[i]] > frequency[patterns[j]]
		}
		return patterns[i] < patterns[j]
	})

	common := []PatternSummary{}
	for i, p := range patterns {
		if i >= b.config.TopPatterns {
			break
		}
		common = append(common, PatternSummary{
			Pattern:    p,
			Frequency:  frequency[p],
			Percentage: round2(float64(frequency[p]) / float64(len(groups)) * 100),
		})
	}

	// A pattern is unusual when a rare type still carries a meaningful
	// risk score.
	unusual := []UnusualPattern{}
	for _, g := range groups {
		if g.RiskScore > 50 && frequency[g.Type] <= 1 {
			unusual = append(unusual, UnusualPattern{
				Pattern:   g.Type,
				RiskScore: g.RiskScore,
				Amount:    g.TotalAmount,
				Count:     g.Count,
			})
		}
	}
	sort.SliceStable(unusual, func(i, j int) bool { return unusual[i].RiskScore > unusual[j].RiskScore })
	if len(unusual) > b.config.TopAnomalies {
		unusual = unusual[:b.config.TopAnomalies]
	}

	return &DuplicatePatterns{
		MostCommonPatterns: common,
		UnusualPatterns:    unusual,
		PatternFrequency:   frequency,
	}
}

func (b *Builder) buildAnomalyIndicators(groups []*engine.DuplicateGroup) *AnomalyIndicators {
	highValue := []HighValueDuplicate{}
	for _, g := range groups {
		if g.TotalAmount.GreaterThan(b.config.HighValueThreshold) {
			highValue = append(highValue, HighValueDuplicate{
				Type:      g.Type,
				Amount:    g.TotalAmount,
				Count:     g.Count,
				RiskScore: g.RiskScore,
			})
		}
	}
	sort.SliceStable(highValue, func(i, j int) bool {
		return highValue[i].Amount.GreaterThan(highValue[j].Amount)
	})
	if len(highValue) > b.config.TopAnomalies {
		highValue = highValue[:b.config.TopAnomalies]
	}

	// User+account combinations recurring across multiple groups.
	comboCounts := make(map[string]int)
	comboOrder := []string{}
	for _, g := range groups {
		seen := make(map[string]bool)
		for _, r := range g.Records {
			combo := r.User + "_" + r.GLAccount
			if seen[combo] {
				continue
			}
			seen[combo] = true
			if comboCounts[combo] == 0 {
				comboOrder = append(comboOrder, combo)
			}
			comboCounts[combo]++
		}
	}
	frequent := []FrequentDuplicate{}
	for _, combo := range comboOrder {
		if comboCounts[combo] > 2 {
			frequent = append(frequent, FrequentDuplicate{UserAccount: combo, Frequency: comboCounts[combo]})
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool { return frequent[i].Frequency > frequent[j].Frequency })
	if len(frequent) > b.config.TopAnomalies {
		frequent = frequent[:b.config.TopAnomalies]
	}

	// Groups whose dated members all posted on the same calendar day.
	sameDay := []SameDayDuplicate{}
	for _, g := range groups {
		date := sameDayKey(g)
		if date == "" {
			continue
		}
		sameDay = append(sameDay, SameDayDuplicate{
			Type:   g.Type,
			Date:   date,
			Count:  g.Count,
			Amount: g.TotalAmount,
		})
	}
	sort.SliceStable(sameDay, func(i, j int) bool {
		return sameDay[i].Amount.GreaterThan(sameDay[j].Amount)
	})
	if len(sameDay) > b.config.TopAnomalies {
		sameDay = sameDay[:b.config.TopAnomalies]
	}

	return &AnomalyIndicators{
		HighValueDuplicates: highValue,
		FrequentDuplicates:  frequent,
		TimeBasedAnomalies:  sameDay,
	}
}

// sameDayKey returns the shared posting day of a group's dated members, or
// "" when the group has no dated members or spans multiple days.
func sameDayKey(g *engine.DuplicateGroup) string {
	date := ""
	for _, r := range g.Records {
		if !r.HasPostingDate() {
			continue
		}
		if date == "" {
			date = r.PostingDateKey
		} else if date != r.PostingDateKey {
			return ""
		}
	}
	return date
}

func (b *Builder) buildRiskAssessment(groups []*engine.DuplicateGroup) *RiskAssessment {
	highRisk := []HighRiskGroup{}
	distribution := map[string]int{}
	for _, level := range engine.RiskLevels() {
		distribution[level] = 0
	}
	allUsers := make(map[string]bool)
	anyHighValue := false

	for _, g := range groups {
		distribution[g.RiskLevel()]++
		if g.TotalAmount.GreaterThan(b.config.HighValueThreshold) {
			anyHighValue = true
		}
		userSet := make(map[string]bool)
		accountSet := make(map[string]bool)
		for _, r := range g.Records {
			userSet[r.User] = true
			accountSet[r.GLAccount] = true
			allUsers[r.User] = true
		}
		if g.RiskScore > highRiskScoreThreshold {
			highRisk = append(highRisk, HighRiskGroup{
				Type:      g.Type,
				RiskScore: g.RiskScore,
				Amount:    g.TotalAmount,
				Count:     g.Count,
				Users:     sortedKeys(userSet),
				Accounts:  sortedKeys(accountSet),
			})
		}
	}

	sort.SliceStable(highRisk, func(i, j int) bool {
		return highRisk[i].RiskScore > highRisk[j].RiskScore
	})

	suggestions := []string{}
	if len(highRisk) > 0 {
		suggestions = append(suggestions, "Review high-risk duplicate groups for potential fraud or errors")
	}
	if anyHighValue {
		suggestions = append(suggestions, "Investigate high-value duplicate transactions")
	}
	if len(allUsers) < 3 {
		suggestions = append(suggestions, "Limited user diversity in duplicates - consider user training")
	}

	return &RiskAssessment{
		HighRiskGroups:        highRisk,
		RiskDistribution:      distribution,
		MitigationSuggestions: suggestions,
	}
}

func (b *Builder) buildAuditRecommendations(groups []*engine.DuplicateGroup) *AuditRecommendations {
	immediate := []ImmediateAction{}
	criticalCount := 0
	for _, g := range groups {
		if g.RiskScore >= criticalRiskScoreThreshold {
			criticalCount++
		}
	}
	if criticalCount > 0 {
		immediate = append(immediate, ImmediateAction{
			Action:   "Immediate investigation required",
			Reason:   fmt.Sprintf("%d critical risk duplicate groups found", criticalCount),
			Priority: "HIGH",
		})
	}

	byAmount := make([]*engine.DuplicateGroup, len(groups))
	copy(byAmount, groups)
	sort.SliceStable(byAmount, func(i, j int) bool {
		return byAmount[i].TotalAmount.GreaterThan(byAmount[j].TotalAmount)
	})
	priorities := []InvestigationPriority{}
	for i, g := range byAmount {
		if i >= b.config.TopInvestigations {
			break
		}
		priorities = append(priorities, InvestigationPriority{
			Priority:  i + 1,
			Type:      g.Type,
			Amount:    g.TotalAmount,
			RiskScore: g.RiskScore,
			Reason:    "High amount duplicate group",
		})
	}

	improvements := []ControlImprovement{}
	if len(groups) > b.config.ControlImprovementThreshold {
		improvements = append(improvements, ControlImprovement{
			Improvement: "Implement preventive duplicate detection controls",
			Reason:      fmt.Sprintf("High number of duplicate groups detected (%d)", len(groups)),
		})
	}

	monitoring := []string{
		"Set up automated duplicate detection alerts",
		"Regular review of duplicate patterns",
		"Monitor user posting patterns",
		"Track duplicate resolution outcomes",
	}

	return &AuditRecommendations{
		ImmediateActions:        immediate,
		InvestigationPriorities: priorities,
		ControlImprovements:     improvements,
		MonitoringSuggestions:   monitoring,
	}
}

func (b *Builder) buildTrendAnalysis(groups []*engine.DuplicateGroup) *TrendAnalysis {
	temporal := make(map[string]*MonthlyTotals)
	for _, g := range groups {
		for _, r := range g.Records {
			if !r.HasPostingDate() {
				continue
			}
			entry, ok := temporal[r.MonthKey]
			if !ok {
				entry = &MonthlyTotals{Amount: decimal.Zero}
				temporal[r.MonthKey] = entry
			}
			entry.Count++
			entry.Amount = entry.Amount.Add(r.Amount)
		}
	}

	trends := &TrendAnalysis{TemporalTrends: temporal}
	if len(groups) == 0 {
		return trends
	}

	min := groups[0].TotalAmount
	max := groups[0].TotalAmount
	sum := decimal.Zero
	dist := AmountDistribution{}
	for _, g := range groups {
		amount := g.TotalAmount
		if amount.LessThan(min) {
			min = amount
		}
		if amount.GreaterThan(max) {
			max = amount
		}
		sum = sum.Add(amount)
		switch {
		case amount.LessThan(amountBandMedium):
			dist.Low++
		case amount.LessThan(amountBandHigh):
			dist.Medium++
		case amount.LessThan(amountBandVery):
			dist.High++
		default:
			dist.VeryHigh++
		}
	}
	trends.AmountTrends = &AmountTrends{
		MinAmount:          min,
		MaxAmount:          max,
		AverageAmount:      sum.Div(decimal.NewFromInt(int64(len(groups)))).Round(2),
		AmountDistribution: dist,
	}
	return trends
}

func (b *Builder) buildComparativeAnalysis(f *frame.Frame, groups []*engine.DuplicateGroup) *ComparativeAnalysis {
	duplicateCount := 0
	duplicateAmount := decimal.Zero
	for _, g := range groups {
		duplicateCount += g.Count
		duplicateAmount = duplicateAmount.Add(g.TotalAmount)
	}

	countRate := 0.0
	if f.Len() > 0 {
		countRate = round2(float64(duplicateCount) / float64(f.Len()) * 100)
	}
	amountRate := 0.0
	if total := f.TotalAmount(); !total.IsZero() {
		amountRate = round2(duplicateAmount.Div(total).InexactFloat64() * 100)
	}

	status := "Below Average"
	if countRate > b.config.BenchmarkDuplicateRate {
		status = "Above Average"
	}

	return &ComparativeAnalysis{
		DuplicatePercentage: DuplicatePercentage{
			TransactionCount: countRate,
			Amount:           amountRate,
		},
		BenchmarkComparison: BenchmarkComparison{
			IndustryAverageDuplicateRate: b.config.BenchmarkDuplicateRate,
			CurrentDuplicateRate:         countRate,
			Status:                       status,
		},
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
