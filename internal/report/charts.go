package report

import (
	"sort"

	"gl-duplicate-analyzer/internal/engine"

	"github.com/shopspring/decimal"
)

// Amount histogram buckets in ascending order. A group lands in the bucket
// of its representative amount (the shared amount for amount-keyed rules).
var amountBuckets = []struct {
	label string
	upper decimal.Decimal
}{
	{"0-1K", decimal.NewFromInt(1000)},
	{"1K-10K", decimal.NewFromInt(10000)},
	{"10K-100K", decimal.NewFromInt(100000)},
	{"100K-1M", decimal.NewFromInt(1000000)},
	{"1M+", decimal.Decimal{}},
}

func (b *Builder) buildChartData(groups []*engine.DuplicateGroup) ChartData {
	return ChartData{
		DuplicateTypeChart:      buildTypeChart(groups),
		MonthlyTrendChart:       buildMonthlyTrendChart(groups),
		UserBreakdownChart:      buildUserChart(groups),
		FSLineChart:             buildAccountChart(groups),
		AmountDistributionChart: buildAmountDistributionChart(groups),
		RiskLevelChart:          buildRiskLevelChart(groups),
	}
}

// buildTypeChart emits one row per duplicate type, in the order types first
// appear in the group sequence (most specific rule first).
func buildTypeChart(groups []*engine.DuplicateGroup) []TypeChartRow {
	index := make(map[string]int)
	rows := []TypeChartRow{}
	for _, g := range groups {
		i, ok := index[g.Type]
		if !ok {
			i = len(rows)
			index[g.Type] = i
			rows = append(rows, TypeChartRow{Type: g.Type, TotalAmount: decimal.Zero})
		}
		rows[i].Groups++
		rows[i].Transactions += g.Count
		rows[i].TotalAmount = rows[i].TotalAmount.Add(g.TotalAmount)
	}
	return rows
}

// buildMonthlyTrendChart aggregates duplicate activity per posting month.
// Transaction counts and amounts accumulate per member line; a group adds
// one to duplicate_groups for each distinct month it touches. Members
// without a posting date fall under the Unknown month.
func buildMonthlyTrendChart(groups []*engine.DuplicateGroup) []MonthlyTrendRow {
	byMonth := make(map[string]*MonthlyTrendRow)
	for _, g := range groups {
		groupMonths := make(map[string]bool)
		for _, r := range g.Records {
			row, ok := byMonth[r.MonthKey]
			if !ok {
				row = &MonthlyTrendRow{
					Month:        r.MonthKey,
					TotalAmount:  decimal.Zero,
					DebitAmount:  decimal.Zero,
					CreditAmount: decimal.Zero,
				}
				byMonth[r.MonthKey] = row
			}
			row.Transactions++
			row.TotalAmount = row.TotalAmount.Add(r.Amount)
			if r.Type.IsDebit() {
				row.DebitAmount = row.DebitAmount.Add(r.Amount)
			} else {
				row.CreditAmount = row.CreditAmount.Add(r.Amount)
			}
			if !groupMonths[r.MonthKey] {
				groupMonths[r.MonthKey] = true
				row.DuplicateGroups++
			}
		}
	}

	rows := make([]MonthlyTrendRow, 0, len(byMonth))
	for _, row := range byMonth {
		rows = append(rows, *row)
	}
	// "Unknown" sorts after all "YYYY-MM" keys, which is the desired
	// trailing position for undated lines.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}

// buildUserChart emits one row per posting user, sorted by total amount
// descending. A group contributes one to each of its users' group counts.
func buildUserChart(groups []*engine.DuplicateGroup) []UserChartRow {
	byUser := make(map[string]*UserChartRow)
	for _, g := range groups {
		groupUsers := make(map[string]bool)
		for _, r := range g.Records {
			row, ok := byUser[r.User]
			if !ok {
				row = &UserChartRow{User: r.User, TotalAmount: decimal.Zero}
				byUser[r.User] = row
			}
			row.Transactions++
			row.TotalAmount = row.TotalAmount.Add(r.Amount)
			if !groupUsers[r.User] {
				groupUsers[r.User] = true
				row.DuplicateGroups++
			}
		}
	}

	rows := make([]UserChartRow, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		cmp := rows[i].TotalAmount.Cmp(rows[j].TotalAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return rows[i].User < rows[j].User
	})
	return rows
}

// buildAccountChart emits one row per FS line (GL account), sorted by total
// amount descending.
func buildAccountChart(groups []*engine.DuplicateGroup) []AccountChartRow {
	byAccount := make(map[string]*AccountChartRow)
	for _, g := range groups {
		groupAccounts := make(map[string]bool)
		for _, r := range g.Records {
			row, ok := byAccount[r.GLAccount]
			if !ok {
				row = &AccountChartRow{
					GLAccount:    r.GLAccount,
					TotalAmount:  decimal.Zero,
					DebitAmount:  decimal.Zero,
					CreditAmount: decimal.Zero,
				}
				byAccount[r.GLAccount] = row
			}
			row.Transactions++
			row.TotalAmount = row.TotalAmount.Add(r.Amount)
			if r.Type.IsDebit() {
				row.DebitAmount = row.DebitAmount.Add(r.Amount)
			} else {
				row.CreditAmount = row.CreditAmount.Add(r.Amount)
			}
			if !groupAccounts[r.GLAccount] {
				groupAccounts[r.GLAccount] = true
				row.DuplicateGroups++
			}
		}
	}

	rows := make([]AccountChartRow, 0, len(byAccount))
	for _, row := range byAccount {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		cmp := rows[i].TotalAmount.Cmp(rows[j].TotalAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return rows[i].GLAccount < rows[j].GLAccount
	})
	return rows
}

// buildAmountDistributionChart emits all five magnitude buckets in
// ascending order, including empty ones.
func buildAmountDistributionChart(groups []*engine.DuplicateGroup) []AmountBucketRow {
	rows := make([]AmountBucketRow, len(amountBuckets))
	for i, bucket := range amountBuckets {
		rows[i] = AmountBucketRow{Range: bucket.label, TotalAmount: decimal.Zero}
	}
	for _, g := range groups {
		i := bucketIndex(g.Amount)
		rows[i].DuplicateGroups++
		rows[i].Transactions += g.Count
		rows[i].TotalAmount = rows[i].TotalAmount.Add(g.TotalAmount)
	}
	return rows
}

func bucketIndex(amount decimal.Decimal) int {
	for i, bucket := range amountBuckets[:len(amountBuckets)-1] {
		if amount.LessThan(bucket.upper) {
			return i
		}
	}
	return len(amountBuckets) - 1
}

// buildRiskLevelChart emits all four risk bands in ascending severity
// order, including empty ones.
func buildRiskLevelChart(groups []*engine.DuplicateGroup) []RiskLevelRow {
	levels := engine.RiskLevels()
	index := make(map[string]int, len(levels))
	rows := make([]RiskLevelRow, len(levels))
	for i, level := range levels {
		index[level] = i
		rows[i] = RiskLevelRow{RiskLevel: level, TotalAmount: decimal.Zero}
	}
	for _, g := range groups {
		i := index[g.RiskLevel()]
		rows[i].DuplicateGroups++
		rows[i].Transactions += g.Count
		rows[i].TotalAmount = rows[i].TotalAmount.Add(g.TotalAmount)
	}
	return rows
}
