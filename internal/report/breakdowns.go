package report

import (
	"gl-duplicate-analyzer/internal/engine"

	"github.com/shopspring/decimal"
)

func (b *Builder) buildBreakdowns(groups []*engine.DuplicateGroup) Breakdowns {
	byType := buildTypeBreakdowns(groups)
	return Breakdowns{
		DuplicateFlags:     byType,
		DebitCreditMonthly: buildDebitCreditMonthly(groups),
		UserBreakdown:      buildUserBreakdowns(groups),
		FSLineBreakdown:    buildAccountBreakdowns(groups),
		// type_breakdown repeats duplicate_flags; both keys are part of
		// the result contract.
		TypeBreakdown: byType,
		RiskBreakdown: buildRiskBreakdowns(groups),
	}
}

func buildTypeBreakdowns(groups []*engine.DuplicateGroup) map[string]*TypeBreakdown {
	byType := make(map[string]*TypeBreakdown)
	for _, g := range groups {
		entry, ok := byType[g.Type]
		if !ok {
			entry = &TypeBreakdown{
				Amount:       decimal.Zero,
				DebitAmount:  decimal.Zero,
				CreditAmount: decimal.Zero,
			}
			byType[g.Type] = entry
		}
		entry.Count++
		entry.Transactions += g.Count
		entry.Amount = entry.Amount.Add(g.TotalAmount)
		entry.DebitCount += g.DebitCount
		entry.CreditCount += g.CreditCount
		entry.DebitAmount = entry.DebitAmount.Add(g.DebitAmount)
		entry.CreditAmount = entry.CreditAmount.Add(g.CreditAmount)
	}
	return byType
}

func buildDebitCreditMonthly(groups []*engine.DuplicateGroup) map[string]*MonthlyDebitCredit {
	byMonth := make(map[string]*MonthlyDebitCredit)
	for _, g := range groups {
		for _, r := range g.Records {
			entry, ok := byMonth[r.MonthKey]
			if !ok {
				entry = &MonthlyDebitCredit{
					DebitAmount:  decimal.Zero,
					CreditAmount: decimal.Zero,
				}
				byMonth[r.MonthKey] = entry
			}
			entry.JournalLines++
			if r.Type.IsDebit() {
				entry.DebitCount++
				entry.DebitAmount = entry.DebitAmount.Add(r.Amount)
			} else {
				entry.CreditCount++
				entry.CreditAmount = entry.CreditAmount.Add(r.Amount)
			}
		}
	}
	return byMonth
}

func buildUserBreakdowns(groups []*engine.DuplicateGroup) map[string]*UserBreakdown {
	byUser := make(map[string]*UserBreakdown)
	accounts := make(map[string]map[string]bool)
	documents := make(map[string]map[string]bool)

	for _, g := range groups {
		groupUsers := make(map[string]bool)
		for _, r := range g.Records {
			entry, ok := byUser[r.User]
			if !ok {
				entry = &UserBreakdown{Amount: decimal.Zero}
				byUser[r.User] = entry
				accounts[r.User] = make(map[string]bool)
				documents[r.User] = make(map[string]bool)
			}
			entry.Transactions++
			entry.Amount = entry.Amount.Add(r.Amount)
			accounts[r.User][r.GLAccount] = true
			if r.DocumentNumber != "" {
				documents[r.User][r.DocumentNumber] = true
			}
			if !groupUsers[r.User] {
				groupUsers[r.User] = true
				entry.DuplicateGroups++
			}
		}
	}

	for user, entry := range byUser {
		entry.UniqueAccounts = len(accounts[user])
		entry.UniqueDocuments = len(documents[user])
	}
	return byUser
}

func buildAccountBreakdowns(groups []*engine.DuplicateGroup) map[string]*AccountBreakdown {
	byAccount := make(map[string]*AccountBreakdown)
	for _, g := range groups {
		groupAccounts := make(map[string]bool)
		for _, r := range g.Records {
			entry, ok := byAccount[r.GLAccount]
			if !ok {
				entry = &AccountBreakdown{
					Amount:       decimal.Zero,
					DebitAmount:  decimal.Zero,
					CreditAmount: decimal.Zero,
				}
				byAccount[r.GLAccount] = entry
			}
			entry.Transactions++
			entry.Amount = entry.Amount.Add(r.Amount)
			if r.Type.IsDebit() {
				entry.DebitCount++
				entry.DebitAmount = entry.DebitAmount.Add(r.Amount)
			} else {
				entry.CreditCount++
				entry.CreditAmount = entry.CreditAmount.Add(r.Amount)
			}
			if !groupAccounts[r.GLAccount] {
				groupAccounts[r.GLAccount] = true
				entry.DuplicateGroups++
			}
		}
	}
	return byAccount
}

func buildRiskBreakdowns(groups []*engine.DuplicateGroup) map[string]*RiskBucket {
	byLevel := make(map[string]*RiskBucket)
	for _, g := range groups {
		level := g.RiskLevel()
		entry, ok := byLevel[level]
		if !ok {
			entry = &RiskBucket{Amount: decimal.Zero}
			byLevel[level] = entry
		}
		entry.Groups++
		entry.Transactions += g.Count
		entry.Amount = entry.Amount.Add(g.TotalAmount)
	}
	return byLevel
}
