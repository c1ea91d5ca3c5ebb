package catalog

import "testing"

func TestDefaultRulesOrdering(t *testing.T) {
	rules := DefaultRules()

	if len(rules) != 6 {
		t.Fatalf("Expected 6 rules, got %d", len(rules))
	}

	// Most specific first
	for i := 0; i < len(rules)-1; i++ {
		if rules[i].Priority <= rules[i+1].Priority {
			t.Errorf("Expected descending priority, got %d before %d at index %d",
				rules[i].Priority, rules[i+1].Priority, i)
		}
	}

	if rules[0].Type != "Type 6 Duplicate" {
		t.Errorf("Expected Type 6 Duplicate first, got %s", rules[0].Type)
	}
	if rules[len(rules)-1].Type != "Type 1 Duplicate" {
		t.Errorf("Expected Type 1 Duplicate last, got %s", rules[len(rules)-1].Type)
	}
}

func TestDefaultRulesDefinitions(t *testing.T) {
	tests := []struct {
		ruleType   string
		multiplier int
		keyColumns int
		criteria   string
	}{
		{"Type 6 Duplicate", 25, 6, "Account Number + Effective Date + Posted Date + User + Source + Amount"},
		{"Type 5 Duplicate", 20, 3, "Account Number + Effective Date + Amount"},
		{"Type 4 Duplicate", 18, 3, "Account Number + Posted Date + Amount"},
		{"Type 3 Duplicate", 15, 3, "Account Number + User + Amount"},
		{"Type 2 Duplicate", 12, 3, "Account Number + Source + Amount"},
		{"Type 1 Duplicate", 10, 2, "Account Number + Amount"},
	}

	rules := DefaultRules()
	for _, tt := range tests {
		t.Run(tt.ruleType, func(t *testing.T) {
			rule, ok := RuleByType(rules, tt.ruleType)
			if !ok {
				t.Fatalf("Expected rule %s to exist", tt.ruleType)
			}
			if rule.RiskMultiplier != tt.multiplier {
				t.Errorf("Expected multiplier %d, got %d", tt.multiplier, rule.RiskMultiplier)
			}
			if len(rule.KeyColumns) != tt.keyColumns {
				t.Errorf("Expected %d key columns, got %d", tt.keyColumns, len(rule.KeyColumns))
			}
			if rule.Criteria != tt.criteria {
				t.Errorf("Expected criteria %q, got %q", tt.criteria, rule.Criteria)
			}
		})
	}
}

func TestEveryRuleKeysOnAccountAndAmount(t *testing.T) {
	for _, rule := range DefaultRules() {
		hasAccount, hasAmount := false, false
		for _, col := range rule.KeyColumns {
			if col == ColumnGLAccount {
				hasAccount = true
			}
			if col == ColumnAmount {
				hasAmount = true
			}
		}
		if !hasAccount || !hasAmount {
			t.Errorf("Rule %s missing account or amount key column", rule.Type)
		}
	}
}

func TestDefaultRulesReturnsCopy(t *testing.T) {
	first := DefaultRules()
	first[0].RiskMultiplier = 999
	first[0].KeyColumns[0] = "tampered"

	second := DefaultRules()
	if second[0].RiskMultiplier == 999 {
		t.Error("Mutating a returned rule slice should not affect the catalog")
	}
	if second[0].KeyColumns[0] == "tampered" {
		t.Error("Mutating returned key columns should not affect the catalog")
	}
}

func TestRuleByTypeUnknown(t *testing.T) {
	if _, ok := RuleByType(DefaultRules(), "Type 99 Duplicate"); ok {
		t.Error("Expected lookup of unknown rule type to fail")
	}
}
