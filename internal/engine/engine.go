// Package engine implements duplicate detection over a normalized posting
// frame.
//
// The engine applies the catalog rules in priority order, most specific
// first. Each pass only considers postings that no earlier pass has
// claimed, so every posting belongs to at most one duplicate group: the
// highest-priority rule it qualifies for. Within one analysis run the
// passes are inherently sequential because each consumes the claimed set
// left by the previous one.
package engine

import (
	"strings"

	"gl-duplicate-analyzer/internal/catalog"
	"gl-duplicate-analyzer/internal/frame"
	"gl-duplicate-analyzer/pkg/logger"
)

// keySeparator joins key column values into one composite bucket key.
// The unit separator cannot occur in posting fields coming from CSV.
const keySeparator = "\x1f"

// GroupingEngine detects duplicate groups in a posting frame
type GroupingEngine struct {
	config *Config
	rules  []catalog.Rule
	logger logger.Logger
}

// NewGroupingEngine creates a grouping engine for the given rule catalog.
// A nil config selects the defaults.
func NewGroupingEngine(config *Config, rules []catalog.Rule) *GroupingEngine {
	if config == nil {
		config = DefaultConfig()
	}

	return &GroupingEngine{
		config: config,
		rules:  rules,
		logger: logger.GetGlobalLogger().WithComponent("grouping_engine"),
	}
}

// Config returns a copy of the engine configuration
func (e *GroupingEngine) Config() *Config {
	return e.config.Clone()
}

// Group partitions the frame into duplicate groups. Groups are emitted in
// rule priority order and, within a rule, in first-occurrence order of
// their key values, so identical input always yields identical output.
func (e *GroupingEngine) Group(f *frame.Frame) []*DuplicateGroup {
	var groups []*DuplicateGroup
	claimed := make(map[string]struct{})

	for _, rule := range e.rules {
		// Later rules cannot form a group once too few postings remain
		if f.Len()-len(claimed) < e.config.Threshold {
			break
		}

		ruleGroups := e.applyRule(rule, f, claimed)
		groups = append(groups, ruleGroups...)

		for _, group := range ruleGroups {
			for i := range group.Records {
				claimed[group.Records[i].ID] = struct{}{}
			}
		}
	}

	e.logger.WithFields(logger.Fields{
		"transactions":     f.Len(),
		"duplicate_groups": len(groups),
		"claimed":          len(claimed),
	}).Debug("Duplicate grouping completed")

	return groups
}

// applyRule buckets the unclaimed postings by the rule's key columns and
// emits one group per bucket that reaches the threshold.
func (e *GroupingEngine) applyRule(rule catalog.Rule, f *frame.Frame, claimed map[string]struct{}) []*DuplicateGroup {
	buckets := make(map[string][]frame.Record)
	var order []string

	for i := range f.Records {
		r := f.Records[i]
		if _, taken := claimed[r.ID]; taken {
			continue
		}

		key := compositeKey(&r, rule.KeyColumns)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	var groups []*DuplicateGroup
	for _, key := range order {
		records := buckets[key]
		if len(records) < e.config.Threshold {
			continue
		}
		groups = append(groups, buildGroup(rule, records))
	}

	return groups
}

func compositeKey(r *frame.Record, columns []string) string {
	values := make([]string, len(columns))
	for i, column := range columns {
		values[i] = r.KeyValue(column)
	}
	return strings.Join(values, keySeparator)
}
