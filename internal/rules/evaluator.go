// Package rules evaluates an ordered parsing-rule set against raw
// statement rows.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ledgerline-dev/ledgerline/internal/formula"
	"github.com/ledgerline-dev/ledgerline/internal/model"
)

// compiledRule pairs a rule with its predicate. pred is nil for legacy
// literal rules; disabled rules failed to compile and never match.
type compiledRule struct {
	rule     model.ParsingRule
	pred     formula.Predicate
	disabled bool
}

// Evaluator holds one scheme's rules, compiled once and applied to
// every row in a batch. Rules whose formula fails to compile are
// disabled for the run with a diagnostic; the rest still apply.
type Evaluator struct {
	rules []compiledRule
	diags []model.Diagnostic
}

// NewEvaluator compiles a rule set against the available columns.
// Rules are ordered by Sequence; evaluation is first-match-wins.
func NewEvaluator(ruleSet []model.ParsingRule, columns []string, log *logrus.Logger) *Evaluator {
	ordered := make([]model.ParsingRule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[strings.ToLower(c)] = true
	}

	e := &Evaluator{rules: make([]compiledRule, 0, len(ordered))}
	for _, rule := range ordered {
		cr := compiledRule{rule: rule}

		switch {
		case rule.IsLegacy():
			if !known[strings.ToLower(rule.Column)] {
				cr.disabled = true
				e.disable(rule, fmt.Sprintf("unknown column %q", rule.Column), log)
			}
		default:
			pred, err := formula.Compile(rule.Formula, columns)
			if err != nil {
				cr.disabled = true
				e.disable(rule, err.Error(), log)
			} else {
				cr.pred = pred
			}
		}

		e.rules = append(e.rules, cr)
	}
	return e
}

func (e *Evaluator) disable(rule model.ParsingRule, detail string, log *logrus.Logger) {
	e.diags = append(e.diags, model.Diagnostic{
		Kind:         model.DiagRuleCompile,
		RuleSequence: rule.Sequence,
		Detail:       detail,
	})
	if log != nil {
		log.WithFields(logrus.Fields{
			"scheme": rule.Scheme,
			"rule":   rule.Sequence,
		}).Warnf("rule disabled for this run: %s", detail)
	}
}

// Match returns the first rule satisfied by the row, in declared
// order. No further rules are evaluated once one matches.
func (e *Evaluator) Match(row *model.RawRow) (model.ParsingRule, bool) {
	for _, cr := range e.rules {
		if cr.disabled {
			continue
		}
		if cr.matches(row) {
			return cr.rule, true
		}
	}
	return model.ParsingRule{}, false
}

func (cr *compiledRule) matches(row *model.RawRow) bool {
	if cr.rule.IsLegacy() {
		v, ok := row.Field(strings.ToLower(cr.rule.Column))
		return ok && v == cr.rule.Literal
	}
	return cr.pred(row)
}

// Diagnostics returns the compile failures recorded at construction.
func (e *Evaluator) Diagnostics() []model.Diagnostic {
	return e.diags
}
