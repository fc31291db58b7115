package model

import "fmt"

// DiagnosticKind enumerates the recoverable problems a run can report.
type DiagnosticKind string

const (
	DiagRuleCompile         DiagnosticKind = "rule-compile"
	DiagInvalidDate         DiagnosticKind = "invalid-date"
	DiagCounterpartyClash   DiagnosticKind = "counterparty-mismatch"
	DiagDanglingPaymentPlan DiagnosticKind = "dangling-payment-plan"
	DiagRateMissing         DiagnosticKind = "rate-missing"
)

// Diagnostic is one operator-visible finding. Row-level diagnostics
// carry the natural key; rule-level ones carry the rule sequence.
type Diagnostic struct {
	Kind         DiagnosticKind
	Key          NaturalKey
	RuleSequence int
	Detail       string
}

func (d Diagnostic) String() string {
	if d.Kind == DiagRuleCompile {
		return fmt.Sprintf("%s rule %d: %s", d.Kind, d.RuleSequence, d.Detail)
	}
	return fmt.Sprintf("%s row %s: %s", d.Kind, d.Key, d.Detail)
}

// Summary holds the per-run counters and the diagnostics list.
type Summary struct {
	Selected             int
	Written              int
	MatchedByRule        int
	MatchedByPaymentMemo int
	MatchedByTaxID       int
	Unmatched            int
	SkippedDuplicate     int
	SkippedInvalidDate   int
	RateMissing          int

	Diagnostics []Diagnostic
}
