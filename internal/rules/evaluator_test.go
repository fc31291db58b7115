package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

func row(memo, payer string) *model.RawRow {
	return &model.RawRow{Memo: memo, PayerName: payer}
}

func TestMatch_FirstRuleWins(t *testing.T) {
	ruleSet := []model.ParsingRule{
		{Sequence: 2, Formula: `SEARCH("rent", memo)`, CounterpartyID: 20},
		{Sequence: 1, Formula: `SEARCH("rent", memo)`, CounterpartyID: 10},
	}
	e := NewEvaluator(ruleSet, model.Columns(), nil)

	matched, ok := e.Match(row("office rent march", ""))
	require.True(t, ok)
	assert.Equal(t, 1, matched.Sequence, "lower sequence wins even when declared later")
	assert.Equal(t, 10, matched.CounterpartyID)
}

func TestMatch_NoRuleMatches(t *testing.T) {
	ruleSet := []model.ParsingRule{
		{Sequence: 1, Formula: `SEARCH("rent", memo)`},
	}
	e := NewEvaluator(ruleSet, model.Columns(), nil)

	_, ok := e.Match(row("salary", ""))
	assert.False(t, ok)
}

func TestMatch_LegacyLiteralRule(t *testing.T) {
	ruleSet := []model.ParsingRule{
		{Sequence: 1, Column: "payer_name", Literal: "ACME LLC", CounterpartyID: 7},
	}
	e := NewEvaluator(ruleSet, model.Columns(), nil)

	matched, ok := e.Match(row("", "ACME LLC"))
	require.True(t, ok)
	assert.Equal(t, 7, matched.CounterpartyID)

	_, ok = e.Match(row("", "acme llc"))
	assert.False(t, ok, "legacy literal comparison is exact")
}

func TestNewEvaluator_BadFormulaDisablesOnlyThatRule(t *testing.T) {
	ruleSet := []model.ParsingRule{
		{Sequence: 1, Formula: `SEARCH("x", no_such_column)`, CounterpartyID: 1},
		{Sequence: 2, Formula: `SEARCH("rent", memo)`, CounterpartyID: 2},
	}
	e := NewEvaluator(ruleSet, model.Columns(), nil)

	diags := e.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagRuleCompile, diags[0].Kind)
	assert.Equal(t, 1, diags[0].RuleSequence)

	// The healthy rule still applies.
	matched, ok := e.Match(row("rent", ""))
	require.True(t, ok)
	assert.Equal(t, 2, matched.CounterpartyID)
}

func TestNewEvaluator_LegacyRuleUnknownColumn(t *testing.T) {
	ruleSet := []model.ParsingRule{
		{Sequence: 1, Column: "nope", Literal: "x"},
	}
	e := NewEvaluator(ruleSet, model.Columns(), nil)

	require.Len(t, e.Diagnostics(), 1)
	_, ok := e.Match(row("x", "x"))
	assert.False(t, ok)
}
