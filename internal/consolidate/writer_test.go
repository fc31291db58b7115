package consolidate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline-dev/ledgerline/internal/fx"
	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/refdata"
	"github.com/ledgerline-dev/ledgerline/internal/resolver"
	"github.com/ledgerline-dev/ledgerline/internal/rules"
	"github.com/ledgerline-dev/ledgerline/internal/store/memory"
)

const (
	gelID = 1
	eurID = 2
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fixtureStore returns a store loaded with the standard reference
// data: counterparty C1 under tax id 204567890, C2 under 405111222,
// payment plan P2 bound to C2, and a 2.5 EUR rate for 01.03.2024.
func fixtureStore(rows ...model.RawRow) *memory.Store {
	st := memory.NewStore()
	st.AddRows(rows...)
	st.AddReference(
		[]model.Counterparty{
			{ID: 101, TaxID: "204567890", Name: "C1"},
			{ID: 102, TaxID: "405111222", Name: "C2"},
		},
		[]model.PaymentPlan{
			{ID: "P2", CounterpartyID: 102, CategoryID: 32, CurrencyID: eurID, ProjectID: 42},
		},
		[]model.Currency{{ID: gelID, Code: "GEL"}, {ID: eurID, Code: "EUR"}},
		[]model.ExchangeRate{
			{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CurrencyID: eurID, Rate: dec("2.5")},
		},
	)
	return st
}

func newWriter(t *testing.T, st *memory.Store, ruleSet []model.ParsingRule) *Writer {
	t.Helper()
	ctx := context.Background()

	ref, err := refdata.Load(ctx, st)
	require.NoError(t, err)

	e := rules.NewEvaluator(ruleSet, model.Columns(), nil)
	res := resolver.New(e, ref, gelID, nil)
	norm := fx.New(ref, gelID, nil)
	return NewWriter(st, st, res, norm, nil)
}

func row(doc string, entry int, credit, debit, memo string) model.RawRow {
	return model.RawRow{
		DocumentKey:     doc,
		EntryNo:         entry,
		Credit:          dec(credit),
		Debit:           dec(debit),
		Memo:            memo,
		ValueDateText:   "01.03.2024",
		BookingDateText: "02.03.2024",
	}
}

func TestRun_WritesOneEntryPerRow(t *testing.T) {
	st := fixtureStore(
		row("DOC-1", 1, "100", "0", "first"),
		row("DOC-1", 2, "0", "40", "second"),
	)
	w := newWriter(t, st, nil)

	summary, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 2, summary.Written)
	entries := st.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Description)
	assert.True(t, entries[0].AccountAmount.Equal(dec("100")))
	assert.True(t, entries[1].AccountAmount.Equal(dec("-40")))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), entries[0].ValueDate)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), entries[0].BookingDate)
}

func TestRun_Idempotent(t *testing.T) {
	st := fixtureStore(
		row("DOC-1", 1, "100", "0", "a"),
		row("DOC-1", 2, "0", "40", "b"),
	)
	w := newWriter(t, st, nil)

	first, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Written)
	firstIDs := []string{st.Entries()[0].ID.String(), st.Entries()[1].ID.String()}

	// Second run: everything is processed, nothing to do.
	second, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Selected)
	assert.Zero(t, second.Written)
	require.Len(t, st.Entries(), 2)

	// Reset the processed flags and run again: the existing entries
	// are detected and skipped, never duplicated, and ids are stable.
	st.ResetProcessed(model.NaturalKey{DocumentKey: "DOC-1", EntryNo: 1})
	st.ResetProcessed(model.NaturalKey{DocumentKey: "DOC-1", EntryNo: 2})

	third, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, third.SkippedDuplicate)
	assert.Zero(t, third.Written)
	require.Len(t, st.Entries(), 2)
	assert.Equal(t, firstIDs[0], st.Entries()[0].ID.String())
	assert.Equal(t, firstIDs[1], st.Entries()[1].ID.String())
}

func TestRun_InvalidDateSkippedAndRetryable(t *testing.T) {
	bad := row("DOC-2", 1, "10", "0", "x")
	bad.ValueDateText = "31.31.2024"
	st := fixtureStore(bad, row("DOC-2", 2, "20", "0", "y"))
	w := newWriter(t, st, nil)

	summary, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SkippedInvalidDate)
	assert.Equal(t, 1, summary.Written)
	require.Len(t, summary.Diagnostics, 1)
	assert.Equal(t, model.DiagInvalidDate, summary.Diagnostics[0].Kind)

	// The bad row stays unprocessed so a fixed-up retry can pick it up.
	pending, err := st.UnprocessedRows(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].EntryNo)
}

func TestRun_MemoMismatchScenario(t *testing.T) {
	// credit=100, tax id resolves C1, memo equals payment id P2 bound
	// to C2: the entry keeps C1, carries no payment plan, and a
	// mismatch diagnostic is recorded.
	r := row("DOC-3", 1, "100", "0", "P2")
	r.PayerTaxID = "204567890"
	st := fixtureStore(r)
	w := newWriter(t, st, nil)

	summary, err := w.Run(context.Background())
	require.NoError(t, err)

	entries := st.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 101, entries[0].CounterpartyID)
	assert.Empty(t, entries[0].PaymentPlanID)
	assert.Equal(t, 1, summary.MatchedByTaxID)

	require.NotEmpty(t, summary.Diagnostics)
	assert.Equal(t, model.DiagCounterpartyClash, summary.Diagnostics[0].Kind)
}

func TestRun_CurrencyConversionAndFallback(t *testing.T) {
	// Rule binds the EUR plan P2; 50 GEL out at rate 2.5 is 20 EUR.
	converted := row("DOC-4", 1, "0", "50", "invoice 77")
	missing := row("DOC-4", 2, "0", "50", "invoice 78")
	missing.ValueDateText = "02.03.2024" // no rate on this date

	st := fixtureStore(converted, missing)
	w := newWriter(t, st, []model.ParsingRule{
		{Sequence: 1, Formula: `SEARCH("invoice", memo)`, PaymentPlanID: "P2"},
	})

	summary, err := w.Run(context.Background())
	require.NoError(t, err)

	entries := st.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, eurID, entries[0].NominalCurrencyID)
	assert.True(t, entries[0].NominalAmount.Equal(dec("-20")), "got %s", entries[0].NominalAmount)
	assert.False(t, entries[0].RateMissing)

	assert.True(t, entries[1].NominalAmount.Equal(dec("-50")), "unconverted fallback")
	assert.True(t, entries[1].RateMissing)
	assert.Equal(t, 1, summary.RateMissing)
	assert.Equal(t, 2, summary.MatchedByRule)
}

func TestRun_SummaryCounters(t *testing.T) {
	byRule := row("DOC-5", 1, "10", "0", "subscription fee")
	byTaxID := row("DOC-5", 2, "10", "0", "plain transfer")
	byTaxID.PayerTaxID = "204567890"
	unmatched := row("DOC-5", 3, "10", "0", "???")

	st := fixtureStore(byRule, byTaxID, unmatched)
	w := newWriter(t, st, []model.ParsingRule{
		{Sequence: 1, Formula: `SEARCH("subscription", memo)`, CategoryID: 3},
	})

	summary, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Written)
	assert.Equal(t, 1, summary.MatchedByRule)
	assert.Equal(t, 1, summary.MatchedByTaxID)
	assert.Equal(t, 1, summary.Unmatched)
}

func TestRun_CancelBetweenRows(t *testing.T) {
	st := fixtureStore(row("DOC-6", 1, "10", "0", "a"))
	w := newWriter(t, st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Written, "nothing half-done after an interrupt")
}
