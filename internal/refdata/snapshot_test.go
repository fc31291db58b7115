package refdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/store/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSnapshotLookups(t *testing.T) {
	s := New(
		[]model.Counterparty{{ID: 1, TaxID: "204567890", Name: "C1"}, {ID: 2, Name: "no tax id"}},
		[]model.PaymentPlan{{ID: "P1", CounterpartyID: 1}},
		[]model.Currency{{ID: 1, Code: "GEL"}, {ID: 2, Code: "EUR"}},
		[]model.ExchangeRate{{Date: date(2024, 3, 1), CurrencyID: 2, Rate: decimal.NewFromFloat(2.5)}},
	)

	c, ok := s.CounterpartyByTaxID("204567890")
	require.True(t, ok)
	assert.Equal(t, 1, c.ID)

	_, ok = s.CounterpartyByTaxID("")
	assert.False(t, ok, "blank tax id never matches")

	_, ok = s.Plan("P1")
	assert.True(t, ok)
	_, ok = s.Plan("P9")
	assert.False(t, ok)

	eur, ok := s.CurrencyByCode("eur")
	require.True(t, ok, "code lookup ignores case")
	assert.Equal(t, 2, eur.ID)

	rate, ok := s.Rate(date(2024, 3, 1), 2)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromFloat(2.5)))

	_, ok = s.Rate(date(2024, 3, 2), 2)
	assert.False(t, ok, "missing date means unknown")
}

func TestLoad(t *testing.T) {
	st := memory.NewStore()
	st.AddReference(
		[]model.Counterparty{{ID: 7, TaxID: "1", Name: "x"}},
		nil,
		[]model.Currency{{ID: 1, Code: "GEL"}},
		nil,
	)

	s, err := Load(context.Background(), st)
	require.NoError(t, err)

	c, ok := s.CounterpartyByTaxID("1")
	require.True(t, ok)
	assert.Equal(t, 7, c.ID)
}
