// Package fx converts account-currency amounts into nominal-currency
// amounts using the historical rate table.
package fx

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline-dev/ledgerline/internal/refdata"
)

// scale matches the decimal(20,4) money columns in the store.
const scale = 4

// Normalizer converts amounts for one batch. The base currency is the
// bank account's own; rates are never looked up for it.
type Normalizer struct {
	ref            *refdata.Snapshot
	baseCurrencyID int
	log            *logrus.Logger
}

// New creates a Normalizer over a reference snapshot.
func New(ref *refdata.Snapshot, baseCurrencyID int, log *logrus.Logger) *Normalizer {
	return &Normalizer{ref: ref, baseCurrencyID: baseCurrencyID, log: log}
}

// Normalize converts an account-currency amount into the nominal
// currency at the value date's rate. When no rate exists for the date
// the amount is passed through unconverted and rateMissing is true —
// the entry is knowingly under-converted and the caller must surface
// that for audit.
func (n *Normalizer) Normalize(accountAmount decimal.Decimal, nominalCurrencyID int, valueDate time.Time) (nominal decimal.Decimal, rateMissing bool) {
	if nominalCurrencyID == n.baseCurrencyID {
		return accountAmount, false
	}

	rate, ok := n.ref.Rate(valueDate, nominalCurrencyID)
	if !ok || !rate.IsPositive() {
		if n.log != nil {
			n.log.WithFields(logrus.Fields{
				"currency_id": nominalCurrencyID,
				"value_date":  valueDate.Format("2006-01-02"),
			}).Warn("no exchange rate, nominal amount left unconverted")
		}
		return accountAmount, true
	}

	return accountAmount.DivRound(rate, scale), false
}
