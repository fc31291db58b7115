package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Counterparty is a known transaction party, looked up by tax id for
// the best-effort identity fallback.
type Counterparty struct {
	ID    int
	TaxID string
	Name  string
}

// PaymentPlan binds a payment identifier to a full identity bundle.
// Read-only to the engine; matched by id or by exact memo text.
type PaymentPlan struct {
	ID             string
	CounterpartyID int
	CategoryID     int
	CurrencyID     int
	ProjectID      int
}

// Currency is one row of the currency table.
type Currency struct {
	ID   int
	Code string
}

// ExchangeRate is the rate to the base currency for one currency on
// one date. No row for a date means the rate is unknown, not zero.
type ExchangeRate struct {
	Date       time.Time
	CurrencyID int
	Rate       decimal.Decimal
}
