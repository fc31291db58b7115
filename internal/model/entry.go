package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction classifies a row by the sign of its amount.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// MatchSource records which resolution path supplied the identity.
type MatchSource string

const (
	MatchedByRule        MatchSource = "rule"
	MatchedByPaymentMemo MatchSource = "payment-memo"
	MatchedByTaxID       MatchSource = "tax-id"
	MatchedNone          MatchSource = "none"
)

// Identity is the resolved (possibly partial) identity bundle for one
// row. Zero-valued ids mean "unresolved" and are written as nulls;
// unresolved fields are legitimate, not errors.
type Identity struct {
	CounterpartyID int
	CategoryID     int
	CurrencyID     int
	ProjectID      int
	PaymentPlanID  string
}

// ConsolidatedEntry is the engine's output: one enriched ledger entry
// per source row, identified deterministically so reprocessing the
// same rows reproduces the same ids.
type ConsolidatedEntry struct {
	ID uuid.UUID

	DocumentKey string
	EntryNo     int

	AccountAmount     decimal.Decimal // signed, account currency
	NominalCurrencyID int
	NominalAmount     decimal.Decimal
	RateMissing       bool // nominal amount left unconverted for lack of a rate

	CounterpartyID int
	CategoryID     int
	ProjectID      int
	PaymentPlanID  string

	ValueDate   time.Time
	BookingDate time.Time
	Description string
}

// Key returns the natural key of the source row.
func (e *ConsolidatedEntry) Key() NaturalKey {
	return NaturalKey{DocumentKey: e.DocumentKey, EntryNo: e.EntryNo}
}
