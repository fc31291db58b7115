// Package store defines the engine's boundary: where raw rows come
// from, where rules and reference data are read, and where
// consolidated entries are written. The engine owns no wire or file
// format; implementations adapt whatever the surrounding system uses.
package store

import (
	"context"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

// RowSource supplies the raw statement rows for one partition.
type RowSource interface {
	// UnprocessedRows returns rows not yet consolidated, ordered by
	// value date then natural key so runs are reproducible.
	UnprocessedRows(ctx context.Context) ([]model.RawRow, error)
}

// RuleSource supplies the ordered rule set for a scheme.
type RuleSource interface {
	Rules(ctx context.Context, scheme string) ([]model.ParsingRule, error)
}

// ReferenceSource supplies the read-only reference tables. They are
// loaded once per run into a refdata snapshot.
type ReferenceSource interface {
	Counterparties(ctx context.Context) ([]model.Counterparty, error)
	PaymentPlans(ctx context.Context) ([]model.PaymentPlan, error)
	Currencies(ctx context.Context) ([]model.Currency, error)
	ExchangeRates(ctx context.Context) ([]model.ExchangeRate, error)
}

// EntrySink persists consolidated entries.
type EntrySink interface {
	// Exists reports whether an entry was already written for the
	// natural key. Duplicates are detected here, before insert, not by
	// retrying a unique-constraint violation.
	Exists(ctx context.Context, key model.NaturalKey) (bool, error)

	// Consolidate inserts the entry and marks its source row processed
	// in a single commit, so an interrupt between rows never leaves
	// the two halves split.
	Consolidate(ctx context.Context, entry model.ConsolidatedEntry) error
}
