// Package memory is an in-process store used by tests, dry runs and
// file-based batches. It implements every engine boundary interface.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

// Store holds all tables in memory. Safe for the engine's
// single-writer batch model; a mutex guards the mutating paths.
type Store struct {
	mu sync.Mutex

	rows           []model.RawRow
	rules          []model.ParsingRule
	counterparties []model.Counterparty
	plans          []model.PaymentPlan
	currencies     []model.Currency
	rates          []model.ExchangeRate
	entries        map[model.NaturalKey]model.ConsolidatedEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[model.NaturalKey]model.ConsolidatedEntry)}
}

// AddRows appends raw statement rows.
func (s *Store) AddRows(rows ...model.RawRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}

// AddRules appends parsing rules.
func (s *Store) AddRules(rules ...model.ParsingRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rules...)
}

// AddReference loads the reference tables.
func (s *Store) AddReference(counterparties []model.Counterparty, plans []model.PaymentPlan, currencies []model.Currency, rates []model.ExchangeRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counterparties = append(s.counterparties, counterparties...)
	s.plans = append(s.plans, plans...)
	s.currencies = append(s.currencies, currencies...)
	s.rates = append(s.rates, rates...)
}

// UnprocessedRows returns pending rows ordered by value date, then
// natural key.
func (s *Store) UnprocessedRows(_ context.Context) ([]model.RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []model.RawRow
	for _, r := range s.rows {
		if !r.Processed {
			pending = append(pending, r)
		}
	}
	model.SortRowsForRun(pending)
	return pending, nil
}

// Rules returns the ordered rules for a scheme.
func (s *Store) Rules(_ context.Context, scheme string) ([]model.ParsingRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ParsingRule
	for _, r := range s.rules {
		if r.Scheme == scheme {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// Counterparties returns the counterparty table.
func (s *Store) Counterparties(_ context.Context) ([]model.Counterparty, error) {
	return s.counterparties, nil
}

// PaymentPlans returns the payment-plan table.
func (s *Store) PaymentPlans(_ context.Context) ([]model.PaymentPlan, error) {
	return s.plans, nil
}

// Currencies returns the currency table.
func (s *Store) Currencies(_ context.Context) ([]model.Currency, error) {
	return s.currencies, nil
}

// ExchangeRates returns the daily rate table.
func (s *Store) ExchangeRates(_ context.Context) ([]model.ExchangeRate, error) {
	return s.rates, nil
}

// Exists reports whether an entry was already written for the key.
func (s *Store) Exists(_ context.Context, key model.NaturalKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok, nil
}

// Consolidate inserts the entry and flags its source row processed,
// atomically under the store lock.
func (s *Store) Consolidate(_ context.Context, entry model.ConsolidatedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entry.Key()
	if _, ok := s.entries[key]; ok {
		return fmt.Errorf("entry already exists for %s", key)
	}
	s.entries[key] = entry

	for i := range s.rows {
		if s.rows[i].Key() == key {
			s.rows[i].Processed = true
			break
		}
	}
	return nil
}

// Entries returns all written entries, ordered by natural key.
func (s *Store) Entries() []model.ConsolidatedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ConsolidatedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentKey != out[j].DocumentKey {
			return out[i].DocumentKey < out[j].DocumentKey
		}
		return out[i].EntryNo < out[j].EntryNo
	})
	return out
}

// ResetProcessed clears the processed flag for one row, the
// correction path: fix reference data, reset, re-run. The existing
// entry still blocks a duplicate.
func (s *Store) ResetProcessed(key model.NaturalKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].Key() == key {
			s.rows[i].Processed = false
		}
	}
}
