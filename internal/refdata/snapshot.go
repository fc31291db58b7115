// Package refdata holds the immutable reference snapshot for one run:
// counterparties by tax id, payment plans by id, the currency table
// and the daily FX-rate table. A snapshot is built once at batch start
// and passed in explicitly, never read from shared process state, so a
// run is reproducible and testable in isolation.
package refdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/store"
)

// Snapshot provides read-only reference lookups.
type Snapshot struct {
	byTaxID map[string]model.Counterparty
	plans   map[string]model.PaymentPlan
	byID    map[int]model.Currency
	byCode  map[string]model.Currency
	rates   map[rateKey]decimal.Decimal
}

type rateKey struct {
	date       string // yyyy-mm-dd
	currencyID int
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// New builds a snapshot from reference slices.
func New(counterparties []model.Counterparty, plans []model.PaymentPlan, currencies []model.Currency, rates []model.ExchangeRate) *Snapshot {
	s := &Snapshot{
		byTaxID: make(map[string]model.Counterparty, len(counterparties)),
		plans:   make(map[string]model.PaymentPlan, len(plans)),
		byID:    make(map[int]model.Currency, len(currencies)),
		byCode:  make(map[string]model.Currency, len(currencies)),
		rates:   make(map[rateKey]decimal.Decimal, len(rates)),
	}
	for _, c := range counterparties {
		if c.TaxID != "" {
			s.byTaxID[c.TaxID] = c
		}
	}
	for _, p := range plans {
		s.plans[p.ID] = p
	}
	for _, c := range currencies {
		s.byID[c.ID] = c
		s.byCode[strings.ToUpper(c.Code)] = c
	}
	for _, r := range rates {
		s.rates[rateKey{dateKey(r.Date), r.CurrencyID}] = r.Rate
	}
	return s
}

// Load reads all reference tables through a store and builds a snapshot.
func Load(ctx context.Context, src store.ReferenceSource) (*Snapshot, error) {
	counterparties, err := src.Counterparties(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading counterparties: %w", err)
	}
	plans, err := src.PaymentPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading payment plans: %w", err)
	}
	currencies, err := src.Currencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading currencies: %w", err)
	}
	rates, err := src.ExchangeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exchange rates: %w", err)
	}
	return New(counterparties, plans, currencies, rates), nil
}

// CounterpartyByTaxID returns the counterparty registered under a tax id.
func (s *Snapshot) CounterpartyByTaxID(taxID string) (model.Counterparty, bool) {
	if taxID == "" {
		return model.Counterparty{}, false
	}
	c, ok := s.byTaxID[taxID]
	return c, ok
}

// Plan returns a payment plan by exact id.
func (s *Snapshot) Plan(id string) (model.PaymentPlan, bool) {
	p, ok := s.plans[id]
	return p, ok
}

// Currency returns a currency by id.
func (s *Snapshot) Currency(id int) (model.Currency, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// CurrencyByCode returns a currency by its code, ignoring case.
func (s *Snapshot) CurrencyByCode(code string) (model.Currency, bool) {
	c, ok := s.byCode[strings.ToUpper(code)]
	return c, ok
}

// Rate returns the rate to the base currency for a currency on a date.
// A missing row means the rate is unknown.
func (s *Snapshot) Rate(date time.Time, currencyID int) (decimal.Decimal, bool) {
	r, ok := s.rates[rateKey{dateKey(date), currencyID}]
	return r, ok
}
