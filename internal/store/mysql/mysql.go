// Package mysql is the production store: raw statement rows, rules,
// reference tables and consolidated entries in MySQL via gorm.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

// Store implements every engine boundary interface on one database.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects using DB_USER, DB_PASSWORD, DB_HOST, DB_PORT and
// DB_NAME, read from the environment (a .env file is honored).
func Open() (*Store, error) {
	godotenv.Load()

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user == "" || host == "" || name == "" {
		return nil, errors.New("DB_USER, DB_HOST and DB_NAME must be set")
	}
	if port == "" {
		port = "3306"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, host, port, name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to mysql: %w", err)
	}
	return NewStore(db), nil
}

// AutoMigrate creates or updates the engine's tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&rawRowRecord{},
		&parsingRuleRecord{},
		&counterpartyRecord{},
		&paymentPlanRecord{},
		&currencyRecord{},
		&exchangeRateRecord{},
		&entryRecord{},
	)
}

// UnprocessedRows returns pending rows in run order.
func (s *Store) UnprocessedRows(ctx context.Context) ([]model.RawRow, error) {
	var recs []rawRowRecord
	err := s.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("document_key, entry_no").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("selecting unprocessed rows: %w", err)
	}

	rows := make([]model.RawRow, len(recs))
	for i, rec := range recs {
		rows[i] = rec.toModel()
	}
	// Value dates are stored as text; run order is decided after
	// parsing, not by string collation.
	model.SortRowsForRun(rows)
	return rows, nil
}

// Rules returns one scheme's rules in declared order.
func (s *Store) Rules(ctx context.Context, scheme string) ([]model.ParsingRule, error) {
	var recs []parsingRuleRecord
	err := s.db.WithContext(ctx).
		Where("scheme = ?", scheme).
		Order("sequence").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("selecting rules for scheme %q: %w", scheme, err)
	}

	rules := make([]model.ParsingRule, len(recs))
	for i, rec := range recs {
		rules[i] = rec.toModel()
	}
	return rules, nil
}

// Counterparties returns the counterparty table.
func (s *Store) Counterparties(ctx context.Context) ([]model.Counterparty, error) {
	var recs []counterpartyRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("selecting counterparties: %w", err)
	}
	out := make([]model.Counterparty, len(recs))
	for i, rec := range recs {
		out[i] = model.Counterparty{ID: rec.ID, TaxID: rec.TaxID, Name: rec.Name}
	}
	return out, nil
}

// PaymentPlans returns the payment-plan table.
func (s *Store) PaymentPlans(ctx context.Context) ([]model.PaymentPlan, error) {
	var recs []paymentPlanRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("selecting payment plans: %w", err)
	}
	out := make([]model.PaymentPlan, len(recs))
	for i, rec := range recs {
		out[i] = model.PaymentPlan{
			ID:             rec.ID,
			CounterpartyID: rec.CounterpartyID,
			CategoryID:     rec.CategoryID,
			CurrencyID:     rec.CurrencyID,
			ProjectID:      rec.ProjectID,
		}
	}
	return out, nil
}

// Currencies returns the currency table.
func (s *Store) Currencies(ctx context.Context) ([]model.Currency, error) {
	var recs []currencyRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("selecting currencies: %w", err)
	}
	out := make([]model.Currency, len(recs))
	for i, rec := range recs {
		out[i] = model.Currency{ID: rec.ID, Code: rec.Code}
	}
	return out, nil
}

// ExchangeRates returns the daily rate table.
func (s *Store) ExchangeRates(ctx context.Context) ([]model.ExchangeRate, error) {
	var recs []exchangeRateRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("selecting exchange rates: %w", err)
	}
	out := make([]model.ExchangeRate, len(recs))
	for i, rec := range recs {
		out[i] = model.ExchangeRate{Date: rec.Date, CurrencyID: rec.CurrencyID, Rate: rec.Rate}
	}
	return out, nil
}

// Exists reports whether an entry already covers the natural key.
func (s *Store) Exists(ctx context.Context, key model.NaturalKey) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entryRecord{}).
		Where("document_key = ? AND entry_no = ?", key.DocumentKey, key.EntryNo).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking entry for %s: %w", key, err)
	}
	return count > 0, nil
}

// Consolidate inserts the entry and marks its source row processed in
// one transaction. Either both halves commit or neither does.
func (s *Store) Consolidate(ctx context.Context, entry model.ConsolidatedEntry) error {
	rec := newEntryRecord(entry)
	key := entry.Key()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("inserting entry %s: %w", key, err)
		}
		res := tx.Model(&rawRowRecord{}).
			Where("document_key = ? AND entry_no = ?", key.DocumentKey, key.EntryNo).
			Update("processed", true)
		if res.Error != nil {
			return fmt.Errorf("marking row %s processed: %w", key, res.Error)
		}
		return nil
	})
}
