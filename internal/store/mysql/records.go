package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

type rawRowRecord struct {
	ID                   int             `gorm:"primary_key"`
	DocumentKey          string          `gorm:"size:64;not null;uniqueIndex:idx_natural_key,priority:1"`
	EntryNo              int             `gorm:"not null;uniqueIndex:idx_natural_key,priority:2"`
	Debit                decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	Credit               decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	PayerName            string          `gorm:"size:255"`
	PayerTaxID           string          `gorm:"size:32;index"`
	PayerAccount         string          `gorm:"size:64"`
	BeneficiaryName      string          `gorm:"size:255"`
	BeneficiaryTaxID     string          `gorm:"size:32;index"`
	BeneficiaryAccount   string          `gorm:"size:64"`
	CorrespondentAccount string          `gorm:"size:64"`
	Memo                 string          `gorm:"type:text"`
	ValueDateText        string          `gorm:"size:32"`
	BookingDateText      string          `gorm:"size:32"`
	DebitCurrency        string          `gorm:"size:3"`
	CreditCurrency       string          `gorm:"size:3"`
	Processed            bool            `gorm:"index;not null;default:false"`
	CreatedAt            time.Time       `gorm:"autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime"`
}

func (rawRowRecord) TableName() string { return "raw_transaction_rows" }

func (r rawRowRecord) toModel() model.RawRow {
	return model.RawRow{
		DocumentKey:          r.DocumentKey,
		EntryNo:              r.EntryNo,
		Debit:                r.Debit,
		Credit:               r.Credit,
		PayerName:            r.PayerName,
		PayerTaxID:           r.PayerTaxID,
		PayerAccount:         r.PayerAccount,
		BeneficiaryName:      r.BeneficiaryName,
		BeneficiaryTaxID:     r.BeneficiaryTaxID,
		BeneficiaryAccount:   r.BeneficiaryAccount,
		CorrespondentAccount: r.CorrespondentAccount,
		Memo:                 r.Memo,
		ValueDateText:        r.ValueDateText,
		BookingDateText:      r.BookingDateText,
		DebitCurrency:        r.DebitCurrency,
		CreditCurrency:       r.CreditCurrency,
		Processed:            r.Processed,
	}
}

type parsingRuleRecord struct {
	ID             int       `gorm:"primary_key"`
	Scheme         string    `gorm:"size:64;index;not null"`
	Sequence       int       `gorm:"not null"`
	Formula        string    `gorm:"type:text"`
	ConditionCol   string    `gorm:"size:64"`
	ConditionVal   string    `gorm:"size:255"`
	CounterpartyID int       `gorm:"default:0"`
	CategoryID     int       `gorm:"default:0"`
	CurrencyID     int       `gorm:"default:0"`
	PaymentPlanID  string    `gorm:"size:64"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (parsingRuleRecord) TableName() string { return "parsing_rules" }

func (r parsingRuleRecord) toModel() model.ParsingRule {
	return model.ParsingRule{
		Scheme:         r.Scheme,
		Sequence:       r.Sequence,
		Formula:        r.Formula,
		Column:         r.ConditionCol,
		Literal:        r.ConditionVal,
		CounterpartyID: r.CounterpartyID,
		CategoryID:     r.CategoryID,
		CurrencyID:     r.CurrencyID,
		PaymentPlanID:  r.PaymentPlanID,
	}
}

type counterpartyRecord struct {
	ID        int       `gorm:"primary_key"`
	TaxID     string    `gorm:"size:32;index"`
	Name      string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (counterpartyRecord) TableName() string { return "counterparties" }

type paymentPlanRecord struct {
	ID             string    `gorm:"primary_key;size:64"`
	CounterpartyID int       `gorm:"index;default:0"`
	CategoryID     int       `gorm:"default:0"`
	CurrencyID     int       `gorm:"default:0"`
	ProjectID      int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (paymentPlanRecord) TableName() string { return "payment_plans" }

type currencyRecord struct {
	ID        int       `gorm:"primary_key"`
	Code      string    `gorm:"size:3;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (currencyRecord) TableName() string { return "currencies" }

type exchangeRateRecord struct {
	ID         int             `gorm:"primary_key"`
	Date       time.Time       `gorm:"index;not null;uniqueIndex:idx_rate_day,priority:1"`
	CurrencyID int             `gorm:"not null;uniqueIndex:idx_rate_day,priority:2"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (exchangeRateRecord) TableName() string { return "exchange_rates" }

type entryRecord struct {
	ID                string          `gorm:"primary_key;size:36"`
	DocumentKey       string          `gorm:"size:64;not null;uniqueIndex:idx_entry_source,priority:1"`
	EntryNo           int             `gorm:"not null;uniqueIndex:idx_entry_source,priority:2"`
	AccountAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	NominalCurrencyID int             `gorm:"index;default:0"`
	NominalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	RateMissing       bool            `gorm:"not null;default:false"`
	CounterpartyID    *int            `gorm:"index"`
	CategoryID        *int
	ProjectID         *int
	PaymentPlanID     *string `gorm:"size:64;index"`
	ValueDate         time.Time       `gorm:"index;not null"`
	BookingDate       time.Time       `gorm:"not null"`
	Description       string          `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"autoCreateTime"`
}

func (entryRecord) TableName() string { return "consolidated_entries" }

// newEntryRecord maps unresolved (zero) ids to NULL columns.
func newEntryRecord(e model.ConsolidatedEntry) entryRecord {
	return entryRecord{
		ID:                e.ID.String(),
		DocumentKey:       e.DocumentKey,
		EntryNo:           e.EntryNo,
		AccountAmount:     e.AccountAmount,
		NominalCurrencyID: e.NominalCurrencyID,
		NominalAmount:     e.NominalAmount,
		RateMissing:       e.RateMissing,
		CounterpartyID:    nullableInt(e.CounterpartyID),
		CategoryID:        nullableInt(e.CategoryID),
		ProjectID:         nullableInt(e.ProjectID),
		PaymentPlanID:     nullableString(e.PaymentPlanID),
		ValueDate:         e.ValueDate,
		BookingDate:       e.BookingDate,
		Description:       e.Description,
	}
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
