package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NaturalKey identifies a raw statement row before any processing.
// Multiple rows may share a document key; the (key, entry) pair is the
// uniqueness boundary.
type NaturalKey struct {
	DocumentKey string
	EntryNo     int
}

func (k NaturalKey) String() string {
	return fmt.Sprintf("%s/%d", k.DocumentKey, k.EntryNo)
}

// RawRow is one bank-statement line as delivered by the ingester.
// Dates stay textual until the consolidation writer parses them, since
// statement exports use locale-specific formats.
type RawRow struct {
	DocumentKey          string
	EntryNo              int
	Debit                decimal.Decimal
	Credit               decimal.Decimal
	PayerName            string
	PayerTaxID           string
	PayerAccount         string
	BeneficiaryName      string
	BeneficiaryTaxID     string
	BeneficiaryAccount   string
	CorrespondentAccount string // authoritative counterparty account when present
	Memo                 string
	ValueDateText        string
	BookingDateText      string
	DebitCurrency        string
	CreditCurrency       string
	Processed            bool
}

// Key returns the row's natural key.
func (r *RawRow) Key() NaturalKey {
	return NaturalKey{DocumentKey: r.DocumentKey, EntryNo: r.EntryNo}
}

// Amount returns the signed account-currency amount (credit minus debit).
func (r *RawRow) Amount() decimal.Decimal {
	return r.Credit.Sub(r.Debit)
}

// Column names addressable from rule formulas. The formula compiler
// validates field references against exactly this list.
const (
	ColDocumentKey          = "document_key"
	ColDebit                = "debit"
	ColCredit               = "credit"
	ColPayerName            = "payer_name"
	ColPayerTaxID           = "payer_tax_id"
	ColPayerAccount         = "payer_account"
	ColBeneficiaryName      = "beneficiary_name"
	ColBeneficiaryTaxID     = "beneficiary_tax_id"
	ColBeneficiaryAccount   = "beneficiary_account"
	ColCorrespondentAccount = "correspondent_account"
	ColMemo                 = "memo"
	ColValueDate            = "value_date"
	ColBookingDate          = "booking_date"
	ColDebitCurrency        = "debit_currency"
	ColCreditCurrency       = "credit_currency"
)

// Columns returns every formula-addressable column name.
func Columns() []string {
	return []string{
		ColDocumentKey,
		ColDebit,
		ColCredit,
		ColPayerName,
		ColPayerTaxID,
		ColPayerAccount,
		ColBeneficiaryName,
		ColBeneficiaryTaxID,
		ColBeneficiaryAccount,
		ColCorrespondentAccount,
		ColMemo,
		ColValueDate,
		ColBookingDate,
		ColDebitCurrency,
		ColCreditCurrency,
	}
}

// Field returns the textual value of a named column. Amounts are
// rendered as plain decimal strings so formulas can compare them
// numerically. Unknown names return ok=false; the compiler rejects
// them long before evaluation.
func (r *RawRow) Field(name string) (string, bool) {
	switch name {
	case ColDocumentKey:
		return r.DocumentKey, true
	case ColDebit:
		return r.Debit.String(), true
	case ColCredit:
		return r.Credit.String(), true
	case ColPayerName:
		return r.PayerName, true
	case ColPayerTaxID:
		return r.PayerTaxID, true
	case ColPayerAccount:
		return r.PayerAccount, true
	case ColBeneficiaryName:
		return r.BeneficiaryName, true
	case ColBeneficiaryTaxID:
		return r.BeneficiaryTaxID, true
	case ColBeneficiaryAccount:
		return r.BeneficiaryAccount, true
	case ColCorrespondentAccount:
		return r.CorrespondentAccount, true
	case ColMemo:
		return r.Memo, true
	case ColValueDate:
		return r.ValueDateText, true
	case ColBookingDate:
		return r.BookingDateText, true
	case ColDebitCurrency:
		return r.DebitCurrency, true
	case ColCreditCurrency:
		return r.CreditCurrency, true
	}
	return "", false
}
