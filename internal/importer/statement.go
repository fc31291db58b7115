package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

// StatementParser parses the engine's plain statement CSV export.
// Dates stay textual; the consolidation writer parses and validates
// them per row.
type StatementParser struct{}

const (
	stmtNumFields     = 16
	stmtColDocKey     = 0
	stmtColEntryNo    = 1
	stmtColDebit      = 2
	stmtColCredit     = 3
	stmtColPayerName  = 4
	stmtColPayerTax   = 5
	stmtColPayerAcct  = 6
	stmtColBenefName  = 7
	stmtColBenefTax   = 8
	stmtColBenefAcct  = 9
	stmtColCorrAcct   = 10
	stmtColMemo       = 11
	stmtColValueDate  = 12
	stmtColBookDate   = 13
	stmtColDebitCurr  = 14
	stmtColCreditCurr = 15
)

// Format returns the parser name.
func (p *StatementParser) Format() string { return "statement" }

// Parse reads a statement CSV and returns raw rows.
func (p *StatementParser) Parse(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = stmtNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var rows []model.RawRow
	for i, rec := range records[1:] {
		row, err := parseStatementRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseStatementRow(rec []string) (model.RawRow, error) {
	entryNo, err := strconv.Atoi(rec[stmtColEntryNo])
	if err != nil {
		return model.RawRow{}, fmt.Errorf("parsing entry_no %q: %w", rec[stmtColEntryNo], err)
	}

	debit, err := parseAmount(rec[stmtColDebit])
	if err != nil {
		return model.RawRow{}, fmt.Errorf("parsing debit %q: %w", rec[stmtColDebit], err)
	}
	credit, err := parseAmount(rec[stmtColCredit])
	if err != nil {
		return model.RawRow{}, fmt.Errorf("parsing credit %q: %w", rec[stmtColCredit], err)
	}

	return model.RawRow{
		DocumentKey:          rec[stmtColDocKey],
		EntryNo:              entryNo,
		Debit:                debit,
		Credit:               credit,
		PayerName:            rec[stmtColPayerName],
		PayerTaxID:           rec[stmtColPayerTax],
		PayerAccount:         rec[stmtColPayerAcct],
		BeneficiaryName:      rec[stmtColBenefName],
		BeneficiaryTaxID:     rec[stmtColBenefTax],
		BeneficiaryAccount:   rec[stmtColBenefAcct],
		CorrespondentAccount: rec[stmtColCorrAcct],
		Memo:                 rec[stmtColMemo],
		ValueDateText:        rec[stmtColValueDate],
		BookingDateText:      rec[stmtColBookDate],
		DebitCurrency:        rec[stmtColDebitCurr],
		CreditCurrency:       rec[stmtColCreditCurr],
	}, nil
}

func parseAmount(text string) (decimal.Decimal, error) {
	if text == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(text)
}
