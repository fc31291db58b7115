// Package consolidate drives the batch: it turns each unprocessed
// statement row into exactly one consolidated entry, idempotently.
package consolidate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ledgerline-dev/ledgerline/internal/fx"
	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/resolver"
	"github.com/ledgerline-dev/ledgerline/internal/store"
)

// Writer processes one partition's unprocessed rows to completion.
// Reference data and rules are frozen in the resolver for the run;
// persistence of each row is a single commit, so the loop can be
// interrupted between rows without leaving half a row behind.
type Writer struct {
	rows     store.RowSource
	sink     store.EntrySink
	resolver *resolver.Resolver
	fx       *fx.Normalizer
	log      *logrus.Logger
}

// NewWriter creates a Writer.
func NewWriter(rows store.RowSource, sink store.EntrySink, res *resolver.Resolver, norm *fx.Normalizer, log *logrus.Logger) *Writer {
	return &Writer{rows: rows, sink: sink, resolver: res, fx: norm, log: log}
}

// Run executes the batch. The returned summary is valid even when err
// is non-nil: rows committed before a fatal store error stay
// committed and the run is resumable.
func (w *Writer) Run(ctx context.Context) (*model.Summary, error) {
	summary := &model.Summary{}

	rows, err := w.rows.UnprocessedRows(ctx)
	if err != nil {
		return summary, fmt.Errorf("selecting unprocessed rows: %w", err)
	}

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := w.processRow(ctx, &rows[i], summary); err != nil {
			return summary, err
		}
	}

	if w.log != nil {
		w.log.WithFields(logrus.Fields{
			"selected":          summary.Selected,
			"written":           summary.Written,
			"by_rule":           summary.MatchedByRule,
			"by_payment_memo":   summary.MatchedByPaymentMemo,
			"by_tax_id":         summary.MatchedByTaxID,
			"unmatched":         summary.Unmatched,
			"skipped_duplicate": summary.SkippedDuplicate,
			"skipped_bad_date":  summary.SkippedInvalidDate,
			"rate_missing":      summary.RateMissing,
		}).Info("batch complete")
	}
	return summary, nil
}

func (w *Writer) processRow(ctx context.Context, row *model.RawRow, summary *model.Summary) error {
	summary.Selected++
	key := row.Key()

	exists, err := w.sink.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("checking entry for %s: %w", key, err)
	}
	if exists {
		// Already consolidated, possibly on an earlier interrupted
		// run. Not an error.
		summary.SkippedDuplicate++
		return nil
	}

	valueDate, err := model.ParseStatementDate(row.ValueDateText)
	if err != nil {
		w.skipBadDate(summary, key, "value date: "+err.Error())
		return nil
	}
	bookingDate, err := model.ParseStatementDate(row.BookingDateText)
	if err != nil {
		w.skipBadDate(summary, key, "booking date: "+err.Error())
		return nil
	}

	res := w.resolver.Resolve(row)
	summary.Diagnostics = append(summary.Diagnostics, res.Diagnostics...)

	nominal, rateMissing := w.fx.Normalize(res.Amount, res.Identity.CurrencyID, valueDate)
	if rateMissing {
		summary.RateMissing++
		summary.Diagnostics = append(summary.Diagnostics, model.Diagnostic{
			Kind:   model.DiagRateMissing,
			Key:    key,
			Detail: fmt.Sprintf("no rate for currency %d on %s, amount unconverted", res.Identity.CurrencyID, valueDate.Format("2006-01-02")),
		})
	}

	entry := model.ConsolidatedEntry{
		ID:                EntryID(key),
		DocumentKey:       row.DocumentKey,
		EntryNo:           row.EntryNo,
		AccountAmount:     res.Amount,
		NominalCurrencyID: res.Identity.CurrencyID,
		NominalAmount:     nominal,
		RateMissing:       rateMissing,
		CounterpartyID:    res.Identity.CounterpartyID,
		CategoryID:        res.Identity.CategoryID,
		ProjectID:         res.Identity.ProjectID,
		PaymentPlanID:     res.Identity.PaymentPlanID,
		ValueDate:         valueDate,
		BookingDate:       bookingDate,
		Description:       row.Memo,
	}

	if err := w.sink.Consolidate(ctx, entry); err != nil {
		return fmt.Errorf("consolidating %s: %w", key, err)
	}

	summary.Written++
	switch res.MatchedBy {
	case model.MatchedByRule:
		summary.MatchedByRule++
	case model.MatchedByPaymentMemo:
		summary.MatchedByPaymentMemo++
	case model.MatchedByTaxID:
		summary.MatchedByTaxID++
	default:
		summary.Unmatched++
	}
	return nil
}

func (w *Writer) skipBadDate(summary *model.Summary, key model.NaturalKey, detail string) {
	// The row keeps its unprocessed flag so it can be fixed and
	// picked up by a later run.
	summary.SkippedInvalidDate++
	summary.Diagnostics = append(summary.Diagnostics, model.Diagnostic{
		Kind:   model.DiagInvalidDate,
		Key:    key,
		Detail: detail,
	})
	if w.log != nil {
		w.log.WithFields(logrus.Fields{"row": key.String()}).Warnf("skipping row: %s", detail)
	}
}
