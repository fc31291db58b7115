// Package resolver works out who a statement row belongs to: the
// counterparty, payment plan, financial category, project and nominal
// currency for one raw row.
package resolver

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/refdata"
	"github.com/ledgerline-dev/ledgerline/internal/rules"
)

// Resolver resolves identities for one batch. Reference data and the
// compiled rule set are fixed for the run.
type Resolver struct {
	rules             *rules.Evaluator
	ref               *refdata.Snapshot
	accountCurrencyID int
	log               *logrus.Logger
}

// New creates a Resolver for one account partition.
func New(evaluator *rules.Evaluator, ref *refdata.Snapshot, accountCurrencyID int, log *logrus.Logger) *Resolver {
	return &Resolver{
		rules:             evaluator,
		ref:               ref,
		accountCurrencyID: accountCurrencyID,
		log:               log,
	}
}

// Resolution is the outcome for one row. Unresolved identity fields
// stay zero and are written as nulls; that is legitimate, not an
// error.
type Resolution struct {
	Amount      decimal.Decimal
	Direction   model.Direction
	Identity    model.Identity
	MatchedBy   model.MatchSource
	Diagnostics []model.Diagnostic
}

// Resolve runs the per-row state machine, strictly ordered:
//
//  1. signed amount and direction;
//  2. best-effort counterparty fallback by the relevant party's tax id;
//  3. rule match — a referenced payment plan overrides everything, a
//     plain rule contributes only its own bound fields;
//  4. otherwise an exact memo-text payment lookup, vetoed when it
//     contradicts a known tax-id counterparty;
//  5. nominal currency defaults to the account's own currency.
func (r *Resolver) Resolve(row *model.RawRow) Resolution {
	res := Resolution{
		Amount:    row.Amount(),
		MatchedBy: model.MatchedNone,
	}
	if res.Amount.IsPositive() {
		res.Direction = model.DirectionIncoming
	} else {
		res.Direction = model.DirectionOutgoing
	}

	// The money's far side: the payer on incoming rows, the
	// beneficiary on outgoing ones.
	taxID := row.BeneficiaryTaxID
	if res.Direction == model.DirectionIncoming {
		taxID = row.PayerTaxID
	}
	fallback, haveFallback := r.ref.CounterpartyByTaxID(taxID)

	if rule, ok := r.rules.Match(row); ok {
		r.applyRule(row, rule, fallback, haveFallback, &res)
	} else {
		r.applyMemoLookup(row, fallback, haveFallback, &res)
	}

	if res.Identity.CurrencyID == 0 {
		res.Identity.CurrencyID = r.accountCurrencyID
	}
	return res
}

func (r *Resolver) applyRule(row *model.RawRow, rule model.ParsingRule, fallback model.Counterparty, haveFallback bool, res *Resolution) {
	res.MatchedBy = model.MatchedByRule

	if rule.PaymentPlanID != "" {
		if plan, ok := r.ref.Plan(rule.PaymentPlanID); ok {
			// The plan's bundle wins outright, tax-id fallback included.
			res.Identity = planIdentity(plan)
			return
		}
		res.Diagnostics = append(res.Diagnostics, model.Diagnostic{
			Kind:   model.DiagDanglingPaymentPlan,
			Key:    row.Key(),
			Detail: fmt.Sprintf("rule %d references unknown payment plan %q", rule.Sequence, rule.PaymentPlanID),
		})
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"row":  row.Key().String(),
				"rule": rule.Sequence,
				"plan": rule.PaymentPlanID,
			}).Warn("rule references unknown payment plan, using rule's own bindings")
		}
	}

	// Only the fields the rule binds; counterparty keeps the tax-id
	// fallback when the rule leaves it open.
	res.Identity.CounterpartyID = rule.CounterpartyID
	if res.Identity.CounterpartyID == 0 && haveFallback {
		res.Identity.CounterpartyID = fallback.ID
	}
	res.Identity.CategoryID = rule.CategoryID
	res.Identity.CurrencyID = rule.CurrencyID
}

func (r *Resolver) applyMemoLookup(row *model.RawRow, fallback model.Counterparty, haveFallback bool, res *Resolution) {
	plan, ok := r.ref.Plan(strings.TrimSpace(row.Memo))
	if !ok {
		if haveFallback {
			res.Identity.CounterpartyID = fallback.ID
			res.MatchedBy = model.MatchedByTaxID
		}
		return
	}

	if haveFallback && plan.CounterpartyID != fallback.ID {
		// A memo that happens to equal a payment id must not override
		// an identity worked out from the tax id. Keep the tax-id
		// counterparty, drop the plan match entirely.
		res.Identity.CounterpartyID = fallback.ID
		res.MatchedBy = model.MatchedByTaxID
		res.Diagnostics = append(res.Diagnostics, model.Diagnostic{
			Kind: model.DiagCounterpartyClash,
			Key:  row.Key(),
			Detail: fmt.Sprintf("memo matches payment plan %s (counterparty %d) but tax id resolves counterparty %d",
				plan.ID, plan.CounterpartyID, fallback.ID),
		})
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"row":  row.Key().String(),
				"plan": plan.ID,
			}).Warn("memo payment match contradicts tax-id counterparty, tax id wins")
		}
		return
	}

	res.Identity = planIdentity(plan)
	res.MatchedBy = model.MatchedByPaymentMemo
}

func planIdentity(plan model.PaymentPlan) model.Identity {
	return model.Identity{
		CounterpartyID: plan.CounterpartyID,
		CategoryID:     plan.CategoryID,
		CurrencyID:     plan.CurrencyID,
		ProjectID:      plan.ProjectID,
		PaymentPlanID:  plan.ID,
	}
}
