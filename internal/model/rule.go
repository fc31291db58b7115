package model

// ParsingRule classifies statement rows within a named scheme. Rules
// are evaluated in ascending Sequence order; the first satisfied rule
// wins and short-circuits the rest.
//
// A rule's condition is either a formula (Formula non-empty) or a
// legacy literal equality (Column = Literal). Bound identity fields
// use zero as "unbound".
type ParsingRule struct {
	Scheme   string
	Sequence int

	Formula string // boolean formula over Columns(); empty for legacy rules
	Column  string // legacy condition: column name
	Literal string // legacy condition: exact value

	CounterpartyID int
	CategoryID     int
	CurrencyID     int
	PaymentPlanID  string // adopt this plan's whole identity bundle when set
}

// IsLegacy reports whether the rule uses a literal column condition
// instead of a formula.
func (r ParsingRule) IsLegacy() bool {
	return r.Formula == ""
}
