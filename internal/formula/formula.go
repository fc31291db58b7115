// Package formula compiles the boolean rule language into reusable
// predicates over named-field rows.
//
// The language is deliberately small: SEARCH, EXACT, AND, OR, NOT,
// ISBLANK and the six comparison operators, with bare identifiers as
// field references and quoted strings or numbers as literals. A
// formula is compiled once against a declared column set and the
// resulting predicate is evaluated per row with no re-parsing and no
// dynamic code of any kind — row values are never assembled into
// anything executable.
package formula

import "fmt"

// Row is the evaluation input: a record addressable by column name.
// A missing field is reported via ok=false and treated as blank.
type Row interface {
	Field(name string) (string, bool)
}

// Predicate is a compiled formula. Evaluation is pure: same row, same
// answer, no side effects, no panics on well-formed rows.
type Predicate func(Row) bool

// CompileError reports a rejected formula, pointing at the offending
// token.
type CompileError struct {
	Pos   int    // byte offset into the formula text
	Token string // offending token, "" at end of input
	Msg   string
}

func (e *CompileError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("formula: %s at offset %d", e.Msg, e.Pos)
	}
	return fmt.Sprintf("formula: %s at offset %d near %q", e.Msg, e.Pos, e.Token)
}

// Compile parses and validates a formula against the available column
// set. Unknown functions, field references outside columns, and arity
// mismatches are compile errors — a field typo must never silently
// evaluate to a constant.
func Compile(text string, columns []string) (Predicate, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, cols: columnSet(columns)}
	pred, err := p.parseBool()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &CompileError{Pos: tok.pos, Token: tok.text, Msg: "unexpected trailing input"}
	}
	return pred, nil
}
