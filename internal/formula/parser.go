package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

type parser struct {
	toks []token
	i    int
	cols map[string]bool
}

func columnSet(columns []string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[strings.ToLower(c)] = true
	}
	return set
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return token{}, &CompileError{Pos: tok.pos, Token: tok.text, Msg: "expected " + what}
	}
	return tok, nil
}

// operand is a compiled field reference or literal. Missing and blank
// field values both evaluate to the empty string.
type operand func(Row) string

// parseBool parses one boolean expression: either a function call or
// a comparison between two operands.
func (p *parser) parseBool() (Predicate, error) {
	tok := p.peek()
	if tok.kind == tokIdent && p.toks[p.i+1].kind == tokLParen {
		return p.parseCall()
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	opTok, err := p.expect(tokOp, "comparison operator")
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return compileComparison(opTok.text, left, right), nil
}

func (p *parser) parseCall() (Predicate, error) {
	nameTok := p.next()
	name := strings.ToLower(nameTok.text)
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}

	switch name {
	case "and", "or":
		args, err := p.parseBoolArgs()
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, &CompileError{Pos: nameTok.pos, Token: nameTok.text, Msg: "needs at least 2 arguments"}
		}
		if name == "and" {
			return func(r Row) bool {
				for _, arg := range args {
					if !arg(r) {
						return false
					}
				}
				return true
			}, nil
		}
		return func(r Row) bool {
			for _, arg := range args {
				if arg(r) {
					return true
				}
			}
			return false
		}, nil

	case "not":
		args, err := p.parseBoolArgs()
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, &CompileError{Pos: nameTok.pos, Token: nameTok.text, Msg: "needs exactly 1 argument"}
		}
		inner := args[0]
		return func(r Row) bool { return !inner(r) }, nil

	case "isblank":
		field, err := p.parseFieldRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return func(r Row) bool { return field(r) == "" }, nil

	case "search":
		needle, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, ","); err != nil {
			return nil, err
		}
		field, err := p.parseFieldRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return func(r Row) bool {
			return strings.Contains(strings.ToLower(field(r)), strings.ToLower(needle(r)))
		}, nil

	case "exact":
		left, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, ","); err != nil {
			return nil, err
		}
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return func(r Row) bool { return left(r) == right(r) }, nil
	}

	return nil, &CompileError{Pos: nameTok.pos, Token: nameTok.text, Msg: "unknown function"}
}

// parseBoolArgs parses a comma-separated list of boolean expressions
// up to the closing parenthesis.
func (p *parser) parseBoolArgs() ([]Predicate, error) {
	var args []Predicate
	for {
		arg, err := p.parseBool()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok := p.next()
		if tok.kind == tokRParen {
			return args, nil
		}
		if tok.kind != tokComma {
			return nil, &CompileError{Pos: tok.pos, Token: tok.text, Msg: "expected , or )"}
		}
	}
}

// parseFieldRef parses an operand that must be a field reference.
func (p *parser) parseFieldRef() (operand, error) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return nil, &CompileError{Pos: tok.pos, Token: tok.text, Msg: "expected a field reference"}
	}
	return p.parseOperand()
}

// parseOperand parses a field reference or a literal. Field references
// are validated against the declared column set here, at compile time.
func (p *parser) parseOperand() (operand, error) {
	tok := p.next()
	switch tok.kind {
	case tokIdent:
		name := strings.ToLower(tok.text)
		if !p.cols[name] {
			return nil, &CompileError{Pos: tok.pos, Token: tok.text, Msg: "unknown column"}
		}
		return func(r Row) string {
			v, _ := r.Field(name)
			return v
		}, nil
	case tokString, tokNumber:
		lit := tok.text
		return func(Row) string { return lit }, nil
	}
	return nil, &CompileError{Pos: tok.pos, Token: tok.text, Msg: "expected a field or literal"}
}

// compileComparison builds a predicate for one of = <> > < >= <=.
// When both sides parse as decimals the comparison is numeric,
// otherwise it falls back to string comparison.
func compileComparison(op string, left, right operand) Predicate {
	return func(r Row) bool {
		lv, rv := left(r), right(r)

		var cmp int
		ld, lerr := decimal.NewFromString(lv)
		rd, rerr := decimal.NewFromString(rv)
		if lerr == nil && rerr == nil {
			cmp = ld.Cmp(rd)
		} else {
			cmp = strings.Compare(lv, rv)
		}

		switch op {
		case "=":
			return cmp == 0
		case "<>":
			return cmp != 0
		case ">":
			return cmp > 0
		case "<":
			return cmp < 0
		case ">=":
			return cmp >= 0
		case "<=":
			return cmp <= 0
		}
		return false
	}
}
