package formula

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokOp // = <> > < >= <=
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++

		case r == '=':
			toks = append(toks, token{tokOp, "=", i})
			i++
		case r == '<':
			if i+1 < len(runes) && runes[i+1] == '>' {
				toks = append(toks, token{tokOp, "<>", i})
				i += 2
			} else if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{tokOp, "<=", i})
				i += 2
			} else {
				toks = append(toks, token{tokOp, "<", i})
				i++
			}
		case r == '>':
			if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{tokOp, ">=", i})
				i += 2
			} else {
				toks = append(toks, token{tokOp, ">", i})
				i++
			}

		case r == '"' || r == '\'':
			text, next, err := lexString(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, text, i})
			i = next

		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			toks = append(toks, token{tokNumber, string(runes[start:i]), start})

		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, string(runes[start:i]), start})

		default:
			return nil, &CompileError{Pos: i, Token: string(r), Msg: "unexpected character"}
		}
	}

	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

// lexString reads a quoted literal starting at runes[start]. Both
// quote styles are accepted; a backslash escapes the next rune.
func lexString(runes []rune, start int) (text string, next int, err error) {
	quote := runes[start]
	var b strings.Builder
	i := start + 1
	for i < len(runes) {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			b.WriteRune(runes[i+1])
			i += 2
			continue
		}
		if r == quote {
			return b.String(), i + 1, nil
		}
		b.WriteRune(r)
		i++
	}
	return "", 0, &CompileError{Pos: start, Token: string(quote), Msg: "unterminated string literal"}
}
