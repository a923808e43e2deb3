package services

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lexFormula splits formula text into tokens. Identifiers are a letter or
// underscore followed by letters, digits or underscores, so a token is always
// a whole word: "w" is never found inside "width".
func lexFormula(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case isDigit(c) || c == '.':
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i < len(src) && src[i] == '.' {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			text := src[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrMalformedExpression, text, start)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n, pos: start})
		default:
			kind, ok := operatorTokens[c]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrMalformedExpression, c, i)
			}
			toks = append(toks, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

var operatorTokens = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'(': tokLParen,
	')': tokRParen,
}

// arithParser evaluates a token stream that contains only numbers, the four
// binary operators, unary sign and parentheses.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | factor
//	factor = number | "(" expr ")"
type arithParser struct {
	toks  []token
	pos   int
	depth int
}

// maxFormulaDepth bounds nested signs and parentheses.
const maxFormulaDepth = 256

// enter tracks one level of nesting and fails past maxFormulaDepth.
func (p *arithParser) enter() error {
	p.depth++
	if p.depth > maxFormulaDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrMalformedExpression, maxFormulaDepth)
	}
	return nil
}

func (p *arithParser) peek() token {
	return p.toks[p.pos]
}

func (p *arithParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func evalTokens(toks []token) (float64, error) {
	p := &arithParser{toks: toks}
	if p.peek().kind == tokEOF {
		return 0, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrMalformedExpression, t.text, t.pos)
	}
	return v, nil
}

func (p *arithParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			r, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += r
		case tokMinus:
			p.next()
			r, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (p *arithParser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			r, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= r
		case tokSlash:
			p.next()
			r, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			// IEEE division: x/0 is ±Inf and 0/0 is NaN, both rejected by the caller.
			v /= r
		default:
			return v, nil
		}
	}
}

func (p *arithParser) parseUnary() (float64, error) {
	switch p.peek().kind {
	case tokPlus, tokMinus:
		neg := p.next().kind == tokMinus
		if err := p.enter(); err != nil {
			return 0, err
		}
		v, err := p.parseUnary()
		p.depth--
		if err != nil {
			return 0, err
		}
		if neg {
			v = -v
		}
		return v, nil
	}
	return p.parseFactor()
}

func (p *arithParser) parseFactor() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.num, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return 0, err
		}
		v, err := p.parseExpr()
		p.depth--
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, fmt.Errorf("%w: missing ) at %d", ErrMalformedExpression, closing.pos)
		}
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrMalformedExpression)
	default:
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrMalformedExpression, t.text, t.pos)
	}
}
