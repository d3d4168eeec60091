package query

import (
	"strconv"
	"strings"

	"github.com/jacoelho/vq/value"
)

type parserState struct {
	tokens []token
	pos    int
}

// parseExpression builds the syntax tree for source. Operator precedence,
// loosest to tightest: `|` < `,` < `//` < `or` < `and` < comparisons <
// additive < multiplicative < unary < postfix < primary.
func parseExpression(source string) (Expr, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	state := parserState{tokens: tokens}
	if state.current().typ == tokenEOF {
		return nil, &ParseError{Offset: state.current().pos, Expected: "an expression"}
	}

	root, err := state.parsePipe()
	if err != nil {
		return nil, err
	}

	if tok := state.current(); tok.typ != tokenEOF {
		return nil, &ParseError{Offset: tok.pos, Expected: "end of input"}
	}

	return root, nil
}

func (p *parserState) parsePipe() (Expr, error) {
	left, err := p.parseComma()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenPipe {
		p.advance()
		right, err := p.parseComma()
		if err != nil {
			return nil, err
		}
		left = &Pipe{Left: left, Right: right}
	}

	return left, nil
}

func (p *parserState) parseComma() (Expr, error) {
	left, err := p.parseAlternative()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenComma {
		p.advance()
		right, err := p.parseAlternative()
		if err != nil {
			return nil, err
		}
		left = &Comma{Left: left, Right: right}
	}

	return left, nil
}

func (p *parserState) parseAlternative() (Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenAlternative {
		p.advance()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = &Alternative{Left: left, Right: right}
	}

	return left, nil
}

func (p *parserState) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpOr, Left: left, Right: right}
	}

	return left, nil
}

func (p *parserState) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenAnd {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpAnd, Left: left, Right: right}
	}

	return left, nil
}

var comparisonOps = map[tokenType]BinaryOp{
	tokenEqual:        OpEqual,
	tokenNotEqual:     OpNotEqual,
	tokenLess:         OpLess,
	tokenLessEqual:    OpLessEqual,
	tokenGreater:      OpGreater,
	tokenGreaterEqual: OpGreaterEqual,
}

func (p *parserState) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := comparisonOps[p.current().typ]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parserState) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.current().typ {
		case tokenPlus:
			op = OpAdd
		case tokenMinus:
			op = OpSubtract
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parserState) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.current().typ {
		case tokenStar:
			op = OpMultiply
		case tokenSlash:
			op = OpDivide
		case tokenPercent:
			op = OpModulo
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parserState) parseUnary() (Expr, error) {
	switch p.current().typ {
	case tokenMinus:
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Negate{Expr: right}, nil
	case tokenNot:
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Expr: right}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any chain of field
// accesses, index/slice/iterate brackets and `?` suffixes. Chains build as
// pipes, so `.a.b` is Pipe(Field a, Field b).
func (p *parserState) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current().typ {
		case tokenDot:
			if p.peek().typ != tokenIdent {
				return nil, &ParseError{Offset: p.peek().pos, Expected: "a field name after '.'"}
			}
			p.advance()
			name := p.advance().literal
			expr = &Pipe{Left: expr, Right: &Field{Name: name}}
		case tokenLBracket:
			suffix, err := p.parseBracketSuffix()
			if err != nil {
				return nil, err
			}
			expr = &Pipe{Left: expr, Right: suffix}
		case tokenQuestion:
			p.advance()
			expr = &Optional{Expr: expr}
		default:
			return expr, nil
		}
	}
}

// parseBracketSuffix parses the bracket forms `[]`, `["name"]`, `[e]` and
// `[lo:hi]` with the opening bracket as the current token.
func (p *parserState) parseBracketSuffix() (Expr, error) {
	p.advance() // consume '['

	switch {
	case p.current().typ == tokenRBracket:
		p.advance()
		return &Iterate{}, nil

	case p.current().typ == tokenString && p.peek().typ == tokenRBracket:
		name := p.advance().literal
		p.advance()
		return &Field{Name: name}, nil

	case p.current().typ == tokenColon:
		p.advance()
		upper, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRBracket, "']' to close slice"); err != nil {
			return nil, err
		}
		return &Slice{Upper: upper}, nil
	}

	first, err := p.parsePipe()
	if err != nil {
		return nil, err
	}

	if p.current().typ == tokenColon {
		p.advance()
		if p.current().typ == tokenRBracket {
			p.advance()
			return &Slice{Lower: first}, nil
		}
		upper, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRBracket, "']' to close slice"); err != nil {
			return nil, err
		}
		return &Slice{Lower: first, Upper: upper}, nil
	}

	if err := p.expect(tokenRBracket, "']' to close index"); err != nil {
		return nil, err
	}
	return &Index{Expr: first}, nil
}

func (p *parserState) parsePrimary() (Expr, error) {
	tok := p.current()
	switch tok.typ {
	case tokenDot:
		p.advance()
		if p.current().typ == tokenIdent {
			name := p.advance().literal
			return &Field{Name: name}, nil
		}
		return &Identity{}, nil
	case tokenNumber:
		p.advance()
		return numberLiteral(tok.literal, tok.pos)
	case tokenString:
		p.advance()
		return &Literal{Value: value.String(tok.literal)}, nil
	case tokenTrue:
		p.advance()
		return &Literal{Value: value.Bool(true)}, nil
	case tokenFalse:
		p.advance()
		return &Literal{Value: value.Bool(false)}, nil
	case tokenNull:
		p.advance()
		return &Literal{Value: value.Null{}}, nil
	case tokenLParen:
		p.advance()
		expr, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case tokenLBracket:
		return p.parseArrayConstruct()
	case tokenLBrace:
		return p.parseObjectConstruct()
	case tokenIf:
		return p.parseIf()
	case tokenIdent:
		return p.parseCall()
	default:
		return nil, &ParseError{Offset: tok.pos, Expected: "an expression"}
	}
}

func (p *parserState) parseArrayConstruct() (Expr, error) {
	p.advance() // consume '['

	if p.current().typ == tokenRBracket {
		p.advance()
		return &ArrayConstruct{}, nil
	}

	inner, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokenRBracket, "']' to close array"); err != nil {
		return nil, err
	}
	return &ArrayConstruct{Expr: inner}, nil
}

func (p *parserState) parseObjectConstruct() (Expr, error) {
	p.advance() // consume '{'

	construct := &ObjectConstruct{}
	if p.current().typ == tokenRBrace {
		p.advance()
		return construct, nil
	}

	for {
		entry, err := p.parseObjectEntry()
		if err != nil {
			return nil, err
		}
		construct.Entries = append(construct.Entries, entry)

		if p.current().typ == tokenComma {
			p.advance()
			continue
		}
		break
	}

	if err := p.expect(tokenRBrace, "'}' to close object"); err != nil {
		return nil, err
	}
	return construct, nil
}

// Object keys are bare identifiers, string literals or parenthesized
// expressions; values parse below the comma level so entries separate
// cleanly.
func (p *parserState) parseObjectEntry() (ObjectEntry, error) {
	var key Expr
	switch tok := p.current(); tok.typ {
	case tokenIdent:
		p.advance()
		key = &Literal{Value: value.String(tok.literal)}
	case tokenString:
		p.advance()
		key = &Literal{Value: value.String(tok.literal)}
	case tokenLParen:
		p.advance()
		inner, err := p.parsePipe()
		if err != nil {
			return ObjectEntry{}, err
		}
		if err := p.expect(tokenRParen, "')'"); err != nil {
			return ObjectEntry{}, err
		}
		key = inner
	default:
		return ObjectEntry{}, &ParseError{Offset: tok.pos, Expected: "an object key"}
	}

	if err := p.expect(tokenColon, "':' after object key"); err != nil {
		return ObjectEntry{}, err
	}

	val, err := p.parseAlternative()
	if err != nil {
		return ObjectEntry{}, err
	}

	return ObjectEntry{Key: key, Value: val}, nil
}

// parseIf desugars elif chains into nested If nodes hanging off Else.
func (p *parserState) parseIf() (Expr, error) {
	p.advance() // consume 'if'

	cond, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokenThen, "'then'"); err != nil {
		return nil, err
	}
	then, err := p.parsePipe()
	if err != nil {
		return nil, err
	}

	root := &If{Cond: cond, Then: then}
	leaf := root

	for p.current().typ == tokenElif {
		p.advance()
		elifCond, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenThen, "'then'"); err != nil {
			return nil, err
		}
		elifThen, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		next := &If{Cond: elifCond, Then: elifThen}
		leaf.Else = next
		leaf = next
	}

	if p.current().typ == tokenElse {
		p.advance()
		elseExpr, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		leaf.Else = elseExpr
	}

	if err := p.expect(tokenEnd, "'end'"); err != nil {
		return nil, err
	}
	return root, nil
}

// parseCall parses a builtin invocation. Argument counts for known
// builtins are validated here so bad arities surface at compile time;
// unknown names are deferred to evaluation.
func (p *parserState) parseCall() (Expr, error) {
	name := p.advance().literal

	var args []Expr
	if p.current().typ == tokenLParen {
		p.advance()
		arg, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRParen, "')' to close arguments"); err != nil {
			return nil, err
		}
		args = []Expr{arg}
	}

	if fn, ok := builtins[name]; ok && fn.arity != len(args) {
		return nil, &ArityError{Name: name, Expected: fn.arity, Got: len(args)}
	}

	return &Call{Name: name, Args: args}, nil
}

func numberLiteral(literal string, pos int) (Expr, error) {
	if !strings.ContainsAny(literal, ".eE") {
		if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return &Literal{Value: value.Int(i)}, nil
		}
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return nil, &ParseError{Offset: pos, Expected: "a valid number literal"}
	}
	return &Literal{Value: value.Float(f)}, nil
}

func (p *parserState) expect(typ tokenType, expected string) error {
	if p.current().typ != typ {
		return &ParseError{Offset: p.current().pos, Expected: expected}
	}
	p.advance()
	return nil
}

func (p *parserState) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *parserState) peek() token {
	if p.pos+1 >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tokens)}
	}
	return p.tokens[p.pos+1]
}

func (p *parserState) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}
