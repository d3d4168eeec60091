package query

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenDot
	tokenPipe
	tokenComma
	tokenLBracket
	tokenRBracket
	tokenLBrace
	tokenRBrace
	tokenLParen
	tokenRParen
	tokenColon
	tokenQuestion
	tokenAlternative // //
	tokenEqual
	tokenNotEqual
	tokenLessEqual
	tokenGreaterEqual
	tokenLess
	tokenGreater
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenIf
	tokenThen
	tokenElif
	tokenElse
	tokenEnd
	tokenAnd
	tokenOr
	tokenNot
	tokenTrue
	tokenFalse
	tokenNull
)

type token struct {
	typ     tokenType
	literal string
	pos     int
}

var keywords = map[string]tokenType{
	"if":    tokenIf,
	"then":  tokenThen,
	"elif":  tokenElif,
	"else":  tokenElse,
	"end":   tokenEnd,
	"and":   tokenAnd,
	"or":    tokenOr,
	"not":   tokenNot,
	"true":  tokenTrue,
	"false": tokenFalse,
	"null":  tokenNull,
}

// lex scans source left to right into a flat token stream terminated by a
// tokenEOF. Token positions are byte offsets into source.
func lex(source string) ([]token, error) {
	tokens := make([]token, 0, len(source)/2)
	pos := 0

	for pos < len(source) {
		r, size := utf8.DecodeRuneInString(source[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}

		if isIdentifierStart(r) {
			start := pos
			pos += size
			for pos < len(source) {
				r, size := utf8.DecodeRuneInString(source[pos:])
				if !isIdentifierPart(r) {
					break
				}
				pos += size
			}
			literal := source[start:pos]
			if typ, ok := keywords[literal]; ok {
				tokens = append(tokens, token{typ: typ, literal: literal, pos: start})
			} else {
				tokens = append(tokens, token{typ: tokenIdent, literal: literal, pos: start})
			}
			continue
		}

		if source[pos] >= '0' && source[pos] <= '9' {
			numberToken, nextPos, err := lexNumber(source, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, numberToken)
			pos = nextPos
			continue
		}

		if source[pos] == '"' || source[pos] == '\'' {
			literal, nextPos, err := lexString(source, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, literal: literal, pos: pos})
			pos = nextPos
			continue
		}

		typ, literal, width := lexSymbol(source, pos)
		if width == 0 {
			return nil, &LexError{Offset: pos, Message: "unexpected character " + strconv.QuoteRune(r)}
		}
		tokens = append(tokens, token{typ: typ, literal: literal, pos: pos})
		pos += width
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(source)})
	return tokens, nil
}

func lexSymbol(source string, pos int) (tokenType, string, int) {
	two := ""
	if pos+1 < len(source) {
		two = source[pos : pos+2]
	}

	switch two {
	case "//":
		return tokenAlternative, two, 2
	case "==":
		return tokenEqual, two, 2
	case "!=":
		return tokenNotEqual, two, 2
	case "<=":
		return tokenLessEqual, two, 2
	case ">=":
		return tokenGreaterEqual, two, 2
	}

	one := source[pos : pos+1]
	switch source[pos] {
	case '.':
		return tokenDot, one, 1
	case '|':
		return tokenPipe, one, 1
	case ',':
		return tokenComma, one, 1
	case '[':
		return tokenLBracket, one, 1
	case ']':
		return tokenRBracket, one, 1
	case '{':
		return tokenLBrace, one, 1
	case '}':
		return tokenRBrace, one, 1
	case '(':
		return tokenLParen, one, 1
	case ')':
		return tokenRParen, one, 1
	case ':':
		return tokenColon, one, 1
	case '?':
		return tokenQuestion, one, 1
	case '<':
		return tokenLess, one, 1
	case '>':
		return tokenGreater, one, 1
	case '+':
		return tokenPlus, one, 1
	case '-':
		return tokenMinus, one, 1
	case '*':
		return tokenStar, one, 1
	case '/':
		return tokenSlash, one, 1
	case '%':
		return tokenPercent, one, 1
	default:
		return tokenEOF, "", 0
	}
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lexNumber scans integer and decimal/exponent literals. A leading minus
// is not part of the literal; it lexes as the unary operator.
func lexNumber(source string, start int) (token, int, error) {
	pos := start
	for pos < len(source) && source[pos] >= '0' && source[pos] <= '9' {
		pos++
	}

	if pos < len(source) && source[pos] == '.' && pos+1 < len(source) && source[pos+1] >= '0' && source[pos+1] <= '9' {
		pos++
		for pos < len(source) && source[pos] >= '0' && source[pos] <= '9' {
			pos++
		}
	}

	if pos < len(source) && (source[pos] == 'e' || source[pos] == 'E') {
		expEnd := pos + 1
		if expEnd < len(source) && (source[expEnd] == '+' || source[expEnd] == '-') {
			expEnd++
		}
		digitStart := expEnd
		for expEnd < len(source) && source[expEnd] >= '0' && source[expEnd] <= '9' {
			expEnd++
		}
		if expEnd == digitStart {
			return token{}, 0, &LexError{Offset: start, Message: "invalid exponent in number literal"}
		}
		pos = expEnd
	}

	literal := source[start:pos]
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return token{}, 0, &LexError{Offset: start, Message: "invalid number literal " + strconv.Quote(literal)}
	}

	return token{typ: tokenNumber, literal: literal, pos: start}, pos, nil
}

// lexString scans a quoted string literal with standard escape handling,
// returning the unescaped contents.
func lexString(source string, start int) (string, int, error) {
	quote := source[start]
	var b strings.Builder

	pos := start + 1
	for pos < len(source) {
		ch := source[pos]
		if ch == quote {
			return b.String(), pos + 1, nil
		}

		if ch == '\\' {
			pos++
			if pos >= len(source) {
				return "", 0, &LexError{Offset: start, Message: "unterminated escape sequence"}
			}
			switch escaped := source[pos]; escaped {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '/':
				b.WriteByte('/')
			case '\\':
				b.WriteByte('\\')
			case '\'', '"':
				b.WriteByte(escaped)
			case 'u':
				r, nextPos, err := lexUnicodeEscape(source, pos)
				if err != nil {
					return "", 0, err
				}
				b.WriteRune(r)
				pos = nextPos
				continue
			default:
				return "", 0, &LexError{Offset: pos, Message: "invalid escape sequence \\" + string(escaped)}
			}
			pos++
			continue
		}

		b.WriteByte(ch)
		pos++
	}

	return "", 0, &LexError{Offset: start, Message: "unterminated string"}
}

// lexUnicodeEscape decodes \uXXXX with pos at the 'u', pairing surrogate
// halves when a second escape follows.
func lexUnicodeEscape(source string, pos int) (rune, int, error) {
	if pos+4 >= len(source) {
		return 0, 0, &LexError{Offset: pos - 1, Message: "invalid unicode escape"}
	}
	code, err := strconv.ParseUint(source[pos+1:pos+5], 16, 32)
	if err != nil {
		return 0, 0, &LexError{Offset: pos - 1, Message: "invalid unicode escape"}
	}
	next := pos + 5

	r := rune(code)
	if utf16.IsSurrogate(r) && next+5 < len(source) && source[next] == '\\' && source[next+1] == 'u' {
		low, err := strconv.ParseUint(source[next+2:next+6], 16, 32)
		if err == nil {
			if combined := utf16.DecodeRune(r, rune(low)); combined != utf8.RuneError {
				return combined, next + 6, nil
			}
		}
	}
	if utf16.IsSurrogate(r) {
		r = utf8.RuneError
	}
	return r, next, nil
}
