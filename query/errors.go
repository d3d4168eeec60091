package query

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero reports division or remainder by zero during
// evaluation.
var ErrDivisionByZero = errors.New("division by zero")

// LexError reports an illegal character or malformed literal, with the
// byte offset of the offending input.
type LexError struct {
	Offset  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Offset, e.Message)
}

// ParseError reports malformed input detected while building the syntax
// tree. Expected describes what the parser was looking for at Offset.
type ParseError struct {
	Offset   int
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: expected %s", e.Offset, e.Expected)
}

// TypeError reports an operation applied to values of incompatible types,
// such as indexing a number or adding an array to a string.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

func typeErrorf(format string, args ...any) error {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

// RegexError reports an invalid regular expression pattern passed to test
// or capture.
type RegexError struct {
	Pattern string
	Err     error
}

func (e *RegexError) Error() string {
	return fmt.Sprintf("invalid regular expression %q: %v", e.Pattern, e.Err)
}

func (e *RegexError) Unwrap() error {
	return e.Err
}

// UnknownFunctionError reports a call to a name missing from the builtin
// table.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %s", e.Name)
}

// ArityError reports a call to a known builtin with the wrong number of
// arguments. It is detected at parse time.
type ArityError struct {
	Name     string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("function %s takes %d argument(s), got %d", e.Name, e.Expected, e.Got)
}
