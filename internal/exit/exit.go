// Package exit maps errors to process exit codes for the vq CLI.
package exit

import (
	"errors"

	"github.com/jacoelho/vq/query"
)

// Exit codes reported by the vq binary.
const (
	CodeOK      = 0 // evaluation produced output without errors
	CodeUsage   = 1 // bad flags, unreadable input or a query compile error
	CodeRuntime = 2 // the query failed while evaluating a document
)

// Code classifies err into an exit code. Compile-time failures (lex,
// parse, arity) count as usage errors; evaluation-time failures count as
// runtime errors.
func Code(err error) int {
	if err == nil {
		return CodeOK
	}

	var (
		lexErr   *query.LexError
		parseErr *query.ParseError
		arityErr *query.ArityError
	)
	if errors.As(err, &lexErr) || errors.As(err, &parseErr) || errors.As(err, &arityErr) {
		return CodeUsage
	}

	var (
		typeErr    *query.TypeError
		regexErr   *query.RegexError
		unknownErr *query.UnknownFunctionError
	)
	if errors.As(err, &typeErr) || errors.As(err, &regexErr) || errors.As(err, &unknownErr) ||
		errors.Is(err, query.ErrDivisionByZero) {
		return CodeRuntime
	}

	return CodeUsage
}
