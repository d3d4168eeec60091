// Package query implements a jq-compatible filter language over the value
// data model: a lexer, a recursive-descent parser and a tree-walking
// evaluator with multi-valued ("generator") semantics, plus the builtin
// function table.
//
// A filter is compiled once with Parse and can then be evaluated any
// number of times against different inputs, concurrently, without
// synchronization:
//
//	q, err := query.Parse(`.[] | select(.stars > 100) | .name`)
//	...
//	results, err := q.Evaluate(doc)
//
// Regular-expression builtins (test, capture) use the standard library's
// RE2 engine, so matching cost stays linear in the input.
package query

import "github.com/jacoelho/vq/value"

// Query is a compiled filter expression. It is immutable and safe for
// concurrent use.
type Query struct {
	source string
	root   Expr
}

// Parse compiles a filter expression. The returned error is a *LexError,
// *ParseError or *ArityError describing the first problem found.
func Parse(source string) (*Query, error) {
	root, err := parseExpression(source)
	if err != nil {
		return nil, err
	}
	return &Query{source: source, root: root}, nil
}

// IsValid reports whether source is a syntactically valid filter without
// retaining the parsed tree.
func IsValid(source string) bool {
	_, err := parseExpression(source)
	return err == nil
}

// Evaluate runs the compiled filter against one input value, returning the
// ordered output stream. Evaluation-time failures (*TypeError,
// ErrDivisionByZero, *RegexError, *UnknownFunctionError) abort the whole
// evaluation; missing object keys and out-of-range indices are not errors
// and yield null instead.
func (q *Query) Evaluate(input value.Value) ([]value.Value, error) {
	return evalExpr(q.root, input)
}

// String returns the source text the query was compiled from.
func (q *Query) String() string {
	return q.source
}
