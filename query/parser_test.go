package query

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jacoelho/vq/value"
)

func TestParseTrees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   Expr
	}{
		{
			name:   "identity",
			source: ".",
			want:   &Identity{},
		},
		{
			name:   "field_chain_builds_pipes",
			source: ".a.b",
			want: &Pipe{
				Left:  &Field{Name: "a"},
				Right: &Field{Name: "b"},
			},
		},
		{
			name:   "bracket_quoted_field",
			source: `.["with space"]`,
			want: &Pipe{
				Left:  &Identity{},
				Right: &Field{Name: "with space"},
			},
		},
		{
			name:   "index",
			source: ".[0]",
			want: &Pipe{
				Left:  &Identity{},
				Right: &Index{Expr: &Literal{Value: value.Int(0)}},
			},
		},
		{
			name:   "slice_missing_lower",
			source: ".[:2]",
			want: &Pipe{
				Left:  &Identity{},
				Right: &Slice{Upper: &Literal{Value: value.Int(2)}},
			},
		},
		{
			name:   "iterate",
			source: ".[]",
			want: &Pipe{
				Left:  &Identity{},
				Right: &Iterate{},
			},
		},
		{
			name:   "pipe_binds_loosest",
			source: ".a, .b | .c",
			want: &Pipe{
				Left: &Comma{
					Left:  &Field{Name: "a"},
					Right: &Field{Name: "b"},
				},
				Right: &Field{Name: "c"},
			},
		},
		{
			name:   "comparison_tighter_than_and",
			source: ".a == 1 and .b < 2",
			want: &Binary{
				Op: OpAnd,
				Left: &Binary{
					Op:    OpEqual,
					Left:  &Field{Name: "a"},
					Right: &Literal{Value: value.Int(1)},
				},
				Right: &Binary{
					Op:    OpLess,
					Left:  &Field{Name: "b"},
					Right: &Literal{Value: value.Int(2)},
				},
			},
		},
		{
			name:   "multiplicative_tighter_than_additive",
			source: "1 + 2 * 3",
			want: &Binary{
				Op:   OpAdd,
				Left: &Literal{Value: value.Int(1)},
				Right: &Binary{
					Op:    OpMultiply,
					Left:  &Literal{Value: value.Int(2)},
					Right: &Literal{Value: value.Int(3)},
				},
			},
		},
		{
			name:   "unary_minus",
			source: "-.a",
			want:   &Negate{Expr: &Field{Name: "a"}},
		},
		{
			name:   "optional_suffix",
			source: ".a?",
			want:   &Optional{Expr: &Field{Name: "a"}},
		},
		{
			name:   "empty_array",
			source: "[]",
			want:   &ArrayConstruct{},
		},
		{
			name:   "object_constructor",
			source: "{name: .login}",
			want: &ObjectConstruct{
				Entries: []ObjectEntry{
					{
						Key:   &Literal{Value: value.String("name")},
						Value: &Field{Name: "login"},
					},
				},
			},
		},
		{
			name:   "call_with_argument",
			source: "map(.name)",
			want: &Call{
				Name: "map",
				Args: []Expr{&Field{Name: "name"}},
			},
		},
		{
			name:   "elif_desugars_to_nested_if",
			source: "if .a then 1 elif .b then 2 else 3 end",
			want: &If{
				Cond: &Field{Name: "a"},
				Then: &Literal{Value: value.Int(1)},
				Else: &If{
					Cond: &Field{Name: "b"},
					Then: &Literal{Value: value.Int(2)},
					Else: &Literal{Value: value.Int(3)},
				},
			},
		},
		{
			name:   "if_without_else",
			source: "if . then 1 end",
			want: &If{
				Cond: &Identity{},
				Then: &Literal{Value: value.Int(1)},
			},
		},
		{
			name:   "alternative",
			source: "null // 5",
			want: &Alternative{
				Left:  &Literal{Value: value.Null{}},
				Right: &Literal{Value: value.Int(5)},
			},
		},
		{
			name:   "float_literal",
			source: "2.5",
			want:   &Literal{Value: value.Float(2.5)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseExpression(tt.source)
			if err != nil {
				t.Fatalf("parse(%q) error = %v", tt.source, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parse(%q) = %#v, want %#v", tt.source, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{name: "empty", source: ""},
		{name: "blank", source: "   "},
		{name: "unbalanced_bracket", source: "[1, 2"},
		{name: "unbalanced_paren", source: "(1"},
		{name: "missing_end", source: "if . then 1"},
		{name: "trailing_tokens", source: ". ."},
		{name: "missing_object_value", source: "{a}"},
		{name: "dangling_pipe", source: ".a |"},
		{name: "lone_operator", source: "+"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseExpression(tt.source)
			if err == nil {
				t.Fatalf("parse(%q) expected error", tt.source)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("parse(%q) error = %T, want *ParseError", tt.source, err)
			}
		})
	}
}

// A literal like 1e999 passes the lexer but overflows float64; the parse
// error must still point at the literal's byte offset.
func TestParseNumberOverflowReportsOffset(t *testing.T) {
	t.Parallel()

	_, err := parseExpression(".a + 1e999")
	if err == nil {
		t.Fatal("parse expected error for overflowing number literal")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("parse error = %T, want *ParseError", err)
	}
	if parseErr.Offset != 5 {
		t.Errorf("parse error offset = %d, want 5", parseErr.Offset)
	}
}

func TestParseArityCheckedAtCompileTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source       string
		wantExpected int
		wantGot      int
	}{
		{source: "length(.a)", wantExpected: 0, wantGot: 1},
		{source: "has", wantExpected: 1, wantGot: 0},
		{source: "select", wantExpected: 1, wantGot: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			_, err := parseExpression(tt.source)

			var arityErr *ArityError
			if !errors.As(err, &arityErr) {
				t.Fatalf("parse(%q) error = %v, want *ArityError", tt.source, err)
			}
			if arityErr.Expected != tt.wantExpected || arityErr.Got != tt.wantGot {
				t.Errorf("arity = %d/%d, want %d/%d", arityErr.Expected, arityErr.Got, tt.wantExpected, tt.wantGot)
			}
		})
	}
}

func TestParseUnknownFunctionDeferredToEvaluation(t *testing.T) {
	t.Parallel()

	q, err := Parse("frobnicate")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	_, err = q.Evaluate(value.Null{})
	var unknownErr *UnknownFunctionError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Evaluate() error = %v, want *UnknownFunctionError", err)
	}
	if unknownErr.Name != "frobnicate" {
		t.Errorf("Name = %q, want frobnicate", unknownErr.Name)
	}
}
