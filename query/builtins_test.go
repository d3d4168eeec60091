package query

import (
	"errors"
	"testing"

	"github.com/jacoelho/vq/value"
)

// The registry is filled in during package initialization; every entry
// must be callable and carry the arity the parser validates against.
func TestBuiltinRegistry(t *testing.T) {
	t.Parallel()

	arities := map[string]int{
		"select":   1,
		"map":      1,
		"sort_by":  1,
		"group_by": 1,
		"split":    1,
		"join":     1,
		"test":     1,
		"capture":  1,
		"has":      1,
		"keys":     0,
		"values":   0,
		"length":   0,
		"type":     0,
		"add":      0,
	}

	if len(builtins) != len(arities) {
		t.Fatalf("registry has %d entries, want %d", len(builtins), len(arities))
	}
	for name, arity := range arities {
		fn, ok := builtins[name]
		if !ok {
			t.Errorf("builtin %q not registered", name)
			continue
		}
		if fn.eval == nil {
			t.Errorf("builtin %q has no implementation", name)
		}
		if fn.arity != arity {
			t.Errorf("builtin %q arity = %d, want %d", name, fn.arity, arity)
		}
	}
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	people := value.Array{
		obj("name", value.String("ada"), "age", value.Int(36)),
		obj("name", value.String("grace"), "age", value.Int(85)),
		obj("name", value.String("alan"), "age", value.Int(41)),
	}

	tests := []struct {
		name   string
		source string
		input  value.Value
		want   []value.Value
	}{
		{
			name:   "select_keeps_matching_input",
			source: "select(. > 1)",
			input:  value.Int(2),
			want:   []value.Value{value.Int(2)},
		},
		{
			name:   "select_drops_non_matching_input",
			source: "select(. > 1)",
			input:  value.Int(0),
			want:   nil,
		},
		{
			name:   "select_repeats_per_truthy_output",
			source: "select(.a, .b)",
			input:  obj("a", value.Bool(true), "b", value.Bool(true)),
			want: []value.Value{
				obj("a", value.Bool(true), "b", value.Bool(true)),
				obj("a", value.Bool(true), "b", value.Bool(true)),
			},
		},
		{
			name:   "map_projects_elements",
			source: "map(.name)",
			input:  people,
			want: []value.Value{value.Array{
				value.String("ada"), value.String("grace"), value.String("alan"),
			}},
		},
		{
			name:   "map_identity_is_noop",
			source: "map(.)",
			input:  value.Array{value.Int(1), value.Int(2)},
			want:   []value.Value{value.Array{value.Int(1), value.Int(2)}},
		},
		{
			name:   "sort_by_key",
			source: "sort_by(.age)",
			input:  people,
			want: []value.Value{value.Array{
				obj("name", value.String("ada"), "age", value.Int(36)),
				obj("name", value.String("alan"), "age", value.Int(41)),
				obj("name", value.String("grace"), "age", value.Int(85)),
			}},
		},
		{
			name:   "sort_by_is_stable",
			source: "sort_by(.k)",
			input: value.Array{
				obj("k", value.Int(1), "n", value.Int(1)),
				obj("k", value.Int(0), "n", value.Int(2)),
				obj("k", value.Int(1), "n", value.Int(3)),
			},
			want: []value.Value{value.Array{
				obj("k", value.Int(0), "n", value.Int(2)),
				obj("k", value.Int(1), "n", value.Int(1)),
				obj("k", value.Int(1), "n", value.Int(3)),
			}},
		},
		{
			name:   "group_by_contiguous_equal_keys",
			source: "group_by(.k)",
			input: value.Array{
				obj("k", value.Int(2), "n", value.Int(1)),
				obj("k", value.Int(1), "n", value.Int(2)),
				obj("k", value.Int(2), "n", value.Int(3)),
			},
			want: []value.Value{value.Array{
				value.Array{obj("k", value.Int(1), "n", value.Int(2))},
				value.Array{
					obj("k", value.Int(2), "n", value.Int(1)),
					obj("k", value.Int(2), "n", value.Int(3)),
				},
			}},
		},
		{
			name:   "split_literal_separator",
			source: `split(",")`,
			input:  value.String("a,b,,c"),
			want: []value.Value{value.Array{
				value.String("a"), value.String("b"), value.String(""), value.String("c"),
			}},
		},
		{
			name:   "join_literal_separator",
			source: `join("-")`,
			input:  value.Array{value.String("a"), value.String("b")},
			want:   []value.Value{value.String("a-b")},
		},
		{
			name:   "join_coerces_scalars",
			source: `join(",")`,
			input:  value.Array{value.Int(1), value.Null{}, value.Bool(true)},
			want:   []value.Value{value.String("1,,true")},
		},
		{
			name:   "test_matches",
			source: `test("^v[0-9]+$")`,
			input:  value.String("v12"),
			want:   []value.Value{value.Bool(true)},
		},
		{
			name:   "test_does_not_match",
			source: `test("^v[0-9]+$")`,
			input:  value.String("release"),
			want:   []value.Value{value.Bool(false)},
		},
		{
			name:   "capture_named_groups",
			source: `capture("(?P<major>[0-9]+)\\.(?P<minor>[0-9]+)")`,
			input:  value.String("v1.42-beta"),
			want: []value.Value{obj(
				"major", value.String("1"),
				"minor", value.String("42"),
			)},
		},
		{
			name:   "capture_no_match_yields_nothing",
			source: `capture("(?P<d>[0-9]+)")`,
			input:  value.String("abc"),
			want:   nil,
		},
		{
			name:   "capture_unmatched_group_is_null",
			source: `capture("(?P<a>x)(?P<b>y)?")`,
			input:  value.String("x"),
			want: []value.Value{obj(
				"a", value.String("x"),
				"b", value.Null{},
			)},
		},
		{
			name:   "has_object_key",
			source: `has("a")`,
			input:  obj("a", value.Int(1)),
			want:   []value.Value{value.Bool(true)},
		},
		{
			name:   "has_array_index_bounds",
			source: "has(0), has(2)",
			input:  value.Array{value.Int(9), value.Int(8)},
			want:   []value.Value{value.Bool(true), value.Bool(false)},
		},
		{
			name:   "keys_insertion_order",
			source: "keys",
			input:  obj("z", value.Int(1), "a", value.Int(2)),
			want:   []value.Value{value.Array{value.String("z"), value.String("a")}},
		},
		{
			name:   "keys_array_indices",
			source: "keys",
			input:  value.Array{value.String("x"), value.String("y")},
			want:   []value.Value{value.Array{value.Int(0), value.Int(1)}},
		},
		{
			name:   "values_insertion_order",
			source: "values",
			input:  obj("z", value.Int(1), "a", value.Int(2)),
			want:   []value.Value{value.Array{value.Int(1), value.Int(2)}},
		},
		{
			name:   "length_rules",
			source: "length",
			input:  value.Null{},
			want:   []value.Value{value.Int(0)},
		},
		{
			name:   "length_of_string_counts_runes",
			source: "length",
			input:  value.String("héllo"),
			want:   []value.Value{value.Int(5)},
		},
		{
			name:   "length_of_number_is_absolute",
			source: "map(length)",
			input:  value.Array{value.Int(-4), value.Float(-2.5)},
			want:   []value.Value{value.Array{value.Int(4), value.Float(2.5)}},
		},
		{
			name:   "type_names",
			source: "map(type)",
			input: value.Array{
				value.Null{}, value.Bool(true), value.Int(1),
				value.String("s"), value.Array{}, value.NewObject(),
			},
			want: []value.Value{value.Array{
				value.String("null"), value.String("boolean"), value.String("number"),
				value.String("string"), value.String("array"), value.String("object"),
			}},
		},
		{
			name:   "add_numbers",
			source: "add",
			input:  value.Array{value.Int(1), value.Int(2), value.Int(3)},
			want:   []value.Value{value.Int(6)},
		},
		{
			name:   "add_strings",
			source: "add",
			input:  value.Array{value.String("a"), value.String("b")},
			want:   []value.Value{value.String("ab")},
		},
		{
			name:   "add_empty_array_is_null",
			source: "add",
			input:  value.Array{},
			want:   []value.Value{value.Null{}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustEval(t, tt.source, tt.input)
			if !sameStream(got, tt.want) {
				t.Errorf("evaluate(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestBuiltinErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		input  value.Value
		check  func(error) bool
	}{
		{
			name:   "sort_by_requires_array",
			source: "sort_by(.a)",
			input:  obj("a", value.Int(1)),
			check:  isTypeError,
		},
		{
			name:   "group_by_requires_array",
			source: "group_by(.)",
			input:  value.Int(1),
			check:  isTypeError,
		},
		{
			name:   "split_requires_string_input",
			source: `split(",")`,
			input:  value.Int(1),
			check:  isTypeError,
		},
		{
			name:   "join_rejects_array_elements",
			source: `join(",")`,
			input:  value.Array{value.Array{}},
			check:  isTypeError,
		},
		{
			name:   "invalid_pattern",
			source: `test("(")`,
			input:  value.String("x"),
			check: func(err error) bool {
				var regexErr *RegexError
				return errors.As(err, &regexErr) && regexErr.Pattern == "("
			},
		},
		{
			name:   "has_on_scalar",
			source: `has("a")`,
			input:  value.Int(1),
			check:  isTypeError,
		},
		{
			name:   "keys_of_scalar",
			source: "keys",
			input:  value.Int(1),
			check:  isTypeError,
		},
		{
			name:   "length_of_boolean",
			source: "length",
			input:  value.Bool(true),
			check:  isTypeError,
		},
		{
			name:   "add_mixed_types",
			source: "add",
			input:  value.Array{value.Int(1), value.String("a")},
			check:  isTypeError,
		},
		{
			name:   "add_of_object",
			source: "add",
			input:  obj("a", value.Int(1)),
			check:  isTypeError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := Parse(tt.source)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.source, err)
			}

			_, err = q.Evaluate(tt.input)
			if err == nil {
				t.Fatalf("Evaluate(%q) expected error", tt.source)
			}
			if !tt.check(err) {
				t.Errorf("Evaluate(%q) error = %v, wrong kind", tt.source, err)
			}
		})
	}
}
