package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jacoelho/vq/value"
)

type builtinFunc func(args []Expr, input value.Value) ([]value.Value, error)

type builtin struct {
	arity int
	eval  builtinFunc
}

// builtins is the fixed registry of named operations. It is populated once
// in init (the eval funcs reach back through evalExpr, so a package-level
// literal would form an initialization cycle) and never mutated afterwards,
// so concurrent lookups are safe.
var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"select":   {arity: 1, eval: builtinSelect},
		"map":      {arity: 1, eval: builtinMap},
		"sort_by":  {arity: 1, eval: builtinSortBy},
		"group_by": {arity: 1, eval: builtinGroupBy},
		"split":    {arity: 1, eval: builtinSplit},
		"join":     {arity: 1, eval: builtinJoin},
		"test":     {arity: 1, eval: builtinTest},
		"capture":  {arity: 1, eval: builtinCapture},
		"has":      {arity: 1, eval: builtinHas},
		"keys":     {arity: 0, eval: builtinKeys},
		"values":   {arity: 0, eval: builtinValues},
		"length":   {arity: 0, eval: builtinLength},
		"type":     {arity: 0, eval: builtinType},
		"add":      {arity: 0, eval: builtinAdd},
	}
}

// builtinSelect yields the input once per truthy output of the condition.
func builtinSelect(args []Expr, input value.Value) ([]value.Value, error) {
	conds, err := evalExpr(args[0], input)
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for _, cond := range conds {
		if value.Truthy(cond) {
			out = append(out, input)
		}
	}
	return out, nil
}

// builtinMap is sugar for `[.[] | f]`.
func builtinMap(args []Expr, input value.Value) ([]value.Value, error) {
	elements, err := evalIterate(input)
	if err != nil {
		return nil, err
	}

	collected := value.Array{}
	for _, element := range elements {
		outputs, err := evalExpr(args[0], element)
		if err != nil {
			return nil, err
		}
		collected = append(collected, outputs...)
	}
	return []value.Value{collected}, nil
}

// sortKeys pairs each array element with the full output stream of the key
// expression; elements order by comparing those streams lexicographically.
type sortEntry struct {
	element value.Value
	key     []value.Value
}

func sortEntries(name string, f Expr, input value.Value) ([]sortEntry, error) {
	arr, ok := input.(value.Array)
	if !ok {
		return nil, typeErrorf("%s cannot be sorted by %s, as it is not an array", value.TypeName(input), name)
	}

	entries := make([]sortEntry, len(arr))
	for i, element := range arr {
		key, err := evalExpr(f, element)
		if err != nil {
			return nil, err
		}
		entries[i] = sortEntry{element: element, key: key}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return value.CompareTuples(entries[i].key, entries[j].key) < 0
	})
	return entries, nil
}

func builtinSortBy(args []Expr, input value.Value) ([]value.Value, error) {
	entries, err := sortEntries("sort_by", args[0], input)
	if err != nil {
		return nil, err
	}

	out := make(value.Array, len(entries))
	for i, entry := range entries {
		out[i] = entry.element
	}
	return []value.Value{out}, nil
}

// builtinGroupBy sorts by the key expression, then partitions into
// contiguous runs of equal key. Outer order is ascending key order.
func builtinGroupBy(args []Expr, input value.Value) ([]value.Value, error) {
	entries, err := sortEntries("group_by", args[0], input)
	if err != nil {
		return nil, err
	}

	groups := value.Array{}
	for i := 0; i < len(entries); {
		j := i
		group := value.Array{}
		for j < len(entries) && value.CompareTuples(entries[i].key, entries[j].key) == 0 {
			group = append(group, entries[j].element)
			j++
		}
		groups = append(groups, group)
		i = j
	}
	return []value.Value{groups}, nil
}

// stringArg evaluates a builtin argument against the input, requiring
// every output to be a string. Multi-valued arguments fan the builtin out.
func stringArg(name string, arg Expr, input value.Value) ([]string, error) {
	outputs, err := evalExpr(arg, input)
	if err != nil {
		return nil, err
	}

	strs := make([]string, len(outputs))
	for i, v := range outputs {
		s, ok := v.(value.String)
		if !ok {
			return nil, typeErrorf("%s requires a string argument, got %s", name, value.TypeName(v))
		}
		strs[i] = string(s)
	}
	return strs, nil
}

func builtinSplit(args []Expr, input value.Value) ([]value.Value, error) {
	s, ok := input.(value.String)
	if !ok {
		return nil, typeErrorf("cannot split %s", value.TypeName(input))
	}

	separators, err := stringArg("split", args[0], input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, 0, len(separators))
	for _, sep := range separators {
		parts := strings.Split(string(s), sep)
		arr := make(value.Array, len(parts))
		for i, part := range parts {
			arr[i] = value.String(part)
		}
		out = append(out, arr)
	}
	return out, nil
}

func builtinJoin(args []Expr, input value.Value) ([]value.Value, error) {
	arr, ok := input.(value.Array)
	if !ok {
		return nil, typeErrorf("cannot join %s", value.TypeName(input))
	}

	separators, err := stringArg("join", args[0], input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, 0, len(separators))
	for _, sep := range separators {
		parts := make([]string, len(arr))
		for i, element := range arr {
			part, err := joinElement(element)
			if err != nil {
				return nil, err
			}
			parts[i] = part
		}
		out = append(out, value.String(strings.Join(parts, sep)))
	}
	return out, nil
}

// Null joins as the empty string; numbers and booleans join as their
// output text.
func joinElement(v value.Value) (string, error) {
	switch current := v.(type) {
	case value.String:
		return string(current), nil
	case value.Null:
		return "", nil
	case value.Bool:
		if current {
			return "true", nil
		}
		return "false", nil
	case value.Int, value.Float:
		return value.FormatNumber(current), nil
	default:
		return "", typeErrorf("cannot join with %s element", value.TypeName(v))
	}
}

func compilePattern(name string, arg Expr, input value.Value) ([]*regexp.Regexp, error) {
	patterns, err := stringArg(name, arg, input)
	if err != nil {
		return nil, err
	}

	compiled := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &RegexError{Pattern: pattern, Err: err}
		}
		compiled[i] = re
	}
	return compiled, nil
}

func builtinTest(args []Expr, input value.Value) ([]value.Value, error) {
	s, ok := input.(value.String)
	if !ok {
		return nil, typeErrorf("cannot match %s with a regular expression", value.TypeName(input))
	}

	res, err := compilePattern("test", args[0], input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, len(res))
	for i, re := range res {
		out[i] = value.Bool(re.MatchString(string(s)))
	}
	return out, nil
}

// builtinCapture yields an object of named-group captures for the first
// match, or nothing when the pattern does not match. Unmatched optional
// groups capture null.
func builtinCapture(args []Expr, input value.Value) ([]value.Value, error) {
	s, ok := input.(value.String)
	if !ok {
		return nil, typeErrorf("cannot match %s with a regular expression", value.TypeName(input))
	}

	res, err := compilePattern("capture", args[0], input)
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for _, re := range res {
		match := re.FindStringSubmatchIndex(string(s))
		if match == nil {
			continue
		}

		captures := value.NewObject()
		for i, name := range re.SubexpNames() {
			if name == "" {
				continue
			}
			if match[2*i] < 0 {
				captures.Set(name, value.Null{})
				continue
			}
			captures.Set(name, value.String(s[match[2*i]:match[2*i+1]]))
		}
		out = append(out, captures)
	}
	return out, nil
}

// builtinHas reports whether an object contains the key, or an array index
// is in bounds.
func builtinHas(args []Expr, input value.Value) ([]value.Value, error) {
	keys, err := evalExpr(args[0], input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, 0, len(keys))
	for _, key := range keys {
		switch current := input.(type) {
		case *value.Object:
			name, ok := key.(value.String)
			if !ok {
				return nil, typeErrorf("cannot check whether object has a %s key", value.TypeName(key))
			}
			out = append(out, value.Bool(current.Has(string(name))))
		case value.Array:
			i, ok := value.IntValue(key)
			if !ok {
				return nil, typeErrorf("cannot check whether array has a %s key", value.TypeName(key))
			}
			out = append(out, value.Bool(i >= 0 && i < int64(len(current))))
		default:
			return nil, typeErrorf("cannot check whether %s has a key", value.TypeName(input))
		}
	}
	return out, nil
}

// builtinKeys returns object keys in insertion order, or array indices.
func builtinKeys(_ []Expr, input value.Value) ([]value.Value, error) {
	switch current := input.(type) {
	case *value.Object:
		keys := make(value.Array, 0, current.Len())
		current.Each(func(k string, _ value.Value) bool {
			keys = append(keys, value.String(k))
			return true
		})
		return []value.Value{keys}, nil
	case value.Array:
		keys := make(value.Array, len(current))
		for i := range current {
			keys[i] = value.Int(i)
		}
		return []value.Value{keys}, nil
	default:
		return nil, typeErrorf("%s has no keys", value.TypeName(input))
	}
}

// builtinValues returns object values in insertion order, or the array
// itself.
func builtinValues(_ []Expr, input value.Value) ([]value.Value, error) {
	switch current := input.(type) {
	case *value.Object:
		values := make(value.Array, 0, current.Len())
		current.Each(func(_ string, v value.Value) bool {
			values = append(values, v)
			return true
		})
		return []value.Value{values}, nil
	case value.Array:
		return []value.Value{current}, nil
	default:
		return nil, typeErrorf("%s has no values", value.TypeName(input))
	}
}

func builtinLength(_ []Expr, input value.Value) ([]value.Value, error) {
	switch current := input.(type) {
	case value.Null:
		return []value.Value{value.Int(0)}, nil
	case value.String:
		return []value.Value{value.Int(len([]rune(string(current))))}, nil
	case value.Array:
		return []value.Value{value.Int(len(current))}, nil
	case *value.Object:
		return []value.Value{value.Int(current.Len())}, nil
	case value.Int:
		if current < 0 {
			return []value.Value{-current}, nil
		}
		return []value.Value{current}, nil
	case value.Float:
		if current < 0 {
			return []value.Value{-current}, nil
		}
		return []value.Value{current}, nil
	default:
		return nil, typeErrorf("%s has no length", value.TypeName(input))
	}
}

func builtinType(_ []Expr, input value.Value) ([]value.Value, error) {
	return []value.Value{value.String(value.TypeName(input))}, nil
}

// builtinAdd folds an array with `+`. The empty array adds to null.
func builtinAdd(_ []Expr, input value.Value) ([]value.Value, error) {
	arr, ok := input.(value.Array)
	if !ok {
		return nil, typeErrorf("cannot add the elements of %s", value.TypeName(input))
	}

	var sum value.Value = value.Null{}
	for _, element := range arr {
		next, err := addValues(sum, element)
		if err != nil {
			return nil, err
		}
		sum = next
	}
	return []value.Value{sum}, nil
}
