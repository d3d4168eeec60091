package query

import (
	"errors"
	"math"

	"github.com/jacoelho/vq/value"
)

// evalExpr walks one node against one input, producing the node's output
// stream as a materialized slice. Evaluation is pure: no node mutates its
// input or keeps state between calls.
func evalExpr(e Expr, input value.Value) ([]value.Value, error) {
	switch node := e.(type) {
	case *Identity:
		return []value.Value{input}, nil
	case *Field:
		out, err := evalField(node.Name, input)
		if err != nil {
			return nil, err
		}
		return []value.Value{out}, nil
	case *Index:
		return evalIndex(node, input)
	case *Slice:
		return evalSlice(node, input)
	case *Iterate:
		return evalIterate(input)
	case *Pipe:
		return evalPipe(node, input)
	case *Comma:
		left, err := evalExpr(node.Left, input)
		if err != nil {
			return nil, err
		}
		right, err := evalExpr(node.Right, input)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *ArrayConstruct:
		out, err := evalArrayConstruct(node, input)
		if err != nil {
			return nil, err
		}
		return []value.Value{out}, nil
	case *ObjectConstruct:
		return evalObjectConstruct(node, input)
	case *Call:
		return evalCall(node, input)
	case *If:
		return evalIf(node, input)
	case *Alternative:
		return evalAlternative(node, input)
	case *Binary:
		return evalBinary(node, input)
	case *Not:
		return evalNot(node, input)
	case *Negate:
		return evalNegate(node, input)
	case *Optional:
		return evalOptional(node, input)
	case *Literal:
		return []value.Value{node.Value}, nil
	default:
		return nil, typeErrorf("unsupported expression node %T", e)
	}
}

// evalField looks a name up in an object. Missing keys and null input
// yield null rather than an error; any other input type is a type error.
func evalField(name string, input value.Value) (value.Value, error) {
	switch current := input.(type) {
	case *value.Object:
		if v, ok := current.Get(name); ok {
			return v, nil
		}
		return value.Null{}, nil
	case value.Null:
		return value.Null{}, nil
	default:
		return nil, typeErrorf("cannot index %s with string %q", value.TypeName(input), name)
	}
}

func evalIndex(node *Index, input value.Value) ([]value.Value, error) {
	indexes, err := evalExpr(node.Expr, input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, 0, len(indexes))
	for _, idx := range indexes {
		v, err := indexValue(input, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// indexValue applies one index. Negative indices count from the end;
// out-of-range access yields null.
func indexValue(input, idx value.Value) (value.Value, error) {
	i, ok := value.IntValue(idx)
	if !ok {
		return nil, typeErrorf("cannot index %s with %s", value.TypeName(input), value.TypeName(idx))
	}

	switch current := input.(type) {
	case value.Array:
		if i < 0 {
			i += int64(len(current))
		}
		if i < 0 || i >= int64(len(current)) {
			return value.Null{}, nil
		}
		return current[i], nil
	case value.Null:
		return value.Null{}, nil
	default:
		return nil, typeErrorf("cannot index %s with number", value.TypeName(input))
	}
}

func evalSlice(node *Slice, input value.Value) ([]value.Value, error) {
	length, err := sliceableLength(input)
	if err != nil {
		return nil, err
	}

	lowers, err := evalSliceBound(node.Lower, input, 0)
	if err != nil {
		return nil, err
	}
	uppers, err := evalSliceBound(node.Upper, input, int64(length))
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for _, lo := range lowers {
		for _, hi := range uppers {
			out = append(out, sliceValue(input, lo, hi, length))
		}
	}
	return out, nil
}

func sliceableLength(input value.Value) (int, error) {
	switch current := input.(type) {
	case value.Array:
		return len(current), nil
	case value.String:
		return len([]rune(string(current))), nil
	case value.Null:
		return 0, nil
	default:
		return 0, typeErrorf("cannot slice %s", value.TypeName(input))
	}
}

func evalSliceBound(bound Expr, input value.Value, missing int64) ([]int64, error) {
	if bound == nil {
		return []int64{missing}, nil
	}

	outputs, err := evalExpr(bound, input)
	if err != nil {
		return nil, err
	}

	bounds := make([]int64, 0, len(outputs))
	for _, v := range outputs {
		i, ok := value.IntValue(v)
		if !ok {
			return nil, typeErrorf("slice bound must be a number, got %s", value.TypeName(v))
		}
		bounds = append(bounds, i)
	}
	return bounds, nil
}

// sliceValue extracts the half-open range [lo, hi). Negative bounds count
// from the end; out-of-range bounds clamp instead of erroring.
func sliceValue(input value.Value, lo, hi int64, length int) value.Value {
	lo = clampBound(lo, length)
	hi = clampBound(hi, length)
	if lo > hi {
		lo = hi
	}

	switch current := input.(type) {
	case value.Array:
		out := make(value.Array, hi-lo)
		copy(out, current[lo:hi])
		return out
	case value.String:
		return value.String(string([]rune(string(current))[lo:hi]))
	default:
		return value.Null{}
	}
}

func clampBound(i int64, length int) int64 {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 {
		return 0
	}
	if i > int64(length) {
		return int64(length)
	}
	return i
}

func evalIterate(input value.Value) ([]value.Value, error) {
	switch current := input.(type) {
	case value.Array:
		out := make([]value.Value, len(current))
		copy(out, current)
		return out, nil
	case *value.Object:
		out := make([]value.Value, 0, current.Len())
		current.Each(func(_ string, v value.Value) bool {
			out = append(out, v)
			return true
		})
		return out, nil
	default:
		return nil, typeErrorf("cannot iterate over %s", value.TypeName(input))
	}
}

// evalPipe threads each output of the left side through the right side in
// order. This is the sequencing backbone of the language.
func evalPipe(node *Pipe, input value.Value) ([]value.Value, error) {
	left, err := evalExpr(node.Left, input)
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for _, v := range left {
		right, err := evalExpr(node.Right, v)
		if err != nil {
			return nil, err
		}
		out = append(out, right...)
	}
	return out, nil
}

func evalArrayConstruct(node *ArrayConstruct, input value.Value) (value.Value, error) {
	if node.Expr == nil {
		return value.Array{}, nil
	}

	outputs, err := evalExpr(node.Expr, input)
	if err != nil {
		return nil, err
	}
	return value.Array(outputs), nil
}

// evalObjectConstruct builds one object per combination of the entries'
// key and value streams. Entries combine left to right with later entries
// varying fastest; within an entry the value stream varies faster than the
// key stream.
func evalObjectConstruct(node *ObjectConstruct, input value.Value) ([]value.Value, error) {
	objects := []*value.Object{value.NewObject(len(node.Entries))}

	for _, entry := range node.Entries {
		keys, err := evalExpr(entry.Key, input)
		if err != nil {
			return nil, err
		}
		values, err := evalExpr(entry.Value, input)
		if err != nil {
			return nil, err
		}

		next := make([]*value.Object, 0, len(objects)*len(keys)*len(values))
		for _, base := range objects {
			for _, key := range keys {
				name, ok := key.(value.String)
				if !ok {
					return nil, typeErrorf("object keys must be strings, got %s", value.TypeName(key))
				}
				for _, v := range values {
					extended := value.NewObject(base.Len() + 1)
					base.Each(func(k string, existing value.Value) bool {
						extended.Set(k, existing)
						return true
					})
					extended.Set(string(name), v)
					next = append(next, extended)
				}
			}
		}
		objects = next
	}

	out := make([]value.Value, len(objects))
	for i, obj := range objects {
		out[i] = obj
	}
	return out, nil
}

func evalCall(node *Call, input value.Value) ([]value.Value, error) {
	fn, ok := builtins[node.Name]
	if !ok {
		return nil, &UnknownFunctionError{Name: node.Name}
	}
	if fn.arity != len(node.Args) {
		return nil, &ArityError{Name: node.Name, Expected: fn.arity, Got: len(node.Args)}
	}
	return fn.eval(node.Args, input)
}

// evalIf fans out over every output of the condition, choosing the branch
// per truthiness. A missing else branch behaves as identity.
func evalIf(node *If, input value.Value) ([]value.Value, error) {
	conds, err := evalExpr(node.Cond, input)
	if err != nil {
		return nil, err
	}

	var out []value.Value
	for _, cond := range conds {
		var branch []value.Value
		switch {
		case value.Truthy(cond):
			branch, err = evalExpr(node.Then, input)
		case node.Else != nil:
			branch, err = evalExpr(node.Else, input)
		default:
			branch = []value.Value{input}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, branch...)
	}
	return out, nil
}

// evalAlternative returns the truthy outputs of the left side, or the
// right side's stream when the left produces none.
func evalAlternative(node *Alternative, input value.Value) ([]value.Value, error) {
	left, err := evalExpr(node.Left, input)
	if err != nil {
		return nil, err
	}

	var truthy []value.Value
	for _, v := range left {
		if value.Truthy(v) {
			truthy = append(truthy, v)
		}
	}
	if len(truthy) > 0 {
		return truthy, nil
	}

	return evalExpr(node.Right, input)
}

// evalBinary cross-products both operand streams, left outer and right
// inner, and applies the operator per pair.
func evalBinary(node *Binary, input value.Value) ([]value.Value, error) {
	left, err := evalExpr(node.Left, input)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(node.Right, input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			v, err := applyBinary(node.Op, l, r)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func applyBinary(op BinaryOp, left, right value.Value) (value.Value, error) {
	switch op {
	case OpAdd:
		return addValues(left, right)
	case OpSubtract:
		return subtractValues(left, right)
	case OpMultiply:
		return arithmetic(op, left, right)
	case OpDivide:
		return divideValues(left, right)
	case OpModulo:
		return moduloValues(left, right)
	case OpEqual:
		return value.Bool(value.Equal(left, right)), nil
	case OpNotEqual:
		return value.Bool(!value.Equal(left, right)), nil
	case OpLess:
		return value.Bool(value.Compare(left, right) < 0), nil
	case OpLessEqual:
		return value.Bool(value.Compare(left, right) <= 0), nil
	case OpGreater:
		return value.Bool(value.Compare(left, right) > 0), nil
	case OpGreaterEqual:
		return value.Bool(value.Compare(left, right) >= 0), nil
	case OpAnd:
		return value.Bool(value.Truthy(left) && value.Truthy(right)), nil
	case OpOr:
		return value.Bool(value.Truthy(left) || value.Truthy(right)), nil
	default:
		return nil, typeErrorf("unsupported operator %s", op)
	}
}

// addValues implements `+`: numeric addition, string and array
// concatenation, right-biased shallow object merge, and null as the
// identity element on either side.
func addValues(left, right value.Value) (value.Value, error) {
	if left.Kind() == value.KindNull {
		return right, nil
	}
	if right.Kind() == value.KindNull {
		return left, nil
	}

	switch l := left.(type) {
	case value.Int, value.Float:
		if right.Kind() == value.KindNumber {
			return arithmetic(OpAdd, left, right)
		}
	case value.String:
		if r, ok := right.(value.String); ok {
			return l + r, nil
		}
	case value.Array:
		if r, ok := right.(value.Array); ok {
			out := make(value.Array, 0, len(l)+len(r))
			out = append(out, l...)
			out = append(out, r...)
			return out, nil
		}
	case *value.Object:
		if r, ok := right.(*value.Object); ok {
			return mergeObjects(l, r), nil
		}
	}
	return nil, typeErrorf("%s and %s cannot be added", value.TypeName(left), value.TypeName(right))
}

// mergeObjects produces a fresh object with the right side winning on key
// conflicts.
func mergeObjects(left, right *value.Object) *value.Object {
	out := value.NewObject(left.Len() + right.Len())
	left.Each(func(k string, v value.Value) bool {
		out.Set(k, v)
		return true
	})
	right.Each(func(k string, v value.Value) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// subtractValues implements `-`: numeric subtraction, or array set
// difference preserving left order.
func subtractValues(left, right value.Value) (value.Value, error) {
	if left.Kind() == value.KindNumber && right.Kind() == value.KindNumber {
		return arithmetic(OpSubtract, left, right)
	}

	l, lok := left.(value.Array)
	r, rok := right.(value.Array)
	if lok && rok {
		out := make(value.Array, 0, len(l))
		for _, item := range l {
			removed := false
			for _, candidate := range r {
				if value.Equal(item, candidate) {
					removed = true
					break
				}
			}
			if !removed {
				out = append(out, item)
			}
		}
		return out, nil
	}

	return nil, typeErrorf("%s and %s cannot be subtracted", value.TypeName(left), value.TypeName(right))
}

func divideValues(left, right value.Value) (value.Value, error) {
	if left.Kind() != value.KindNumber || right.Kind() != value.KindNumber {
		return nil, typeErrorf("%s and %s cannot be divided", value.TypeName(left), value.TypeName(right))
	}
	if value.Number(right) == 0 {
		return nil, ErrDivisionByZero
	}

	li, lInt := left.(value.Int)
	ri, rInt := right.(value.Int)
	if lInt && rInt && int64(li)%int64(ri) == 0 {
		return value.Int(int64(li) / int64(ri)), nil
	}
	return value.Float(value.Number(left) / value.Number(right)), nil
}

// moduloValues truncates both operands to integers before taking the
// remainder, matching C-style semantics for negative operands.
func moduloValues(left, right value.Value) (value.Value, error) {
	li, lok := value.IntValue(truncated(left))
	ri, rok := value.IntValue(truncated(right))
	if !lok || !rok {
		return nil, typeErrorf("%s and %s cannot be divided", value.TypeName(left), value.TypeName(right))
	}
	if ri == 0 {
		return nil, ErrDivisionByZero
	}
	return value.Int(li % ri), nil
}

func truncated(v value.Value) value.Value {
	if f, ok := v.(value.Float); ok {
		return value.Float(math.Trunc(float64(f)))
	}
	return v
}

// arithmetic handles the numeric cases of + - *, keeping the integral
// representation when both operands are integral.
func arithmetic(op BinaryOp, left, right value.Value) (value.Value, error) {
	if left.Kind() != value.KindNumber || right.Kind() != value.KindNumber {
		return nil, typeErrorf("%s and %s are not numbers", value.TypeName(left), value.TypeName(right))
	}

	li, lInt := left.(value.Int)
	ri, rInt := right.(value.Int)
	if lInt && rInt {
		switch op {
		case OpAdd:
			return li + ri, nil
		case OpSubtract:
			return li - ri, nil
		case OpMultiply:
			return li * ri, nil
		}
	}

	lf, rf := value.Number(left), value.Number(right)
	switch op {
	case OpAdd:
		return value.Float(lf + rf), nil
	case OpSubtract:
		return value.Float(lf - rf), nil
	case OpMultiply:
		return value.Float(lf * rf), nil
	default:
		return nil, typeErrorf("unsupported arithmetic operator %s", op)
	}
}

func evalNot(node *Not, input value.Value) ([]value.Value, error) {
	outputs, err := evalExpr(node.Expr, input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, len(outputs))
	for i, v := range outputs {
		out[i] = value.Bool(!value.Truthy(v))
	}
	return out, nil
}

func evalNegate(node *Negate, input value.Value) ([]value.Value, error) {
	outputs, err := evalExpr(node.Expr, input)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, len(outputs))
	for i, v := range outputs {
		switch current := v.(type) {
		case value.Int:
			out[i] = -current
		case value.Float:
			out[i] = -current
		default:
			return nil, typeErrorf("%s cannot be negated", value.TypeName(v))
		}
	}
	return out, nil
}

// evalOptional suppresses evaluation-time type errors of the suffixed
// expression, yielding an empty stream instead. Other error kinds still
// propagate.
func evalOptional(node *Optional, input value.Value) ([]value.Value, error) {
	outputs, err := evalExpr(node.Expr, input)
	if err != nil {
		var typeErr *TypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, err
	}
	return outputs, nil
}
