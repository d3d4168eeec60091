package value

import (
	"slices"
	"strings"
)

// kindRank positions each kind in the total order
// null < false < true < numbers < strings < arrays < objects.
func kindRank(v Value) int {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindNumber:
		return 2
	case KindString:
		return 3
	case KindArray:
		return 4
	case KindObject:
		return 5
	default:
		return 6
	}
}

// Compare orders a against b, returning a negative number, zero or a
// positive number. Values of different kinds order by kind; values of the
// same kind compare structurally. Int and Float compare numerically, so
// Int(1) and Float(1) are equal.
func Compare(a, b Value) int {
	if ra, rb := kindRank(a), kindRank(b); ra != rb {
		return ra - rb
	}

	switch left := a.(type) {
	case Null:
		return 0
	case Bool:
		right := b.(Bool)
		switch {
		case left == right:
			return 0
		case bool(right): // false < true
			return -1
		default:
			return 1
		}
	case Int, Float:
		na, nb := Number(a), Number(b)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	case String:
		return strings.Compare(string(left), string(b.(String)))
	case Array:
		return compareArrays(left, b.(Array))
	case *Object:
		return compareObjects(left, b.(*Object))
	default:
		return 0
	}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func compareArrays(a, b Array) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

// Objects compare by their sorted key sets first, then by the values in
// sorted key order.
func compareObjects(a, b *Object) int {
	ka, kb := a.Keys(), b.Keys()
	slices.Sort(ka)
	slices.Sort(kb)

	if c := slices.Compare(ka, kb); c != 0 {
		return c
	}

	for _, k := range ka {
		va, _ := a.Get(k)
		vb, _ := b.Get(k)
		if c := Compare(va, vb); c != 0 {
			return c
		}
	}
	return 0
}

// CompareTuples orders two value sequences lexicographically. It backs
// sort_by and group_by, where each element's sort key is the full output
// stream of the key expression.
func CompareTuples(a, b []Value) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}
