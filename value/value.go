// Package value defines the JSON-like data model the query engine operates
// on: a closed set of variants (null, boolean, number, string, array,
// object) with structural equality and a total order.
//
// Values are treated as immutable once constructed. Operations that derive
// new data always allocate fresh values, so a Value may be shared across
// concurrent evaluations without synchronization. Objects preserve key
// insertion order, which is significant for iteration and formatting.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is the closed union of JSON-like data types. The implementations
// are Null, Bool, Int, Float, String, Array and *Object; no other types
// satisfy the interface.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// Null is the absence of a value.
	Null struct{}

	// Bool is a boolean value.
	Bool bool

	// Int is a number with an integral representation. It compares equal
	// to a Float holding the same numeric value.
	Int int64

	// Float is a number with a floating representation.
	Float float64

	// String is a text value.
	String string

	// Array is an ordered sequence of values.
	Array []Value
)

// Object is a mapping from string keys to values. Key insertion order is
// preserved and keys are unique. The zero value is not usable; construct
// with NewObject.
type Object struct {
	keys    []string
	entries map[string]Value
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Int) Kind() Kind     { return KindNumber }
func (Float) Kind() Kind   { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Float) isValue()   {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// NewObject returns an empty object, optionally pre-sized for n entries.
func NewObject(sizeHint ...int) *Object {
	n := 0
	if len(sizeHint) > 0 {
		n = sizeHint[0]
	}
	return &Object{
		keys:    make([]string, 0, n),
		entries: make(map[string]Value, n),
	}
}

// Set associates key with v, overwriting any previous value. A key keeps
// its original insertion position when overwritten. Set returns the
// receiver so object literals can be built with chained calls; it must
// only be used while constructing an object, never on a shared one.
func (o *Object) Set(key string, v Value) *Object {
	if _, exists := o.entries[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = v
	return o
}

// Get returns the value for key and whether the key is present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.entries[key]
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the object's keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Each calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (o *Object) Each(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.entries[k]) {
			return
		}
	}
}

// TypeName returns the jq-style type name of v: "null", "boolean",
// "number", "string", "array" or "object".
func TypeName(v Value) string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Truthy reports whether v is truthy: every value except null and false.
func Truthy(v Value) bool {
	switch current := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(current)
	default:
		return true
	}
}

// Number returns the numeric value of v as float64. It panics if v is not
// a number; callers check the kind first.
func Number(v Value) float64 {
	switch current := v.(type) {
	case Int:
		return float64(current)
	case Float:
		return float64(current)
	default:
		panic(fmt.Sprintf("value: %s is not a number", TypeName(v)))
	}
}

// IntValue returns the integral value of v and whether v is a number with
// an exact integral representation.
func IntValue(v Value) (int64, bool) {
	switch current := v.(type) {
	case Int:
		return int64(current), true
	case Float:
		f := float64(current)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// FormatNumber renders a number the way it would appear in JSON output:
// integral representations without a decimal part, floating ones with the
// shortest round-tripping form.
func FormatNumber(v Value) string {
	switch current := v.(type) {
	case Int:
		return strconv.FormatInt(int64(current), 10)
	case Float:
		f := float64(current)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return "null"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		panic(fmt.Sprintf("value: %s is not a number", TypeName(v)))
	}
}
