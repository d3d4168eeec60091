package value

import (
	"reflect"
	"testing"
)

func TestCompareTotalOrder(t *testing.T) {
	t.Parallel()

	// null < false < true < numbers < strings < arrays < objects
	ordered := []Value{
		Null{},
		Bool(false),
		Bool(true),
		Float(-2.5),
		Int(0),
		Int(3),
		String(""),
		String("a"),
		String("ab"),
		Array{},
		Array{Int(1)},
		Array{Int(1), Int(2)},
		Array{Int(2)},
		NewObject(),
		NewObject().Set("a", Int(1)),
		NewObject().Set("a", Int(2)),
		NewObject().Set("b", Int(0)),
	}

	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("Compare(%v, %v) = %d, want negative", ordered[i], ordered[j], got)
			case i > j && got <= 0:
				t.Errorf("Compare(%v, %v) = %d, want positive", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Errorf("Compare(%v, %v) = %d, want 0", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestEqualMixedNumbers(t *testing.T) {
	t.Parallel()

	if !Equal(Int(1), Float(1)) {
		t.Error("Int(1) and Float(1) should be equal")
	}
	if Equal(Int(1), Float(1.5)) {
		t.Error("Int(1) and Float(1.5) should not be equal")
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Value
		want  bool
	}{
		{Null{}, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), true},
		{Float(0), true},
		{String(""), true},
		{Array{}, true},
		{NewObject(), true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.value); got != tt.want {
			t.Errorf("Truthy(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestObjectInsertionOrder(t *testing.T) {
	t.Parallel()

	obj := NewObject().
		Set("z", Int(1)).
		Set("a", Int(2)).
		Set("m", Int(3)).
		Set("z", Int(4)) // overwrite keeps position

	want := []string{"z", "a", "m"}
	if got := obj.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	v, ok := obj.Get("z")
	if !ok || !Equal(v, Int(4)) {
		t.Errorf("Get(z) = %v, %v, want 4, true", v, ok)
	}
}

func TestFromAnySortsMapKeys(t *testing.T) {
	t.Parallel()

	v, err := FromAny(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("FromAny() error = %v", err)
	}

	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("FromAny() = %T, want *Object", v)
	}
	if got, want := obj.Keys(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestFromAnyNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{name: "int", in: 42, want: Int(42)},
		{name: "int64", in: int64(-7), want: Int(-7)},
		{name: "float", in: 2.5, want: Float(2.5)},
		{name: "bool", in: true, want: Bool(true)},
		{name: "nil", in: nil, want: Null{}},
		{name: "string", in: "x", want: String("x")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromAny(tt.in)
			if err != nil {
				t.Fatalf("FromAny(%v) error = %v", tt.in, err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("FromAny(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Value
		want  string
	}{
		{Int(3), "3"},
		{Int(-10), "-10"},
		{Float(2.5), "2.5"},
		{Float(3), "3"},
		{Float(0.1), "0.1"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.value); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestIntValue(t *testing.T) {
	t.Parallel()

	if i, ok := IntValue(Float(4)); !ok || i != 4 {
		t.Errorf("IntValue(Float(4)) = %d, %v, want 4, true", i, ok)
	}
	if _, ok := IntValue(Float(4.5)); ok {
		t.Error("IntValue(Float(4.5)) should not be integral")
	}
	if _, ok := IntValue(String("4")); ok {
		t.Error("IntValue(String) should not be integral")
	}
}
