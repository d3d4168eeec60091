package query

import (
	"testing"

	"github.com/jacoelho/vq/value"
)

// obj builds an object from alternating key/value pairs.
func obj(pairs ...any) *value.Object {
	o := value.NewObject(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return o
}

func mustEval(t *testing.T, source string, input value.Value) []value.Value {
	t.Helper()

	q, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	out, err := q.Evaluate(input)
	if err != nil {
		t.Fatalf("Evaluate(%q) error = %v", source, err)
	}
	return out
}

func sameStream(got, want []value.Value) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !value.Equal(got[i], want[i]) {
			return false
		}
	}
	return true
}
