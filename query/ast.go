package query

import "github.com/jacoelho/vq/value"

// Expr is a node of the parsed expression tree. The set of implementations
// is closed; the evaluator switches exhaustively over it. Trees are
// immutable after parsing and safe to share across goroutines.
type Expr interface {
	isExpr()
}

type (
	// Identity is the `.` filter.
	Identity struct{}

	// Field accesses an object member: `.name` or `.["name"]`.
	Field struct {
		Name string
	}

	// Index accesses an array element: `.[e]`. The index expression is
	// evaluated against the value being indexed.
	Index struct {
		Expr Expr
	}

	// Slice extracts a half-open range from an array or string:
	// `.[lo:hi]`. Either bound may be nil.
	Slice struct {
		Lower Expr
		Upper Expr
	}

	// Iterate yields every element of an array or every value of an
	// object: `.[]`.
	Iterate struct{}

	// Pipe threads each output of Left through Right: `l | r`.
	Pipe struct {
		Left  Expr
		Right Expr
	}

	// Comma concatenates the outputs of both sides: `l, r`.
	Comma struct {
		Left  Expr
		Right Expr
	}

	// ArrayConstruct collects the full stream of Expr into one array:
	// `[e]`. A nil Expr constructs an empty array.
	ArrayConstruct struct {
		Expr Expr
	}

	// ObjectEntry is a single key/value pair of an object constructor.
	ObjectEntry struct {
		Key   Expr
		Value Expr
	}

	// ObjectConstruct builds objects from its entries in declaration
	// order: `{k: v, ...}`. Multi-valued entries produce the Cartesian
	// product of their streams.
	ObjectConstruct struct {
		Entries []ObjectEntry
	}

	// Call invokes a builtin function by name.
	Call struct {
		Name string
		Args []Expr
	}

	// If selects a branch per truthiness of each condition output. Elif
	// chains are desugared into nested If nodes in Else; a missing else
	// branch leaves Else nil and behaves as identity.
	If struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	// Alternative is the `l // r` operator: the truthy outputs of Left,
	// or the full stream of Right when Left has none.
	Alternative struct {
		Left  Expr
		Right Expr
	}

	// Binary applies an arithmetic, comparison or logical operator to the
	// cross product of both operand streams.
	Binary struct {
		Op    BinaryOp
		Left  Expr
		Right Expr
	}

	// Not negates the truthiness of each output of Expr.
	Not struct {
		Expr Expr
	}

	// Negate arithmetically negates each output of Expr: `-e`.
	Negate struct {
		Expr Expr
	}

	// Optional is the `e?` suffix: evaluation type errors of Expr are
	// suppressed, producing an empty stream instead.
	Optional struct {
		Expr Expr
	}

	// Literal yields a fixed value.
	Literal struct {
		Value value.Value
	}
)

// BinaryOp identifies the operator of a Binary node.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
)

// String returns the source notation of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

func (*Identity) isExpr()        {}
func (*Field) isExpr()           {}
func (*Index) isExpr()           {}
func (*Slice) isExpr()           {}
func (*Iterate) isExpr()         {}
func (*Pipe) isExpr()            {}
func (*Comma) isExpr()           {}
func (*ArrayConstruct) isExpr()  {}
func (*ObjectConstruct) isExpr() {}
func (*Call) isExpr()            {}
func (*If) isExpr()              {}
func (*Alternative) isExpr()     {}
func (*Binary) isExpr()          {}
func (*Not) isExpr()             {}
func (*Negate) isExpr()          {}
func (*Optional) isExpr()        {}
func (*Literal) isExpr()         {}
