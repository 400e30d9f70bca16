// Package arithmetic implements the four-way arithmetic dispatcher.
//
// Labels are parsed once at the boundary into an Operation, and every
// evaluation returns an Outcome: either a float64 value or an ErrorKind.
// Nothing in this package panics or returns a Go error for arithmetic
// failures.
package arithmetic

// Operation is one of the four supported arithmetic operations.
type Operation int

// Supported operations.
const (
	Add Operation = iota + 1
	Subtract
	Multiply
	Divide
)

// Canonical labels.
const (
	LabelAddition       = "addition"
	LabelSubtraction    = "subtraction"
	LabelMultiplication = "multiplication"
	LabelDivision       = "division"
)

var operations = []Operation{Add, Subtract, Multiply, Divide}

// labels maps every accepted label to its operation, Spanish aliases included.
var labels = map[string]Operation{
	LabelAddition:       Add,
	LabelSubtraction:    Subtract,
	LabelMultiplication: Multiply,
	LabelDivision:       Divide,
	"suma":              Add,
	"resta":             Subtract,
	"multiplicacion":    Multiply,
}

var aliases = map[Operation][]string{
	Add:      {"suma"},
	Subtract: {"resta"},
	Multiply: {"multiplicacion"},
}

// Operations returns the supported operations in declaration order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// ParseOperation maps a label to its Operation. Matching is exact and
// case-sensitive; unknown labels yield ErrInvalidOperation.
func ParseOperation(label string) (Operation, error) {
	op, ok := labels[label]
	if !ok {
		return 0, ErrInvalidOperation
	}
	return op, nil
}

// Valid reports whether op is one of the four supported operations.
func (op Operation) Valid() bool {
	return op >= Add && op <= Divide
}

// String returns the canonical label.
func (op Operation) String() string {
	switch op {
	case Add:
		return LabelAddition
	case Subtract:
		return LabelSubtraction
	case Multiply:
		return LabelMultiplication
	case Divide:
		return LabelDivision
	default:
		return "unknown"
	}
}

// Symbol returns the infix symbol for op.
func (op Operation) Symbol() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// Aliases returns the non-canonical labels accepted for op.
func Aliases(op Operation) []string {
	a := aliases[op]
	out := make([]string, len(a))
	copy(out, a)
	return out
}
