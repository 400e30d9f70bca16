package arithmetic

import (
	"errors"
	"strconv"
)

// Sentinel errors matching the two ErrorKinds.
var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidOperation = errors.New("invalid operation")
)

// ErrorKind identifies a recoverable arithmetic failure.
type ErrorKind int

// Failure kinds. KindNone marks a successful Outcome.
const (
	KindNone ErrorKind = iota
	DivisionByZero
	InvalidOperation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case DivisionByZero:
		return ErrDivisionByZero.Error()
	case InvalidOperation:
		return ErrInvalidOperation.Error()
	default:
		return "unknown"
	}
}

// Code returns a stable snake_case identifier for wire formats.
func (k ErrorKind) Code() string {
	switch k {
	case DivisionByZero:
		return "division_by_zero"
	case InvalidOperation:
		return "invalid_operation"
	default:
		return ""
	}
}

// Err returns the sentinel error for k, or nil for KindNone.
func (k ErrorKind) Err() error {
	switch k {
	case DivisionByZero:
		return ErrDivisionByZero
	case InvalidOperation:
		return ErrInvalidOperation
	default:
		return nil
	}
}

// Outcome is the result of one dispatch: a value or an ErrorKind, never both.
type Outcome struct {
	value float64
	kind  ErrorKind
}

// Ok returns a successful Outcome holding v.
func Ok(v float64) Outcome {
	return Outcome{value: v}
}

// Fail returns a failed Outcome of the given kind.
func Fail(kind ErrorKind) Outcome {
	return Outcome{kind: kind}
}

// OK reports whether the outcome holds a value.
func (o Outcome) OK() bool {
	return o.kind == KindNone
}

// Value returns the computed value and true, or 0 and false on failure.
func (o Outcome) Value() (float64, bool) {
	if o.kind != KindNone {
		return 0, false
	}
	return o.value, true
}

// Kind returns the failure kind, KindNone on success.
func (o Outcome) Kind() ErrorKind {
	return o.kind
}

// Err returns the sentinel error for a failed outcome and nil otherwise.
func (o Outcome) Err() error {
	return o.kind.Err()
}

// Result adapts the outcome to the usual (value, error) pair.
func (o Outcome) Result() (float64, error) {
	if err := o.Err(); err != nil {
		return 0, err
	}
	return o.value, nil
}

func (o Outcome) String() string {
	if o.kind != KindNone {
		return "error: " + o.kind.String()
	}
	return FormatValue(o.value)
}

// FormatValue renders v with the shortest representation that round-trips.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
