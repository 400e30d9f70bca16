package arithmetic

// Compute applies op to a and b. Division is always real division; a zero
// divisor (including -0) yields DivisionByZero. An op outside the four
// supported operations yields InvalidOperation.
func Compute(a, b float64, op Operation) Outcome {
	switch op {
	case Add:
		return Ok(a + b)
	case Subtract:
		return Ok(a - b)
	case Multiply:
		return Ok(a * b)
	case Divide:
		if b == 0 {
			return Fail(DivisionByZero)
		}
		return Ok(a / b)
	default:
		return Fail(InvalidOperation)
	}
}

// Dispatch parses label and computes the result.
func Dispatch(a, b float64, label string) Outcome {
	op, err := ParseOperation(label)
	if err != nil {
		return Fail(InvalidOperation)
	}
	return Compute(a, b, op)
}
