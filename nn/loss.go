package nn

// SquaredErrorLoss is half the squared error summed over the outputs.
type SquaredErrorLoss struct{}

// Forward returns 0.5 * sum((expected - actual)^2).
func (SquaredErrorLoss) Forward(actual, expected []float64) float64 {
	var cost float64
	for i := range actual {
		e := expected[i] - actual[i]
		cost += 0.5 * e * e
	}
	return cost
}

// Backward writes the error signal expected - actual into grad.
// This is the negated gradient of Forward with respect to actual.
func (SquaredErrorLoss) Backward(actual, expected, grad []float64) {
	for i := range grad {
		grad[i] = expected[i] - actual[i]
	}
}
