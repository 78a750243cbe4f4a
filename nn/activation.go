package nn

import "math"

// Sigmoid is the logistic function 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidDerivative returns the slope of the sigmoid in terms of its own
// output: for a = Sigmoid(x), the derivative at x is a * (1 - a).
func SigmoidDerivative(a float64) float64 {
	return a * (1 - a)
}
