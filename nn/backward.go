package nn

import (
	"math"

	"github.com/pkg/errors"
)

// Backprop computes the error signals of the network for one example and
// then moves every weight one gradient step. actual is the output of the
// preceding FeedForward and expected the target for the same example. It
// returns the cost, half the squared error summed over the outputs.
func (n *Network) Backprop(actual, expected []float64, learningRate float64) (float64, error) {
	if err := validateRate(learningRate); err != nil {
		return 0, err
	}
	cost, err := n.ComputeErrors(actual, expected)
	if err != nil {
		return 0, err
	}
	return cost, n.UpdateWeights(learningRate)
}

// ComputeErrors fills in the error signal of every neuron past the input
// layer without touching any weight, and returns the example's cost.
//
// Output errors are expected - actual. A hidden neuron's error is the sum of
// its outgoing weights times the errors of the neurons they feed, so layers
// are finished strictly from the output backwards.
func (n *Network) ComputeErrors(actual, expected []float64) (float64, error) {
	out := n.layers[len(n.layers)-1]
	if len(actual) != out.size {
		return 0, errors.Wrapf(ErrDimensionMismatch, "actual output has %d values, want %d", len(actual), out.size)
	}
	if len(expected) != out.size {
		return 0, errors.Wrapf(ErrDimensionMismatch, "expected output has %d values, want %d", len(expected), out.size)
	}

	var loss SquaredErrorLoss
	loss.Backward(actual, expected, out.errors)
	cost := loss.Forward(actual, expected)

	for i := len(n.layers) - 2; i > 0; i-- {
		cur, next := n.layers[i], n.layers[i+1]
		cur.errVec.MulVec(cur.weights, next.errOut)
	}

	return cost, nil
}

// UpdateWeights applies one stochastic gradient step using the activations of
// the last FeedForward and the errors of the last ComputeErrors:
//
//	w(a->b) += learningRate * error(b) * activation(a) * activation(b) * (1 - activation(b))
func (n *Network) UpdateWeights(learningRate float64) error {
	if err := validateRate(learningRate); err != nil {
		return err
	}
	for i := 0; i < len(n.layers)-1; i++ {
		cur, next := n.layers[i], n.layers[i+1]
		for b := 0; b < next.size; b++ {
			next.delta.SetVec(b, next.errors[b]*SigmoidDerivative(next.activations[b]))
		}
		cur.weights.RankOne(cur.weights, learningRate, cur.act, next.delta)
	}
	return nil
}

func validateRate(rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 1) {
		return errors.Wrapf(ErrInvalidConfig, "learning rate %v is not a positive number", rate)
	}
	return nil
}
