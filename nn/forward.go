package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// FeedForward propagates input through the network and returns a copy of
// the output activations. Every activation in the network is overwritten,
// which is the state a following Backprop works from.
func (n *Network) FeedForward(input []float64) ([]float64, error) {
	in := n.layers[0]
	if len(input) != in.size {
		return nil, errors.Wrapf(ErrDimensionMismatch, "input has %d values, want %d", len(input), in.size)
	}
	copy(in.activations, input)

	for i := 0; i < len(n.layers)-1; i++ {
		cur, next := n.layers[i], n.layers[i+1]
		// weighted sums land in the declared neurons only; the bias
		// activation of next is left at 1
		next.out.MulVec(cur.weights.T(), cur.act)
		sums := next.activations[:next.size]
		for j, sum := range sums {
			sums[j] = Sigmoid(sum)
		}
	}

	return n.Output(), nil
}

// Predict runs a forward pass and returns the index of the strongest output.
func (n *Network) Predict(input []float64) (int, error) {
	out, err := n.FeedForward(input)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(out), nil
}
