package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func newNet(t *testing.T, topology []int, seed uint64) *Network {
	t.Helper()
	net, err := New(topology, rand.NewSource(seed))
	require.NoError(t, err)
	return net
}

// fill sets every weight of net to v.
func fill(net *Network, v float64) {
	for i := 0; i < net.Layers()-1; i++ {
		net.layers[i].weights.Apply(func(_, _ int, _ float64) float64 { return v }, net.layers[i].weights)
	}
}

func requireSameWeights(t *testing.T, want, got *Network) {
	t.Helper()
	require.Equal(t, want.Topology(), got.Topology())
	for i := 0; i < want.Layers()-1; i++ {
		require.Truef(t, mat.Equal(want.layers[i].weights, got.layers[i].weights), "layer %d weights differ", i)
	}
}

func TestNewTopology(t *testing.T) {
	for _, topology := range [][]int{
		{2, 1},
		{3, 4, 2},
		{1, 1, 1, 1},
		{784, 30, 10},
	} {
		net := newNet(t, topology, 1)
		require.Equal(t, len(topology), net.Layers())
		require.Equal(t, topology, net.Topology())

		last := len(topology) - 1
		for i, size := range topology {
			hidden := i != 0 && i != last
			assert.Equal(t, hidden, net.HasBias(i), "layer %d", i)
			want := size
			if hidden {
				want++
			}
			require.Equal(t, want, net.NeuronCount(i), "layer %d", i)

			for j := 0; j < net.NeuronCount(i); j++ {
				nrn := net.Neuron(i, j)
				if i == last {
					require.Empty(t, nrn.Weights)
					continue
				}
				require.Len(t, nrn.Weights, topology[i+1])
				for k, w := range nrn.Weights {
					require.Equal(t, NeuronID{Layer: i + 1, Index: k}, w.To)
					require.GreaterOrEqual(t, w.Value, -1.0)
					require.Less(t, w.Value, 1.0)
				}
			}
			if hidden {
				bias := net.Neuron(i, size)
				assert.True(t, bias.Bias)
				assert.Equal(t, 1.0, bias.Activation)
			}
		}
	}
}

func TestNewInvalidTopology(t *testing.T) {
	for _, topology := range [][]int{
		nil,
		{},
		{3},
		{2, 0, 1},
		{0, 2},
		{2, -1},
	} {
		_, err := New(topology, rand.NewSource(1))
		require.ErrorIs(t, err, ErrInvalidConfig, "topology %v", topology)
	}
}

func TestNewSeeded(t *testing.T) {
	a := newNet(t, []int{3, 4, 2}, 42)
	b := newNet(t, []int{3, 4, 2}, 42)
	requireSameWeights(t, a, b)

	c := newNet(t, []int{3, 4, 2}, 43)
	assert.False(t, mat.Equal(a.layers[0].weights, c.layers[0].weights))
}

func TestNewNilSource(t *testing.T) {
	net, err := New([]int{2, 2}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, net.Layers())
}

func TestTopologyIsCopied(t *testing.T) {
	topology := []int{2, 3, 1}
	net := newNet(t, topology, 1)
	topology[1] = 9
	require.Equal(t, []int{2, 3, 1}, net.Topology())

	got := net.Topology()
	got[0] = 9
	require.Equal(t, 2, net.InputSize())
	require.Equal(t, 1, net.OutputSize())
}

func TestWeightAccessors(t *testing.T) {
	net := newNet(t, []int{2, 3, 1}, 1)
	net.SetWeight(1, 3, 0, 0.25)
	require.Equal(t, 0.25, net.Weight(1, 3, 0))
	require.Equal(t, 0.25, net.Neuron(1, 3).Weights[0].Value)

	w := net.Weights(1)
	r, c := w.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 1, c)
	w.Set(3, 0, 9)
	require.Equal(t, 0.25, net.Weight(1, 3, 0), "Weights must return a copy")

	require.Panics(t, func() { net.Weight(2, 0, 0) })
	require.Panics(t, func() { net.Neuron(0, 2) })
}
