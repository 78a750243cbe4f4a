package nn

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initial weights are drawn uniformly from [weightMin, weightMax).
const (
	weightMin = -1.0
	weightMax = 1.0
)

// NeuronID addresses a neuron by layer and position within the layer.
type NeuronID struct {
	Layer int
	Index int
}

// Weight is a copy of one connection: its value and the neuron it feeds.
type Weight struct {
	Value float64
	To    NeuronID
}

// Neuron is a snapshot of a single neuron's state.
type Neuron struct {
	Activation float64
	Error      float64
	Bias       bool
	Weights    []Weight
}

type layer struct {
	size int  // declared neurons, bias excluded
	bias bool // a constant 1.0 neuron follows the declared ones

	activations []float64
	errors      []float64 // nil for the input layer

	// weights has one row per neuron of this layer (bias included) and one
	// column per declared neuron of the next layer. nil for the output layer.
	weights *mat.Dense

	act    *mat.VecDense // all activations
	out    *mat.VecDense // declared activations, what the previous layer writes
	errVec *mat.VecDense // all errors
	errOut *mat.VecDense // declared errors, what the previous layer reads
	delta  *mat.VecDense // scratch for the gradient step into this layer
}

func (l *layer) count() int {
	if l.bias {
		return l.size + 1
	}
	return l.size
}

// Network is a fully connected feedforward network with sigmoid activations.
// Hidden layers carry one extra bias neuron whose activation is always 1.
// A Network is not safe for concurrent use.
type Network struct {
	topology []int
	layers   []*layer
}

// ValidateTopology reports whether topology describes a buildable network:
// at least an input and an output layer, each with at least one neuron.
func ValidateTopology(topology []int) error {
	if len(topology) < 2 {
		return errors.Wrapf(ErrInvalidConfig, "topology needs at least 2 layers, got %d", len(topology))
	}
	for i, size := range topology {
		if size <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "layer %d has size %d", i, size)
		}
	}
	return nil
}

// New builds a network from topology, the declared neuron count of every
// layer from input to output. Weights are drawn from src; a nil src is
// seeded from the clock, which makes the result differ between runs.
func New(topology []int, src rand.Source) (*Network, error) {
	if err := ValidateTopology(topology); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	dist := distuv.Uniform{Min: weightMin, Max: weightMax, Src: src}

	last := len(topology) - 1
	net := &Network{
		topology: append([]int(nil), topology...),
		layers:   make([]*layer, len(topology)),
	}
	for i, size := range topology {
		l := &layer{size: size, bias: i != 0 && i != last}
		l.activations = make([]float64, l.count())
		if l.bias {
			l.activations[size] = 1
		}
		l.act = mat.NewVecDense(len(l.activations), l.activations)
		l.out = mat.NewVecDense(size, l.activations[:size])
		if i != 0 {
			l.errors = make([]float64, l.count())
			l.errVec = mat.NewVecDense(len(l.errors), l.errors)
			l.errOut = mat.NewVecDense(size, l.errors[:size])
			l.delta = mat.NewVecDense(size, nil)
		}
		net.layers[i] = l
	}

	for i := 0; i < last; i++ {
		l := net.layers[i]
		rows, cols := l.count(), topology[i+1]
		data := make([]float64, rows*cols)
		for k := range data {
			data[k] = dist.Rand()
		}
		l.weights = mat.NewDense(rows, cols, data)
	}

	return net, nil
}

// Topology returns a copy of the declared layer sizes.
func (n *Network) Topology() []int {
	return append([]int(nil), n.topology...)
}

// Layers returns the number of layers.
func (n *Network) Layers() int {
	return len(n.layers)
}

// NeuronCount returns the number of neurons in layer i, bias included.
func (n *Network) NeuronCount(i int) int {
	return n.layers[i].count()
}

// HasBias reports whether layer i ends with a bias neuron.
func (n *Network) HasBias(i int) bool {
	return n.layers[i].bias
}

// InputSize returns the declared size of the input layer.
func (n *Network) InputSize() int {
	return n.topology[0]
}

// OutputSize returns the declared size of the output layer.
func (n *Network) OutputSize() int {
	return n.topology[len(n.topology)-1]
}

// Neuron returns a copy of the neuron at index in layer. It panics if either
// index is out of range.
func (n *Network) Neuron(layer, index int) Neuron {
	l := n.layers[layer]
	if index < 0 || index >= l.count() {
		panic(fmt.Sprintf("nn: neuron %d out of range for layer %d (%d neurons)", index, layer, l.count()))
	}
	nrn := Neuron{
		Activation: l.activations[index],
		Bias:       l.bias && index == l.size,
	}
	if l.errors != nil {
		nrn.Error = l.errors[index]
	}
	if l.weights != nil {
		_, cols := l.weights.Dims()
		nrn.Weights = make([]Weight, cols)
		for k := range nrn.Weights {
			nrn.Weights[k] = Weight{
				Value: l.weights.At(index, k),
				To:    NeuronID{Layer: layer + 1, Index: k},
			}
		}
	}
	return nrn
}

// Weight returns the value of the connection from neuron from of layer to
// neuron to of layer+1.
func (n *Network) Weight(layer, from, to int) float64 {
	return n.weightsOf(layer).At(from, to)
}

// SetWeight overwrites the connection from neuron from of layer to neuron to
// of layer+1.
func (n *Network) SetWeight(layer, from, to int, v float64) {
	n.weightsOf(layer).Set(from, to, v)
}

// Weights returns a copy of the outgoing weights of layer, one row per
// neuron and one column per declared neuron of the next layer.
func (n *Network) Weights(layer int) *mat.Dense {
	return mat.DenseCopyOf(n.weightsOf(layer))
}

func (n *Network) weightsOf(layer int) *mat.Dense {
	w := n.layers[layer].weights
	if w == nil {
		panic(fmt.Sprintf("nn: layer %d has no outgoing weights", layer))
	}
	return w
}

// Output returns a copy of the output layer's current activations.
func (n *Network) Output() []float64 {
	return append([]float64(nil), n.layers[len(n.layers)-1].activations...)
}
