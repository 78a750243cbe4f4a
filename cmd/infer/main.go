// infer: runs a saved network on one input
//
// Usage:
//
//	infer -net=mnist.ffnn -images=t10k-images-idx3-ubyte -labels=t10k-labels-idx1-ubyte -index=7
//	infer -net=and.ffnn -input=query.json
//	infer -weights=mnist.json -images=t10k-images-idx3-ubyte -labels=t10k-labels-idx1-ubyte -dump
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"

	"ffnn/dataset"
	"ffnn/nn"
	"ffnn/utils"
)

var (
	netFile     = flag.String("net", "", "Network file written by train or mnist")
	weightsFile = flag.String("weights", "", "Weights snapshot (JSON) written by mnist -json")
	inputFile   = flag.String("input", "", "Input JSON file (array of numbers)")
	images      = flag.String("images", "", "MNIST image file to take the input from")
	labels      = flag.String("labels", "", "MNIST label file matching -images")
	index       = flag.Int("index", 0, "Image index within -images")
	topK        = flag.Int("topk", 3, "Top outputs to show")
	dump        = flag.Bool("dump", false, "Print every weight of the loaded network")
)

func main() {
	flag.Parse()

	if (*netFile == "") == (*weightsFile == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -net or -weights must be specified")
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	network, err := loadNetwork(*netFile, *weightsFile)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded network %v\n", network.Topology())
	if *dump {
		if err := network.Fprint(os.Stdout); err != nil {
			return err
		}
	}

	input, err := readInput()
	if err != nil {
		return err
	}

	outputs, err := network.FeedForward(input)
	if err != nil {
		return err
	}
	showResults(outputs, *topK)
	return nil
}

// loadNetwork reads a binary network file or, when weightsPath is set, a
// JSON weights snapshot.
func loadNetwork(netPath, weightsPath string) (*nn.Network, error) {
	if weightsPath == "" {
		return nn.LoadFile(netPath)
	}
	weights, err := utils.LoadWeights(weightsPath)
	if err != nil {
		return nil, err
	}
	if weights.Version != utils.SnapshotVersion {
		return nil, fmt.Errorf("%s: snapshot version %q, want %q", weightsPath, weights.Version, utils.SnapshotVersion)
	}
	network, err := nn.FromSnapshot(weights)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", weightsPath, err)
	}
	return network, nil
}

func readInput() ([]float64, error) {
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			return nil, err
		}
		var input []float64
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", *inputFile, err)
		}
		return input, nil
	}
	if *images == "" || *labels == "" {
		return nil, fmt.Errorf("either -input or both -images and -labels must be specified")
	}
	data, err := dataset.OpenMNIST(*images, *labels)
	if err != nil {
		return nil, err
	}
	if *index < 0 || *index >= len(data.Pixels) {
		return nil, fmt.Errorf("index %d out of range for %d images", *index, len(data.Pixels))
	}
	fmt.Printf("Image %d, label %d\n", *index, data.Labels[*index])
	return data.Examples(*index + 1)[*index].Input, nil
}

func showResults(outputs []float64, k int) {
	indices := topKIndices(outputs, k)

	fmt.Printf("\nTop %d outputs:\n", len(indices))
	for i, idx := range indices {
		fmt.Printf("  %d. Class %d: %.4f\n", i+1, idx, outputs[idx])
	}
}

func topKIndices(vals []float64, k int) []int {
	if k > len(vals) {
		k = len(vals)
	}
	if k < 0 {
		k = 0
	}
	sorted := append([]float64(nil), vals...)
	indices := make([]int, len(vals))
	floats.Argsort(sorted, indices)
	// Argsort is ascending
	top := make([]int, k)
	for i := range top {
		top[i] = indices[len(indices)-1-i]
	}
	return top
}
