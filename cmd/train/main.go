// train: trains a network on examples from a CSV file
//
// Usage:
//
//	train -data=and.csv -topology=2,2,1 -epochs=2000 -rate=0.3 -out=and.ffnn
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"ffnn/dataset"
	"ffnn/nn"
	"ffnn/utils"
)

var (
	dataFile     = flag.String("data", "", "CSV file: input values then expected values on each line")
	topology     = flag.String("topology", "2,2,1", "Layer sizes from input to output")
	epochs       = flag.Int("epochs", 1000, "Number of training epochs")
	learningRate = flag.Float64("rate", 0.3, "Learning rate")
	seed         = flag.Int64("seed", 0, "Weight seed (0 seeds from the clock)")
	normalize    = flag.Bool("normalize", false, "Normalize input columns to zero mean and unit deviation")
	outputFile   = flag.String("out", "", "Output network file (binary)")
	verbose      = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	if *dataFile == "" {
		fmt.Fprintln(os.Stderr, "a -data file must be specified")
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	layers, err := utils.ParseTopology(*topology)
	if err != nil {
		return fmt.Errorf("parsing -topology: %w", err)
	}
	config := utils.Config{
		Topology:     layers,
		Epochs:       *epochs,
		LearningRate: *learningRate,
		Seed:         *seed,
	}
	if err := utils.ValidateConfig(&config); err != nil {
		return err
	}

	f, err := os.Open(*dataFile)
	if err != nil {
		return err
	}
	set, err := dataset.ReadCSV(f, layers[0], layers[len(layers)-1])
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", *dataFile, err)
	}
	if *normalize {
		set = dataset.Normalize(set)
	}
	fmt.Printf("Read %d examples\n", len(set))

	network, err := nn.New(config.Topology, config.Source())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := nn.Train(ctx, network, set, nn.TrainOptions{
		Epochs:       config.Epochs,
		LearningRate: config.LearningRate,
	})
	if err != nil {
		return err
	}
	if len(results) > 0 {
		fmt.Printf("\nTraining complete! Cost %.6f -> %.6f in %.2fs\n",
			results[0].Cost, results[len(results)-1].Cost, time.Since(start).Seconds())
	}

	if *outputFile != "" {
		fmt.Printf("Saving network to %s...\n", *outputFile)
		if err := network.SaveFile(*outputFile); err != nil {
			return err
		}
	}
	return nil
}
