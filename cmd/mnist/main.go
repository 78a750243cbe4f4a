// mnist: trains a sigmoid network on MNIST digits
//
// Usage:
//
//	mnist [flags] <image file> <label file>
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
	hidden       = flag.String("hidden", "30", "Hidden layer sizes (comma-separated)")
	epochs       = flag.Int("epochs", 5, "Number of training epochs")
	learningRate = flag.Float64("rate", 0.2, "Learning rate")
	limit        = flag.Int("limit", 1000, "Number of images to train on (0 for all)")
	seed         = flag.Int64("seed", 0, "Weight seed (0 seeds from the clock)")
	saveFile     = flag.String("save", "", "Output network file (binary)")
	jsonFile     = flag.String("json", "", "Output weights snapshot (JSON)")
	verbose      = flag.Bool("verbose", true, "Verbose output")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <image file> <label file>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	utils.Verbose = *verbose

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(imagePath, labelPath string) error {
	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	data, err := dataset.OpenMNIST(imagePath, labelPath)
	if err != nil {
		return err
	}
	set := data.Examples(*limit)
	stats.DataLoadingTime = time.Since(start)

	hiddenSizes, err := utils.ParseTopology(*hidden)
	if err != nil {
		return fmt.Errorf("parsing -hidden: %w", err)
	}
	config := utils.Config{
		Topology:     append(append([]int{data.Rows * data.Cols}, hiddenSizes...), dataset.Classes),
		Epochs:       *epochs,
		LearningRate: *learningRate,
		Seed:         *seed,
		Limit:        *limit,
	}
	if err := utils.ValidateConfig(&config); err != nil {
		return err
	}

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Topology:      %v\n", config.Topology)
	fmt.Printf("  Epochs:        %d\n", config.Epochs)
	fmt.Printf("  Learning Rate: %.4f\n", config.LearningRate)
	fmt.Printf("  Examples:      %d of %d\n", len(set), len(data.Pixels))
	fmt.Println()

	start = time.Now()
	network, err := nn.New(config.Topology, config.Source())
	if err != nil {
		return err
	}
	stats.ModelInitTime = time.Since(start)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Starting training...")
	_, err = nn.Train(ctx, network, set, nn.TrainOptions{
		Epochs:       config.Epochs,
		LearningRate: config.LearningRate,
		Stats:        stats,
	})
	if err != nil {
		return err
	}

	accuracy, err := nn.Evaluate(network, set)
	if err != nil {
		return err
	}
	fmt.Printf("Training accuracy: %.2f%%\n", accuracy*100)

	start = time.Now()
	if *saveFile != "" {
		fmt.Printf("Saving network to %s...\n", *saveFile)
		if err := network.SaveFile(*saveFile); err != nil {
			return err
		}
	}
	if *jsonFile != "" {
		fmt.Printf("Saving weights snapshot to %s...\n", *jsonFile)
		if err := utils.SaveWeights(*jsonFile, network.Snapshot()); err != nil {
			return err
		}
	}
	stats.PersistTime = time.Since(start)

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, config.Epochs*len(set))
	return nil
}
