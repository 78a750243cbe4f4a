package nn

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ffnn/utils"
)

// Example is one training pair.
type Example struct {
	Input    []float64
	Expected []float64
}

// TrainOptions controls a call to Train.
type TrainOptions struct {
	Epochs       int
	LearningRate float64

	// Log receives one line per epoch. When nil, utils.Output is used if
	// utils.Verbose is set.
	Log io.Writer

	// Stats accumulates forward, backward and update durations when set.
	Stats *utils.TimingStats
}

// EpochResult is the mean cost over one epoch.
type EpochResult struct {
	Epoch int
	Cost  float64
}

// Train runs opts.Epochs passes over set in its stored order. Each example
// is fed forward and immediately backpropagated, so every example moves the
// weights before the next one is seen. ctx is checked between examples; on
// cancellation the results of the finished epochs are returned with
// ctx.Err().
func Train(ctx context.Context, net *Network, set []Example, opts TrainOptions) ([]EpochResult, error) {
	if len(set) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "training set is empty")
	}
	if opts.Epochs < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "epoch count %d is negative", opts.Epochs)
	}
	if err := validateRate(opts.LearningRate); err != nil {
		return nil, err
	}
	if err := checkExamples(net, set); err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		log = io.Discard
		if utils.Verbose {
			log = utils.Output
		}
	}

	results := make([]EpochResult, 0, opts.Epochs)
	costs := make([]float64, len(set))
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for i, ex := range set {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			cost, err := step(net, ex, opts.LearningRate, opts.Stats)
			if err != nil {
				return results, errors.Wrapf(err, "epoch %d, example %d", epoch, i)
			}
			costs[i] = cost
		}

		res := EpochResult{Epoch: epoch, Cost: stat.Mean(costs, nil)}
		results = append(results, res)
		fmt.Fprintf(log, "Epoch %d | Average cost: %.6f\n", res.Epoch, res.Cost)
	}

	return results, nil
}

func step(net *Network, ex Example, rate float64, stats *utils.TimingStats) (float64, error) {
	start := time.Now()
	out, err := net.FeedForward(ex.Input)
	if err != nil {
		return 0, err
	}
	mid := time.Now()
	cost, err := net.ComputeErrors(out, ex.Expected)
	if err != nil {
		return 0, err
	}
	back := time.Now()
	if err := net.UpdateWeights(rate); err != nil {
		return 0, err
	}
	if stats != nil {
		stats.ForwardPassTime += mid.Sub(start)
		stats.BackwardPassTime += back.Sub(mid)
		stats.UpdateTime += time.Since(back)
	}
	return cost, nil
}

func checkExamples(net *Network, set []Example) error {
	in, out := net.InputSize(), net.OutputSize()
	for i, ex := range set {
		if len(ex.Input) != in {
			return errors.Wrapf(ErrDimensionMismatch, "example %d: input has %d values, want %d", i, len(ex.Input), in)
		}
		if len(ex.Expected) != out {
			return errors.Wrapf(ErrDimensionMismatch, "example %d: expected output has %d values, want %d", i, len(ex.Expected), out)
		}
	}
	return nil
}

// Evaluate returns the fraction of examples whose strongest output is at
// the same index as the largest expected value.
func Evaluate(net *Network, set []Example) (float64, error) {
	if len(set) == 0 {
		return 0, errors.Wrap(ErrInvalidConfig, "evaluation set is empty")
	}
	if err := checkExamples(net, set); err != nil {
		return 0, err
	}
	var correct int
	for _, ex := range set {
		got, err := net.Predict(ex.Input)
		if err != nil {
			return 0, err
		}
		if got == floats.MaxIdx(ex.Expected) {
			correct++
		}
	}
	return float64(correct) / float64(len(set)), nil
}
