package nn

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffnn/utils"
)

var andTable = []Example{
	{Input: []float64{0, 0}, Expected: []float64{0}},
	{Input: []float64{0, 1}, Expected: []float64{0}},
	{Input: []float64{1, 0}, Expected: []float64{0}},
	{Input: []float64{1, 1}, Expected: []float64{1}},
}

func TestTrainAND(t *testing.T) {
	const epochs = 2000
	net := newNet(t, []int{2, 2, 1}, 1)

	var log bytes.Buffer
	results, err := Train(context.Background(), net, andTable, TrainOptions{
		Epochs:       epochs,
		LearningRate: 0.3,
		Log:          &log,
	})
	require.NoError(t, err)
	require.Len(t, results, epochs)
	for i, r := range results {
		require.Equal(t, i, r.Epoch)
		require.False(t, math.IsNaN(r.Cost))
	}
	require.Less(t, results[epochs-1].Cost, results[0].Cost)

	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	require.Len(t, lines, epochs)
	assert.True(t, strings.HasPrefix(lines[0], "Epoch 0 | Average cost: "), lines[0])
	assert.True(t, strings.HasPrefix(lines[epochs-1], "Epoch 1999 | Average cost: "), lines[epochs-1])
}

func TestTrainMeanCost(t *testing.T) {
	// with zero weights every output is 0.5 on the first pass of the first
	// example, so a one-example epoch reports exactly 0.5 * 0.5^2
	net := newNet(t, []int{2, 1}, 1)
	fill(net, 0)
	results, err := Train(context.Background(), net, andTable[:1], TrainOptions{
		Epochs:       1,
		LearningRate: 0.1,
		Log:          &bytes.Buffer{},
	})
	require.NoError(t, err)
	require.Equal(t, []EpochResult{{Epoch: 0, Cost: 0.125}}, results)
}

func TestTrainZeroEpochs(t *testing.T) {
	net := newNet(t, []int{2, 2, 1}, 3)
	fresh := newNet(t, []int{2, 2, 1}, 3)

	var log bytes.Buffer
	results, err := Train(context.Background(), net, andTable[3:], TrainOptions{
		Epochs:       0,
		LearningRate: 0.3,
		Log:          &log,
	})
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, log.Len())
	requireSameWeights(t, fresh, net)
}

func TestTrainInvalidConfig(t *testing.T) {
	net := newNet(t, []int{2, 2, 1}, 1)
	ctx := context.Background()
	for name, tc := range map[string]struct {
		set  []Example
		opts TrainOptions
	}{
		"empty set":      {nil, TrainOptions{Epochs: 1, LearningRate: 0.3}},
		"zero rate":      {andTable, TrainOptions{Epochs: 1}},
		"negative rate":  {andTable, TrainOptions{Epochs: 1, LearningRate: -1}},
		"nan rate":       {andTable, TrainOptions{Epochs: 1, LearningRate: math.NaN()}},
		"negative epoch": {andTable, TrainOptions{Epochs: -1, LearningRate: 0.3}},
	} {
		_, err := Train(ctx, net, tc.set, tc.opts)
		require.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestTrainDimensionMismatch(t *testing.T) {
	net := newNet(t, []int{2, 2, 1}, 1)
	before := newNet(t, []int{2, 2, 1}, 1)

	set := []Example{
		andTable[0],
		{Input: []float64{1}, Expected: []float64{0}},
	}
	_, err := Train(context.Background(), net, set, TrainOptions{Epochs: 1, LearningRate: 0.3, Log: &bytes.Buffer{}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	require.Contains(t, err.Error(), "example 1")

	set[1] = Example{Input: []float64{1, 1}, Expected: []float64{0, 1}}
	_, err = Train(context.Background(), net, set, TrainOptions{Epochs: 1, LearningRate: 0.3, Log: &bytes.Buffer{}})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	// checked before the first update
	requireSameWeights(t, before, net)
}

func TestTrainCancelled(t *testing.T) {
	net := newNet(t, []int{2, 2, 1}, 1)
	before := newNet(t, []int{2, 2, 1}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Train(ctx, net, andTable, TrainOptions{Epochs: 10, LearningRate: 0.3, Log: &bytes.Buffer{}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
	requireSameWeights(t, before, net)
}

func TestTrainStatsAndDefaultLog(t *testing.T) {
	oldVerbose, oldOutput := utils.Verbose, utils.Output
	defer func() { utils.Verbose, utils.Output = oldVerbose, oldOutput }()

	var out bytes.Buffer
	utils.Verbose, utils.Output = true, &out

	net := newNet(t, []int{2, 4, 1}, 1)
	stats := &utils.TimingStats{}
	_, err := Train(context.Background(), net, andTable, TrainOptions{
		Epochs:       200,
		LearningRate: 0.3,
		Stats:        stats,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Epoch 199 | Average cost: ")
	require.NotZero(t, stats.ForwardPassTime+stats.BackwardPassTime+stats.UpdateTime)

	out.Reset()
	utils.Verbose = false
	_, err = Train(context.Background(), net, andTable, TrainOptions{Epochs: 1, LearningRate: 0.3})
	require.NoError(t, err)
	require.Zero(t, out.Len())
}

func TestEvaluate(t *testing.T) {
	// zero weights make every output 0.5, and ties go to index 0
	net := newNet(t, []int{2, 2}, 1)
	fill(net, 0)

	set := []Example{
		{Input: []float64{1, 0}, Expected: []float64{1, 0}},
		{Input: []float64{0, 1}, Expected: []float64{0, 1}},
	}
	acc, err := Evaluate(net, set)
	require.NoError(t, err)
	require.Equal(t, 0.5, acc)

	_, err = Evaluate(net, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Evaluate(net, []Example{{Input: []float64{1}, Expected: []float64{1, 0}}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}
