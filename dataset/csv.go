// Package dataset turns training data on disk into nn examples.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"ffnn/nn"
)

// ReadCSV reads one example per line: inputNum input values followed by
// outputNum expected output values, comma separated. Blank lines are skipped.
func ReadCSV(reader io.Reader, inputNum, outputNum int) ([]nn.Example, error) {
	scanner := bufio.NewScanner(reader)
	var set []nn.Example
	var lineNum int
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		splits := strings.Split(text, ",")
		if len(splits) != inputNum+outputNum {
			return set, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(splits),
				expected: inputNum + outputNum,
			}
		}
		inputs := make([]float64, inputNum)
		targets := make([]float64, outputNum)

		for i, split := range splits {
			num, err := strconv.ParseFloat(strings.TrimSpace(split), 64)
			if err != nil {
				if i < inputNum {
					return set, errors.Wrapf(err, "line %d: parsing input", lineNum)
				}
				return set, errors.Wrapf(err, "line %d: parsing target", lineNum)
			}
			if i < inputNum {
				inputs[i] = num
			} else {
				targets[i-inputNum] = num
			}
		}
		set = append(set, nn.Example{
			Input:    inputs,
			Expected: targets,
		})
	}
	if err := scanner.Err(); err != nil {
		return set, errors.Wrap(err, "reading csv")
	}
	return set, nil
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// MeanStdDev returns the per-column mean and standard deviation of the
// inputs of set.
func MeanStdDev(set []nn.Example) (mean, std []float64) {
	if len(set) == 0 {
		return nil, nil
	}

	numEntries := len(set[0].Input)
	mean = make([]float64, numEntries)
	std = make([]float64, numEntries)
	column := make([]float64, len(set))
	for j := 0; j < numEntries; j++ {
		for i, ex := range set {
			column[i] = ex.Input[j]
		}
		mean[j], std[j] = stat.PopMeanStdDev(column, nil)
	}
	return mean, std
}

// Normalize returns a copy of set whose input columns are shifted to zero
// mean and scaled to unit deviation. Constant columns are only shifted.
func Normalize(set []nn.Example) []nn.Example {
	mean, std := MeanStdDev(set)
	normalized := make([]nn.Example, len(set))
	for i, ex := range set {
		inputs := make([]float64, len(ex.Input))
		for j, x := range ex.Input {
			inputs[j] = x - mean[j]
			if std[j] > 0 {
				inputs[j] /= std[j]
			}
		}
		normalized[i] = nn.Example{
			Input:    inputs,
			Expected: ex.Expected,
		}
	}
	return normalized
}
