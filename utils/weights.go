package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// SnapshotVersion is written into every ModelWeights produced by this module.
const SnapshotVersion = "1.0"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents a network's topology and all of its weights
type ModelWeights struct {
	Version  string        `json:"version"`
	Topology []int         `json:"topology"`
	Layers   []*WeightData `json:"layers"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// MatrixToWeightData converts a matrix to serializable weight data
func MatrixToWeightData(name string, m mat.Matrix) *WeightData {
	r, c := m.Dims()
	wd := &WeightData{
		Name:  name,
		Shape: []int{r, c},
		Data:  make([]float64, 0, r*c),
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			wd.Data = append(wd.Data, m.At(i, j))
		}
	}
	return wd
}

// WeightDataToMatrix converts weight data back to a matrix
func WeightDataToMatrix(wd *WeightData) (*mat.Dense, error) {
	if len(wd.Shape) != 2 || wd.Shape[0] <= 0 || wd.Shape[1] <= 0 {
		return nil, fmt.Errorf("%s: shape %v is not a 2-D matrix", wd.Name, wd.Shape)
	}
	if len(wd.Data) != wd.Shape[0]*wd.Shape[1] {
		return nil, fmt.Errorf("%s: %d values for shape %v", wd.Name, len(wd.Data), wd.Shape)
	}
	return mat.NewDense(wd.Shape[0], wd.Shape[1], append([]float64(nil), wd.Data...)), nil
}
