package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/rand"
)

// Config holds training configuration
type Config struct {
	Topology     []int
	Epochs       int
	LearningRate float64
	Seed         int64 // 0 seeds from the clock
	Limit        int   // examples to use, 0 for all
}

// ParseTopology parses a layer size list such as "784,30,10" or "2 2 1"
func ParseTopology(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	topology := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parsing layer %d: %w", i, err)
		}
		topology[i] = n
	}
	return topology, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if len(config.Topology) < 2 {
		return fmt.Errorf("topology must have at least 2 layers (input and output)")
	}

	for i, n := range config.Topology {
		if n <= 0 {
			return fmt.Errorf("layer %d must have a positive size, got %d", i, n)
		}
	}

	if config.Epochs < 0 {
		return fmt.Errorf("epochs must not be negative")
	}

	if !(config.LearningRate > 0) {
		return fmt.Errorf("learning rate must be positive")
	}

	if config.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	return nil
}

// Source returns the random source for weight initialisation.
func (c Config) Source() rand.Source {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.NewSource(uint64(seed))
}
