package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"TradeGate/pkg/logger"
)

// scalerParams is the on-disk form: per-column mean and scale exported from
// the training run.
type scalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// StandardScaler normalizes feature rows with training-time statistics.
type StandardScaler struct {
	path string
	log  *logger.Logger

	mu     sync.RWMutex
	params scalerParams
	loaded bool
}

func NewStandardScaler(path string, log *logger.Logger) *StandardScaler {
	return &StandardScaler{path: path, log: log}
}

// Reload reads the parameter file from disk.
func (s *StandardScaler) Reload() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read scaler: %w", err)
	}
	var p scalerParams
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("parse scaler: %w", err)
	}
	if len(p.Mean) == 0 || len(p.Mean) != len(p.Scale) {
		return fmt.Errorf("scaler has %d means and %d scales", len(p.Mean), len(p.Scale))
	}
	for i, v := range p.Scale {
		if v == 0 {
			return fmt.Errorf("scaler column %d has zero scale", i)
		}
	}

	s.mu.Lock()
	s.params = p
	s.loaded = true
	s.mu.Unlock()

	s.log.Info("scaler loaded", logger.String("path", s.path), logger.Int("columns", len(p.Mean)))
	return nil
}

// Loaded reports whether parameters are available.
func (s *StandardScaler) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Transform returns (row - mean) / scale.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, fmt.Errorf("scaler not loaded")
	}
	if len(row) != len(s.params.Mean) {
		return nil, fmt.Errorf("row has %d values, scaler expects %d", len(row), len(s.params.Mean))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.params.Mean[i]) / s.params.Scale[i]
	}
	return out, nil
}
