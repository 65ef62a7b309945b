// Package policy loads and serves the pretrained decision model. The model
// is an ONNX graph mapping a scaled feature row plus three trade-state values
// onto four action logits; both it and its scaler are reloadable at runtime.
package policy

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"TradeGate/pkg/logger"
)

// stateInputs are appended after the scaled feature row: position side,
// pnl percentage and cooldown flag.
const stateInputs = 3

// ModelConfig locates the ONNX graph.
type ModelConfig struct {
	Path          string
	SharedLibrary string
	// FeatureDim is the scaled feature row length; the graph input is
	// FeatureDim + 3.
	FeatureDim int
}

var ortInit sync.Once

func initRuntime(sharedLibrary string) error {
	var err error
	ortInit.Do(func() {
		if sharedLibrary == "" {
			switch runtime.GOOS {
			case "windows":
				sharedLibrary = "onnxruntime.dll"
			case "darwin":
				sharedLibrary = "libonnxruntime.dylib"
			default:
				sharedLibrary = "/usr/lib/libonnxruntime.so"
			}
		}
		ort.SetSharedLibraryPath(sharedLibrary)
		err = ort.InitializeEnvironment()
	})
	return err
}

// Model is the ONNX-backed policy. The session reuses one pre-allocated
// input/output tensor pair, so calls are serialized with a mutex.
type Model struct {
	cfg ModelConfig
	log *logger.Logger

	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	loaded  bool
}

// NewModel builds the wrapper without loading; call Reload to load the graph
// so a missing model file degrades to MODEL_NOT_LOADED instead of a startup
// failure.
func NewModel(cfg ModelConfig, log *logger.Logger) *Model {
	return &Model{cfg: cfg, log: log}
}

// Reload (re)creates the session from the configured path.
func (m *Model) Reload() error {
	if err := initRuntime(m.cfg.SharedLibrary); err != nil {
		return fmt.Errorf("init onnxruntime: %w", err)
	}

	dim := m.cfg.FeatureDim + stateInputs
	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(dim)), make([]float32, dim))
	if err != nil {
		return fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 4))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(m.cfg.Path,
		[]string{"input"}, []string{"output"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("create session: %w", err)
	}

	m.mu.Lock()
	m.destroyLocked()
	m.session = session
	m.input = inputTensor
	m.output = outputTensor
	m.loaded = true
	m.mu.Unlock()

	m.log.Info("policy model loaded",
		logger.String("path", m.cfg.Path),
		logger.Int("input_dim", dim))
	return nil
}

// Loaded reports whether a session is ready.
func (m *Model) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Infer runs the graph on one feature row plus trade state and returns the
// four action logits ordered [HOLD, BUY, SELL, CLOSE].
func (m *Model) Infer(ctx context.Context, row []float64, position, pnlPct, cooldown float64) ([4]float64, error) {
	var logits [4]float64

	if err := ctx.Err(); err != nil {
		return logits, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return logits, fmt.Errorf("model not loaded")
	}
	if len(row) != m.cfg.FeatureDim {
		return logits, fmt.Errorf("feature row has %d values, model expects %d", len(row), m.cfg.FeatureDim)
	}

	data := m.input.GetData()
	for i, v := range row {
		data[i] = float32(v)
	}
	data[len(row)] = float32(position)
	data[len(row)+1] = float32(pnlPct)
	data[len(row)+2] = float32(cooldown)

	if err := m.session.Run(); err != nil {
		return logits, fmt.Errorf("inference failed: %w", err)
	}

	out := m.output.GetData()
	if len(out) < 4 {
		return logits, fmt.Errorf("model produced %d logits, expected 4", len(out))
	}
	for i := 0; i < 4; i++ {
		logits[i] = float64(out[i])
	}
	return logits, nil
}

// Close releases the session and tensors.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked()
	m.loaded = false
}

func (m *Model) destroyLocked() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
}
